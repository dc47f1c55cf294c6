package api

import (
	"errors"
	"fmt"
)

// TransportError reports that a request never produced an HTTP response
// (connection refused, timeout, cancelled context).
type TransportError struct {
	Op  string // Operation being performed (e.g., "ListWorkflows", "GetExecution")
	Err error  // Underlying error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteFailure reports a structured failure returned by the backend.
type RemoteFailure struct {
	Op     string // Operation being performed
	Status int    // HTTP status, 0 for failures reported inside a 2xx body
	Title  string // Short summary from the problem document
	Detail string // Message meant for the user
}

func (e *RemoteFailure) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}

	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}

	return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.Status)
}

// Message returns the text shown verbatim to the user.
func (e *RemoteFailure) Message() string {
	if e.Detail != "" {
		return e.Detail
	}

	return e.Title
}

// IsTransport checks if an error is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError

	return errors.As(err, &te)
}

// IsRemoteFailure checks if an error is a RemoteFailure.
func IsRemoteFailure(err error) bool {
	var rf *RemoteFailure

	return errors.As(err, &rf)
}

// IsNotFound checks if the backend answered 404.
func IsNotFound(err error) bool {
	var rf *RemoteFailure

	return errors.As(err, &rf) && rf.Status == 404
}
