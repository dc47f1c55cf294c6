package execution

import (
	"cmp"
	"errors"
	"slices"
	"time"

	"github.com/dukex/operion-studio/pkg/models"
)

// UnknownDuration is shown when a run has not completed or lacks timestamps.
const UnknownDuration = "unknown"

var (
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

type SortField string

const (
	SortByStartedAt SortField = "started_at"
	SortByDuration  SortField = "duration"
	SortByStatus    SortField = "status"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Row is one rendered line of the execution history.
type Row struct {
	ExecutionID int64
	Status      models.ExecutionStatus
	StartedAt   time.Time
	Duration    time.Duration
	HasDuration bool
	Error       string
}

// DurationText renders the duration, or UnknownDuration.
func (r Row) DurationText() string {
	if !r.HasDuration {
		return UnknownDuration
	}

	return r.Duration.Round(time.Millisecond).String()
}

// StatusLabel maps a backend status onto the fixed label set. Statuses
// outside the set render as pending.
func StatusLabel(status models.ExecutionStatus) models.ExecutionStatus {
	switch status {
	case models.ExecutionStatusPending,
		models.ExecutionStatusRunning,
		models.ExecutionStatusCompleted,
		models.ExecutionStatusFailed,
		models.ExecutionStatusCanceled:
		return status
	default:
		return models.ExecutionStatusPending
	}
}

func RenderRow(e models.Execution) Row {
	d, ok := e.Duration()

	return Row{
		ExecutionID: e.ID,
		Status:      StatusLabel(e.Status),
		StartedAt:   e.StartedAt,
		Duration:    d,
		HasDuration: ok,
		Error:       e.Error,
	}
}

// SortRows returns a sorted copy of rows. Rows without a duration sort after
// rows with one in ascending order.
func SortRows(rows []Row, field SortField, order SortOrder) ([]Row, error) {
	var compare func(a, b Row) int

	switch field {
	case SortByStartedAt:
		compare = func(a, b Row) int { return a.StartedAt.Compare(b.StartedAt) }
	case SortByDuration:
		compare = func(a, b Row) int {
			switch {
			case a.HasDuration && b.HasDuration:
				return cmp.Compare(a.Duration, b.Duration)
			case a.HasDuration:
				return -1
			case b.HasDuration:
				return 1
			default:
				return 0
			}
		}
	case SortByStatus:
		compare = func(a, b Row) int { return cmp.Compare(a.Status, b.Status) }
	default:
		return nil, ErrInvalidSortField
	}

	switch order {
	case SortAsc, "":
	case SortDesc:
		asc := compare
		compare = func(a, b Row) int { return asc(b, a) }
	default:
		return nil, ErrInvalidSortOrder
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b Row) int {
		if c := compare(a, b); c != 0 {
			return c
		}

		return cmp.Compare(a.ExecutionID, b.ExecutionID)
	})

	return sorted, nil
}
