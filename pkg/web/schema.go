package web

import (
	"errors"
	"strings"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

var errInvalidGraph = errors.New("invalid workflow_data")

const graphSchema = `{
  "type": "object",
  "properties": {
    "nodes": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "position", "data"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "position": {
            "type": "object",
            "required": ["x", "y"],
            "properties": {"x": {"type": "number"}, "y": {"type": "number"}}
          },
          "data": {
            "type": "object",
            "required": ["nodeType"],
            "properties": {
              "nodeType": {"type": "string", "minLength": 1},
              "config": {"type": ["object", "null"]}
            }
          }
        }
      }
    },
    "edges": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "source", "target"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "source": {"type": "string", "minLength": 1},
          "target": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var graphSchemaLoader = gojsonschema.NewStringLoader(graphSchema)

// validateGraph checks a workflow graph document against graphSchema. Edges
// pointing at missing nodes are accepted.
func validateGraph(g models.Graph) error {
	result, err := gojsonschema.Validate(graphSchemaLoader, gojsonschema.NewGoLoader(g))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		messages = append(messages, e.String())
	}

	return errors.Join(errInvalidGraph, errors.New(strings.Join(messages, "; ")))
}
