package graph

import (
	"fmt"

	"github.com/dukex/operion-studio/pkg/models"
)

// ProblemKind classifies a graph validation finding.
type ProblemKind string

const (
	ProblemDanglingSource ProblemKind = "dangling_source"
	ProblemDanglingTarget ProblemKind = "dangling_target"
	ProblemDuplicateNode  ProblemKind = "duplicate_node"
)

// Problem is one finding reported by Validate.
type Problem struct {
	Kind   ProblemKind
	NodeID string
	EdgeID string
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemDanglingSource:
		return fmt.Sprintf("edge %s starts at missing node %s", p.EdgeID, p.NodeID)
	case ProblemDanglingTarget:
		return fmt.Sprintf("edge %s ends at missing node %s", p.EdgeID, p.NodeID)
	case ProblemDuplicateNode:
		return "duplicate node id " + p.NodeID
	default:
		return string(p.Kind)
	}
}

// Validate reports edges whose endpoints are not in the node set and node ids
// used more than once. Connect accepts such edges; callers decide at save or
// execution time what to do with the findings.
func Validate(g models.Graph) []Problem {
	var problems []Problem

	ids := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID]++
		if ids[n.ID] == 2 {
			problems = append(problems, Problem{Kind: ProblemDuplicateNode, NodeID: n.ID})
		}
	}

	for _, e := range g.Edges {
		if ids[e.Source] == 0 {
			problems = append(problems, Problem{Kind: ProblemDanglingSource, NodeID: e.Source, EdgeID: e.ID})
		}

		if ids[e.Target] == 0 {
			problems = append(problems, Problem{Kind: ProblemDanglingTarget, NodeID: e.Target, EdgeID: e.ID})
		}
	}

	return problems
}
