package analysis

import (
	"fmt"

	"github.com/awork-io/sting/pkg/graph"
)

// ChainResult holds the dependency chains found between two entity names.
// Paths are node-id sequences including both endpoints. Truncated is set
// when path enumeration stopped at the maxPaths budget.
type ChainResult struct {
	Paths     [][]string
	Truncated bool
}

// Chains finds dependency chains between every entity named start and
// every entity named end. Several files may export the same name, so each
// (start, end) pair is searched independently; maxPaths is a running
// budget shared across all pairs.
//
// An unknown name on one side yields an empty result. Only when neither
// name matches anything is that an error.
func Chains(g *graph.Graph, start, end string, shortest bool, maxPaths, maxDepth int) (*ChainResult, error) {
	startIDs := g.NodesByName(start)
	endIDs := g.NodesByName(end)

	if len(startIDs) == 0 && len(endIDs) == 0 {
		return nil, fmt.Errorf("neither %q nor %q matches any entity", start, end)
	}

	result := &ChainResult{}

	for _, from := range startIDs {
		for _, to := range endIDs {
			if shortest {
				if path, ok := g.ShortestPath(from, to); ok {
					result.Paths = append(result.Paths, path)
				}
				continue
			}

			budget := maxPaths - len(result.Paths)
			if budget <= 0 {
				result.Truncated = true
				return result, nil
			}

			paths, truncated := g.AllPaths(from, to, budget, maxDepth)
			result.Paths = append(result.Paths, paths...)
			if truncated {
				result.Truncated = true
				return result, nil
			}
		}
	}

	return result, nil
}
