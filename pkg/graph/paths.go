package graph

// ShortestPath finds the shortest dependency chain from start to end by
// breadth-first search over the forward edge relation. The returned path
// includes both endpoints. The second result is false when end is not
// reachable from start.
func (g *Graph) ShortestPath(start, end string) ([]string, bool) {
	if g.nodes[start] == nil || g.nodes[end] == nil {
		return nil, false
	}
	if start == end {
		return []string{start}, true
	}

	parent := map[string]string{start: ""}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.succ[current] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == end {
				return reconstruct(parent, start, end), true
			}
			queue = append(queue, next)
		}
	}

	return nil, false
}

func reconstruct(parent map[string]string, start, end string) []string {
	var reversed []string
	for current := end; current != ""; current = parent[current] {
		reversed = append(reversed, current)
	}
	path := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}

// AllPaths enumerates simple paths from start to end by depth-first search
// in edge-insertion order, bounded by maxDepth hops, stopping after
// maxPaths paths. The second result reports whether enumeration was
// truncated by the maxPaths bound.
func (g *Graph) AllPaths(start, end string, maxPaths, maxDepth int) ([][]string, bool) {
	if g.nodes[start] == nil || g.nodes[end] == nil || maxPaths <= 0 {
		return nil, false
	}

	var paths [][]string
	onPath := map[string]bool{start: true}
	stack := []string{start}
	truncated := false

	var walk func() bool
	walk = func() bool {
		current := stack[len(stack)-1]

		if current == end && len(stack) > 1 {
			if len(paths) >= maxPaths {
				truncated = true
				return false
			}
			path := make([]string, len(stack))
			copy(path, stack)
			paths = append(paths, path)
			return true
		}

		if len(stack)-1 >= maxDepth {
			return true
		}

		for _, next := range g.succ[current] {
			if onPath[next] {
				continue
			}
			onPath[next] = true
			stack = append(stack, next)
			ok := walk()
			stack = stack[:len(stack)-1]
			delete(onPath, next)
			if !ok {
				return false
			}
		}

		return true
	}

	if start == end {
		// Degenerate query: the only simple path is the node itself.
		return [][]string{{start}}, false
	}

	walk()
	return paths, truncated
}
