package depgraph

// DetectCycles runs a DFS with a recursion stack over g and returns every
// elementary cycle encountered, each as a list of ids with the cycle-start
// id repeated at both ends to indicate closure. Complexity O(V+E).
func DetectCycles(g *Graph) [][]string {
	n := len(g.Nodes)
	visited := make([]bool, n)
	onStack := make([]bool, n)
	var path []int
	pathPos := make([]int, n)
	for i := range pathPos {
		pathPos[i] = -1
	}

	var cycles [][]string

	var dfs func(idx int)
	dfs = func(idx int) {
		visited[idx] = true
		onStack[idx] = true
		pathPos[idx] = len(path)
		path = append(path, idx)

		for _, depIdx := range g.Nodes[idx].Dependencies {
			if onStack[depIdx] {
				start := pathPos[depIdx]
				cycleIdxs := append([]int{}, path[start:]...)
				cycleIdxs = append(cycleIdxs, depIdx)
				cycles = append(cycles, idsOf(g, cycleIdxs))
				continue
			}
			if !visited[depIdx] {
				dfs(depIdx)
			}
		}

		path = path[:len(path)-1]
		pathPos[idx] = -1
		onStack[idx] = false
	}

	for i := 0; i < n; i++ {
		if !visited[i] {
			dfs(i)
		}
	}

	return cycles
}

// NodesInAnyCycle returns the set of node indices participating in at
// least one cycle.
func NodesInAnyCycle(g *Graph, cycles [][]string) map[int]bool {
	inCycle := make(map[int]bool)
	for _, cycle := range cycles {
		for _, id := range cycle {
			if idx := g.IndexOf(id); idx >= 0 {
				inCycle[idx] = true
			}
		}
	}
	return inCycle
}

func idsOf(g *Graph, idxs []int) []string {
	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = g.ID(idx)
	}
	return out
}
