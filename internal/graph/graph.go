// Package graph holds pure algorithms over the task dependency relation.
//
// A graph is given as an ordered node list plus an adjacency map from each
// node to the nodes it depends on. Functions never mutate their inputs, so a
// caller can check a proposed graph and throw it away without side effects.
package graph

// FindCycle returns one dependency cycle, or nil when the graph is acyclic.
//
// The path starts and ends with the same node in dependency direction, e.g.
// [a b a] for a -> b -> a and [a a] for a self-dependency. Traversal follows
// the order of nodes and of each adjacency list, so the witness is stable for
// a given input. Edges pointing at nodes outside the node list are ignored.
func FindCycle(nodes []string, edges map[string][]string) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n] = true
	}

	color := make(map[string]int, len(nodes))
	parent := make(map[string]string, len(nodes))
	var cycle []string

	var dfs func(u string) bool
	dfs = func(u string) bool {
		color[u] = gray
		for _, v := range edges[u] {
			if !known[v] {
				continue
			}
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back-edge u -> v. Walk parents from u back to v.
				rev := []string{v, u}
				for cur := u; cur != v; {
					cur = parent[cur]
					rev = append(rev, cur)
				}
				cycle = make([]string, 0, len(rev))
				for i := len(rev) - 1; i >= 0; i-- {
					cycle = append(cycle, rev[i])
				}
				return true
			}
		}
		color[u] = black
		return false
	}

	for _, n := range nodes {
		if color[n] != white {
			continue
		}
		if dfs(n) {
			return cycle
		}
	}
	return nil
}

// Dependents returns every node that transitively depends on root, in node
// order. root itself is not included.
func Dependents(nodes []string, edges map[string][]string, root string) []string {
	reverse := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		for _, dep := range edges[n] {
			reverse[dep] = append(reverse[dep], n)
		}
	}

	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range reverse[cur] {
			if !seen[d] {
				seen[d] = true
				queue = append(queue, d)
			}
		}
	}

	var out []string
	for _, n := range nodes {
		if n != root && seen[n] {
			out = append(out, n)
		}
	}
	return out
}
