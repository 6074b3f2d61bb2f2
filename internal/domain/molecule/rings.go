package molecule

// Ring detection.  The constraint machinery only needs the sizes of the
// smallest set of smallest rings, not the rings themselves.  The cycle-space
// dimension |E| - |V| + components fixes how many rings that set contains;
// for each chord of a BFS spanning forest we report the shortest cycle
// through that chord, found by a BFS that excludes the chord itself.  For
// fused systems this reproduces the individual ring sizes (e.g. naphthalene
// yields [6 6], not [6 10]).

// SmallestRings returns the ring sizes of the structure, one entry per
// independent cycle, in ascending order of discovery.  Acyclic structures
// return an empty slice.
func (s *Structure) SmallestRings() []int {
	n := len(s.atoms)
	if n == 0 || len(s.bonds) == 0 {
		return nil
	}

	inTree := make([]bool, len(s.bonds))
	visited := make([]bool, n)

	// BFS spanning forest; every bond that does not enter the tree is a chord.
	queue := make([]int, 0, n)
	for root := 0; root < n; root++ {
		if visited[root] {
			continue
		}
		visited[root] = true
		queue = append(queue[:0], root)
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, bi := range s.adjacency[u] {
				v := s.otherEnd(bi, u)
				if !visited[v] {
					visited[v] = true
					inTree[bi] = true
					queue = append(queue, v)
				}
			}
		}
	}

	var rings []int
	for bi, tree := range inTree {
		if tree {
			continue
		}
		if size := s.shortestCycleThrough(bi); size > 0 {
			rings = append(rings, size)
		}
	}
	return rings
}

// shortestCycleThrough returns the length of the shortest cycle containing
// bond bi: one plus the shortest path between its endpoints in the graph
// with bi removed.  Returns 0 if no such path exists (cannot happen for a
// chord of a spanning forest, kept as a guard).
func (s *Structure) shortestCycleThrough(bi int) int {
	src, dst := s.bonds[bi].A, s.bonds[bi].B

	dist := make([]int, len(s.atoms))
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0

	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == dst {
			return dist[u] + 1
		}
		for _, nb := range s.adjacency[u] {
			if nb == bi {
				continue
			}
			v := s.otherEnd(nb, u)
			if dist[v] < 0 {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return 0
}

// otherEnd returns the endpoint of bond bi that is not u.
func (s *Structure) otherEnd(bi, u int) int {
	if s.bonds[bi].A == u {
		return s.bonds[bi].B
	}
	return s.bonds[bi].A
}
