// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reduce

import (
	"fmt"
	"sort"

	"github.com/photonred/photonred/component"
)

// unionFind is a small disjoint-set structure over component IDs, used to
// compute the connected components of the netlist's topology graph
// (spec §4.5 step 2).
type unionFind struct {
	parent map[component.ID]component.ID
	rank   map[component.ID]int
}

func newUnionFind(ids []component.ID) *unionFind {
	uf := &unionFind{
		parent: make(map[component.ID]component.ID, len(ids)),
		rank:   make(map[component.ID]int, len(ids)),
	}
	for _, id := range ids {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(id component.ID) component.ID {
	root := id
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	// path compression
	for uf.parent[id] != root {
		next := uf.parent[id]
		uf.parent[id] = root
		id = next
	}
	return root
}

func (uf *unionFind) union(a, b component.ID) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// partitions groups ids into connected components of the graph induced by
// edges, each returned in insertion order of ids (stable within a
// partition), and the partitions themselves ordered by idLess applied to
// each partition's smallest original component id (spec §4.5 step 4).
func partitions(ids []component.ID, edges []Edge) [][]component.ID {
	uf := newUnionFind(ids)
	for _, e := range edges {
		uf.union(e.AID, e.BID)
	}

	groups := make(map[component.ID][]component.ID)
	var roots []component.ID
	for _, id := range ids {
		root := uf.find(id)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], id)
	}

	sort.Slice(roots, func(i, j int) bool {
		return idLess(minID(groups[roots[i]]), minID(groups[roots[j]]))
	})

	out := make([][]component.ID, len(roots))
	for i, root := range roots {
		out[i] = groups[root]
	}
	return out
}

func minID(ids []component.ID) component.ID {
	m := ids[0]
	for _, id := range ids[1:] {
		if idLess(id, m) {
			m = id
		}
	}
	return m
}

// idLess totally orders component IDs so "smallest original component-id"
// (spec §4.5 step 4) is well defined even across mixed id types: int
// ids compare numerically, string ids lexicographically, and any other
// pairing (including an int vs a string id, or ids of any other type such
// as int64) falls back to comparing
// their string forms, which is still a total order — just not one with an
// obvious real-world meaning. Netlists that rely on cross-type ordering
// are vanishingly rare in practice and this spec does not define one.
func idLess(a, b component.ID) bool {
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
