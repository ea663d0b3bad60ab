// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reduce

import (
	"fmt"

	"github.com/photonred/photonred/component"
	"github.com/photonred/photonred/result"
	"github.com/photonred/photonred/sparam"
)

// Edge is a resolved netlist connection: port APort of component AID to
// port BPort of component BID, both already turned from external names
// into internal port indices by the Network layer. Seq is the edge's
// insertion order, used as the final tie-break of spec §4.5 step 3(c).
type Edge struct {
	AID   component.ID
	APort int
	BID   component.ID
	BPort int
	Seq   int
}

// portOrigin names a port by the original (unreduced) component it came
// from and that component's own port index; it survives every fusion and
// is what ultimately lets the scheduler recover external port names.
type portOrigin struct {
	CompID component.ID
	Orig   int
}

// liveNode is one entry in the scheduler's working set (spec §4.5 step 3):
// a component, possibly itself the fusion of several original components,
// together with the map from its current port indices back to the
// original ports they descend from.
type liveNode struct {
	label   string
	s       sparam.SMatrix
	origins []portOrigin         // origins[i] = which original port sits at current index i
	members map[component.ID]bool // original component ids folded into this node
}

func newLiveNode(id component.ID, c component.Component) *liveNode {
	n := c.NPorts()
	origins := make([]portOrigin, n)
	for i := 0; i < n; i++ {
		origins[i] = portOrigin{CompID: id, Orig: i}
	}
	return &liveNode{
		label:   labelOf(id),
		s:       c.S(),
		origins: origins,
		members: map[component.ID]bool{id: true},
	}
}

func labelOf(id component.ID) string {
	return idString(id)
}

func idString(id component.ID) string {
	if v, ok := id.(string); ok {
		return v
	}
	return fmt.Sprint(id)
}

// registry resolves an original component id to the liveNode it currently
// lives inside, and a portOrigin to that node's current column index.
type registry struct {
	nodeOf map[component.ID]*liveNode
}

func newRegistry(nodes []*liveNode) *registry {
	r := &registry{nodeOf: make(map[component.ID]*liveNode)}
	for _, n := range nodes {
		for id := range n.members {
			r.nodeOf[id] = n
		}
	}
	return r
}

func (r *registry) indexOf(n *liveNode, o portOrigin) int {
	for i, org := range n.origins {
		if org == o {
			return i
		}
	}
	return -1
}

// fuseResult is what a single contraction (self-loop or cross-node
// connect) produces; it is built without touching the shared registry, so
// several can be computed concurrently before the scheduler commits them.
type fuseResult struct {
	edge    Edge
	node    *liveNode
	diags   []result.Diagnostic
	selfLoop bool
	err     error
}

// fuse performs one contraction: Innerconnect if a and b are the same
// live node (route 2 of spec §4.2.2), Connect otherwise (route 1).
func fuse(e Edge, na, nb *liveNode, aIdx, bIdx int) fuseResult {
	selfLoop := na == nb

	var newS sparam.SMatrix
	var nearSingular []bool
	var err error
	var newOrigins []portOrigin

	if selfLoop {
		newS, nearSingular, err = sparam.Innerconnect(na.s, aIdx, bIdx)
		if err == nil {
			newOrigins = compactOrigins(na.origins, aIdx, bIdx)
		}
	} else {
		newS, nearSingular, err = sparam.Connect(na.s, aIdx, nb.s, bIdx, false)
		if err == nil {
			combined := append(append([]portOrigin{}, na.origins...), nb.origins...)
			newOrigins = compactOrigins(combined, aIdx, len(na.origins)+bIdx)
		}
	}
	if err != nil {
		return fuseResult{edge: e, err: err, selfLoop: selfLoop}
	}

	members := map[component.ID]bool{}
	for id := range na.members {
		members[id] = true
	}
	if !selfLoop {
		for id := range nb.members {
			members[id] = true
		}
	}

	label := na.label
	if !selfLoop {
		label = na.label + "+" + nb.label
	}

	node := &liveNode{label: label, s: newS, origins: newOrigins, members: members}

	var diags []result.Diagnostic
	for f, ns := range nearSingular {
		if ns {
			diags = append(diags, result.Diagnostic{
				Kind:      "NearSingular",
				Component: label,
				FreqBin:   f,
				Message:   "innerconnect: |D| below floor; division nudged away from singularity",
			})
		}
	}

	return fuseResult{edge: e, node: node, diags: diags, selfLoop: selfLoop}
}

// compactOrigins mirrors sparam's ascending-index-preserving port removal,
// applied to the portOrigin bookkeeping slice in lockstep with the S-matrix
// compaction performed inside Innerconnect.
func compactOrigins(origins []portOrigin, k, l int) []portOrigin {
	lo, hi := k, l
	if lo > hi {
		lo, hi = hi, lo
	}
	out := make([]portOrigin, 0, len(origins)-2)
	for i, o := range origins {
		if i == lo || i == hi {
			continue
		}
		out = append(out, o)
	}
	return out
}
