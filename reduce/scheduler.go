// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reduce implements the reduction scheduler (C5): it turns a
// (components, edges) netlist graph into a single residual S-matrix by
// repeatedly applying the sparam primitives, partitioning disconnected
// topology for inter-partition parallelism and batching independent
// edges within a partition for intra-partition parallelism (spec §5).
package reduce

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/photonred/photonred/component"
	"github.com/photonred/photonred/result"
	"github.com/photonred/photonred/sparam"
	"github.com/photonred/photonred/xerrors"
)

// MPConfig mirrors the mp_config keys of spec §4.4.
type MPConfig struct {
	Enabled   bool
	ProcCount int // 0 = auto-detect core count
	ClosePool bool
}

func (mp MPConfig) workers() int {
	if !mp.Enabled {
		return 1
	}
	if mp.ProcCount <= 0 {
		return runtime.NumCPU()
	}
	return mp.ProcCount
}

// Scheduler drives the reduction of a netlist graph.
type Scheduler struct{}

// NewScheduler returns a ready-to-use Scheduler; it holds no state of its
// own, since the live working set belongs to a single Reduce call.
func NewScheduler() *Scheduler { return &Scheduler{} }

// Reduce collapses the netlist described by ids/components/edges into a
// single residual S-matrix, returning the residual together with the
// external port name for each of its ports (in residual column order) and
// any numerical diagnostics accumulated along the way. ids gives the
// Network's component insertion order, which both the trivial-partition
// case and the final port-name lookup rely on being stable.
func (s *Scheduler) Reduce(ids []component.ID, components map[component.ID]component.Component, edges []Edge, mp MPConfig) (sparam.SMatrix, []any, []result.Diagnostic, error) {
	parts := partitions(ids, edges)

	type partResult struct {
		node  *liveNode
		diags []result.Diagnostic
		err   error
	}
	out := make([]partResult, len(parts))

	limit := mp.workers()
	if mp.Enabled && len(parts) > 1 && limit > 1 {
		g := new(errgroup.Group)
		g.SetLimit(limit)
		for i, part := range parts {
			i, part := i, part
			g.Go(func() error {
				edgesInPart := edgesTouching(part, edges)
				node, diags, err := reducePartition(part, components, edgesInPart, mp)
				out[i] = partResult{node: node, diags: diags, err: err}
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, part := range parts {
			edgesInPart := edgesTouching(part, edges)
			node, diags, err := reducePartition(part, components, edgesInPart, mp)
			out[i] = partResult{node: node, diags: diags, err: err}
		}
	}

	var allDiags []result.Diagnostic
	var blocks []*liveNode
	for _, pr := range out {
		if pr.err != nil {
			return nil, nil, nil, pr.err
		}
		blocks = append(blocks, pr.node)
		allDiags = append(allDiags, pr.diags...)
	}

	finalS, names, err := assembleBlockDiagonal(blocks, components)
	if err != nil {
		return nil, nil, nil, err
	}

	sort.Slice(allDiags, func(i, j int) bool {
		if allDiags[i].Component != allDiags[j].Component {
			return allDiags[i].Component < allDiags[j].Component
		}
		return allDiags[i].FreqBin < allDiags[j].FreqBin
	})

	return finalS, names, allDiags, nil
}

// edgesTouching returns, in original insertion order, the edges whose
// endpoints both lie in part (by construction of partitions, an edge
// either has both endpoints in part or neither).
func edgesTouching(part []component.ID, edges []Edge) []Edge {
	members := make(map[component.ID]bool, len(part))
	for _, id := range part {
		members[id] = true
	}
	var out []Edge
	for _, e := range edges {
		if members[e.AID] {
			out = append(out, e)
		}
	}
	return out
}

// reducePartition runs spec §4.5 step 3 to exhaustion on one connected
// component of the topology graph, returning its single residual liveNode.
func reducePartition(part []component.ID, components map[component.ID]component.Component, edges []Edge, mp MPConfig) (*liveNode, []result.Diagnostic, error) {
	nodes := make([]*liveNode, len(part))
	for i, id := range part {
		nodes[i] = newLiveNode(id, components[id])
	}
	reg := newRegistry(nodes)

	var diags []result.Diagnostic
	pending := edges

	for len(pending) > 0 {
		round, rest := selectRound(pending, reg)
		results, err := executeRound(round, reg, mp)
		if err != nil {
			return nil, diags, err
		}
		for _, fr := range results {
			for id := range fr.node.members {
				reg.nodeOf[id] = fr.node
			}
			diags = append(diags, fr.diags...)
		}
		pending = rest
	}

	final := reg.nodeOf[part[0]]
	return final, diags, nil
}

// growth is the size of the composite matrix a contraction would need to
// build: 0 for a self-loop (pure Innerconnect, no growth), nA+nB otherwise.
func growth(e Edge, reg *registry) (selfLoop bool, size int) {
	na := reg.nodeOf[e.AID]
	nb := reg.nodeOf[e.BID]
	if na == nb {
		return true, 0
	}
	return false, len(na.origins) + len(nb.origins)
}

// selectRound picks, from pending, a maximal set of edges whose current
// live-node endpoints are pairwise disjoint, in the priority order of
// spec §4.5 step 3(a)-(c): self-loops first, then smallest combined port
// count, then insertion order. The remaining edges are returned as rest.
func selectRound(pending []Edge, reg *registry) (round, rest []Edge) {
	type cand struct {
		edge     Edge
		selfLoop bool
		size     int
	}
	cands := make([]cand, len(pending))
	for i, e := range pending {
		sl, sz := growth(e, reg)
		cands[i] = cand{edge: e, selfLoop: sl, size: sz}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].selfLoop != cands[j].selfLoop {
			return cands[i].selfLoop
		}
		if cands[i].size != cands[j].size {
			return cands[i].size < cands[j].size
		}
		return cands[i].edge.Seq < cands[j].edge.Seq
	})

	used := make(map[*liveNode]bool)
	taken := make(map[int]bool) // index into cands
	for i, c := range cands {
		na := reg.nodeOf[c.edge.AID]
		nb := reg.nodeOf[c.edge.BID]
		if used[na] || (na != nb && used[nb]) {
			continue
		}
		used[na] = true
		used[nb] = true
		taken[i] = true
		round = append(round, c.edge)
	}
	for i, c := range cands {
		if !taken[i] {
			rest = append(rest, c.edge)
		}
	}
	return round, rest
}

// executeRound contracts a batch of pairwise-independent edges, in
// parallel when mp permits, and commits nothing to the shared registry
// itself — the caller applies the returned fuseResults once the whole
// round has completed, per spec §5's "scheduler is the sole owner of the
// live set".
func executeRound(round []Edge, reg *registry, mp MPConfig) ([]fuseResult, error) {
	resolve := func(e Edge) (*liveNode, *liveNode, int, int) {
		na := reg.nodeOf[e.AID]
		nb := reg.nodeOf[e.BID]
		aIdx := reg.indexOf(na, portOrigin{CompID: e.AID, Orig: e.APort})
		bIdx := reg.indexOf(nb, portOrigin{CompID: e.BID, Orig: e.BPort})
		return na, nb, aIdx, bIdx
	}

	results := make([]fuseResult, len(round))
	limit := mp.workers()

	run := func(i int) {
		e := round[i]
		na, nb, aIdx, bIdx := resolve(e)
		results[i] = safeFuse(e, na, nb, aIdx, bIdx)
	}

	if mp.Enabled && len(round) > 1 && limit > 1 {
		g := new(errgroup.Group)
		g.SetLimit(limit)
		for i := range round {
			i := i
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range round {
			run(i)
		}
	}

	for i, fr := range results {
		if fr.err == nil {
			continue
		}
		// one serial retry on worker failure, per spec §7's WorkerFailure policy
		if xerrors.Is(fr.err, xerrors.WorkerFailure) {
			na, nb, aIdx, bIdx := resolve(round[i])
			retried := safeFuse(round[i], na, nb, aIdx, bIdx)
			if retried.err == nil {
				results[i] = retried
				continue
			}
		}
		return nil, fr.err
	}
	return results, nil
}

// safeFuse recovers a panicking contraction into a WorkerFailure error, so
// one bad worker cannot take down the whole reduction without at least a
// chance at the serial retry executeRound performs.
func safeFuse(e Edge, na, nb *liveNode, aIdx, bIdx int) (fr fuseResult) {
	defer func() {
		if r := recover(); r != nil {
			fr = fuseResult{edge: e, err: xerrors.New(xerrors.WorkerFailure, "panic during contraction of %v/%v: %v", e.AID, e.BID, r)}
		}
	}()
	return fuse(e, na, nb, aIdx, bIdx)
}

// assembleBlockDiagonal stacks each partition's residual into the final
// block-diagonal S-matrix and resolves each surviving port's external
// name (spec §4.5 step 4).
func assembleBlockDiagonal(blocks []*liveNode, components map[component.ID]component.Component) (sparam.SMatrix, []any, error) {
	if len(blocks) == 0 {
		return sparam.SMatrix{}, nil, nil
	}

	nf := blocks[0].s.NFreq()
	total := 0
	for _, b := range blocks {
		total += len(b.origins)
	}

	out := sparam.NewSMatrix(nf, total)
	names := make([]any, 0, total)
	offset := 0
	for _, b := range blocks {
		n := len(b.origins)
		for f := 0; f < nf; f++ {
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					out[f][offset+i][offset+j] = b.s[f][i][j]
				}
			}
		}
		for _, o := range b.origins {
			c, ok := components[o.CompID]
			if !ok {
				return nil, nil, xerrors.New(xerrors.UnknownComponent, "assemble: component %v referenced by surviving port not found", o.CompID)
			}
			names = append(names, c.PortName(o.Orig))
		}
		offset += n
	}
	return out, names, nil
}
