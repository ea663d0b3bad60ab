// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package network implements the Network type (C4): the mutable netlist a
// caller builds up by adding components and connecting their ports, and
// which Simulate() collapses into a single result.SimulationResult by
// driving the reduce package's scheduler.
package network

import (
	"sync"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/photonred/photonred/component"
	"github.com/photonred/photonred/freqgrid"
	"github.com/photonred/photonred/reduce"
	"github.com/photonred/photonred/result"
	"github.com/photonred/photonred/xerrors"
)

// State is the Network lifecycle state of spec §4.3.
type State int

const (
	Unsimulated State = iota
	Simulating
	Simulated
)

func (s State) String() string {
	switch s {
	case Unsimulated:
		return "Unsimulated"
	case Simulating:
		return "Simulating"
	case Simulated:
		return "Simulated"
	}
	return "Unknown"
}

// usedPort keys a (component id, port index) pair already claimed by a
// Connect call, so spec §4.2's PortAlreadyConnected check is O(1).
type usedPort struct {
	id   component.ID
	port int
}

// Network is a netlist under construction: a set of components, the
// connections between their ports, a shared frequency grid, and the
// cached result of the last Simulate call. Verbose controls whether
// lifecycle transitions are logged via gosl/io, mirroring the teacher's
// ShowMsg convention.
type Network struct {
	mu sync.Mutex

	id      any
	grid    freqgrid.Grid
	Verbose bool

	components map[component.ID]component.Component
	order      []component.ID // insertion order, used as reduce.Reduce's ids
	used       map[usedPort]bool
	edges      []reduce.Edge
	nextSeq    int

	nextAutoID int // monotonic fallback id counter, per spec's design note

	mp reduce.MPConfig

	state  State
	cached *result.SimulationResult
}

// Config collects the construction-time options for a Network.
type Config struct {
	Verbose bool
}

// New creates an empty Network on the given frequency grid.
func New(id any, grid freqgrid.Grid, cfg Config) *Network {
	return &Network{
		id:         id,
		grid:       grid,
		Verbose:    cfg.Verbose,
		components: make(map[component.ID]component.Component),
		used:       make(map[usedPort]bool),
		state:      Unsimulated,
	}
}

// ID returns the Network's own identifier.
func (n *Network) ID() any { return n.id }

// Grid returns the Network's shared frequency grid.
func (n *Network) Grid() freqgrid.Grid { return n.grid }

// State returns the current lifecycle state.
func (n *Network) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// nextID returns a fresh monotonic integer id, used when AddComponent is
// called without an explicit id.
func (n *Network) nextID() component.ID {
	id := n.nextAutoID
	n.nextAutoID++
	return id
}

// AddComponent inserts comp under id (or a freshly minted monotonic id if
// id is nil), interpolating its S-matrix onto the Network's grid first if
// necessary. Adding a component invalidates any cached simulation result,
// per spec §4.3.
func (n *Network) AddComponent(comp component.Component, id component.ID) (component.ID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == Simulating {
		return nil, xerrors.New(xerrors.ConcurrentMutation, "network %v: cannot add component while a simulation is in progress", n.id)
	}

	if id == nil {
		id = n.nextID()
	}
	if _, exists := n.components[id]; exists {
		return nil, xerrors.New(xerrors.DuplicateId, "network %v: component id %v already in use", n.id, id)
	}

	resolved, err := n.onGrid(comp)
	if err != nil {
		return nil, err
	}

	n.components[id] = resolved
	n.order = append(n.order, id)
	n.invalidate()

	if n.Verbose {
		io.Pf("network %v: added component %v (%d ports)\n", n.id, id, resolved.NPorts())
	}
	return id, nil
}

// onGrid returns comp unchanged if it already lives on the Network's
// grid, or a copy interpolated onto it otherwise. A component whose grid
// does not cover the Network's range fails with FrequencyMismatch.
func (n *Network) onGrid(comp component.Component) (component.Component, error) {
	if freqgrid.Equal(comp.Grid(), n.grid) {
		return comp, nil
	}
	if !comp.Grid().Covers(n.grid) {
		return nil, xerrors.New(xerrors.FrequencyMismatch, "component %v: frequency range [%g, %g] does not cover network range [%g, %g]",
			comp.ID(), comp.Grid().Min(), comp.Grid().Max(), n.grid.Min(), n.grid.Max())
	}
	interpolated, err := freqgridInterpolate(n.grid, comp)
	if err != nil {
		return nil, err
	}
	return interpolated, nil
}

// BulkAddComponent adds several components in one call, stopping at the
// first failure; components already added before the failure remain in
// the Network (the caller may inspect it and decide whether to retry).
func (n *Network) BulkAddComponent(comps []component.Component, ids []component.ID) ([]component.ID, error) {
	if ids != nil && len(ids) != len(comps) {
		return nil, xerrors.New(xerrors.DataError, "network %v: bulk add got %d components but %d ids", n.id, len(comps), len(ids))
	}
	out := make([]component.ID, 0, len(comps))
	for i, c := range comps {
		var id component.ID
		if ids != nil {
			id = ids[i]
		}
		got, err := n.AddComponent(c, id)
		if err != nil {
			return out, err
		}
		out = append(out, got)
	}
	return out, nil
}

// Connect records a connection between port p1 of component c1 and port
// p2 of component c2 (c1 may equal c2, producing a self-loop edge that
// reduce resolves via Innerconnect directly). Each port may be used by at
// most one Connect call. Connecting invalidates any cached result.
func (n *Network) Connect(c1 component.ID, p1 any, c2 component.ID, p2 any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == Simulating {
		return xerrors.New(xerrors.ConcurrentMutation, "network %v: cannot connect while a simulation is in progress", n.id)
	}

	compA, ok := n.components[c1]
	if !ok {
		return xerrors.New(xerrors.UnknownComponent, "network %v: unknown component %v", n.id, c1)
	}
	compB, ok := n.components[c2]
	if !ok {
		return xerrors.New(xerrors.UnknownComponent, "network %v: unknown component %v", n.id, c2)
	}

	idxA, err := compA.PortIndex(p1)
	if err != nil {
		return err
	}
	idxB, err := compB.PortIndex(p2)
	if err != nil {
		return err
	}
	if c1 == c2 && idxA == idxB {
		return xerrors.New(xerrors.InvalidPort, "network %v: component %v cannot connect port %v to itself", n.id, c1, p1)
	}

	keyA := usedPort{id: c1, port: idxA}
	keyB := usedPort{id: c2, port: idxB}
	if n.used[keyA] {
		return xerrors.New(xerrors.PortAlreadyConnected, "network %v: port %v of component %v is already connected", n.id, p1, c1)
	}
	if n.used[keyB] {
		return xerrors.New(xerrors.PortAlreadyConnected, "network %v: port %v of component %v is already connected", n.id, p2, c2)
	}

	n.used[keyA] = true
	n.used[keyB] = true
	n.edges = append(n.edges, reduce.Edge{AID: c1, APort: idxA, BID: c2, BPort: idxB, Seq: n.nextSeq})
	n.nextSeq++
	n.invalidate()

	if n.Verbose {
		io.Pf("network %v: connected %v:%v <-> %v:%v\n", n.id, c1, p1, c2, p2)
	}
	return nil
}

// EnableMP turns on reduce-level concurrency. procCount <= 0 means
// auto-detect the available core count.
func (n *Network) EnableMP(procCount int, closePool bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mp = reduce.MPConfig{Enabled: true, ProcCount: procCount, ClosePool: closePool}
}

// DisableMP reverts to fully sequential reduction.
func (n *Network) DisableMP() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mp = reduce.MPConfig{}
}

// invalidate drops any cached simulation result; must be called with mu
// held. Per spec §4.3 any topology mutation after Simulated reverts the
// Network to Unsimulated.
func (n *Network) invalidate() {
	if n.state == Simulated {
		n.state = Unsimulated
	}
	n.cached = nil
}

// Simulate runs the reduction scheduler over the current netlist and
// returns the resulting SimulationResult, caching it until the next
// topology mutation. Calling Simulate while already Simulating fails with
// ConcurrentMutation (spec §4.3); calling it again on an already-Simulated,
// unmutated Network returns the cached result without recomputing.
func (n *Network) Simulate() (*result.SimulationResult, error) {
	n.mu.Lock()
	if n.state == Simulating {
		n.mu.Unlock()
		return nil, xerrors.New(xerrors.ConcurrentMutation, "network %v: simulation already in progress", n.id)
	}
	if n.state == Simulated && n.cached != nil {
		cached := n.cached
		n.mu.Unlock()
		return cached, nil
	}
	if len(n.order) == 0 {
		n.mu.Unlock()
		return nil, xerrors.New(xerrors.DataError, "network %v: cannot simulate an empty network", n.id)
	}

	n.state = Simulating
	ids := append([]component.ID(nil), n.order...)
	comps := make(map[component.ID]component.Component, len(n.components))
	for id, c := range n.components {
		comps[id] = c
	}
	edges := append([]reduce.Edge(nil), n.edges...)
	mp := n.mp
	grid := n.grid
	n.mu.Unlock()

	if n.Verbose {
		io.Pf("network %v: simulating %d component(s), %d edge(s)\n", n.id, len(ids), len(edges))
	}

	sched := reduce.NewScheduler()
	s, portNames, diags, err := sched.Reduce(ids, comps, edges, mp)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != Simulating {
		// a concurrent mutation raced us to invalidate(); surface that instead
		return nil, xerrors.New(xerrors.ConcurrentMutation, "network %v: topology changed during simulation", n.id)
	}
	if err != nil {
		n.state = Unsimulated
		return nil, err
	}

	res, err := result.New(grid, s, portNames, diags)
	if err != nil {
		n.state = Unsimulated
		return nil, err
	}
	n.state = Simulated
	n.cached = res
	return res, nil
}

// freqgridInterpolate is a thin indirection so onGrid reads like a single
// domain operation; chk.Panic guards the impossible case of a shape
// mismatch slipping past onGrid's own Covers check.
func freqgridInterpolate(target freqgrid.Grid, comp component.Component) (component.Component, error) {
	s, err := freqgrid.Interpolate(target, comp.Grid(), comp.S())
	if err != nil {
		return nil, err
	}
	names := make(map[any]int)
	for i := 0; i < comp.NPorts(); i++ {
		names[comp.PortName(i)] = i
	}
	resolved, err := component.New(comp.ID(), target, s, comp.NPorts(), names)
	if err != nil {
		chk.Panic("network: interpolated component %v failed reconstruction: %v", comp.ID(), err)
	}
	return resolved, nil
}
