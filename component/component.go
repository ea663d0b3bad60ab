// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package component defines the narrow capability set every node in a
// Network must satisfy (spec §9 design note: "replace [dynamic dispatch]
// with a narrow capability set"), plus the concrete Instance that backs a
// raw component and the FromResult adapter that lets a fully reduced
// Network stand in as a component in a larger one (C7).
package component

import (
	"github.com/photonred/photonred/freqgrid"
	"github.com/photonred/photonred/sparam"
	"github.com/photonred/photonred/xerrors"
)

// ID is a component's process-unique identifier; per spec §3 it may be a
// string or an integer, so callers are free to use whichever key type
// suits their netlist generator.
type ID = any

// Component is the capability set a Network needs from any node: its
// identity, port count, S-matrix on some frequency grid, and the
// name<->index bijection for its ports. A plain raw component (Instance)
// and a reduced sub-Network (via FromResult) both satisfy it identically;
// neither the core reduction engine nor Network cares which.
type Component interface {
	ID() ID
	NPorts() int
	S() sparam.SMatrix
	Grid() freqgrid.Grid
	PortIndex(name any) (int, error)
	PortName(index int) any
}

// Instance is the concrete, mutable Component backing a raw netlist entry.
type Instance struct {
	id          ID
	grid        freqgrid.Grid
	s           sparam.SMatrix
	nameToIndex map[any]int
	indexToName map[int]any
}

// New constructs an Instance, validating that s's shape matches grid and
// nports, and that portNames (if given) is a bijection onto 0..nports-1.
// A nil portNames defaults every port's name to its own integer index.
func New(id ID, grid freqgrid.Grid, s sparam.SMatrix, nports int, portNames map[any]int) (*Instance, error) {
	if s.NFreq() != grid.Len() {
		return nil, xerrors.New(xerrors.DataError, "component %v: S-matrix has %d frequency bins, grid has %d", id, s.NFreq(), grid.Len())
	}
	if s.NFreq() > 0 && s.NPorts() != nports {
		return nil, xerrors.New(xerrors.DataError, "component %v: S-matrix has %d ports, declared nports is %d", id, s.NPorts(), nports)
	}
	if nports <= 0 {
		return nil, xerrors.New(xerrors.DataError, "component %v: nports must be positive, got %d", id, nports)
	}

	nameToIndex := make(map[any]int, nports)
	indexToName := make(map[int]any, nports)
	if portNames == nil {
		for i := 0; i < nports; i++ {
			nameToIndex[i] = i
			indexToName[i] = i
		}
	} else {
		if len(portNames) != nports {
			return nil, xerrors.New(xerrors.DataError, "component %v: port_names has %d entries, nports is %d", id, len(portNames), nports)
		}
		seen := make([]bool, nports)
		for name, idx := range portNames {
			if idx < 0 || idx >= nports {
				return nil, xerrors.New(xerrors.PortNameConflict, "component %v: port name %v maps to out-of-range index %d", id, name, idx)
			}
			if seen[idx] {
				return nil, xerrors.New(xerrors.PortNameConflict, "component %v: index %d is named more than once", id, idx)
			}
			seen[idx] = true
			nameToIndex[name] = idx
			indexToName[idx] = name
		}
	}

	return &Instance{id: id, grid: grid, s: s, nameToIndex: nameToIndex, indexToName: indexToName}, nil
}

func (o *Instance) ID() ID              { return o.id }
func (o *Instance) NPorts() int         { return len(o.indexToName) }
func (o *Instance) S() sparam.SMatrix   { return o.s }
func (o *Instance) Grid() freqgrid.Grid { return o.grid }

// PortIndex resolves a name (or an already-valid integer index) to an
// internal port index.
func (o *Instance) PortIndex(name any) (int, error) {
	if idx, ok := name.(int); ok {
		if idx >= 0 && idx < o.NPorts() {
			if _, named := o.indexToName[idx]; named {
				return idx, nil
			}
		}
	}
	if idx, ok := o.nameToIndex[name]; ok {
		return idx, nil
	}
	return 0, xerrors.New(xerrors.UnknownPort, "component %v: unknown port %v", o.id, name)
}

// PortName returns the external name bound to index, or the index itself
// if it was never given a distinct name.
func (o *Instance) PortName(index int) any {
	if name, ok := o.indexToName[index]; ok {
		return name
	}
	return index
}

// SetPortName rebinds index to a new external name, failing with
// PortNameConflict if the name is already bound to a different index.
func (o *Instance) SetPortName(index int, name any) error {
	if index < 0 || index >= o.NPorts() {
		return xerrors.New(xerrors.InvalidPort, "component %v: port index %d out of range [0,%d)", o.id, index, o.NPorts())
	}
	if existing, ok := o.nameToIndex[name]; ok && existing != index {
		return xerrors.New(xerrors.PortNameConflict, "component %v: name %v is already bound to port %d", o.id, name, existing)
	}
	if old, ok := o.indexToName[index]; ok {
		delete(o.nameToIndex, old)
	}
	o.nameToIndex[name] = index
	o.indexToName[index] = name
	return nil
}
