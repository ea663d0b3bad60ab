// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package result holds the outcome of a Network reduction (C6): the
// residual S-matrix, the external port list with the names carried over
// from the original netlist, the frequency grid the residual lives on,
// and any numerical diagnostics raised along the way (NearSingular bins).
package result

import (
	"math"
	"math/cmplx"

	"github.com/photonred/photonred/freqgrid"
	"github.com/photonred/photonred/sparam"
	"github.com/photonred/photonred/xerrors"
)

// Diagnostic is a non-fatal numerical event recorded during reduction.
type Diagnostic struct {
	Kind      string // e.g. "NearSingular"
	Component string // fused-component label at the time of the event
	FreqBin   int
	Message   string
}

// Scale selects how a complex S-parameter trace is reduced to a real
// series for plotting/export, per spec §4.6.
type Scale string

const (
	ScaleAbs   Scale = "abs"
	ScaleAbsSq Scale = "abs_sq"
	ScaleLog   Scale = "log"
)

// SimulationResult is the final, immutable output of Network.Simulate.
type SimulationResult struct {
	grid        freqgrid.Grid
	s           sparam.SMatrix
	portNames   []any
	nameToIndex map[any]int
	diagnostics []Diagnostic
}

// New builds a SimulationResult. portNames[i] is the external name of
// residual port i; it is the caller's (reduce.Scheduler's) responsibility
// to have already computed the deterministic assembly order of §4.5 step 4.
func New(grid freqgrid.Grid, s sparam.SMatrix, portNames []any, diagnostics []Diagnostic) (*SimulationResult, error) {
	if s.NPorts() != len(portNames) {
		return nil, xerrors.New(xerrors.DataError, "result: S-matrix has %d ports but %d port names given", s.NPorts(), len(portNames))
	}
	nameToIndex := make(map[any]int, len(portNames))
	for i, name := range portNames {
		nameToIndex[name] = i
	}
	return &SimulationResult{
		grid:        grid,
		s:           s,
		portNames:   append([]any(nil), portNames...),
		nameToIndex: nameToIndex,
		diagnostics: append([]Diagnostic(nil), diagnostics...),
	}, nil
}

// Grid returns the frequency grid the residual is defined on.
func (r *SimulationResult) Grid() freqgrid.Grid { return r.grid }

// Matrix returns the full residual S-matrix.
func (r *SimulationResult) Matrix() sparam.SMatrix { return r.s }

// ResidualS satisfies component.Reducible, letting this result be embedded
// as a component in a parent Network (C7).
func (r *SimulationResult) ResidualS() sparam.SMatrix { return r.s }

// NExternalPorts satisfies component.Reducible.
func (r *SimulationResult) NExternalPorts() int { return len(r.portNames) }

// ExternalPortName satisfies component.Reducible.
func (r *SimulationResult) ExternalPortName(index int) any { return r.portNames[index] }

// S returns the frequency series of the (i, j) S-parameter.
func (r *SimulationResult) S(i, j int) ([]complex128, error) {
	if i < 0 || i >= r.s.NPorts() || j < 0 || j >= r.s.NPorts() {
		return nil, xerrors.New(xerrors.UnknownPort, "result: port indices (%d,%d) out of range [0,%d)", i, j, r.s.NPorts())
	}
	out := make([]complex128, r.s.NFreq())
	for f := 0; f < r.s.NFreq(); f++ {
		out[f] = r.s[f][i][j]
	}
	return out, nil
}

// PortIndex resolves an external port name to its residual index.
func (r *SimulationResult) PortIndex(name any) (int, error) {
	if idx, ok := r.nameToIndex[name]; ok {
		return idx, nil
	}
	return 0, xerrors.New(xerrors.UnknownPort, "result: unknown external port %v", name)
}

// Diagnostics returns the numerical diagnostics accumulated while
// reducing, such as NearSingular bins (spec §7).
func (r *SimulationResult) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), r.diagnostics...)
}

// IsPassive reports whether every frequency bin of the residual satisfies
// the passivity-preservation property of spec §8 (σ_max(S) <= 1+tol).
func (r *SimulationResult) IsPassive(tol float64) (bool, error) {
	return sparam.IsPassive(r.s, tol)
}

// Data scales the (i, j) S-parameter trace for plotting/export, matching
// the three scales of spec §4.6: abs, abs_sq and log = 10·log10(abs_sq).
// Rendering itself remains an external collaborator (spec §1's Out of
// scope); this method only produces the scaled numeric series.
func (r *SimulationResult) Data(i, j int, scale Scale) ([]float64, error) {
	trace, err := r.S(i, j)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(trace))
	for f, v := range trace {
		switch scale {
		case ScaleAbs:
			out[f] = cmplx.Abs(v)
		case ScaleAbsSq:
			a := cmplx.Abs(v)
			out[f] = a * a
		case ScaleLog:
			a := cmplx.Abs(v)
			out[f] = 10 * math.Log10(a*a)
		default:
			return nil, xerrors.New(xerrors.DataError, "result: unknown scale %q", scale)
		}
	}
	return out, nil
}
