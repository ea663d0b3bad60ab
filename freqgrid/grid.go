// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package freqgrid holds the canonical frequency axis shared by a
// top-level Network and the cubic interpolation that brings a component's
// own dataset onto it.
package freqgrid

import (
	"github.com/photonred/photonred/xerrors"
)

// Grid is an ordered, strictly-monotonic sequence of frequencies in Hz.
type Grid []float64

// NewGrid validates f is non-empty and strictly monotonic (increasing or
// decreasing) and returns it as a Grid. Duplicate or unordered values fail
// with a DataError, per spec §4.1.
func NewGrid(f []float64) (Grid, error) {
	if len(f) == 0 {
		return nil, xerrors.New(xerrors.DataError, "frequency grid must not be empty")
	}
	if len(f) == 1 {
		return Grid(f), nil
	}
	ascending := f[1] > f[0]
	for i := 1; i < len(f); i++ {
		if ascending && f[i] <= f[i-1] {
			return nil, xerrors.New(xerrors.DataError, "frequency grid is not strictly increasing at index %d: %g <= %g", i, f[i], f[i-1])
		}
		if !ascending && f[i] >= f[i-1] {
			return nil, xerrors.New(xerrors.DataError, "frequency grid is not strictly decreasing at index %d: %g >= %g", i, f[i], f[i-1])
		}
	}
	return Grid(f), nil
}

// Len returns the number of frequency bins.
func (g Grid) Len() int { return len(g) }

// Min and Max return the endpoints of the grid's covered range, regardless
// of whether the grid is stored ascending or descending.
func (g Grid) Min() float64 {
	if g[0] < g[len(g)-1] {
		return g[0]
	}
	return g[len(g)-1]
}

func (g Grid) Max() float64 {
	if g[0] > g[len(g)-1] {
		return g[0]
	}
	return g[len(g)-1]
}

// Covers reports whether other's range lies within g's range, inclusive.
// Used by C7 to decide whether a child Network's grid can serve a parent.
func (g Grid) Covers(other Grid) bool {
	return g.Min() <= other.Min() && g.Max() >= other.Max()
}

// Equal reports whether two grids have the same length and bin-for-bin
// values (used to skip interpolation when a component is already on the
// Network's grid).
func Equal(a, b Grid) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
