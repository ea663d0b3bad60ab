// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparam implements the frequency-indexed scattering-matrix
// primitives at the core of the network reduction engine: Innerconnect,
// which contracts two ports of a single network, and Connect, which joins
// a port of one network to a port of another. Both operate on whole
// frequency grids per call; there is no per-bin exported entry point.
package sparam

import (
	"math"
	"math/cmplx"

	"github.com/photonred/photonred/xerrors"
)

// SMatrix is a frequency-indexed scattering matrix, SMatrix[f][i][j] is the
// transmission/reflection from port j into port i at frequency bin f.
type SMatrix [][][]complex128

// NFreq returns the number of frequency bins.
func (s SMatrix) NFreq() int {
	return len(s)
}

// NPorts returns the port count, or 0 for an empty matrix.
func (s SMatrix) NPorts() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// NewSMatrix allocates a zeroed SMatrix of shape (nf, n, n).
func NewSMatrix(nf, n int) SMatrix {
	s := make(SMatrix, nf)
	for f := 0; f < nf; f++ {
		s[f] = make([][]complex128, n)
		for i := 0; i < n; i++ {
			s[f][i] = make([]complex128, n)
		}
	}
	return s
}

// checkShape verifies all three axes are consistent: nf bins, each an n×n
// square block.
func checkShape(s SMatrix) (nf, n int, err error) {
	nf = len(s)
	if nf == 0 {
		return 0, 0, nil
	}
	n = len(s[0])
	for f := 0; f < nf; f++ {
		if len(s[f]) != n {
			return 0, 0, xerrors.New(xerrors.DataError, "S-matrix row count inconsistent at bin %d: got %d, want %d", f, len(s[f]), n)
		}
		for i := 0; i < n; i++ {
			if len(s[f][i]) != n {
				return 0, 0, xerrors.New(xerrors.DataError, "S-matrix is not square at bin %d row %d: got %d cols, want %d", f, i, len(s[f][i]), n)
			}
		}
	}
	return nf, n, nil
}

// nearSingularFloor is the default floor ε below which |D| is nudged away
// from zero in Innerconnect, per spec §4.2.1.
const nearSingularFloor = 1e-30

// Innerconnect contracts ports k and l of the n-port network A, producing
// an (n-2)-port network. It implements the Filipsson/Compton sub-network
// growth identity (spec §4.2.1). nearSingular reports, per frequency bin,
// whether |D| fell below the floor and had to be nudged; it holds one entry
// per frequency bin, all false when no bin was near-singular.
func Innerconnect(a SMatrix, k, l int) (c SMatrix, nearSingular []bool, err error) {
	nf, n, err := checkShape(a)
	if err != nil {
		return nil, nil, err
	}
	if k == l {
		return nil, nil, xerrors.New(xerrors.InvalidPort, "innerconnect: k and l must differ, got k=l=%d", k)
	}
	if k < 0 || k >= n || l < 0 || l >= n {
		return nil, nil, xerrors.New(xerrors.InvalidPort, "innerconnect: port index out of range [0,%d): k=%d, l=%d", n, k, l)
	}

	full := NewSMatrix(nf, n)
	nearSingular = make([]bool, nf)

	for f := 0; f < nf; f++ {
		af := a[f]
		alpha := af[l][l]
		beta := af[k][k]
		gamma := af[l][k] - 1
		delta := af[k][l] - 1
		d := alpha*beta - gamma*delta

		if cmplx.Abs(d) < nearSingularFloor {
			nearSingular[f] = true
			d = nudge(d)
		}

		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				full[f][i][j] = af[i][j] + (af[i][l]*af[k][j]*gamma-
					af[i][l]*af[l][j]*beta-
					af[i][k]*af[k][j]*alpha+
					af[i][k]*af[l][j]*delta)/d
			}
		}
	}

	c = compact(full, k, l)
	return c, nearSingular, nil
}

// nudge pushes a near-zero D away from the origin by ε·sign(D), per
// spec §4.2.1's edge case; sign(0) is taken as +1 so the floor itself is
// still a valid nudge direction.
func nudge(d complex128) complex128 {
	if d == 0 {
		return complex(nearSingularFloor, 0)
	}
	mag := cmplx.Abs(d)
	unit := d / complex(mag, 0)
	return d + unit*complex(nearSingularFloor, 0)
}

// compact deletes rows/columns k and l from every frequency bin of full,
// ascending-index-preserving, yielding an (n-2)-port result.
func compact(full SMatrix, k, l int) SMatrix {
	nf, n, _ := checkShape(full)
	lo, hi := k, l
	if lo > hi {
		lo, hi = hi, lo
	}
	keep := make([]int, 0, n-2)
	for idx := 0; idx < n; idx++ {
		if idx == lo || idx == hi {
			continue
		}
		keep = append(keep, idx)
	}
	out := NewSMatrix(nf, len(keep))
	for f := 0; f < nf; f++ {
		for ii, i := range keep {
			for jj, j := range keep {
				out[f][ii][jj] = full[f][i][j]
			}
		}
	}
	return out
}

// Connect joins port k of network a to port l of network b. When
// selfConnect is true, it calls Innerconnect(a, k, l) directly and ignores
// b (route 2 of spec §4.2.2); otherwise it builds a block-diagonal
// composite and calls Innerconnect on it (route 1). The route is chosen by
// selfConnect alone: passing the same matrix as a and b with selfConnect
// false builds the composite. Both
// routes MUST and do agree to floating-point tolerance, since route 2 is
// definitionally what route 1 reduces to once the composite's off-diagonal
// blocks are zero.
func Connect(a SMatrix, k int, b SMatrix, l int, selfConnect bool) (c SMatrix, nearSingular []bool, err error) {
	nfA, nA, err := checkShape(a)
	if err != nil {
		return nil, nil, err
	}
	if k < 0 || k >= nA {
		return nil, nil, xerrors.New(xerrors.InvalidPort, "connect: port k=%d out of range [0,%d) on A", k, nA)
	}

	if selfConnect {
		return Innerconnect(a, k, l)
	}

	nfB, nB, err := checkShape(b)
	if err != nil {
		return nil, nil, err
	}
	if l < 0 || l >= nB {
		return nil, nil, xerrors.New(xerrors.InvalidPort, "connect: port l=%d out of range [0,%d) on B", l, nB)
	}
	if nfA != nfB {
		return nil, nil, xerrors.New(xerrors.DataError, "connect: frequency bin counts differ: %d vs %d", nfA, nfB)
	}

	nC := nA + nB
	composite := NewSMatrix(nfA, nC)
	for f := 0; f < nfA; f++ {
		for i := 0; i < nA; i++ {
			copy(composite[f][i][:nA], a[f][i])
		}
		for i := 0; i < nB; i++ {
			copy(composite[f][nA+i][nA:], b[f][i])
		}
	}
	return Innerconnect(composite, k, nA+l)
}

// SingularValueMaxBound is a cheap, non-tight upper bound on σ_max(S) for a
// single frequency bin, distinct from the gonum-backed SVD behind
// MaxSingularValue. Nothing in this module calls it; it is exported so
// callers that want a fast approximate check (no SVD) have one.
func SingularValueMaxBound(s [][]complex128) float64 {
	// Frobenius norm bounds the spectral norm from above.
	var sumSq float64
	for _, row := range s {
		for _, v := range row {
			sumSq += real(v)*real(v) + imag(v)*imag(v)
		}
	}
	return math.Sqrt(sumSq)
}
