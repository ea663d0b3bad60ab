// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparam

import (
	"gonum.org/v1/gonum/mat"

	"github.com/photonred/photonred/xerrors"
)

// MaxSingularValue returns the exact spectral norm σ_max of the n×n complex
// matrix at frequency bin f, computed via gonum's real SVD on the 2n×2n
// realification
//
//	[ Re(S)  -Im(S) ]
//	[ Im(S)   Re(S) ]
//
// whose singular values are exactly those of S, each with multiplicity
// two. This is the standard way to apply a real-only SVD implementation to
// a complex matrix without hand-rolling complex Householder reflections.
func MaxSingularValue(s SMatrix, f int) (float64, error) {
	if f < 0 || f >= s.NFreq() {
		return 0, xerrors.New(xerrors.DataError, "max singular value: frequency bin %d out of range [0,%d)", f, s.NFreq())
	}
	n := s.NPorts()
	if n == 0 {
		return 0, nil
	}

	real2n := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := s[f][i][j]
			real2n.Set(i, j, real(v))
			real2n.Set(i, n+j, -imag(v))
			real2n.Set(n+i, j, imag(v))
			real2n.Set(n+i, n+j, real(v))
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(real2n, mat.SVDNone); !ok {
		return 0, xerrors.New(xerrors.DomainError, "max singular value: SVD factorization failed at bin %d", f)
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0, nil
	}
	return values[0], nil
}

// IsPassive reports whether every frequency bin of s satisfies σ_max(S) <=
// 1+tol, the passivity-preservation property of spec §8.
func IsPassive(s SMatrix, tol float64) (bool, error) {
	for f := 0; f < s.NFreq(); f++ {
		sigma, err := MaxSingularValue(s, f)
		if err != nil {
			return false, err
		}
		if sigma > 1+tol {
			return false, nil
		}
	}
	return true, nil
}
