// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package freqgrid

import (
	"gonum.org/v1/gonum/interp"

	"github.com/photonred/photonred/sparam"
	"github.com/photonred/photonred/xerrors"
)

// Interpolate resamples sourceS, defined on sourceF, onto target via
// independent cubic interpolation per (i, j) port pair (spec §4.1). Real
// and imaginary parts are fitted separately with gonum's piecewise-cubic
// fitter, which is the idiomatic equivalent of interpolating a
// complex-valued function component-wise. target must lie within
// [min(sourceF), max(sourceF)] or the call fails with a DomainError.
func Interpolate(target, sourceF Grid, sourceS sparam.SMatrix) (sparam.SMatrix, error) {
	if sourceF.Len() != sourceS.NFreq() {
		return nil, xerrors.New(xerrors.DataError, "interpolate: source frequency count %d does not match source S-matrix bin count %d", sourceF.Len(), sourceS.NFreq())
	}
	for _, tf := range target {
		if tf < sourceF.Min() || tf > sourceF.Max() {
			return nil, xerrors.New(xerrors.DomainError, "interpolate: target frequency %g is outside source range [%g, %g]", tf, sourceF.Min(), sourceF.Max())
		}
	}

	n := sourceS.NPorts()
	xs, reorder := ascendingX(sourceF)

	out := sparam.NewSMatrix(len(target), n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			reVals := make([]float64, len(xs))
			imVals := make([]float64, len(xs))
			for idx, srcIdx := range reorder {
				v := sourceS[srcIdx][i][j]
				reVals[idx] = real(v)
				imVals[idx] = imag(v)
			}

			var reFit, imFit interp.PiecewiseCubic
			if err := reFit.Fit(xs, reVals); err != nil {
				return nil, xerrors.New(xerrors.DataError, "interpolate: cubic fit failed for real(S[%d,%d]): %v", i, j, err)
			}
			if err := imFit.Fit(xs, imVals); err != nil {
				return nil, xerrors.New(xerrors.DataError, "interpolate: cubic fit failed for imag(S[%d,%d]): %v", i, j, err)
			}

			for f, tf := range target {
				out[f][i][j] = complex(reFit.Predict(tf), imFit.Predict(tf))
			}
		}
	}

	return out, nil
}

// ascendingX returns g's values in strictly ascending order together with
// the permutation that produced them, so callers can reorder matching
// frequency-indexed data without re-validating monotonicity: NewGrid
// already guarantees g is monotonic one way or the other.
func ascendingX(g Grid) (xs []float64, order []int) {
	n := g.Len()
	xs = make([]float64, n)
	order = make([]int, n)
	if n < 2 || g[1] > g[0] {
		for i := 0; i < n; i++ {
			xs[i] = g[i]
			order[i] = i
		}
		return xs, order
	}
	for i := 0; i < n; i++ {
		xs[i] = g[n-1-i]
		order[i] = n - 1 - i
	}
	return xs, order
}
