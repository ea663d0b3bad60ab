// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparam

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_passivity01_unitaryIsPassive(tst *testing.T) {

	chk.PrintTitle("passivity01: a lossless through-path has sigma_max = 1")

	s := NewSMatrix(1, 2)
	s[0][0][1] = 1
	s[0][1][0] = 1

	sigma, err := MaxSingularValue(s, 0)
	if err != nil {
		tst.Fatalf("MaxSingularValue failed: %v", err)
	}
	chk.Scalar(tst, "sigma_max", 1e-9, sigma, 1)

	ok, err := IsPassive(s, 1e-9)
	if err != nil {
		tst.Fatalf("IsPassive failed: %v", err)
	}
	if !ok {
		tst.Errorf("expected a lossless through path to be passive")
	}
}

func Test_passivity02_gainIsNotPassive(tst *testing.T) {

	chk.PrintTitle("passivity02: a matrix with gain violates passivity")

	s := NewSMatrix(1, 1)
	s[0][0][0] = 2 // |S| = 2 > 1: an amplifier, not a passive component

	ok, err := IsPassive(s, 1e-9)
	if err != nil {
		tst.Fatalf("IsPassive failed: %v", err)
	}
	if ok {
		tst.Errorf("expected a gain element to fail the passivity check")
	}
}

func Test_passivity03_outOfRangeBin(tst *testing.T) {

	chk.PrintTitle("passivity03: an out-of-range frequency bin fails")

	s := NewSMatrix(1, 1)
	if _, err := MaxSingularValue(s, 5); err == nil {
		tst.Errorf("expected an error for an out-of-range frequency bin")
	}
}
