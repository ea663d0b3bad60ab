// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package component

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/photonred/photonred/freqgrid"
	"github.com/photonred/photonred/sparam"
)

func Test_component01_defaultNames(tst *testing.T) {

	chk.PrintTitle("component01: default port names are integer indices")

	grid, _ := freqgrid.NewGrid([]float64{1, 2})
	s := sparam.NewSMatrix(2, 2)
	c, err := New("wg1", grid, s, 2, nil)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	chk.IntAssert(c.NPorts(), 2)
	if c.PortName(0) != 0 || c.PortName(1) != 1 {
		tst.Errorf("expected default port names to be their own index")
	}
	idx, err := c.PortIndex(1)
	if err != nil || idx != 1 {
		tst.Errorf("PortIndex(1) = %d, %v; want 1, nil", idx, err)
	}
}

func Test_component02_namedPorts(tst *testing.T) {

	chk.PrintTitle("component02: explicit named ports resolve both ways")

	grid, _ := freqgrid.NewGrid([]float64{1})
	s := sparam.NewSMatrix(1, 2)
	names := map[any]int{"in": 0, "out": 1}
	c, err := New("mzi", grid, s, 2, names)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	idx, err := c.PortIndex("out")
	if err != nil || idx != 1 {
		tst.Errorf("PortIndex(out) = %d, %v; want 1, nil", idx, err)
	}
	if c.PortName(0) != "in" {
		tst.Errorf("PortName(0) = %v; want in", c.PortName(0))
	}
	if _, err := c.PortIndex("missing"); err == nil {
		tst.Errorf("expected UnknownPort for a name that was never bound")
	}
}

func Test_component03_rejectsBadShapes(tst *testing.T) {

	chk.PrintTitle("component03: shape and name-bijection validation")

	grid, _ := freqgrid.NewGrid([]float64{1, 2})
	s := sparam.NewSMatrix(1, 2) // only 1 freq bin, grid has 2
	if _, err := New("bad", grid, s, 2, nil); err == nil {
		tst.Errorf("expected a DataError for a frequency-bin mismatch")
	}

	grid1, _ := freqgrid.NewGrid([]float64{1})
	s2 := sparam.NewSMatrix(1, 2)
	dup := map[any]int{"a": 0, "b": 0}
	if _, err := New("dup", grid1, s2, 2, dup); err == nil {
		tst.Errorf("expected a PortNameConflict for a duplicate index")
	}
}

func Test_component04_setPortName(tst *testing.T) {

	chk.PrintTitle("component04: SetPortName rebinds and guards conflicts")

	grid, _ := freqgrid.NewGrid([]float64{1})
	s := sparam.NewSMatrix(1, 2)
	c, err := New("wg", grid, s, 2, nil)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	if err := c.SetPortName(0, "in"); err != nil {
		tst.Fatalf("SetPortName failed: %v", err)
	}
	if err := c.SetPortName(1, "in"); err == nil {
		tst.Errorf("expected a PortNameConflict when reusing a bound name")
	}
}
