// Copyright 2024 The Photonred Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reduce

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/photonred/photonred/component"
)

// twoPortThrough builds an ideal, lossless 2-port waveguide's S-matrix
// over nf identical frequency bins.
func twoPortThrough(nf int) [][][]complex128 {
	s := make([][][]complex128, nf)
	for f := 0; f < nf; f++ {
		s[f] = [][]complex128{{0, 1}, {1, 0}}
	}
	return s
}

func Test_scheduler01_seriesWaveguides(tst *testing.T) {

	chk.PrintTitle("scheduler01: two waveguides in series reduce to one through path")

	wg1 := mustComponent(tst, "wg1", twoPortThrough(1))
	wg2 := mustComponent(tst, "wg2", twoPortThrough(1))

	ids := []component.ID{"wg1", "wg2"}
	comps := map[component.ID]component.Component{"wg1": wg1, "wg2": wg2}
	edges := []Edge{{AID: "wg1", APort: 1, BID: "wg2", BPort: 0, Seq: 0}}

	sched := NewScheduler()
	s, names, diags, err := sched.Reduce(ids, comps, edges, MPConfig{})
	if err != nil {
		tst.Fatalf("Reduce failed: %v", err)
	}
	if len(diags) != 0 {
		tst.Errorf("did not expect diagnostics, got %v", diags)
	}
	chk.IntAssert(s.NPorts(), 2)
	chk.IntAssert(len(names), 2)

	// two ideal through-waveguides in series are still an ideal through path
	if cmplx.Abs(s[0][0][1]-1) > 1e-9 || cmplx.Abs(s[0][1][0]-1) > 1e-9 {
		tst.Errorf("expected a unit through path, got S=%v", s[0])
	}
	if cmplx.Abs(s[0][0][0]) > 1e-9 || cmplx.Abs(s[0][1][1]) > 1e-9 {
		tst.Errorf("expected no reflection, got S=%v", s[0])
	}
}

func Test_scheduler02_disjointPartitions(tst *testing.T) {

	chk.PrintTitle("scheduler02: two disjoint pairs reduce independently")

	a := mustComponent(tst, "a", twoPortThrough(1))
	b := mustComponent(tst, "b", twoPortThrough(1))
	c := mustComponent(tst, "c", twoPortThrough(1))
	d := mustComponent(tst, "d", twoPortThrough(1))

	ids := []component.ID{"a", "b", "c", "d"}
	comps := map[component.ID]component.Component{"a": a, "b": b, "c": c, "d": d}
	edges := []Edge{
		{AID: "a", APort: 1, BID: "b", BPort: 0, Seq: 0},
		{AID: "c", APort: 1, BID: "d", BPort: 0, Seq: 1},
	}

	sched := NewScheduler()
	s, names, _, err := sched.Reduce(ids, comps, edges, MPConfig{})
	if err != nil {
		tst.Fatalf("Reduce failed: %v", err)
	}
	chk.IntAssert(s.NPorts(), 4)
	chk.IntAssert(len(names), 4)
}

func Test_scheduler03_selfLoopOnly(tst *testing.T) {

	chk.PrintTitle("scheduler03: a ring formed purely by a self-loop")

	s := make([][][]complex128, 1)
	s[0] = [][]complex128{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, 0.3},
	}
	ring := mustComponent(tst, "ring", s)

	ids := []component.ID{"ring"}
	comps := map[component.ID]component.Component{"ring": ring}
	edges := []Edge{{AID: "ring", APort: 0, BID: "ring", BPort: 1, Seq: 0}}

	sched := NewScheduler()
	out, names, _, err := sched.Reduce(ids, comps, edges, MPConfig{})
	if err != nil {
		tst.Fatalf("Reduce failed: %v", err)
	}
	chk.IntAssert(out.NPorts(), 1)
	chk.IntAssert(len(names), 1)
}

func Test_scheduler04_parallelMatchesSequential(tst *testing.T) {

	chk.PrintTitle("scheduler04: enabling MP does not change the result")

	a := mustComponent(tst, "a", twoPortThrough(1))
	b := mustComponent(tst, "b", twoPortThrough(1))
	c := mustComponent(tst, "c", twoPortThrough(1))
	d := mustComponent(tst, "d", twoPortThrough(1))

	ids := []component.ID{"a", "b", "c", "d"}
	comps := map[component.ID]component.Component{"a": a, "b": b, "c": c, "d": d}
	edges := []Edge{
		{AID: "a", APort: 1, BID: "b", BPort: 0, Seq: 0},
		{AID: "c", APort: 1, BID: "d", BPort: 0, Seq: 1},
	}

	sched := NewScheduler()
	seq, _, _, err := sched.Reduce(ids, comps, edges, MPConfig{})
	if err != nil {
		tst.Fatalf("sequential Reduce failed: %v", err)
	}
	par, _, _, err := sched.Reduce(ids, comps, edges, MPConfig{Enabled: true, ProcCount: 4})
	if err != nil {
		tst.Fatalf("parallel Reduce failed: %v", err)
	}

	if seq.NPorts() != par.NPorts() {
		tst.Fatalf("port count differs between sequential and parallel: %d vs %d", seq.NPorts(), par.NPorts())
	}
	for i := 0; i < seq.NPorts(); i++ {
		for j := 0; j < seq.NPorts(); j++ {
			if cmplx.Abs(seq[0][i][j]-par[0][i][j]) > 1e-9 {
				tst.Errorf("S[%d,%d] differs: sequential=%v parallel=%v", i, j, seq[0][i][j], par[0][i][j])
			}
		}
	}
}

// Test_scheduler05_microRingResonator builds an all-pass ring resonator
// out of a 4-port directional coupler self-looped through an external ring
// waveguide, and checks the through-port transmission against the
// textbook closed form (spec §8 scenario 3's periodic dips):
//
//	T(f) = (t - a*e^{i*theta(f)}) / (1 - t*a*e^{i*theta(f)})
//
// where t is the coupler's self-coupling coefficient, a is the ring's
// round-trip amplitude transmission and theta(f) its round-trip phase.
// The two edges self-loop the same coupler through the ring component,
// exercising the "self-loop formed across a prior fuse" path fuse() must
// resolve via the live registry rather than the original port layout.
func Test_scheduler05_microRingResonator(tst *testing.T) {

	chk.PrintTitle("scheduler05: all-pass ring resonator matches the closed-form transfer function")

	freqs := []float64{0, 1, 2, 3, 4, 5}
	nf := len(freqs)

	t := 0.9
	k := math.Sqrt(1 - t*t)
	a := 0.95

	// coupler ports: 0=bus-in, 1=bus-through, 2=drop-to-ring, 3=add-from-ring
	couplerS := make([][][]complex128, nf)
	ringS := make([][][]complex128, nf)
	for f, theta := range freqs {
		couplerS[f] = [][]complex128{
			{0, complex(t, 0), complex(0, k), 0},
			{complex(t, 0), 0, 0, complex(0, k)},
			{complex(0, k), 0, 0, complex(t, 0)},
			{0, complex(0, k), complex(t, 0), 0},
		}
		x := complex(a, 0) * cmplx.Exp(complex(0, theta))
		ringS[f] = [][]complex128{
			{0, x},
			{x, 0},
		}
	}

	coupler := mustComponent(tst, "coupler", couplerS)
	ring := mustComponent(tst, "ring", ringS)

	ids := []component.ID{"coupler", "ring"}
	comps := map[component.ID]component.Component{"coupler": coupler, "ring": ring}
	edges := []Edge{
		{AID: "coupler", APort: 2, BID: "ring", BPort: 0, Seq: 0},
		{AID: "coupler", APort: 3, BID: "ring", BPort: 1, Seq: 1},
	}

	sched := NewScheduler()
	s, names, _, err := sched.Reduce(ids, comps, edges, MPConfig{})
	if err != nil {
		tst.Fatalf("Reduce failed: %v", err)
	}
	chk.IntAssert(s.NPorts(), 2)
	chk.IntAssert(len(names), 2)

	for f, theta := range freqs {
		x := complex(a, 0) * cmplx.Exp(complex(0, theta))
		want := (complex(t, 0) - x) / (1 - complex(t, 0)*x)
		got := s[f][0][1]
		if cmplx.Abs(got-want) > 1e-9 {
			tst.Errorf("freq bin %d: through transmission = %v, want %v (closed form)", f, got, want)
		}
	}
}
