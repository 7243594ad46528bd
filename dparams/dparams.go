// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dparams computes the differential-privacy noise parameters:
// the number of Randomize iterations N, and,
// when the caller doesn't supply one, the implied δ. Both parties invoke
// this with identical arguments and so always land on an identical N;
// it is plain, side-effect-free arithmetic, never anything drawn from
// either RNG.
package dparams

import "math"

// Result is the outcome of Compute: the randomize-iteration count N and
// the δ used to reach it (either the caller's own or the derived one).
type Result struct {
	N     uint64
	Delta float64
}

// Compute derives N from a database of size n and privacy budget
// (epsilon, delta). When delta is nil, δ = 1/n^(log2 n) is used and N is
// computed from the bit-length formula instead.
func Compute(n uint64, epsilon float64, delta *float64) Result {
	if delta != nil {
		d := *delta
		iters := math.Ceil(8 * math.Log2(2/d) / (epsilon * epsilon))
		return Result{N: uint64(iters), Delta: d}
	}

	logN := math.Log2(float64(n))
	d := 1 / math.Pow(float64(n), logN)
	floorLogN := math.Floor(logN)
	nIters := math.Ceil(8 * (floorLogN*floorLogN + 1) / (epsilon * epsilon))
	return Result{N: uint64(nIters), Delta: d}
}
