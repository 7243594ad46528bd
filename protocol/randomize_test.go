// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package protocol

import (
	"testing"

	"github.com/luxfi/dpquery/group"
)

// signedNoise recovers the small signed integer a group.Scalar represents,
// given the caller knows |value| is far smaller than the field order: one
// of (m, -m) reduces to a small non-negative integer, and that one is the
// magnitude; its sign follows from which side it came from.
func signedNoise(t *testing.T, m group.Scalar, bound int64) int64 {
	t.Helper()
	pos := m.BigInt()
	if pos.IsInt64() && pos.Int64() <= bound {
		return pos.Int64()
	}
	neg := m.Neg().BigInt()
	if neg.IsInt64() && neg.Int64() <= bound {
		return -neg.Int64()
	}
	t.Fatalf("noise plaintext %v is not a small signed integer within bound %d", pos, bound)
	return 0
}

// After N randomize iterations and the N/2 adjustment, the noise
// accumulator opens to an integer in [-N/2, N/2]; over many sessions its
// empirical mean is close to zero.
func TestRandomizeNoiseCentrality(t *testing.T) {
	const sessions = 24
	const dim = 3
	const maxDegree = 2
	db := []uint64{0x3, 0x1, 0x7, 0x0, 0x5, 0x6}
	params := baseParams(uint64(len(db)), dim, maxDegree, 4.0) // large epsilon -> small N, fast test

	var total int64
	var nIters uint64
	for s := 0; s < sessions; s++ {
		pc, vc := newSessionPipe()

		prover, err := NewProver(pc, db, params)
		if err != nil {
			t.Fatalf("NewProver: %v", err)
		}
		verifier, err := NewVerifier(vc, params)
		if err != nil {
			t.Fatalf("NewVerifier: %v", err)
		}

		requireStep(t, "setup", prover.Setup, verifier.Setup)
		requireStep(t, "commit", prover.Commit, verifier.Commit)
		requireStep(t, "randomize", prover.Randomize, verifier.Randomize)

		pc.Close()
		vc.Close()

		nIters = prover.nIters
		half := int64(nIters)/2 + 1
		signed := signedNoise(t, prover.noise.M, half)
		if signed < -half || signed > half {
			t.Fatalf("session %d: noise plaintext %d outside expected range [-%d,%d]", s, signed, half, half)
		}
		total += signed
	}

	mean := float64(total) / float64(sessions)
	bound := float64(nIters)/2 + 1 // generous slack for a small sample
	if mean < -bound || mean > bound {
		t.Fatalf("empirical mean noise %v exceeds generous centrality bound %v over %d sessions", mean, bound, sessions)
	}
}
