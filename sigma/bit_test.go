// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sigma

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/dpquery/group"
	"github.com/luxfi/dpquery/pedersen"
)

func testParams(t *testing.T) pedersen.Params {
	t.Helper()
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 11)
	}
	params, err := pedersen.Setup(seed)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return params
}

func runBitProof(t *testing.T, params pedersen.Params, b uint8) (BitCommitment, BitResponse, *BitVerifier) {
	t.Helper()
	opening, err := pedersen.Commit(params, rand.Reader, group.NewScalarFromUint64(uint64(b)))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	prover, err := NewBitProver(params, b, opening.Commitment, opening.R)
	if err != nil {
		t.Fatalf("NewBitProver: %v", err)
	}
	commit, err := prover.Commit(rand.Reader)
	if err != nil {
		t.Fatalf("Commit move: %v", err)
	}
	verifier := NewBitVerifier(params, opening.Commitment)
	e, err := verifier.Challenge(rand.Reader)
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	resp := prover.Respond(e)
	return commit, resp, verifier
}

// A correctly-run proof of any b in {0,1} always verifies.
func TestBitProofCompleteness(t *testing.T) {
	params := testParams(t)
	for _, b := range []uint8{0, 1} {
		commit, resp, verifier := runBitProof(t, params, b)
		if !verifier.Verify(commit, resp) {
			t.Fatalf("bit proof for b=%d failed to verify", b)
		}
	}
}

func TestNewBitProverRejectsNonBit(t *testing.T) {
	params := testParams(t)
	if _, err := NewBitProver(params, 2, group.Point{}, group.Zero()); err != ErrBadBit {
		t.Fatalf("expected ErrBadBit, got %v", err)
	}
}

// Perturbing any single response field must
// cause verification to fail.
func TestBitProofSoundnessUnderPerturbation(t *testing.T) {
	params := testParams(t)
	one := group.One()

	perturbers := []func(r BitResponse) BitResponse{
		func(r BitResponse) BitResponse { r.Z0 = r.Z0.Add(one); return r },
		func(r BitResponse) BitResponse { r.Z1 = r.Z1.Add(one); return r },
		func(r BitResponse) BitResponse { r.E0 = r.E0.Add(one); return r },
		func(r BitResponse) BitResponse { r.E1 = r.E1.Add(one); return r },
	}

	for _, b := range []uint8{0, 1} {
		for i, perturb := range perturbers {
			commit, resp, verifier := runBitProof(t, params, b)
			tampered := perturb(resp)
			if verifier.Verify(commit, tampered) {
				t.Fatalf("b=%d perturbation %d: tampered response incorrectly verified", b, i)
			}
		}
	}
}

func TestBitProofRejectsWrongCommitment(t *testing.T) {
	params := testParams(t)
	commit, resp, _ := runBitProof(t, params, 1)

	other, err := pedersen.Commit(params, rand.Reader, group.NewScalarFromUint64(1))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	wrongVerifier := NewBitVerifier(params, other.Commitment)
	if _, err := wrongVerifier.Challenge(rand.Reader); err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	if wrongVerifier.Verify(commit, resp) {
		t.Fatal("proof bound to a different commitment incorrectly verified")
	}
}
