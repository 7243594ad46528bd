// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sigma implements the two Σ-protocols the rest of the protocol
// composes: a bit-proof (a Pedersen commitment opens to 0 or 1, via
// OR-composition) and a product-proof (three commitments satisfy
// m3 = m1*m2). Both are three-move (commit, challenge, response) proofs
// of knowledge; prover and verifier state are modelled as disjoint
// structs with an explicit create-on-commit, transition-on-challenge,
// consume-on-verify lifecycle.
package sigma

import (
	"errors"
	"io"

	"github.com/luxfi/dpquery/group"
	"github.com/luxfi/dpquery/pedersen"
)

// ErrBadBit is returned when a BitProver is constructed with a value
// other than 0 or 1, a programmer error, since the prover always knows
// its own plaintext bit.
var ErrBadBit = errors.New("sigma: bit value must be 0 or 1")

// BitCommitment is the first flight of the bit-Σ protocol: the
// OR-composed pair (c0, c1).
type BitCommitment struct {
	C0, C1 group.Point
}

// BitResponse is the third flight.
type BitResponse struct {
	Z0, Z1 group.Scalar
	E0, E1 group.Scalar
}

// BitProver holds everything the prover needs across the three moves of
// one bit-Σ proof. It is created fresh per proof and discarded once the
// response has been sent.
type BitProver struct {
	params pedersen.Params
	b      uint8
	cb     group.Point
	rb     group.Scalar

	rPrime group.Scalar
	eFalse group.Scalar
	zFalse group.Scalar
}

// NewBitProver starts a proof that cb (already committed with randomness
// rb) opens to bit b.
func NewBitProver(params pedersen.Params, b uint8, cb group.Point, rb group.Scalar) (*BitProver, error) {
	if b != 0 && b != 1 {
		return nil, ErrBadBit
	}
	return &BitProver{params: params, b: b, cb: cb, rb: rb}, nil
}

// Commit performs move 1: simulate the false branch, commit the true one.
func (p *BitProver) Commit(rnd io.Reader) (BitCommitment, error) {
	rPrime, err := group.RandomScalar(rnd)
	if err != nil {
		return BitCommitment{}, err
	}
	eFalse, err := group.RandomScalar(rnd)
	if err != nil {
		return BitCommitment{}, err
	}
	zFalse, err := group.RandomScalar(rnd)
	if err != nil {
		return BitCommitment{}, err
	}
	p.rPrime, p.eFalse, p.zFalse = rPrime, eFalse, zFalse

	cTrue := pedersen.CommitWithR(p.params, group.NewScalarFromUint64(uint64(p.b)), rPrime)

	// false branch message: Cm((1-b)*(e_false+1); z_false) - e_false*C_b
	notB := group.NewScalarFromUint64(uint64(1 - p.b))
	falseValue := notB.Mul(eFalse.Add(group.One()))
	cFalse := pedersen.CommitWithR(p.params, falseValue, zFalse).Sub(p.cb.ScalarMult(eFalse))

	if p.b == 0 {
		return BitCommitment{C0: cTrue, C1: cFalse}, nil
	}
	return BitCommitment{C0: cFalse, C1: cTrue}, nil
}

// Respond performs move 3 given the verifier's challenge e.
func (p *BitProver) Respond(e group.Scalar) BitResponse {
	eTrue := e.Sub(p.eFalse)
	zTrue := p.rPrime.Add(eTrue.Mul(p.rb))

	if p.b == 0 {
		return BitResponse{Z0: zTrue, Z1: p.zFalse, E0: eTrue, E1: p.eFalse}
	}
	return BitResponse{Z0: p.zFalse, Z1: zTrue, E0: p.eFalse, E1: eTrue}
}

// BitVerifier holds the verifier's side of one bit-Σ proof.
type BitVerifier struct {
	params pedersen.Params
	cb     group.Point
	e      group.Scalar
}

// NewBitVerifier starts verification against the public commitment cb.
func NewBitVerifier(params pedersen.Params, cb group.Point) *BitVerifier {
	return &BitVerifier{params: params, cb: cb}
}

// Challenge performs move 2: draw and remember a uniform challenge.
func (v *BitVerifier) Challenge(rnd io.Reader) (group.Scalar, error) {
	e, err := group.RandomScalar(rnd)
	if err != nil {
		return group.Scalar{}, err
	}
	v.e = e
	return e, nil
}

// Verify performs move 4: accept iff e == e0+e1 and both branch
// equations hold.
func (v *BitVerifier) Verify(commit BitCommitment, resp BitResponse) bool {
	if !v.e.Equal(resp.E0.Add(resp.E1)) {
		return false
	}

	lhs0 := pedersen.CommitWithR(v.params, group.Zero(), resp.Z0)
	rhs0 := commit.C0.Add(v.cb.ScalarMult(resp.E0))
	if !lhs0.Equal(rhs0) {
		return false
	}

	lhs1 := pedersen.CommitWithR(v.params, group.One().Add(resp.E1), resp.Z1)
	rhs1 := commit.C1.Add(v.cb.ScalarMult(resp.E1))
	return lhs1.Equal(rhs1)
}
