// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pedersen implements the additively-homomorphic commitment
// layer every other layer of the protocol is built on:
// C(m;r) = m·G + r·H over bn254's G1, with (G, H) derived per session
// from a shared seed rather than fixed once.
package pedersen

import (
	"io"

	"github.com/luxfi/dpquery/group"
	"github.com/luxfi/dpquery/internal/drbg"
)

// seedLabel domain-separates the generator-derivation sub-stream from any
// other deterministic-seed consumer the protocol might add later.
const seedLabel = "pedersen-G"

// Params holds the two independent generators (G, H) of the group. H is
// the curve's canonical base point; G = ρ·H for a ρ drawn from the
// shared, seeded deterministic stream and never retained by either party
// so by construction neither prover nor verifier learns log_H(G).
type Params struct {
	G, H group.Point
}

// Setup derives (G, H) from a 32-byte seed shared by both parties in the
// SetupMessage flight. Called identically on both sides, it produces
// bit-identical Params.
func Setup(seed []byte) (Params, error) {
	stream, err := drbg.NewStream(seed, seedLabel)
	if err != nil {
		return Params{}, err
	}

	rho, err := group.RandomScalar(stream)
	if err != nil {
		return Params{}, err
	}

	h := group.BaseGenerators()
	return Params{
		G: h.ScalarMult(rho),
		H: h,
	}, nil
}

// Opening is a commitment together with the plaintext and randomness
// that open it. Only the prover ever holds one; the verifier holds the
// Commitment (the public Point) alone.
type Opening struct {
	M, R       group.Scalar
	Commitment group.Point
}

// Commit draws a uniform randomness r from rnd and returns C = m·G + r·H
// together with r.
func Commit(params Params, rnd io.Reader, m group.Scalar) (Opening, error) {
	r, err := group.RandomScalar(rnd)
	if err != nil {
		return Opening{}, err
	}
	return Opening{M: m, R: r, Commitment: CommitWithR(params, m, r)}, nil
}

// CommitWithR computes C = m·G + r·H for an already-chosen randomness r.
// Used wherever the caller already holds r (e.g. a depth-≥2 monomial
// tree node's separately drawn randomness, the OR-composition's
// simulated branch, or the fixed commitment Cm(1;0)).
func CommitWithR(params Params, m, r group.Scalar) group.Point {
	return params.G.ScalarMult(m).Add(params.H.ScalarMult(r))
}

// Verify reports whether C == m·G + r·H.
func Verify(params Params, c group.Point, m, r group.Scalar) bool {
	return CommitWithR(params, m, r).Equal(c)
}

// Combine folds a list of (coefficient, commitment) pairs into one
// commitment via the homomorphism α·C1 + β·C2 + ..., used by the Query
// phase to apply verifier coefficients. Monomial aggregation does not use
// it; it sums per-record commitments with group.Point.Add.
func Combine(coeffs []group.Scalar, commitments []group.Point) (group.Point, error) {
	return group.MultiScalarMult(commitments, coeffs)
}

// CombineOpenings folds a matching list of Openings the same way Combine
// folds public commitments, additionally tracking the opened plaintext
// and randomness; only ever called prover-side.
func CombineOpenings(coeffs []group.Scalar, openings []Opening) (Opening, error) {
	m := group.Zero()
	r := group.Zero()
	points := make([]group.Point, len(openings))
	for i, o := range openings {
		m = m.Add(coeffs[i].Mul(o.M))
		r = r.Add(coeffs[i].Mul(o.R))
		points[i] = o.Commitment
	}
	c, err := group.MultiScalarMult(points, coeffs)
	if err != nil {
		return Opening{}, err
	}
	return Opening{M: m, R: r, Commitment: c}, nil
}
