// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package protocol implements the four-phase interactive driver that
// sequences the Pedersen, bit-Σ, product-Σ, and monomial layers into one
// Setup, Commit, Randomize, Query session between a Prover and a
// Verifier sharing a single io.ReadWriter.
package protocol

import "fmt"

// Params is the parameter record an external CLI or launcher hands the
// core before a session starts. Both Prover and Verifier embed
// an identical Params; neither side infers a field the other doesn't
// also have.
type Params struct {
	// DBSize is the number of records the prover holds. Only meaningful
	// to the caller's database loader (an external collaborator); the
	// driver itself only ever sees the db slice it's constructed with.
	DBSize uint64

	// Dimension is the number of bits per record, 1..64.
	Dimension int

	// MaxDegree caps popcount(id) for any monomial the tree proves,
	// 1..Dimension.
	MaxDegree int

	// Sparsity is the number of non-zero coefficients a caller-issued
	// query is expected to carry. The driver does not enforce it against
	// any individual Query call; it exists so Validate can catch an
	// obviously-unsatisfiable configuration before any I/O.
	Sparsity int

	// Epsilon is the privacy budget; must be > 0.
	Epsilon float64

	// Delta is the optional explicit privacy parameter. When nil,
	// dparams.Compute derives it from DBSize.
	Delta *float64

	// SkipDishonest selects the honest-mode Commit baseline (no
	// zero-knowledge offered, used for performance comparison) instead
	// of the default dishonest-safe mode.
	SkipDishonest bool

	// NumQueries is advisory: how many Query rounds the caller intends
	// to run. The driver does not loop on it internally; callers issue
	// Query rounds themselves, since the verifier alone originates query
	// content.
	NumQueries uint
}

// Validate rejects an unusable configuration before any transport I/O;
// every failure wraps ErrConfig.
func (p Params) Validate() error {
	if p.Dimension < 1 || p.Dimension > 64 {
		return fmt.Errorf("%w: dimension must be in 1..64, got %d", ErrConfig, p.Dimension)
	}
	if p.MaxDegree < 1 || p.MaxDegree > p.Dimension {
		return fmt.Errorf("%w: max_degree must be in 1..dimension (%d), got %d", ErrConfig, p.Dimension, p.MaxDegree)
	}
	if p.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be > 0, got %v", ErrConfig, p.Epsilon)
	}
	if p.Delta != nil && (*p.Delta <= 0 || *p.Delta >= 1) {
		return fmt.Errorf("%w: delta must be in (0,1), got %v", ErrConfig, *p.Delta)
	}
	if p.DBSize == 0 {
		return fmt.Errorf("%w: db_size must be > 0", ErrConfig)
	}
	if p.Sparsity < 1 {
		return fmt.Errorf("%w: sparsity must be >= 1, got %d", ErrConfig, p.Sparsity)
	}
	return nil
}
