// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package protocol

import "errors"

// Sentinel error family classifying every way a session can die. Every
// error the driver returns wraps exactly one of these via
// fmt.Errorf("%w", ...), so callers can classify a failure with
// errors.Is regardless of the wrapped detail.
var (
	// ErrTransport covers short reads/writes and frame decode failures.
	ErrTransport = errors.New("protocol: transport error")

	// ErrSchema covers an unexpected flight or a tree whose shape doesn't
	// match what the other side's (dimension, max_degree) implies.
	ErrSchema = errors.New("protocol: schema error")

	// ErrProof covers any Σ-verify returning false, including the
	// Randomize phase's C_final consistency check.
	ErrProof = errors.New("protocol: proof verification failed")

	// ErrSemantic covers a missing monomial id, N = 0, or any other
	// well-formed-but-unsatisfiable request.
	ErrSemantic = errors.New("protocol: semantic error")

	// ErrConfig covers a Params that fails Validate, rejected before any
	// network I/O.
	ErrConfig = errors.New("protocol: invalid configuration")
)
