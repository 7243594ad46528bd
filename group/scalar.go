// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package group provides the scalar field and group element primitives
// the rest of the protocol is built on: a prime-order group element
// (bn254's G1) and its scalar field, with the operations the Pedersen
// and Σ-protocol layers need (add, negate, scalar-multiply, multi-scalar
// multiply, uniform random sampling, 32-byte canonical encoding).
package group

import (
	"errors"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrShortRead is returned when a canonical encoding is the wrong length.
var ErrShortRead = errors.New("group: short byte slice for scalar")

// ScalarSize is the canonical encoding size of a Scalar, in bytes.
const ScalarSize = fr.Bytes

// Scalar is an element of the prime field backing bn254's scalar field r.
// This is the field used throughout the protocol for bit values, monomial
// values, commitment randomness, and Σ-protocol challenges/responses.
type Scalar struct {
	e fr.Element
}

// Zero returns the additive identity.
func Zero() Scalar {
	var s Scalar
	s.e.SetZero()
	return s
}

// One returns the multiplicative identity.
func One() Scalar {
	var s Scalar
	s.e.SetOne()
	return s
}

// NewScalarFromUint64 lifts a small integer into the field. Used for bit
// values (0/1), honest-mode monomial counts, and the N/2 DP adjustment.
func NewScalarFromUint64(v uint64) Scalar {
	var s Scalar
	s.e.SetUint64(v)
	return s
}

// NewScalarFromInt64 lifts a signed integer into the field; a negative v
// maps to the field element -|v|.
func NewScalarFromInt64(v int64) Scalar {
	if v >= 0 {
		return NewScalarFromUint64(uint64(v))
	}
	return NewScalarFromUint64(uint64(-v)).Neg()
}

// RandomScalar draws a uniform scalar from r. The caller controls the
// source of randomness: pass crypto/rand.Reader for runtime blinding and
// challenges, or an internal/drbg stream for the one deterministic use
// (public-parameter derivation).
func RandomScalar(rnd io.Reader) (Scalar, error) {
	// fr.Element has no reader-parameterized uniform sampler, so draw
	// 2*ScalarSize bytes from the supplied source and reduce mod r; the
	// extra width keeps the reduction's bias negligible.
	buf := make([]byte, 2*ScalarSize)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return Scalar{}, err
	}
	var s Scalar
	s.e.SetBytes(buf)
	return s, nil
}

// Add returns s + o.
func (s Scalar) Add(o Scalar) Scalar {
	var r Scalar
	r.e.Add(&s.e, &o.e)
	return r
}

// Sub returns s - o.
func (s Scalar) Sub(o Scalar) Scalar {
	var r Scalar
	r.e.Sub(&s.e, &o.e)
	return r
}

// Mul returns s * o.
func (s Scalar) Mul(o Scalar) Scalar {
	var r Scalar
	r.e.Mul(&s.e, &o.e)
	return r
}

// Neg returns -s.
func (s Scalar) Neg() Scalar {
	var r Scalar
	r.e.Neg(&s.e)
	return r
}

// IsZero reports whether s is the additive identity.
func (s Scalar) IsZero() bool {
	return s.e.IsZero()
}

// Inverse returns s^-1.
func (s Scalar) Inverse() Scalar {
	var r Scalar
	r.e.Inverse(&s.e)
	return r
}

// Equal reports whether s and o represent the same field element.
func (s Scalar) Equal(o Scalar) bool {
	return s.e.Equal(&o.e)
}

// BigInt returns s as a big.Int in [0, r).
func (s Scalar) BigInt() *big.Int {
	var b big.Int
	s.e.BigInt(&b)
	return &b
}

// Bytes returns the canonical big-endian 32-byte encoding of s.
func (s Scalar) Bytes() [ScalarSize]byte {
	return s.e.Bytes()
}

// ScalarFromBytes decodes a canonical encoding. Values are reduced modulo
// r, matching fr.Element.SetBytes semantics.
func ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != ScalarSize {
		return Scalar{}, ErrShortRead
	}
	var s Scalar
	s.e.SetBytes(b)
	return s, nil
}
