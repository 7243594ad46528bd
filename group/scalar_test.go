// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package group

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestScalarArithmetic(t *testing.T) {
	a := NewScalarFromUint64(5)
	b := NewScalarFromUint64(3)

	if !a.Add(b).Equal(NewScalarFromUint64(8)) {
		t.Fatal("5 + 3 != 8")
	}
	if !a.Sub(b).Equal(NewScalarFromUint64(2)) {
		t.Fatal("5 - 3 != 2")
	}
	if !a.Mul(b).Equal(NewScalarFromUint64(15)) {
		t.Fatal("5 * 3 != 15")
	}
	if !a.Add(a.Neg()).IsZero() {
		t.Fatal("a + (-a) != 0")
	}
}

func TestScalarFromInt64Negative(t *testing.T) {
	s := NewScalarFromInt64(-7)
	if !s.Add(NewScalarFromUint64(7)).IsZero() {
		t.Fatal("-7 + 7 != 0")
	}
}

func TestScalarInverse(t *testing.T) {
	two := NewScalarFromUint64(2)
	if !two.Mul(two.Inverse()).Equal(One()) {
		t.Fatal("2 * 2^-1 != 1")
	}
}

func TestScalarBytesRoundTrip(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	b := s.Bytes()
	got, err := ScalarFromBytes(b[:])
	if err != nil {
		t.Fatalf("ScalarFromBytes: %v", err)
	}
	if !got.Equal(s) {
		t.Fatal("round-trip scalar mismatch")
	}
}

func TestScalarFromBytesRejectsShortInput(t *testing.T) {
	if _, err := ScalarFromBytes([]byte{1, 2, 3}); err != ErrShortRead {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}

func TestRandomScalarNotAllZero(t *testing.T) {
	a, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	b, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	ab := a.Bytes()
	bb := b.Bytes()
	if bytes.Equal(ab[:], bb[:]) {
		t.Fatal("two independent random scalars collided")
	}
}
