// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package group

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrDecode is returned when a canonical point encoding does not decode
// to a valid curve point.
var ErrDecode = errors.New("group: invalid point encoding")

// PointSize is the canonical compressed encoding size of a Point, in bytes.
const PointSize = bn254.SizeOfG1AffineCompressed

// Point is an element of bn254's G1, the prime-order group every
// commitment and Σ-protocol message in this protocol is built over.
type Point struct {
	p bn254.G1Affine
}

// Identity returns the group identity element.
func Identity() Point {
	var pt Point
	pt.p.X.SetZero()
	pt.p.Y.SetZero()
	return pt
}

// BaseGenerators returns bn254's canonical G1 generator. Pedersen's H is
// fixed to this value; G is derived from it (see pedersen.Setup).
func BaseGenerators() Point {
	_, _, g1, _ := bn254.Generators()
	return Point{p: g1}
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	var r Point
	var pj, oj, rj bn254.G1Jac
	pj.FromAffine(&p.p)
	oj.FromAffine(&o.p)
	rj.Set(&pj).AddAssign(&oj)
	r.p.FromJacobian(&rj)
	return r
}

// Neg returns -p.
func (p Point) Neg() Point {
	var r Point
	r.p.Neg(&p.p)
	return r
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return p.Add(o.Neg())
}

// ScalarMult returns s*p.
func (p Point) ScalarMult(s Scalar) Point {
	var r Point
	r.p.ScalarMultiplication(&p.p, s.BigInt())
	return r
}

// MultiScalarMult returns Σ scalars[i]*points[i]. Used by the protocol
// driver to fold verifier-supplied query coefficients into one commitment
// in a single pass.
func MultiScalarMult(points []Point, scalars []Scalar) (Point, error) {
	if len(points) != len(scalars) {
		return Point{}, errors.New("group: mismatched point/scalar count")
	}
	if len(points) == 0 {
		return Identity(), nil
	}
	affs := make([]bn254.G1Affine, len(points))
	frs := make([]fr.Element, len(scalars))
	for i := range points {
		affs[i] = points[i].p
		frs[i] = scalars[i].e
	}
	var res bn254.G1Affine
	if _, err := res.MultiExp(affs, frs, ecc.MultiExpConfig{}); err != nil {
		return Point{}, err
	}
	return Point{p: res}, nil
}

// Equal reports whether p and o are the same curve point.
func (p Point) Equal(o Point) bool {
	return p.p.Equal(&o.p)
}

// IsIdentity reports whether p is the group identity.
func (p Point) IsIdentity() bool {
	return p.p.IsInfinity()
}

// Bytes returns the canonical compressed encoding of p.
func (p Point) Bytes() [PointSize]byte {
	return p.p.Bytes()
}

// PointFromBytes decodes a canonical compressed encoding, rejecting
// encodings that are not valid curve points, so a commitment received
// over the wire can never bind to an off-curve value.
func PointFromBytes(b []byte) (Point, error) {
	var pt Point
	if _, err := pt.p.SetBytes(b); err != nil {
		return Point{}, ErrDecode
	}
	return pt, nil
}
