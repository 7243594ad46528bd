// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sigma

import (
	"io"

	"github.com/luxfi/dpquery/group"
	"github.com/luxfi/dpquery/pedersen"
)

// ProductCommitment is the first flight of the product-Σ protocol.
type ProductCommitment struct {
	Alpha, Beta, Gamma group.Point
}

// ProductResponse is the third flight.
type ProductResponse struct {
	Z1, Z2, Z3, Z4, Z5 group.Scalar
}

// Triple is an opened Pedersen commitment: plaintext, randomness, and the
// public commitment point it corresponds to.
type Triple struct {
	M, R group.Scalar
	C    group.Point
}

// ProductProver proves that three opened triples satisfy m3 = m1*m2,
// for an r3 the caller has already chosen freely (monomial
// tree nodes sample a fresh r3 per interior node; see package monomial).
type ProductProver struct {
	params     pedersen.Params
	t1, t2, t3 Triple

	b1, b2, b3, b4, b5 group.Scalar
}

// NewProductProver starts a proof over three already-opened triples.
func NewProductProver(params pedersen.Params, t1, t2, t3 Triple) *ProductProver {
	return &ProductProver{params: params, t1: t1, t2: t2, t3: t3}
}

// Commit performs move 1.
func (p *ProductProver) Commit(rnd io.Reader) (ProductCommitment, error) {
	blinds := make([]group.Scalar, 5)
	for i := range blinds {
		s, err := group.RandomScalar(rnd)
		if err != nil {
			return ProductCommitment{}, err
		}
		blinds[i] = s
	}
	p.b1, p.b2, p.b3, p.b4, p.b5 = blinds[0], blinds[1], blinds[2], blinds[3], blinds[4]

	alpha := pedersen.CommitWithR(p.params, p.b1, p.b2)
	beta := pedersen.CommitWithR(p.params, p.b3, p.b4)
	// gamma uses the variant basis (c1, H): b3*c1 + b5*H
	gamma := p.t1.C.ScalarMult(p.b3).Add(p.params.H.ScalarMult(p.b5))

	return ProductCommitment{Alpha: alpha, Beta: beta, Gamma: gamma}, nil
}

// Respond performs move 3 given challenge e:
//
//	z1=b1+e*m1, z2=b2+e*r1, z3=b3+e*m2, z4=b4+e*r2, z5=b5+e*(r3-r1*m2)
func (p *ProductProver) Respond(e group.Scalar) ProductResponse {
	z1 := p.b1.Add(e.Mul(p.t1.M))
	z2 := p.b2.Add(e.Mul(p.t1.R))
	z3 := p.b3.Add(e.Mul(p.t2.M))
	z4 := p.b4.Add(e.Mul(p.t2.R))
	shift := p.t3.R.Sub(p.t1.R.Mul(p.t2.M))
	z5 := p.b5.Add(e.Mul(shift))
	return ProductResponse{Z1: z1, Z2: z2, Z3: z3, Z4: z4, Z5: z5}
}

// ProductVerifier holds the verifier's side of a product-Σ proof. It
// never learns m1, m2, m3, r1, r2, r3, only the three public
// commitments.
type ProductVerifier struct {
	params     pedersen.Params
	c1, c2, c3 group.Point
	e          group.Scalar
}

// NewProductVerifier starts verification against the three public
// commitments (c1, c2, c3).
func NewProductVerifier(params pedersen.Params, c1, c2, c3 group.Point) *ProductVerifier {
	return &ProductVerifier{params: params, c1: c1, c2: c2, c3: c3}
}

// Challenge performs move 2.
func (v *ProductVerifier) Challenge(rnd io.Reader) (group.Scalar, error) {
	e, err := group.RandomScalar(rnd)
	if err != nil {
		return group.Scalar{}, err
	}
	v.e = e
	return e, nil
}

// Verify performs move 4. The third equation uses the
// variant Pedersen basis (c1, H).
func (v *ProductVerifier) Verify(commit ProductCommitment, resp ProductResponse) bool {
	lhs1 := pedersen.CommitWithR(v.params, resp.Z1, resp.Z2)
	rhs1 := commit.Alpha.Add(v.c1.ScalarMult(v.e))
	if !lhs1.Equal(rhs1) {
		return false
	}

	lhs2 := pedersen.CommitWithR(v.params, resp.Z3, resp.Z4)
	rhs2 := commit.Beta.Add(v.c2.ScalarMult(v.e))
	if !lhs2.Equal(rhs2) {
		return false
	}

	lhs3 := v.c1.ScalarMult(resp.Z3).Add(v.params.H.ScalarMult(resp.Z5))
	rhs3 := commit.Gamma.Add(v.c3.ScalarMult(v.e))
	return lhs3.Equal(rhs3)
}
