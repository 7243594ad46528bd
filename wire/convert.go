// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"strconv"

	"github.com/luxfi/dpquery/group"
	"github.com/luxfi/dpquery/monomial"
	"github.com/luxfi/dpquery/sigma"
)

// scalarBytes and pointBytes produce the canonical encodings used throughout
// this file, kept as plain []byte so they marshal as JSON base64 with no
// custom MarshalJSON method required.

func scalarBytes(s group.Scalar) []byte {
	b := s.Bytes()
	return b[:]
}

func pointBytes(p group.Point) []byte {
	b := p.Bytes()
	return b[:]
}

func toScalar(b []byte) (group.Scalar, error) { return group.ScalarFromBytes(b) }
func toPoint(b []byte) (group.Point, error)   { return group.PointFromBytes(b) }

// EncodeScalar and EncodePoint expose the canonical wire encoding for a
// single bare scalar or point, used wherever a flight carries one of
// either outside of a tree or a map (bit-Σ challenge arrays, the
// Randomize phase's final commitment, query answers).
func EncodeScalar(s group.Scalar) []byte { return scalarBytes(s) }
func EncodePoint(p group.Point) []byte   { return pointBytes(p) }

// DecodeScalar and DecodePoint are the inverse of EncodeScalar/EncodePoint.
func DecodeScalar(b []byte) (group.Scalar, error) { return toScalar(b) }
func DecodePoint(b []byte) (group.Point, error)   { return toPoint(b) }

// EncodeBitCommitment converts a sigma.BitCommitment to its wire form.
// cb is the Pedersen commitment to the bit under proof, carried
// alongside the OR-composed pair since the verifier needs it to
// reconstruct a sigma.BitVerifier.
func EncodeBitCommitment(cb group.Point, c sigma.BitCommitment) BitCommitment {
	return BitCommitment{Cb: pointBytes(cb), C0: pointBytes(c.C0), C1: pointBytes(c.C1)}
}

// DecodeBitCommitment converts a wire BitCommitment back, returning the
// bit commitment Cb separately from the OR-composed pair.
func DecodeBitCommitment(w BitCommitment) (cb group.Point, c sigma.BitCommitment, err error) {
	cb, err = toPoint(w.Cb)
	if err != nil {
		return group.Point{}, sigma.BitCommitment{}, err
	}
	c0, err := toPoint(w.C0)
	if err != nil {
		return group.Point{}, sigma.BitCommitment{}, err
	}
	c1, err := toPoint(w.C1)
	if err != nil {
		return group.Point{}, sigma.BitCommitment{}, err
	}
	return cb, sigma.BitCommitment{C0: c0, C1: c1}, nil
}

// EncodeBitResponse converts a sigma.BitResponse to its wire form.
func EncodeBitResponse(r sigma.BitResponse) BitResponse {
	return BitResponse{
		Z0: scalarBytes(r.Z0), Z1: scalarBytes(r.Z1),
		E0: scalarBytes(r.E0), E1: scalarBytes(r.E1),
	}
}

// DecodeBitResponse converts a wire BitResponse back.
func DecodeBitResponse(w BitResponse) (sigma.BitResponse, error) {
	z0, err := toScalar(w.Z0)
	if err != nil {
		return sigma.BitResponse{}, err
	}
	z1, err := toScalar(w.Z1)
	if err != nil {
		return sigma.BitResponse{}, err
	}
	e0, err := toScalar(w.E0)
	if err != nil {
		return sigma.BitResponse{}, err
	}
	e1, err := toScalar(w.E1)
	if err != nil {
		return sigma.BitResponse{}, err
	}
	return sigma.BitResponse{Z0: z0, Z1: z1, E0: e0, E1: e1}, nil
}

// EncodeProductCommitment converts a sigma.ProductCommitment to wire form.
func EncodeProductCommitment(c sigma.ProductCommitment) *ProductSigmaCommitment {
	return &ProductSigmaCommitment{
		Alpha: pointBytes(c.Alpha),
		Beta:  pointBytes(c.Beta),
		Gamma: pointBytes(c.Gamma),
	}
}

// DecodeProductCommitment converts a wire ProductSigmaCommitment back.
func DecodeProductCommitment(w *ProductSigmaCommitment) (sigma.ProductCommitment, error) {
	alpha, err := toPoint(w.Alpha)
	if err != nil {
		return sigma.ProductCommitment{}, err
	}
	beta, err := toPoint(w.Beta)
	if err != nil {
		return sigma.ProductCommitment{}, err
	}
	gamma, err := toPoint(w.Gamma)
	if err != nil {
		return sigma.ProductCommitment{}, err
	}
	return sigma.ProductCommitment{Alpha: alpha, Beta: beta, Gamma: gamma}, nil
}

// EncodeProductResponse converts a sigma.ProductResponse to wire form.
func EncodeProductResponse(r sigma.ProductResponse) *ProductSigmaResponse {
	return &ProductSigmaResponse{
		Z1: scalarBytes(r.Z1), Z2: scalarBytes(r.Z2), Z3: scalarBytes(r.Z3),
		Z4: scalarBytes(r.Z4), Z5: scalarBytes(r.Z5),
	}
}

// DecodeProductResponse converts a wire ProductSigmaResponse back.
func DecodeProductResponse(w *ProductSigmaResponse) (sigma.ProductResponse, error) {
	vals := make([]group.Scalar, 5)
	raw := [][]byte{w.Z1, w.Z2, w.Z3, w.Z4, w.Z5}
	for i, b := range raw {
		s, err := toScalar(b)
		if err != nil {
			return sigma.ProductResponse{}, err
		}
		vals[i] = s
	}
	return sigma.ProductResponse{Z1: vals[0], Z2: vals[1], Z3: vals[2], Z4: vals[3], Z5: vals[4]}, nil
}

// EncodeCommitmentTree converts a monomial.CommitmentNode tree to its wire
// form, walked iteratively since a tree may carry on the order of 7e7
// nodes.
func EncodeCommitmentTree(root *monomial.CommitmentNode) MonomialCommitmentTreeNode {
	type frame struct {
		in  *monomial.CommitmentNode
		out *MonomialCommitmentTreeNode
	}
	var out MonomialCommitmentTreeNode
	stack := []frame{{root, &out}}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if f.in.HasCommitment {
			f.out.Commitment = pointBytes(f.in.Commitment)
		}
		if f.in.HasProduct {
			f.out.ProductSigmaCommitment = EncodeProductCommitment(f.in.Product)
		}
		if len(f.in.Children) > 0 {
			f.out.Children = make([]MonomialCommitmentTreeNode, len(f.in.Children))
			for i, c := range f.in.Children {
				stack = append(stack, frame{c, &f.out.Children[i]})
			}
		}
	}
	return out
}

// DecodeCommitmentTree converts a wire tree back to a monomial.CommitmentNode
// tree, walked iteratively.
func DecodeCommitmentTree(w MonomialCommitmentTreeNode) (*monomial.CommitmentNode, error) {
	type frame struct {
		in  *MonomialCommitmentTreeNode
		out *monomial.CommitmentNode
	}
	out := &monomial.CommitmentNode{}
	stack := []frame{{&w, out}}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if len(f.in.Commitment) > 0 {
			p, err := toPoint(f.in.Commitment)
			if err != nil {
				return nil, err
			}
			f.out.HasCommitment = true
			f.out.Commitment = p
		}
		if f.in.ProductSigmaCommitment != nil {
			pc, err := DecodeProductCommitment(f.in.ProductSigmaCommitment)
			if err != nil {
				return nil, err
			}
			f.out.HasProduct = true
			f.out.Product = pc
		}
		if len(f.in.Children) > 0 {
			f.out.Children = make([]*monomial.CommitmentNode, len(f.in.Children))
			for i := range f.in.Children {
				f.out.Children[i] = &monomial.CommitmentNode{}
				stack = append(stack, frame{&f.in.Children[i], f.out.Children[i]})
			}
		}
	}
	return out, nil
}

// EncodeChallengeTree converts a monomial.ChallengeNode tree to wire form.
func EncodeChallengeTree(root *monomial.ChallengeNode) MonomialChallengeTreeNode {
	type frame struct {
		in  *monomial.ChallengeNode
		out *MonomialChallengeTreeNode
	}
	var out MonomialChallengeTreeNode
	stack := []frame{{root, &out}}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if f.in.HasChallenge {
			f.out.Challenge = scalarBytes(f.in.Challenge)
		}
		if len(f.in.Children) > 0 {
			f.out.Children = make([]MonomialChallengeTreeNode, len(f.in.Children))
			for i, c := range f.in.Children {
				stack = append(stack, frame{c, &f.out.Children[i]})
			}
		}
	}
	return out
}

// DecodeChallengeTree converts a wire tree back to a monomial.ChallengeNode
// tree.
func DecodeChallengeTree(w MonomialChallengeTreeNode) (*monomial.ChallengeNode, error) {
	type frame struct {
		in  *MonomialChallengeTreeNode
		out *monomial.ChallengeNode
	}
	out := &monomial.ChallengeNode{}
	stack := []frame{{&w, out}}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if len(f.in.Challenge) > 0 {
			s, err := toScalar(f.in.Challenge)
			if err != nil {
				return nil, err
			}
			f.out.HasChallenge = true
			f.out.Challenge = s
		}
		if len(f.in.Children) > 0 {
			f.out.Children = make([]*monomial.ChallengeNode, len(f.in.Children))
			for i := range f.in.Children {
				f.out.Children[i] = &monomial.ChallengeNode{}
				stack = append(stack, frame{&f.in.Children[i], f.out.Children[i]})
			}
		}
	}
	return out, nil
}

// EncodeResponseTree converts a monomial.ResponseNode tree to wire form.
func EncodeResponseTree(root *monomial.ResponseNode) MonomialResponseTreeNode {
	type frame struct {
		in  *monomial.ResponseNode
		out *MonomialResponseTreeNode
	}
	var out MonomialResponseTreeNode
	stack := []frame{{root, &out}}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if f.in.HasResponse {
			f.out.Response = EncodeProductResponse(f.in.Response)
		}
		if len(f.in.Children) > 0 {
			f.out.Children = make([]MonomialResponseTreeNode, len(f.in.Children))
			for i, c := range f.in.Children {
				stack = append(stack, frame{c, &f.out.Children[i]})
			}
		}
	}
	return out
}

// DecodeResponseTree converts a wire tree back to a monomial.ResponseNode
// tree.
func DecodeResponseTree(w MonomialResponseTreeNode) (*monomial.ResponseNode, error) {
	type frame struct {
		in  *MonomialResponseTreeNode
		out *monomial.ResponseNode
	}
	out := &monomial.ResponseNode{}
	stack := []frame{{&w, out}}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if f.in.Response != nil {
			r, err := DecodeProductResponse(f.in.Response)
			if err != nil {
				return nil, err
			}
			f.out.HasResponse = true
			f.out.Response = r
		}
		if len(f.in.Children) > 0 {
			f.out.Children = make([]*monomial.ResponseNode, len(f.in.Children))
			for i := range f.in.Children {
				f.out.Children[i] = &monomial.ResponseNode{}
				stack = append(stack, frame{&f.in.Children[i], f.out.Children[i]})
			}
		}
	}
	return out, nil
}

// IDToKey and KeyToID convert a monomial id to and from the decimal
// string JSON requires as a map key.
func IDToKey(id uint64) string { return strconv.FormatUint(id, 10) }

func KeyToID(key string) (uint64, error) { return strconv.ParseUint(key, 10, 64) }

// EncodePointMap converts an id→Point map to its wire (string-keyed,
// byte-encoded) form.
func EncodePointMap(m map[uint64]group.Point) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for id, p := range m {
		out[IDToKey(id)] = pointBytes(p)
	}
	return out
}

// DecodePointMap converts a wire point map back to id→Point.
func DecodePointMap(m map[string][]byte) (map[uint64]group.Point, error) {
	out := make(map[uint64]group.Point, len(m))
	for key, b := range m {
		id, err := KeyToID(key)
		if err != nil {
			return nil, err
		}
		p, err := toPoint(b)
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

// EncodeScalarMap converts an id→Scalar map (query coefficients) to wire
// form.
func EncodeScalarMap(m map[uint64]group.Scalar) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for id, s := range m {
		out[IDToKey(id)] = scalarBytes(s)
	}
	return out
}

// DecodeScalarMap converts a wire scalar map back to id→Scalar.
func DecodeScalarMap(m map[string][]byte) (map[uint64]group.Scalar, error) {
	out := make(map[uint64]group.Scalar, len(m))
	for key, b := range m {
		id, err := KeyToID(key)
		if err != nil {
			return nil, err
		}
		s, err := toScalar(b)
		if err != nil {
			return nil, err
		}
		out[id] = s
	}
	return out, nil
}
