// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package monomial

import (
	"github.com/luxfi/dpquery/group"
	"github.com/luxfi/dpquery/pedersen"
	"github.com/luxfi/dpquery/sigma"
)

// CommitmentNode is the prover's move-1 message for one tree node: its
// public commitment (absent at the root), plus the product-Σ commitment
// for nodes with |S|≥2.
type CommitmentNode struct {
	HasCommitment bool
	Commitment    group.Point

	HasProduct bool
	Product    sigma.ProductCommitment

	Children []*CommitmentNode
}

// Commit produces the wire-facing commitment tree for root, performing
// move 1 of every interior node's product-Σ proof along the way (this
// populates each ProverNode.Prod's internal blinds, which Respond later
// consumes). Walked iteratively in lockstep with root's own shape.
func (root *ProverNode) Commit(rnd randSource) (*CommitmentNode, error) {
	out := &CommitmentNode{}
	type frame struct {
		p   *ProverNode
		out *CommitmentNode
	}
	stack := []frame{{root, out}}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if f.p.Depth > 0 {
			f.out.HasCommitment = true
			f.out.Commitment = f.p.Opening.C
		}
		if f.p.Prod != nil {
			pc, err := f.p.Prod.Commit(rnd)
			if err != nil {
				return nil, err
			}
			f.out.HasProduct = true
			f.out.Product = pc
		}

		if len(f.p.Children) > 0 {
			f.out.Children = make([]*CommitmentNode, len(f.p.Children))
			for i, c := range f.p.Children {
				f.out.Children[i] = &CommitmentNode{}
				stack = append(stack, frame{c, f.out.Children[i]})
			}
		}
	}
	return out, nil
}

// ChallengeNode is the verifier's move-2 message mirroring CommitmentNode:
// one challenge scalar per |S|≥2 node.
type ChallengeNode struct {
	HasChallenge bool
	Challenge    group.Scalar
	Children     []*ChallengeNode
}

// VerifierNode is the verifier's private bookkeeping for one tree node:
// the public commitment it received plus, for |S|≥2 nodes, the live
// ProductVerifier that Respond's eventual answer will be checked against.
type VerifierNode struct {
	ID         uint64
	Commitment group.Point
	Verifier   *sigma.ProductVerifier
	Product    sigma.ProductCommitment
	Challenge  group.Scalar

	Children []*VerifierNode
}

// Flatten collects every non-root node's (id, commitment) pair into a
// map, the verifier-side counterpart of ProverNode.Flatten, consumed by
// the protocol driver to build its per-record id→commitment view before
// aggregation.
func (root *VerifierNode) Flatten() map[uint64]group.Point {
	out := make(map[uint64]group.Point)
	stack := []*VerifierNode{root}
	for len(stack) > 0 {
		n := len(stack) - 1
		node := stack[n]
		stack = stack[:n]
		if node.ID != 0 {
			out[node.ID] = node.Commitment
		}
		stack = append(stack, node.Children...)
	}
	return out
}

// BuildChallengeTree walks a received CommitmentNode tree against the
// shape implied by (dimension, maxDegree) and the record's public bit
// commitments, cross-checking every depth-1 node's commitment against the
// already-known bit commitment (depth-1 nodes reuse it verbatim, so the
// verifier never has to trust a second, independent value for the same
// point), constructing a ProductVerifier for every
// |S|≥2 node, and drawing its challenge. Returns both the private
// verifier tree and the ChallengeNode tree to send back over the wire.
func BuildChallengeTree(params pedersen.Params, rnd randSource, commit *CommitmentNode, bitCommits []group.Point, maxDegree int) (*VerifierNode, *ChallengeNode, error) {
	dimension := len(bitCommits)
	vRoot := &VerifierNode{}
	cRoot := &ChallengeNode{}

	type frame struct {
		commit *CommitmentNode
		vOut   *VerifierNode
		cOut   *ChallengeNode
		parent *VerifierNode
		sf     shapeFrame
	}
	stack := []frame{{commit, vRoot, cRoot, nil, shapeFrame{mask: 0, depth: 0, latestIndex: -1}}}

	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if f.sf.depth > 0 {
			if !f.commit.HasCommitment {
				return nil, nil, ErrShapeMismatch
			}
			f.vOut.ID = f.sf.mask
			f.vOut.Commitment = f.commit.Commitment
			if f.sf.depth == 1 {
				bitIdx := f.sf.latestIndex
				if bitIdx < 0 || bitIdx >= dimension || !f.commit.Commitment.Equal(bitCommits[bitIdx]) {
					return nil, nil, ErrShapeMismatch
				}
			}
		}
		if f.sf.depth >= 2 {
			if !f.commit.HasProduct {
				return nil, nil, ErrShapeMismatch
			}
			bitIdx := f.sf.latestIndex
			if bitIdx < 0 || bitIdx >= dimension {
				return nil, nil, ErrShapeMismatch
			}
			v := sigma.NewProductVerifier(params, f.parent.Commitment, bitCommits[bitIdx], f.vOut.Commitment)
			e, err := v.Challenge(rnd)
			if err != nil {
				return nil, nil, err
			}
			f.vOut.Verifier = v
			f.vOut.Product = f.commit.Product
			f.vOut.Challenge = e
			f.cOut.HasChallenge = true
			f.cOut.Challenge = e
		}

		expected := childFrames(f.sf, dimension, maxDegree)
		if len(expected) != len(f.commit.Children) {
			return nil, nil, ErrShapeMismatch
		}
		if len(expected) > 0 {
			f.vOut.Children = make([]*VerifierNode, len(expected))
			f.cOut.Children = make([]*ChallengeNode, len(expected))
			for i, sf := range expected {
				f.vOut.Children[i] = &VerifierNode{}
				f.cOut.Children[i] = &ChallengeNode{}
				stack = append(stack, frame{f.commit.Children[i], f.vOut.Children[i], f.cOut.Children[i], f.vOut, sf})
			}
		}
	}
	return vRoot, cRoot, nil
}

// ResponseNode is the prover's move-3 message: one ProductResponse per
// |S|≥2 node.
type ResponseNode struct {
	HasResponse bool
	Response    sigma.ProductResponse
	Children    []*ResponseNode
}

// Respond produces the response tree for root given the verifier's
// challenge tree, walked in lockstep with root's own shape.
func (root *ProverNode) Respond(challenge *ChallengeNode) (*ResponseNode, error) {
	out := &ResponseNode{}
	type frame struct {
		p   *ProverNode
		ch  *ChallengeNode
		out *ResponseNode
	}
	stack := []frame{{root, challenge, out}}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if f.p.Prod != nil {
			if !f.ch.HasChallenge {
				return nil, ErrShapeMismatch
			}
			f.out.HasResponse = true
			f.out.Response = f.p.Prod.Respond(f.ch.Challenge)
		}

		if len(f.p.Children) != len(f.ch.Children) {
			return nil, ErrShapeMismatch
		}
		if len(f.p.Children) > 0 {
			f.out.Children = make([]*ResponseNode, len(f.p.Children))
			for i, c := range f.p.Children {
				f.out.Children[i] = &ResponseNode{}
				stack = append(stack, frame{c, f.ch.Children[i], f.out.Children[i]})
			}
		}
	}
	return out, nil
}

// Verify walks the verifier tree together with the prover's response
// tree, checking every |S|≥2 node's product-Σ proof. It accepts iff every
// node verifies and the two trees have identical shape.
func (root *VerifierNode) Verify(resp *ResponseNode) bool {
	type frame struct {
		v *VerifierNode
		r *ResponseNode
	}
	stack := []frame{{root, resp}}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		if f.v.Verifier != nil {
			if !f.r.HasResponse {
				return false
			}
			if !f.v.Verifier.Verify(f.v.Product, f.r.Response) {
				return false
			}
		}
		if len(f.v.Children) != len(f.r.Children) {
			return false
		}
		for i := range f.v.Children {
			stack = append(stack, frame{f.v.Children[i], f.r.Children[i]})
		}
	}
	return true
}
