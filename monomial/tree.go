// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package monomial

import (
	"errors"

	"github.com/luxfi/dpquery/group"
	"github.com/luxfi/dpquery/pedersen"
	"github.com/luxfi/dpquery/sigma"
)

// ErrDimension is returned when a builder is given no bit openings; the
// tree's dimension is the number of openings supplied.
var ErrDimension = errors.New("monomial: bit opening count does not match dimension")

// ErrShapeMismatch is returned whenever two trees that are supposed to
// mirror each other's shape (commitment/challenge/response against the
// prover tree that produced them) don't: a differing child count at the
// same node means the two sides disagree on (dimension, maxDegree), which
// is a schema violation, not a proof failure.
var ErrShapeMismatch = errors.New("monomial: tree shape mismatch")

// ProverNode is one node of a record's monomial tree. The root (depth 0)
// carries no opening. A depth-1 node reuses its record's bit opening
// verbatim, with no fresh randomness and no product proof.
// A depth-≥2 node samples a fresh opening and proves it against its
// parent and the newly-appended bit via a shared ProductProver.
type ProverNode struct {
	ID          uint64
	Depth       int
	LatestIndex int

	Opening sigma.Triple
	Prod    *sigma.ProductProver // nil at the root and at depth 1

	Children []*ProverNode
}

// randSource is the minimal interface BuildProverTree needs; satisfied by
// crypto/rand.Reader in production and by any io.Reader in tests. Kept
// unexported and narrow rather than importing io just for this.
type randSource interface {
	Read(p []byte) (int, error)
}

// BuildProverTree builds the full monomial tree for one record given its
// d already-opened bit commitments (bits[i] is the opening of the i-th
// bit, produced by the bit-Σ commit phase) and the session's blinding
// source rnd. Construction is iterative: nodes are pushed and popped from
// an explicit stack rather than built by recursive descent, since a
// record's tree can reach on the order of 7e7 nodes at d=64, k=6.
func BuildProverTree(params pedersen.Params, rnd randSource, bits []sigma.Triple, maxDegree int) (*ProverNode, error) {
	dimension := len(bits)
	if dimension == 0 {
		return nil, ErrDimension
	}

	root := &ProverNode{ID: 0, Depth: 0, LatestIndex: -1}
	stack := []*ProverNode{root}
	for len(stack) > 0 {
		n := len(stack) - 1
		node := stack[n]
		stack = stack[:n]

		start := node.LatestIndex + 1
		if node.Depth == maxDegree || start >= dimension {
			continue
		}

		children := make([]*ProverNode, 0, dimension-start)
		for i := start; i < dimension; i++ {
			child := &ProverNode{
				ID:          node.ID | (uint64(1) << uint(i)),
				Depth:       node.Depth + 1,
				LatestIndex: i,
			}
			if child.Depth == 1 {
				// |S|=1: reuse the record's bit opening directly, no
				// fresh randomness, no product proof.
				child.Opening = bits[i]
			} else {
				m := node.Opening.M.Mul(bits[i].M)
				r, err := group.RandomScalar(rnd)
				if err != nil {
					return nil, err
				}
				c := pedersen.CommitWithR(params, m, r)
				child.Opening = sigma.Triple{M: m, R: r, C: c}
				child.Prod = sigma.NewProductProver(params, node.Opening, bits[i], child.Opening)
			}
			children = append(children, child)
		}
		node.Children = children
		stack = append(stack, children...)
	}
	return root, nil
}

// Flatten collects every non-root node's (id, opening) pair into a map,
// the per-record view the protocol driver aggregates across records.
func (root *ProverNode) Flatten() map[uint64]sigma.Triple {
	out := make(map[uint64]sigma.Triple)
	stack := []*ProverNode{root}
	for len(stack) > 0 {
		n := len(stack) - 1
		node := stack[n]
		stack = stack[:n]
		if node.Depth > 0 {
			out[node.ID] = node.Opening
		}
		stack = append(stack, node.Children...)
	}
	return out
}

// AggregateOpenings sums, for each admissible id, the per-record openings
// that carry it, using Pedersen's additive homomorphism: the randomness
// and plaintext add directly, and the commitment is recomputed from the
// summed pair rather than summing the per-record commitment points, so
// the result is always a consistent opening of its own commitment.
func AggregateOpenings(params pedersen.Params, perRecord []map[uint64]sigma.Triple) map[uint64]sigma.Triple {
	out := make(map[uint64]sigma.Triple)
	for _, rec := range perRecord {
		for id, t := range rec {
			acc, ok := out[id]
			if !ok {
				out[id] = t
				continue
			}
			m := acc.M.Add(t.M)
			r := acc.R.Add(t.R)
			out[id] = sigma.Triple{M: m, R: r, C: pedersen.CommitWithR(params, m, r)}
		}
	}
	return out
}

// AggregateCommitments is the verifier-side counterpart of
// AggregateOpenings: it only ever sees public commitments, which it sums
// via the group's Add operation directly.
func AggregateCommitments(perRecord []map[uint64]group.Point) map[uint64]group.Point {
	out := make(map[uint64]group.Point)
	for _, rec := range perRecord {
		for id, c := range rec {
			acc, ok := out[id]
			if !ok {
				out[id] = c
				continue
			}
			out[id] = acc.Add(c)
		}
	}
	return out
}
