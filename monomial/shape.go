// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package monomial implements the per-record monomial tree: for one
// record's d committed bits, it builds every degree-≤k monomial
// commitment, sharing product-Σ proof work between a subset and its
// prefix, and exposes the aggregation the protocol driver needs to
// combine per-record trees into one id→commitment map.
//
// Trees are built and walked with an explicit stack rather than plain
// recursion: at d=64, k=6 a single record's tree has on the order of 7e7
// nodes, and an implicit call stack of that depth is not something a Go
// goroutine's default stack budget should absorb.
package monomial

// shapeFrame is the work-list entry of the shape-only walks in this
// package (walkShape, and BuildChallengeTree's expected-shape check): a
// node's identity (mask, depth, latest appended bit index) and nothing
// else.
type shapeFrame struct {
	mask        uint64
	depth       int
	latestIndex int // -1 at the root
}

// walkShape enumerates every node of the tree described by (dimension,
// maxDegree) in prover-construction order (root first, then each node's
// children for strictly-increasing next bit index), invoking visit once
// per node including the root (depth 0). Used by AdmissibleIDs;
// BuildProverTree runs its own explicit-stack loop instead.
func walkShape(dimension, maxDegree int, visit func(f shapeFrame) (children []shapeFrame)) {
	root := shapeFrame{mask: 0, depth: 0, latestIndex: -1}
	stack := []shapeFrame{root}
	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		children := visit(f)
		if len(children) > 0 {
			stack = append(stack, children...)
		}
	}
}

// childFrames returns the child shape-frames of f: one per bit index
// strictly greater than f.latestIndex, stopping once f has reached
// maxDegree or f.latestIndex is the last bit. Allocated as one batch
// slice per node rather than one allocation per child.
func childFrames(f shapeFrame, dimension, maxDegree int) []shapeFrame {
	if f.depth == maxDegree {
		return nil
	}
	start := f.latestIndex + 1
	if start >= dimension {
		return nil
	}
	out := make([]shapeFrame, 0, dimension-start)
	for i := start; i < dimension; i++ {
		out = append(out, shapeFrame{
			mask:        f.mask | (uint64(1) << uint(i)),
			depth:       f.depth + 1,
			latestIndex: i,
		})
	}
	return out
}

// AdmissibleIDs returns every monomial id with 0 < popcount(id) ≤
// maxDegree and id < 2^dimension, i.e. every non-root node of the shape
// tree. Used by callers that need the full id set up front (e.g.
// honest-mode Commit).
func AdmissibleIDs(dimension, maxDegree int) []uint64 {
	var ids []uint64
	walkShape(dimension, maxDegree, func(f shapeFrame) []shapeFrame {
		if f.depth > 0 {
			ids = append(ids, f.mask)
		}
		return childFrames(f, dimension, maxDegree)
	})
	return ids
}
