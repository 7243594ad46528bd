// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package protocol

import (
	"net"
	"testing"

	"github.com/luxfi/dpquery/group"
)

// runStep runs proverFn in a goroutine and verifierFn on the calling
// goroutine, the minimal concurrency a synchronous net.Pipe session needs
// since every phase alternates blocking sends and receives on both sides.
func runStep(proverFn, verifierFn func() error) (proverErr, verifierErr error) {
	ch := make(chan error, 1)
	go func() { ch <- proverFn() }()
	verifierErr = verifierFn()
	proverErr = <-ch
	return proverErr, verifierErr
}

func newSessionPipe() (net.Conn, net.Conn) {
	return net.Pipe()
}

func requireStep(t *testing.T, label string, proverFn, verifierFn func() error) {
	t.Helper()
	perr, verr := runStep(proverFn, verifierFn)
	if perr != nil {
		t.Fatalf("%s: prover: %v", label, perr)
	}
	if verr != nil {
		t.Fatalf("%s: verifier: %v", label, verr)
	}
}

func baseParams(dbSize uint64, dimension, maxDegree int, epsilon float64) Params {
	return Params{
		DBSize:    dbSize,
		Dimension: dimension,
		MaxDegree: maxDegree,
		Sparsity:  1,
		Epsilon:   epsilon,
	}
}

// corruptor wraps one end of a session pipe and, on the targetFrame-th
// full frame it reads, mutates one byte of the payload, always landing
// on an ASCII letter so the frame still round-trips as valid JSON/base64,
// just as a different scalar or point. Test-only network fault injector,
// not part of the wire protocol itself.
type corruptor struct {
	net.Conn
	targetFrame int
	frameCount  int
	inPayload   bool
}

func (c *corruptor) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if err != nil {
		return n, err
	}
	if !c.inPayload {
		// a 4-byte read here is the length header; anything else (a
		// zero-length frame's header met with an immediate next header)
		// is treated the same way since only length matters.
		if n == 4 {
			c.inPayload = true
		}
		return n, nil
	}
	c.inPayload = false
	c.frameCount++
	if c.frameCount == c.targetFrame {
		for i := range p[:n] {
			switch p[i] {
			case 'A':
				p[i] = 'B'
				return n, nil
			case 'B':
				p[i] = 'A'
				return n, nil
			}
		}
	}
	return n, nil
}

// d=4, n=4, k=2, ε=1.0, no explicit δ, a two-term query. The verifier's
// answer must equal the noise plaintext plus the expected weighted
// monomial count, and verification must succeed.
func TestSessionBasicQuery(t *testing.T) {
	db := []uint64{0xd, 0xb, 0xa, 0xe}
	params := baseParams(uint64(len(db)), 4, 2, 1.0)

	pc, vc := newSessionPipe()
	defer pc.Close()
	defer vc.Close()

	prover, err := NewProver(pc, db, params)
	if err != nil {
		t.Fatalf("NewProver: %v", err)
	}
	verifier, err := NewVerifier(vc, params)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	requireStep(t, "setup", prover.Setup, verifier.Setup)
	requireStep(t, "commit", prover.Commit, verifier.Commit)
	requireStep(t, "randomize", prover.Randomize, verifier.Randomize)

	coeffs := map[uint64]group.Scalar{
		0b0001: group.NewScalarFromUint64(1),
		0b0110: group.NewScalarFromUint64(2),
	}

	var answer group.Scalar
	var ok bool
	perr, verr := runStep(prover.ServeQuery, func() error {
		var qerr error
		answer, ok, qerr = verifier.Query(coeffs)
		return qerr
	})
	if perr != nil {
		t.Fatalf("prover ServeQuery: %v", perr)
	}
	if verr != nil {
		t.Fatalf("verifier Query: %v", verr)
	}
	if !ok {
		t.Fatal("verifier rejected a correctly-answered query")
	}

	// bit 0 is set in records 0xd (1101) and 0xb (1011): count 2.
	// bits 1 and 2 are both set only in 0xe (1110): count 1.
	expected := group.NewScalarFromUint64(1).Mul(group.NewScalarFromUint64(2)).
		Add(group.NewScalarFromUint64(2).Mul(group.NewScalarFromUint64(1)))
	want := prover.noise.M.Add(expected)
	if !answer.Equal(want) {
		t.Fatal("answer does not equal noise_plaintext + weighted monomial count")
	}
}

// A man-in-the-middle flips one byte of the QueryAnswerMessage frame (the
// first 'A' or 'B' in it, inside the answer or the proof encoding);
// verification must fail.
func TestSessionTamperedAnswerFails(t *testing.T) {
	db := []uint64{0xd, 0xb, 0xa, 0xe}
	params := baseParams(uint64(len(db)), 4, 2, 1.0)

	pc, vc := newSessionPipe()
	defer pc.Close()
	defer vc.Close()

	prover, err := NewProver(pc, db, params)
	if err != nil {
		t.Fatalf("NewProver: %v", err)
	}
	verifier, err := NewVerifier(vc, params)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	requireStep(t, "setup", prover.Setup, verifier.Setup)
	requireStep(t, "commit", prover.Commit, verifier.Commit)
	requireStep(t, "randomize", prover.Randomize, verifier.Randomize)

	// The query answer is the first (and only) frame the verifier reads
	// in the Query phase.
	verifier.rw = &corruptor{Conn: vc, targetFrame: 1}

	coeffs := map[uint64]group.Scalar{0b0001: group.NewScalarFromUint64(1)}
	_, ok, verr := func() (group.Scalar, bool, error) {
		ch := make(chan error, 1)
		go func() { ch <- prover.ServeQuery() }()
		answer, ok, qerr := verifier.Query(coeffs)
		<-ch
		return answer, ok, qerr
	}()
	if verr != nil {
		// A decode failure on the tampered bytes is an equally valid
		// rejection outcome.
		return
	}
	if ok {
		t.Fatal("verifier accepted a tampered query answer")
	}
}

// d=1, n=8, k=1. The monomial set is {0b1}; the
// aggregate commitment equals the sum of the eight bit commitments, and a
// weight-1 query over it yields sum(bits) + noise.
func TestSessionSingleBitDimension(t *testing.T) {
	db := []uint64{1, 0, 1, 1, 0, 1, 1, 1}
	params := baseParams(uint64(len(db)), 1, 1, 1.0)

	pc, vc := newSessionPipe()
	defer pc.Close()
	defer vc.Close()

	prover, err := NewProver(pc, db, params)
	if err != nil {
		t.Fatalf("NewProver: %v", err)
	}
	verifier, err := NewVerifier(vc, params)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	requireStep(t, "setup", prover.Setup, verifier.Setup)
	requireStep(t, "commit", prover.Commit, verifier.Commit)
	requireStep(t, "randomize", prover.Randomize, verifier.Randomize)

	coeffs := map[uint64]group.Scalar{1: group.One()}
	var answer group.Scalar
	var ok bool
	perr, verr := runStep(prover.ServeQuery, func() error {
		var qerr error
		answer, ok, qerr = verifier.Query(coeffs)
		return qerr
	})
	if perr != nil || verr != nil {
		t.Fatalf("query round failed: prover=%v verifier=%v", perr, verr)
	}
	if !ok {
		t.Fatal("verifier rejected a correctly-answered d=1 query")
	}

	var sum uint64
	for _, b := range db {
		sum += b & 1
	}
	want := prover.noise.M.Add(group.NewScalarFromUint64(sum))
	if !answer.Equal(want) {
		t.Fatal("answer does not equal sum(bits) + noise")
	}
}

// d=8, n=16, k=3; tampering a single product-Σ
// response within the first record's monomial response tree makes the
// verifier's Commit phase fail rather than silently aggregate a bad
// commitment.
func TestSessionTamperedProductResponseFailsCommit(t *testing.T) {
	db := make([]uint64, 16)
	for i := range db {
		db[i] = uint64(i) * 0x55 // arbitrary varied bit patterns, masked to 8 bits by Dimension
	}
	params := baseParams(uint64(len(db)), 8, 3, 1.0)

	pc, vc := newSessionPipe()
	defer pc.Close()
	defer vc.Close()

	prover, err := NewProver(pc, db, params)
	if err != nil {
		t.Fatalf("NewProver: %v", err)
	}
	verifier, err := NewVerifier(vc, params)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	requireStep(t, "setup", prover.Setup, verifier.Setup)

	// Per record, the prover sends 4 flights in order: bit commitments,
	// monomial commitment tree, bit responses, monomial response tree.
	// The 4th frame the verifier reads is record 0's response tree.
	verifier.rw = &corruptor{Conn: vc, targetFrame: 4}

	_, verr := runStep(prover.Commit, verifier.Commit)
	if verr == nil {
		t.Fatal("verifier accepted a commit phase with a tampered product-sigma response")
	}
}

// ε=1, δ=0.01 gives N = ⌈8·log2(200)⌉ = 62 randomize iterations.
func TestSessionRandomizeIterationCount(t *testing.T) {
	delta := 0.01
	params := baseParams(4, 4, 2, 1.0)
	params.Delta = &delta

	db := []uint64{0xd, 0xb, 0xa, 0xe}
	pc, vc := newSessionPipe()
	defer pc.Close()
	defer vc.Close()

	prover, err := NewProver(pc, db, params)
	if err != nil {
		t.Fatalf("NewProver: %v", err)
	}
	verifier, err := NewVerifier(vc, params)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	requireStep(t, "setup", prover.Setup, verifier.Setup)
	requireStep(t, "commit", prover.Commit, verifier.Commit)
	requireStep(t, "randomize", prover.Randomize, verifier.Randomize)

	if prover.nIters != 62 {
		t.Fatalf("expected N=62 randomize iterations, got %d", prover.nIters)
	}
}

// Honest and dishonest-safe modes over the same database return the
// same noise-free answers for the same queries, and both verify. Each
// session draws its own noise, so the comparison subtracts each
// session's noise plaintext before comparing.
func TestSessionHonestAndDishonestAgree(t *testing.T) {
	db := []uint64{0x3, 0x1, 0x7, 0x0, 0x5}
	queries := []map[uint64]group.Scalar{
		{1: group.NewScalarFromUint64(3)},
		{2: group.One(), 1: group.NewScalarFromUint64(2)},
	}

	run := func(skipDishonest bool) []group.Scalar {
		params := baseParams(uint64(len(db)), 3, 2, 1.0)
		params.SkipDishonest = skipDishonest

		pc, vc := newSessionPipe()
		defer pc.Close()
		defer vc.Close()

		prover, err := NewProver(pc, db, params)
		if err != nil {
			t.Fatalf("NewProver: %v", err)
		}
		verifier, err := NewVerifier(vc, params)
		if err != nil {
			t.Fatalf("NewVerifier: %v", err)
		}

		requireStep(t, "setup", prover.Setup, verifier.Setup)
		requireStep(t, "commit", prover.Commit, verifier.Commit)
		requireStep(t, "randomize", prover.Randomize, verifier.Randomize)

		answers := make([]group.Scalar, len(queries))
		for i, q := range queries {
			var ok bool
			perr, verr := runStep(prover.ServeQuery, func() error {
				var qerr error
				answers[i], ok, qerr = verifier.Query(q)
				return qerr
			})
			if perr != nil || verr != nil {
				t.Fatalf("query %d failed: prover=%v verifier=%v", i, perr, verr)
			}
			if !ok {
				t.Fatalf("query %d did not verify", i)
			}
			answers[i] = answers[i].Sub(prover.noise.M)
		}
		return answers
	}

	honest := run(true)
	dishonest := run(false)
	for i := range queries {
		if !honest[i].Equal(dishonest[i]) {
			t.Fatalf("query %d: honest and dishonest-safe answers disagree", i)
		}
	}
}
