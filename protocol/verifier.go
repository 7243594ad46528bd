// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package protocol

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/luxfi/dpquery/dparams"
	"github.com/luxfi/dpquery/group"
	"github.com/luxfi/dpquery/internal/drbg"
	"github.com/luxfi/dpquery/monomial"
	"github.com/luxfi/dpquery/pedersen"
	"github.com/luxfi/dpquery/sigma"
	"github.com/luxfi/dpquery/wire"

	log "github.com/luxfi/log"
)

// Verifier drives the verifier's side of one session. Like
// Prover, it owns no goroutines and its methods must be called in phase
// order from a single goroutine.
type Verifier struct {
	rw     io.ReadWriter
	params Params
	log    log.Logger

	pp        pedersen.Params
	one       pedersen.Opening
	aggCommit map[uint64]group.Point
	noiseComm group.Point
}

// NewVerifier validates params (ConfigError, before any I/O) and returns a
// Verifier ready for Setup.
func NewVerifier(rw io.ReadWriter, params Params, logger ...log.Logger) (*Verifier, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	l := log.NewTestLogger(log.InfoLevel)
	if len(logger) > 0 {
		l = logger[0]
	}
	return &Verifier{rw: rw, params: params, log: l}, nil
}

// Setup mirrors Prover.Setup: receive the shared seed and derive the
// identical (G, H).
func (v *Verifier) Setup() error {
	var msg wire.SetupMessage
	if err := recv(v.rw, &msg); err != nil {
		return err
	}
	if len(msg.Seed) != drbg.SeedSize {
		return fmt.Errorf("%w: setup seed must be %d bytes, got %d", ErrSchema, drbg.SeedSize, len(msg.Seed))
	}
	pp, err := pedersen.Setup(msg.Seed)
	if err != nil {
		return fmt.Errorf("%w: deriving public parameters: %v", ErrConfig, err)
	}
	v.pp = pp
	v.one = pedersen.Opening{
		M:          group.One(),
		R:          group.Zero(),
		Commitment: pedersen.CommitWithR(pp, group.One(), group.Zero()),
	}

	if err := send(v.rw, wire.ReadyMessage{Ready: true}); err != nil {
		return err
	}
	v.log.Info("protocol: setup complete", "dimension", v.params.Dimension, "max_degree", v.params.MaxDegree)
	return nil
}

// Commit performs the Commit phase, mirroring Prover.Commit.
func (v *Verifier) Commit() error {
	if v.params.SkipDishonest {
		return v.commitHonest()
	}
	return v.commitDishonestSafe()
}

func (v *Verifier) commitHonest() error {
	var msg wire.CommitmentMapMessage
	if err := recv(v.rw, &msg); err != nil {
		return err
	}
	agg, err := wire.DecodePointMap(msg.CommitmentMap)
	if err != nil {
		return fmt.Errorf("%w: decoding honest commitment map: %v", ErrTransport, err)
	}

	if err := send(v.rw, wire.ReadyMessage{Ready: true}); err != nil {
		return err
	}
	v.aggCommit = agg
	v.log.Info("protocol: honest commit complete", "ids", len(agg))
	return nil
}

func (v *Verifier) commitDishonestSafe() error {
	d := v.params.Dimension
	perRecord := make([]map[uint64]group.Point, v.params.DBSize)
	allOK := true

	for j := uint64(0); j < v.params.DBSize; j++ {
		var bitMsg wire.BitSigmaCommitmentMessage
		if err := recv(v.rw, &bitMsg); err != nil {
			return err
		}
		if len(bitMsg.Commitments) != d {
			return fmt.Errorf("%w: expected %d bit-sigma commitments, got %d", ErrSchema, d, len(bitMsg.Commitments))
		}

		bitVerifiers := make([]*sigma.BitVerifier, d)
		bitCommitPoints := make([]group.Point, d)
		bitCommitments := make([]sigma.BitCommitment, d)
		challenges := make([][]byte, d)
		for i, w := range bitMsg.Commitments {
			cb, c, err := wire.DecodeBitCommitment(w)
			if err != nil {
				return fmt.Errorf("%w: decoding bit commitment %d: %v", ErrTransport, i, err)
			}
			bv := sigma.NewBitVerifier(v.pp, cb)
			e, err := bv.Challenge(rand.Reader)
			if err != nil {
				return fmt.Errorf("%w: drawing bit-sigma challenge: %v", ErrTransport, err)
			}
			bitVerifiers[i] = bv
			bitCommitPoints[i] = cb
			bitCommitments[i] = c
			challenges[i] = wire.EncodeScalar(e)
		}

		var commitTreeMsg wire.MonomialCommitmentTreeNode
		if err := recv(v.rw, &commitTreeMsg); err != nil {
			return err
		}
		commitNode, err := wire.DecodeCommitmentTree(commitTreeMsg)
		if err != nil {
			return fmt.Errorf("%w: decoding monomial commitment tree: %v", ErrTransport, err)
		}
		vRoot, challengeNode, err := monomial.BuildChallengeTree(v.pp, rand.Reader, commitNode, bitCommitPoints, v.params.MaxDegree)
		if err != nil {
			return fmt.Errorf("%w: building monomial challenge tree: %v", ErrSchema, err)
		}
		if err := send(v.rw, wire.BitSigmaChallengeMessage{Challenges: challenges}); err != nil {
			return err
		}
		if err := send(v.rw, wire.EncodeChallengeTree(challengeNode)); err != nil {
			return err
		}

		var respMsg wire.BitSigmaResponseMessage
		if err := recv(v.rw, &respMsg); err != nil {
			return err
		}
		if len(respMsg.Responses) != d {
			return fmt.Errorf("%w: expected %d bit-sigma responses, got %d", ErrSchema, d, len(respMsg.Responses))
		}
		for i, w := range respMsg.Responses {
			r, err := wire.DecodeBitResponse(w)
			if err != nil {
				return fmt.Errorf("%w: decoding bit response %d: %v", ErrTransport, i, err)
			}
			if !bitVerifiers[i].Verify(bitCommitments[i], r) {
				allOK = false
			}
		}

		var respTreeMsg wire.MonomialResponseTreeNode
		if err := recv(v.rw, &respTreeMsg); err != nil {
			return err
		}
		responseNode, err := wire.DecodeResponseTree(respTreeMsg)
		if err != nil {
			return fmt.Errorf("%w: decoding monomial response tree: %v", ErrTransport, err)
		}
		if !vRoot.Verify(responseNode) {
			allOK = false
		}

		perRecord[j] = vRoot.Flatten()
	}

	if err := send(v.rw, wire.VerifierCheckMessage{Success: allOK}); err != nil {
		return err
	}
	if !allOK {
		return fmt.Errorf("%w: one or more per-record proofs failed to verify", ErrProof)
	}

	v.aggCommit = monomial.AggregateCommitments(perRecord)
	v.log.Info("protocol: dishonest-safe commit complete", "records", v.params.DBSize, "ids", len(v.aggCommit))
	return nil
}

// Randomize mirrors Prover.Randomize: drive N coin-flip iterations,
// rejecting any that fail its consistency or bit-sigma checks.
func (v *Verifier) Randomize() error {
	res := dparams.Compute(v.params.DBSize, v.params.Epsilon, v.params.Delta)
	if res.N == 0 {
		return fmt.Errorf("%w: randomize iteration count N must be > 0", ErrSemantic)
	}

	acc := group.Identity()

	for iter := uint64(0); iter < res.N; iter++ {
		var commMsg wire.ProverRandomnessComm
		if err := recv(v.rw, &commMsg); err != nil {
			return err
		}
		cD, bitCommit, err := wire.DecodeBitCommitment(commMsg.Commitment)
		if err != nil {
			return fmt.Errorf("%w: decoding randomize commitment: %v", ErrTransport, err)
		}

		bV, err := randomBit(rand.Reader)
		if err != nil {
			return fmt.Errorf("%w: sampling verifier coin: %v", ErrTransport, err)
		}
		bv := sigma.NewBitVerifier(v.pp, cD)
		e, err := bv.Challenge(rand.Reader)
		if err != nil {
			return fmt.Errorf("%w: drawing randomize challenge: %v", ErrTransport, err)
		}
		if err := send(v.rw, wire.VerifierRandomnessChallenge{
			PlayerB:        bV,
			SigmaChallenge: wire.EncodeScalar(e),
		}); err != nil {
			return err
		}

		var respMsg wire.ProverRandomnessResponse
		if err := recv(v.rw, &respMsg); err != nil {
			return err
		}
		finalC, err := wire.DecodePoint(respMsg.FinalCommitment)
		if err != nil {
			return fmt.Errorf("%w: decoding randomize final commitment: %v", ErrTransport, err)
		}
		resp, err := wire.DecodeBitResponse(respMsg.SigmaResponse)
		if err != nil {
			return fmt.Errorf("%w: decoding randomize response: %v", ErrTransport, err)
		}

		var expected group.Point
		if bV == 0 {
			expected = cD
		} else {
			expected = v.one.Commitment.Sub(cD)
		}
		ok := finalC.Equal(expected) && bv.Verify(bitCommit, resp)

		if err := send(v.rw, wire.VerifierCheckMessage{Success: ok}); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: randomize iteration %d failed consistency or bit-sigma check", ErrProof, iter)
		}

		acc = acc.Add(finalC)
	}

	adjustment := group.NewScalarFromUint64(res.N / 2)
	v.noiseComm = acc.Sub(v.pp.G.ScalarMult(adjustment))
	v.log.Info("protocol: randomize complete", "n", res.N, "delta", res.Delta)
	return nil
}

// Query issues one Query-phase round; the phase is repeatable, so callers
// may invoke it any number of times. It sends coeffs, receives the
// prover's answer, and reports both the answer itself and whether it
// opens the expected combined commitment.
func (v *Verifier) Query(coeffs map[uint64]group.Scalar) (group.Scalar, bool, error) {
	for id := range coeffs {
		if _, ok := v.aggCommit[id]; !ok {
			return group.Scalar{}, false, fmt.Errorf("%w: query references unknown monomial id %d", ErrSemantic, id)
		}
	}
	if err := send(v.rw, wire.QueryMessage{Coefficients: wire.EncodeScalarMap(coeffs)}); err != nil {
		return group.Scalar{}, false, err
	}

	var ans wire.QueryAnswerMessage
	if err := recv(v.rw, &ans); err != nil {
		return group.Scalar{}, false, err
	}
	answer, err := wire.DecodeScalar(ans.Answer)
	if err != nil {
		return group.Scalar{}, false, fmt.Errorf("%w: decoding query answer: %v", ErrTransport, err)
	}
	proof, err := wire.DecodeScalar(ans.Proof)
	if err != nil {
		return group.Scalar{}, false, fmt.Errorf("%w: decoding query proof: %v", ErrTransport, err)
	}

	points := []group.Point{v.noiseComm}
	scalars := []group.Scalar{group.One()}
	for id, c := range coeffs {
		points = append(points, v.aggCommit[id])
		scalars = append(scalars, c)
	}
	combined, err := pedersen.Combine(scalars, points)
	if err != nil {
		return group.Scalar{}, false, fmt.Errorf("%w: combining query commitments: %v", ErrSchema, err)
	}

	return answer, pedersen.Verify(v.pp, combined, answer, proof), nil
}
