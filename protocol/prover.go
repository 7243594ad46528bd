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

// Prover drives the prover's side of one session. It owns no
// goroutines; every method blocks on the session's io.ReadWriter and must
// be called from a single goroutine per Prover, in phase order.
type Prover struct {
	rw     io.ReadWriter
	params Params
	db     []uint64
	log    log.Logger

	pp     pedersen.Params
	one    pedersen.Opening
	agg    map[uint64]sigma.Triple
	noise  sigma.Triple
	nIters uint64
}

// NewProver validates params (ConfigError, before any I/O) and returns a
// Prover ready for Setup. db holds one record per prover-side row; each
// element's low params.Dimension bits are the record's bit vector.
func NewProver(rw io.ReadWriter, db []uint64, params Params, logger ...log.Logger) (*Prover, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if uint64(len(db)) != params.DBSize {
		return nil, fmt.Errorf("%w: db has %d records, params.DBSize is %d", ErrConfig, len(db), params.DBSize)
	}
	l := log.NewTestLogger(log.InfoLevel)
	if len(logger) > 0 {
		l = logger[0]
	}
	return &Prover{rw: rw, params: params, db: db, log: l}, nil
}

// Setup performs the Setup phase: generate and transmit the shared seed,
// derive (G, H), and pre-compute the fixed commitment to 1.
func (p *Prover) Setup() error {
	seed := make([]byte, drbg.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return fmt.Errorf("%w: generating setup seed: %v", ErrTransport, err)
	}
	if err := send(p.rw, wire.SetupMessage{Seed: seed}); err != nil {
		return err
	}
	pp, err := pedersen.Setup(seed)
	if err != nil {
		return fmt.Errorf("%w: deriving public parameters: %v", ErrConfig, err)
	}
	p.pp = pp
	p.one = pedersen.Opening{
		M:          group.One(),
		R:          group.Zero(),
		Commitment: pedersen.CommitWithR(pp, group.One(), group.Zero()),
	}

	var ready wire.ReadyMessage
	if err := recv(p.rw, &ready); err != nil {
		return err
	}
	if !ready.Ready {
		return fmt.Errorf("%w: verifier not ready after setup", ErrSchema)
	}
	p.log.Info("protocol: setup complete", "dimension", p.params.Dimension, "max_degree", p.params.MaxDegree)
	return nil
}

// Commit performs the Commit phase, in honest or dishonest-safe mode per
// params.SkipDishonest.
func (p *Prover) Commit() error {
	if p.params.SkipDishonest {
		return p.commitHonest()
	}
	return p.commitDishonestSafe()
}

func (p *Prover) commitHonest() error {
	ids := monomial.AdmissibleIDs(p.params.Dimension, p.params.MaxDegree)
	counts := make(map[uint64]uint64, len(ids))
	for _, id := range ids {
		var count uint64
		for _, record := range p.db {
			if record&id == id {
				count++
			}
		}
		counts[id] = count
	}

	agg := make(map[uint64]sigma.Triple, len(ids))
	points := make(map[string][]byte, len(ids))
	for _, id := range ids {
		o, err := pedersen.Commit(p.pp, rand.Reader, group.NewScalarFromUint64(counts[id]))
		if err != nil {
			return fmt.Errorf("%w: committing honest monomial count: %v", ErrTransport, err)
		}
		agg[id] = sigma.Triple{M: o.M, R: o.R, C: o.Commitment}
		points[wire.IDToKey(id)] = wire.EncodePoint(o.Commitment)
	}
	if err := send(p.rw, wire.CommitmentMapMessage{CommitmentMap: points}); err != nil {
		return err
	}

	var ready wire.ReadyMessage
	if err := recv(p.rw, &ready); err != nil {
		return err
	}
	if !ready.Ready {
		return fmt.Errorf("%w: verifier rejected honest commitment map", ErrSchema)
	}
	p.agg = agg
	p.log.Info("protocol: honest commit complete", "ids", len(ids))
	return nil
}

func (p *Prover) commitDishonestSafe() error {
	d := p.params.Dimension
	perRecord := make([]map[uint64]sigma.Triple, len(p.db))

	for j, record := range p.db {
		bits := make([]sigma.Triple, d)
		bitProvers := make([]*sigma.BitProver, d)
		flight := make([]wire.BitCommitment, d)

		for i := 0; i < d; i++ {
			b := uint8((record >> uint(i)) & 1)
			o, err := pedersen.Commit(p.pp, rand.Reader, group.NewScalarFromUint64(uint64(b)))
			if err != nil {
				return fmt.Errorf("%w: committing bit %d of record %d: %v", ErrTransport, i, j, err)
			}
			bp, err := sigma.NewBitProver(p.pp, b, o.Commitment, o.R)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrSchema, err)
			}
			bc, err := bp.Commit(rand.Reader)
			if err != nil {
				return fmt.Errorf("%w: bit-sigma commit: %v", ErrTransport, err)
			}
			bits[i] = sigma.Triple{M: o.M, R: o.R, C: o.Commitment}
			bitProvers[i] = bp
			flight[i] = wire.EncodeBitCommitment(o.Commitment, bc)
		}
		if err := send(p.rw, wire.BitSigmaCommitmentMessage{Commitments: flight}); err != nil {
			return err
		}

		root, err := monomial.BuildProverTree(p.pp, rand.Reader, bits, p.params.MaxDegree)
		if err != nil {
			return fmt.Errorf("%w: building monomial tree for record %d: %v", ErrSchema, j, err)
		}
		commitNode, err := root.Commit(rand.Reader)
		if err != nil {
			return fmt.Errorf("%w: monomial tree commit: %v", ErrTransport, err)
		}
		if err := send(p.rw, wire.EncodeCommitmentTree(commitNode)); err != nil {
			return err
		}

		var chalMsg wire.BitSigmaChallengeMessage
		if err := recv(p.rw, &chalMsg); err != nil {
			return err
		}
		if len(chalMsg.Challenges) != d {
			return fmt.Errorf("%w: expected %d bit-sigma challenges, got %d", ErrSchema, d, len(chalMsg.Challenges))
		}
		bitChallenges := make([]group.Scalar, d)
		for i, raw := range chalMsg.Challenges {
			s, err := wire.DecodeScalar(raw)
			if err != nil {
				return fmt.Errorf("%w: decoding bit-sigma challenge %d: %v", ErrTransport, i, err)
			}
			bitChallenges[i] = s
		}

		var challengeTreeMsg wire.MonomialChallengeTreeNode
		if err := recv(p.rw, &challengeTreeMsg); err != nil {
			return err
		}
		challengeNode, err := wire.DecodeChallengeTree(challengeTreeMsg)
		if err != nil {
			return fmt.Errorf("%w: decoding monomial challenge tree: %v", ErrTransport, err)
		}

		responses := make([]wire.BitResponse, d)
		for i, bp := range bitProvers {
			responses[i] = wire.EncodeBitResponse(bp.Respond(bitChallenges[i]))
		}
		if err := send(p.rw, wire.BitSigmaResponseMessage{Responses: responses}); err != nil {
			return err
		}

		responseNode, err := root.Respond(challengeNode)
		if err != nil {
			return fmt.Errorf("%w: responding to monomial challenge tree: %v", ErrSchema, err)
		}
		if err := send(p.rw, wire.EncodeResponseTree(responseNode)); err != nil {
			return err
		}

		perRecord[j] = root.Flatten()
	}

	var check wire.VerifierCheckMessage
	if err := recv(p.rw, &check); err != nil {
		return err
	}
	if !check.Success {
		return fmt.Errorf("%w: verifier rejected commit phase", ErrProof)
	}

	p.agg = monomial.AggregateOpenings(p.pp, perRecord)
	p.log.Info("protocol: dishonest-safe commit complete", "records", len(p.db), "ids", len(p.agg))
	return nil
}

// Randomize runs the Randomize phase: N coin-flip
// iterations folded into a single noise opening centred on zero.
func (p *Prover) Randomize() error {
	res := dparams.Compute(p.params.DBSize, p.params.Epsilon, p.params.Delta)
	if res.N == 0 {
		return fmt.Errorf("%w: randomize iteration count N must be > 0", ErrSemantic)
	}
	p.nIters = res.N

	nSum := group.Zero()
	rSum := group.Zero()

	for iter := uint64(0); iter < res.N; iter++ {
		bD, err := randomBit(rand.Reader)
		if err != nil {
			return fmt.Errorf("%w: sampling coin bit: %v", ErrTransport, err)
		}
		rD, err := group.RandomScalar(rand.Reader)
		if err != nil {
			return fmt.Errorf("%w: sampling coin randomness: %v", ErrTransport, err)
		}
		cD := pedersen.CommitWithR(p.pp, group.NewScalarFromUint64(uint64(bD)), rD)

		bp, err := sigma.NewBitProver(p.pp, bD, cD, rD)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSchema, err)
		}
		bitCommit, err := bp.Commit(rand.Reader)
		if err != nil {
			return fmt.Errorf("%w: randomize bit-sigma commit: %v", ErrTransport, err)
		}
		if err := send(p.rw, wire.ProverRandomnessComm{Commitment: wire.EncodeBitCommitment(cD, bitCommit)}); err != nil {
			return err
		}

		var chal wire.VerifierRandomnessChallenge
		if err := recv(p.rw, &chal); err != nil {
			return err
		}
		if chal.PlayerB != 0 && chal.PlayerB != 1 {
			return fmt.Errorf("%w: player_b must be 0 or 1, got %d", ErrSchema, chal.PlayerB)
		}
		e, err := wire.DecodeScalar(chal.SigmaChallenge)
		if err != nil {
			return fmt.Errorf("%w: decoding randomize challenge: %v", ErrTransport, err)
		}

		resp := bp.Respond(e)

		var finalBit uint8
		var finalC group.Point
		var finalR group.Scalar
		if chal.PlayerB == 0 {
			finalBit, finalC, finalR = bD, cD, rD
		} else {
			finalBit, finalC, finalR = 1-bD, p.one.Commitment.Sub(cD), rD.Neg()
		}

		if err := send(p.rw, wire.ProverRandomnessResponse{
			FinalCommitment: wire.EncodePoint(finalC),
			SigmaResponse:   wire.EncodeBitResponse(resp),
		}); err != nil {
			return err
		}

		var check wire.VerifierCheckMessage
		if err := recv(p.rw, &check); err != nil {
			return err
		}
		if !check.Success {
			return fmt.Errorf("%w: verifier rejected randomize iteration %d", ErrProof, iter)
		}

		nSum = nSum.Add(group.NewScalarFromUint64(uint64(finalBit)))
		rSum = rSum.Add(finalR)
	}

	adjustment := group.NewScalarFromUint64(res.N / 2)
	m := nSum.Sub(adjustment)
	p.noise = sigma.Triple{M: m, R: rSum, C: pedersen.CommitWithR(p.pp, m, rSum)}
	p.log.Info("protocol: randomize complete", "n", res.N, "delta", res.Delta)
	return nil
}

// ServeQuery answers exactly one Query-phase round: read a QueryMessage,
// fold the requested coefficients against the aggregated openings and the
// noise opening, and send back the plaintext answer and its randomness.
// A coefficient referencing an id the Commit phase
// never produced is a SemanticError and terminates the session without
// sending a reply.
func (p *Prover) ServeQuery() error {
	var q wire.QueryMessage
	if err := recv(p.rw, &q); err != nil {
		return err
	}
	coeffs, err := wire.DecodeScalarMap(q.Coefficients)
	if err != nil {
		return fmt.Errorf("%w: decoding query coefficients: %v", ErrTransport, err)
	}

	qa := p.noise.M
	qr := p.noise.R
	for id, coeff := range coeffs {
		t, ok := p.agg[id]
		if !ok {
			return fmt.Errorf("%w: query references unknown monomial id %d", ErrSemantic, id)
		}
		qa = qa.Add(coeff.Mul(t.M))
		qr = qr.Add(coeff.Mul(t.R))
	}

	return send(p.rw, wire.QueryAnswerMessage{
		Answer: wire.EncodeScalar(qa),
		Proof:  wire.EncodeScalar(qr),
	})
}

// randomBit draws a single uniform bit from rnd.
func randomBit(rnd io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(rnd, b[:]); err != nil {
		return 0, err
	}
	return b[0] & 1, nil
}
