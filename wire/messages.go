// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

// Scalars and group elements travel as their 32-byte canonical encodings;
// encoding/json renders a []byte field as base64 automatically.

// SetupMessage is the prover's first flight: the shared seed for the
// deterministic parameter-derivation stream.
type SetupMessage struct {
	Seed []byte `json:"seed"`
}

// ReadyMessage is a bare phase barrier sent by either party.
type ReadyMessage struct {
	Ready bool `json:"ready"`
}

// BitCommitment is one bit-Σ commitment flight: the Pedersen commitment
// to the bit itself (Cb) alongside the OR-composed pair (sigma.BitCommitment's
// C0, C1) the verifier checks it against.
type BitCommitment struct {
	Cb []byte `json:"cb"`
	C0 []byte `json:"c0"`
	C1 []byte `json:"c1"`
}

// BitSigmaCommitmentMessage carries one record's d bit-Σ commitments.
type BitSigmaCommitmentMessage struct {
	Commitments []BitCommitment `json:"commitments"`
}

// ProductSigmaCommitment is one product-Σ commitment flight
// (sigma.ProductCommitment).
type ProductSigmaCommitment struct {
	Alpha []byte `json:"alpha"`
	Beta  []byte `json:"beta"`
	Gamma []byte `json:"gamma"`
}

// MonomialCommitmentTreeNode is one node of the recursive monomial
// commitment tree. Commitment and ProductSigmaCommitment are
// both optional: the root carries neither, depth-1 nodes carry only
// Commitment, depth-≥2 nodes carry both.
type MonomialCommitmentTreeNode struct {
	Commitment             []byte                       `json:"commitment,omitempty"`
	ProductSigmaCommitment *ProductSigmaCommitment      `json:"product_sigma_commitment,omitempty"`
	Children               []MonomialCommitmentTreeNode `json:"children,omitempty"`
}

// BitSigmaChallengeMessage carries one record's d bit-Σ challenges.
type BitSigmaChallengeMessage struct {
	Challenges [][]byte `json:"challenges"`
}

// MonomialChallengeTreeNode mirrors MonomialCommitmentTreeNode's shape,
// one challenge per depth-≥2 node.
type MonomialChallengeTreeNode struct {
	Challenge []byte                      `json:"challenge,omitempty"`
	Children  []MonomialChallengeTreeNode `json:"children,omitempty"`
}

// BitResponse is one bit-Σ response flight (sigma.BitResponse).
type BitResponse struct {
	Z0 []byte `json:"z0"`
	Z1 []byte `json:"z1"`
	E0 []byte `json:"e0"`
	E1 []byte `json:"e1"`
}

// BitSigmaResponseMessage carries one record's d bit-Σ responses.
type BitSigmaResponseMessage struct {
	Responses []BitResponse `json:"responses"`
}

// ProductSigmaResponse is one product-Σ response flight
// (sigma.ProductResponse).
type ProductSigmaResponse struct {
	Z1 []byte `json:"z1"`
	Z2 []byte `json:"z2"`
	Z3 []byte `json:"z3"`
	Z4 []byte `json:"z4"`
	Z5 []byte `json:"z5"`
}

// MonomialResponseTreeNode mirrors the commitment/challenge tree shape,
// one response per depth-≥2 node.
type MonomialResponseTreeNode struct {
	Response *ProductSigmaResponse      `json:"response,omitempty"`
	Children []MonomialResponseTreeNode `json:"children,omitempty"`
}

// VerifierCheckMessage reports pass/fail of the preceding sub-proof batch
// (Commit phase) or randomize iteration.
type VerifierCheckMessage struct {
	Success bool `json:"success"`
}

// CommitmentMapMessage is the honest-mode Commit flight: the full
// id→commitment map, keyed by the decimal string form of the id (JSON
// object keys must be strings).
type CommitmentMapMessage struct {
	CommitmentMap map[string][]byte `json:"commitment_map"`
}

// ProverRandomnessComm is one Randomize iteration's move-1 flight.
type ProverRandomnessComm struct {
	Commitment BitCommitment `json:"commitment"`
}

// VerifierRandomnessChallenge is one Randomize iteration's move-2 flight:
// the verifier's own coin flip plus its bit-Σ challenge.
type VerifierRandomnessChallenge struct {
	PlayerB        uint8  `json:"player_b"`
	SigmaChallenge []byte `json:"sigma_challenge"`
}

// ProverRandomnessResponse is one Randomize iteration's move-3 flight: the
// folded final commitment plus the bit-Σ response proving it.
type ProverRandomnessResponse struct {
	FinalCommitment []byte      `json:"final_commitment"`
	SigmaResponse   BitResponse `json:"sigma_response"`
}

// QueryMessage is the verifier's query: a sparse id→coefficient map.
type QueryMessage struct {
	Coefficients map[string][]byte `json:"coefficients"`
}

// QueryAnswerMessage is the prover's answer to a query: the opened
// plaintext and randomness of the folded commitment.
type QueryAnswerMessage struct {
	Answer []byte `json:"answer"`
	Proof  []byte `json:"proof"`
}
