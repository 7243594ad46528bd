// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package drbg implements the single deterministic, shared-seed random
// stream the protocol uses to derive public parameters (G, H) in Setup.
// It must never be used for blinding, challenges, or coin flips; those
// draw from a separate OS-backed crypto/rand.Reader.
package drbg

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"
)

// SeedSize is the size, in bytes, of the shared seed exchanged in
// SetupMessage.
const SeedSize = 32

// ErrShortSeed is returned when a seed of the wrong length is supplied.
var ErrShortSeed = errors.New("drbg: seed must be 32 bytes")

// Stream is a deterministic byte stream keyed by the 32-byte shared seed.
// Both prover and verifier construct one from the identical seed and read
// it in lock-step, so every value they derive from it (and only those
// values, ρ in pedersen.Setup) is bit-identical on both sides.
type Stream struct {
	ks   cipher.Stream
	zero [64]byte // reused keystream source; XORing zeroes yields raw keystream
}

// NewStream derives a ChaCha20 keystream from (seed, label) via a
// domain-separated blake3 hash. Distinct labels never collide into the
// same sub-stream even when seeded identically.
func NewStream(seed []byte, label string) (*Stream, error) {
	if len(seed) != SeedSize {
		return nil, ErrShortSeed
	}

	h := blake3.New()
	_, _ = h.Write([]byte("dpquery-drbg-v1|"))
	_, _ = h.Write([]byte(label))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(seed)
	key := h.Sum(nil) // 32 bytes

	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[:8], uint64(len(label)))

	ks, err := chacha20.NewUnauthenticatedCipher(key, nonce[:])
	if err != nil {
		return nil, err
	}
	return &Stream{ks: ks}, nil
}

// Read implements io.Reader, producing the next len(p) deterministic
// bytes of the stream.
func (s *Stream) Read(p []byte) (int, error) {
	n := len(p)
	for off := 0; off < n; {
		chunk := s.zero[:]
		if n-off < len(chunk) {
			chunk = chunk[:n-off]
		}
		s.ks.XORKeyStream(p[off:off+len(chunk)], chunk)
		off += len(chunk)
	}
	return n, nil
}
