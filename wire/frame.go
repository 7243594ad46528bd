// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire implements the protocol's transport framing and message
// schema: a 4-byte little-endian length prefix around a
// self-describing JSON payload, and the Go structs for every flight the
// prover and verifier exchange.
package wire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameLength bounds a single frame's payload size, guarding against a
// corrupt or adversarial length prefix driving an unbounded allocation.
const MaxFrameLength = 256 << 20 // 256 MiB

// ErrFrameTooLarge is returned when a frame's declared length exceeds
// MaxFrameLength.
var ErrFrameTooLarge = errors.New("wire: frame length exceeds maximum")

// WriteFrame writes payload to w as a 4-byte little-endian length prefix
// followed by payload itself.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameLength {
		return ErrFrameTooLarge
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wire: write frame header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("wire: write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r, completing any
// partial read before returning.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("wire: read frame header: %w", err)
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxFrameLength {
		return nil, ErrFrameTooLarge
	}
	if n == 0 {
		return nil, nil
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("wire: read frame payload: %w", err)
	}
	return payload, nil
}

// WriteJSON marshals v and writes it as one frame.
func WriteJSON(w io.Writer, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wire: marshal: %w", err)
	}
	return WriteFrame(w, payload)
}

// ReadJSON reads one frame and unmarshals it into v.
func ReadJSON(r io.Reader, v interface{}) error {
	payload, err := ReadFrame(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("wire: unmarshal: %w", err)
	}
	return nil
}
