// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello dpquery")
	require.NoError(t, WriteFrame(&buf, payload))
	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, nil))
	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	msg := SetupMessage{Seed: bytes.Repeat([]byte{0x42}, 32)}
	require.NoError(t, WriteJSON(&buf, msg))
	var got SetupMessage
	require.NoError(t, ReadJSON(&buf, &got))
	require.Equal(t, msg.Seed, got.Seed)
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})
	_, err := ReadFrame(&buf)
	require.ErrorIs(t, err, ErrFrameTooLarge)
}
