// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package protocol

import (
	"fmt"
	"io"

	"github.com/luxfi/dpquery/wire"
)

// send writes v as one length-prefixed JSON frame, wrapping any failure
// as ErrTransport.
func send(w io.Writer, v interface{}) error {
	if err := wire.WriteJSON(w, v); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// recv reads one length-prefixed JSON frame into v, wrapping any failure
// as ErrTransport.
func recv(r io.Reader, v interface{}) error {
	if err := wire.ReadJSON(r, v); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}
