// Package wire implements the newline-delimited JSON envelope protocol
// spoken over each TCP connection: one JSON object per line, shaped as
// {"type": "...", "data": {...}}.
package wire

import (
	"encoding/json"
	"fmt"
)

// Envelope is the outermost shape of every frame, in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ProtocolError marks a frame that could not be parsed or dispatched -
// distinct from a transport error, so callers can tell the two apart. The
// connection actor closes the connection on either.
type ProtocolError struct {
	msg string
}

func (e *ProtocolError) Error() string { return e.msg }

func newProtocolError(format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{msg: fmt.Sprintf(format, args...)}
}
