package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope types written to clients.
const (
	TypeHistory = "history"
	TypeColor   = "color"
	TypeMessage = "message"
)

// ChatEvent is one chat message as kept in history and sent to clients.
// Text and Author are already sanitized.
type ChatEvent struct {
	Time   int64  `json:"time"`
	Text   string `json:"text"`
	Author string `json:"author"`
	Color  string `json:"color,omitempty"`
}

// Envelope is the tagged frame every outbound message is wrapped in.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// encodeEnvelope writes text verbatim; it was already escaped by Sanitize
// and must not be escaped a second time as \u0026 sequences.
func encodeEnvelope(typ string, data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Envelope{Type: typ, Data: data}); err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", typ, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
