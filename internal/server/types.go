// Package server holds small helpers shared by the client pumps and the hub
// wiring.
package server

import (
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/gochat-relay/internal/chat"
)

// frameKind maps a gorilla message type onto the hub's frame classification.
func frameKind(messageType int) chat.FrameKind {
	switch messageType {
	case websocket.TextMessage:
		return chat.TextFrame
	case websocket.BinaryMessage:
		return chat.BinaryFrame
	default:
		return chat.ControlFrame
	}
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
