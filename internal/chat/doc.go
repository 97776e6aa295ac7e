// Package chat implements the session and broadcast engine of the relay.
//
// A Hub owns the live session registry, the bounded message history and the
// identity color pool. Transports hand it connect, frame and disconnect
// events; the hub serializes them on a single goroutine and writes outbound
// frames back through each session's Conn. Nothing in this package knows
// about WebSockets or HTTP.
package chat
