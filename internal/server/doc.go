// Package server is the WebSocket transport for the broadcast relay.
//
// It upgrades HTTP requests with gorilla/websocket, runs a read pump and a
// write pump per connection, and feeds connect, frame and disconnect events
// into a chat.Hub. Configuration, origin checks, the HTTP routes and the
// graceful shutdown sequence live here as well.
package server
