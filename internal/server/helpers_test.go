package server_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/gochat-relay/internal/chat"
	"github.com/Tyrowin/gochat-relay/internal/server"
)

const testOrigin = "http://localhost:1337"

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// startTestServer runs a Server behind httptest and returns it with its ws:// URL.
func startTestServer(t *testing.T, customize func(cfg *server.Config), opts ...chat.Option) (*server.Server, string) {
	t.Helper()

	cfg := server.NewConfig()
	if customize != nil {
		customize(cfg)
	}

	srv := server.New(cfg, discardLogger(), opts...)
	srv.StartHub()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func orderedColors(colors ...string) chat.Option {
	return chat.WithColorPool(chat.NewColorPool(colors, nil))
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, resp, err := dialWithOrigin(wsURL, testOrigin)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func dialWithOrigin(wsURL, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}
	return dialer.Dial(wsURL, headers)
}

func sendText(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(text)))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func readMessage(t *testing.T, conn *websocket.Conn) chat.ChatEvent {
	t.Helper()
	env := readEnvelope(t, conn)
	require.Equal(t, chat.TypeMessage, env.Type)
	var event chat.ChatEvent
	require.NoError(t, json.Unmarshal(env.Data, &event))
	return event
}

// register claims name and returns the color the server assigned.
func register(t *testing.T, conn *websocket.Conn, name string) string {
	t.Helper()
	sendText(t, conn, name)
	env := readEnvelope(t, conn)
	require.Equal(t, chat.TypeColor, env.Type)
	var color string
	require.NoError(t, json.Unmarshal(env.Data, &color))
	return color
}

func waitForStats(t *testing.T, srv *server.Server, cond func(chat.Stats) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		stats, err := srv.Hub().Stats()
		return err == nil && cond(stats)
	}, 2*time.Second, 10*time.Millisecond)
}
