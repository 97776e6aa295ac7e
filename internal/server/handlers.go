// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, hub stats and the built-in test page.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Tyrowin/gochat-relay/internal/chat"
)

// WebSocketHandler upgrades GET requests to WebSocket, connects the new
// client to the hub and starts its pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	origin := r.Header.Get("Origin")
	s.logger.Info("connection request", "origin", origin, "remote", r.RemoteAddr)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, s.hub, r.RemoteAddr, s.cfg, s.logger)

	session, err := s.hub.Connect(client, origin)
	if err != nil {
		s.logger.Warn("rejecting connection", "remote", r.RemoteAddr, "error", err)
		_ = client.Close()
		client.closeConnection()
		return
	}
	client.session = session

	if !s.startPumps(client) {
		s.logger.Info("server shutting down, dropping connection", "remote", r.RemoteAddr)
		if err := s.hub.Disconnect(session); err != nil && !errors.Is(err, chat.ErrHubClosed) {
			s.logger.Warn("error disconnecting session", "remote", r.RemoteAddr, "error", err)
		}
		_ = client.Close()
		client.closeConnection()
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Relay chat server is running!")
}

// StatsHandler reports the hub's live counters as JSON.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := s.hub.Stats()
	if errors.Is(err, chat.ErrHubClosed) {
		http.Error(w, "hub is shutting down", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.logger.Warn("error writing stats response", "error", err)
	}
}

// TestPageHandler serves an HTML page that speaks the relay protocol: the
// first line typed is the name, later lines are chat messages.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprint(w, testPageHTML)
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Relay Chat Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { width: 300px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        button:hover { background-color: #005a87; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>Relay Chat Test</h1>

    <div id="status" class="status disconnected">Disconnected</div>

    <div>
        <span id="prompt">Choose name:</span>
        <input type="text" id="input" disabled>
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
    </div>

    <div id="messages"></div>

    <script>
        let ws = null;
        let myName = null;
        let myColor = null;
        const messages = document.getElementById('messages');
        const input = document.getElementById('input');
        const prompt = document.getElementById('prompt');
        const statusDiv = document.getElementById('status');
        const connectButton = document.getElementById('connectButton');

        function pad(n) { return (n < 10 ? '0' : '') + n; }

        // Text and author arrive escaped by the server.
        function addMessage(author, text, color, time) {
            const dt = new Date(time);
            const el = document.createElement('p');
            el.innerHTML = '<span style="color:' + (color || 'black') + '">' + author + '</span> @ ' +
                pad(dt.getHours()) + ':' + pad(dt.getMinutes()) + ': ' + text;
            messages.appendChild(el);
            messages.scrollTop = messages.scrollHeight;
        }

        function addInfo(text) {
            const el = document.createElement('p');
            el.style.color = 'gray';
            el.textContent = text;
            messages.appendChild(el);
        }

        function setConnected(connected) {
            statusDiv.textContent = connected ? 'Connected' : 'Disconnected';
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
            input.disabled = !connected;
            connectButton.textContent = connected ? 'Disconnect' : 'Connect';
            if (!connected) {
                myName = null;
                myColor = null;
                prompt.textContent = 'Choose name:';
            }
        }

        function connect() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws');
            ws.onopen = function() { setConnected(true); };
            ws.onclose = function() { addInfo('Connection closed'); setConnected(false); ws = null; };
            ws.onerror = function() { addInfo('Connection error'); };
            ws.onmessage = function(event) {
                let json;
                try { json = JSON.parse(event.data); } catch (e) { addInfo('Invalid JSON: ' + event.data); return; }
                if (json.type === 'color') {
                    myColor = json.data;
                    prompt.textContent = myName;
                    prompt.style.color = myColor;
                } else if (json.type === 'history') {
                    json.data.forEach(function(m) { addMessage(m.author, m.text, m.color, m.time); });
                } else if (json.type === 'message') {
                    addMessage(json.data.author, json.data.text, json.data.color, json.data.time);
                }
            };
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.close();
            } else {
                connect();
            }
        }

        input.addEventListener('keydown', function(e) {
            if (e.key !== 'Enter' || !input.value || !ws) {
                return;
            }
            ws.send(input.value);
            if (myName === null) {
                myName = input.value;
                prompt.textContent = myName;
            }
            input.value = '';
        });
    </script>
</body>
</html>`
