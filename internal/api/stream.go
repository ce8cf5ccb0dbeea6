package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const watchProtocolVersion = 1

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // CORS handles browsers; ws clients are trusted readers
}

var nextWatcherID atomic.Uint64

// subscribeMsg is the watch handshake. Clients must send it first and
// may resend it to change their digest rate.
type subscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocol_version"`
	IntervalMs      int    `json:"interval_ms"`
}

// handleWatch upgrades to a websocket and streams simulation digests.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Handshake: must send SUBSCRIBE first.
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	var sub subscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
		return
	}
	if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != watchProtocolVersion {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
		return
	}
	normalizeSubscribe(&sub)

	wid := nextWatcherID.Add(1)
	slog.Info("watcher connected", "id", wid, "interval_ms", sub.IntervalMs)

	interval := make(chan int, 1)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine: builds and sends a digest on its own ticker so a
	// slow reader can never stall the HTTP mux.
	writeErr := make(chan error, 1)
	go func() {
		ticker := time.NewTicker(time.Duration(sub.IntervalMs) * time.Millisecond)
		defer ticker.Stop()
		_, lastEvents := s.Sim.Digest(0) // prime the event cursor
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case ms := <-interval:
				ticker.Reset(time.Duration(ms) * time.Millisecond)
			case <-ticker.C:
				digest, nowEvents := s.Sim.Digest(lastEvents)
				lastEvents = nowEvents
				b, err := json.Marshal(digest)
				if err != nil {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	// Reader loop: allow SUBSCRIBE updates.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var re subscribeMsg
		if err := json.Unmarshal(msg, &re); err != nil {
			continue
		}
		if re.Type != "SUBSCRIBE" || re.ProtocolVersion != watchProtocolVersion {
			continue
		}
		normalizeSubscribe(&re)
		select {
		case interval <- re.IntervalMs:
		default:
			// An update is already pending; the client may resend.
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	// Best-effort wait so the writer doesn't outlive conn.
	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
	slog.Info("watcher disconnected", "id", wid)
}

func normalizeSubscribe(sub *subscribeMsg) {
	if sub.IntervalMs <= 0 {
		sub.IntervalMs = 500
	}
	if sub.IntervalMs < 100 {
		sub.IntervalMs = 100
	}
	if sub.IntervalMs > 10000 {
		sub.IntervalMs = 10000
	}
}
