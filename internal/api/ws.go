package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket progress transport: clients subscribe to solve jobs and get the
// same events the SSE stream carries.

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsSubscribePayload struct {
	JobID string `json:"jobId"`
}

// JobsWSHandler handles /v1/jobs/ws.
func (s *Server) JobsWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	// Track subscriptions: message id -> job channel
	type sub struct {
		jobID string
		ch    chan SolveEvent
	}
	subs := map[string]sub{}
	defer func() {
		for _, sb := range subs {
			s.Broker.Unsubscribe(sb.jobID, sb.ch)
		}
	}()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	writeMu := make(chan struct{}, 1)
	writeMu <- struct{}{}
	write := func(v any) error {
		<-writeMu
		defer func() { writeMu <- struct{}{} }()
		return conn.WriteJSON(v)
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		switch msg.Type {
		case "subscribe":
			var payload wsSubscribePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.JobID == "" {
				_ = write(wsMessage{Type: "error", ID: msg.ID})
				continue
			}
			ch := s.Broker.Subscribe(payload.JobID)
			subs[msg.ID] = sub{jobID: payload.JobID, ch: ch}
			go func(id string, ch chan SolveEvent) {
				for evt := range ch {
					data, _ := json.Marshal(evt)
					if err := write(wsMessage{Type: "next", ID: id, Payload: data}); err != nil {
						return
					}
					if evt.Terminal() {
						_ = write(wsMessage{Type: "complete", ID: id})
						return
					}
				}
			}(msg.ID, ch)
		case "complete":
			if sb, ok := subs[msg.ID]; ok {
				s.Broker.Unsubscribe(sb.jobID, sb.ch)
				delete(subs, msg.ID)
			}
		case "ping":
			_ = write(wsMessage{Type: "pong"})
		}
	}
}
