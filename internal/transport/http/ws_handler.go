package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"sdg-quest/internal/app"
)

// WSHandler streams newly submitted score records to websocket clients.
type WSHandler struct {
	scores   *app.ScoreService
	upgrader websocket.Upgrader
}

func NewWSHandler(scores *app.ScoreService) *WSHandler {
	return &WSHandler{
		scores: scores,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts the score feed on mux.
func (h *WSHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/scores", h.ServeScores)
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type subscribedPayload struct {
	UserID string `json:"userId"`
}

// ServeScores upgrades the request and forwards the user's score records
// until the client disconnects.
func (h *WSHandler) ServeScores(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	feedConnections.Inc()
	defer feedConnections.Dec()

	updates, cancel := h.scores.Subscribe(r.Context(), userID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "subscribed", Payload: subscribedPayload{UserID: userID}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case record, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "score", Payload: record}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// The feed is one-way; reading only detects the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
