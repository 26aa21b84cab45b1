package http

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const feedWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

type feedMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// serveResultsFeed streams completed attempt results for one quiz over a
// websocket. A slow consumer misses updates instead of stalling publishers.
func (h *Handler) serveResultsFeed(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "quizID"))
	if err != nil {
		http.Error(w, "quiz id must be a UUID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("results feed upgrade: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe(quizID)
	defer cancel()

	// Drain the read side so client close frames are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case result, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(feedMessage{Type: "attemptResult", Payload: result}); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
