package http_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestResultsFeedStreamsCompletedAttempts(t *testing.T) {
	srv := newTestServer(t)
	quiz := srv.createQuiz(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/quizzes/" + quiz.ID.String() + "/results"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial results feed: %v", err)
	}
	defer conn.Close()

	correct, _ := quiz.Questions[0].CorrectOption()
	answers := map[string]string{
		quiz.Questions[0].ID.String(): correct.ID.String(),
		quiz.Questions[1].ID.String(): quiz.Questions[1].Options[0].ID.String(),
	}
	resp := srv.do(t, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/submit", srv.learner,
		map[string]any{"answers": answers})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: got status %d", resp.StatusCode)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    string `json:"type"`
		Payload struct {
			TotalScore    float64 `json:"totalScore"`
			AttemptNumber int     `json:"attemptNumber"`
		} `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read feed message: %v", err)
	}
	if msg.Type != "attemptResult" {
		t.Fatalf("got message type %q", msg.Type)
	}
	if msg.Payload.TotalScore != 2 || msg.Payload.AttemptNumber != 1 {
		t.Fatalf("unexpected payload: %+v", msg.Payload)
	}
}

func TestResultsFeedIgnoresOtherQuizzes(t *testing.T) {
	srv := newTestServer(t)
	watched := srv.createQuiz(t)
	other := srv.createQuiz(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/quizzes/" + watched.ID.String() + "/results"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial results feed: %v", err)
	}
	defer conn.Close()

	correct, _ := other.Questions[0].CorrectOption()
	otherCorrect, _ := other.Questions[1].CorrectOption()
	answers := map[string]string{
		other.Questions[0].ID.String(): correct.ID.String(),
		other.Questions[1].ID.String(): otherCorrect.ID.String(),
	}
	resp := srv.do(t, http.MethodPost, "/api/quizzes/"+other.ID.String()+"/submit", srv.learner,
		map[string]any{"answers": answers})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: got status %d", resp.StatusCode)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("expected no message for unwatched quiz, got %v", msg)
	}
}
