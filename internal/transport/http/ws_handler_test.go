package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sdg-quest/internal/app"
	"sdg-quest/internal/auth"
	"sdg-quest/internal/domain"
	"sdg-quest/internal/infra/memory"
)

func TestWebSocketScoreFeed(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(
		NewAPIHandler(service.catalog, service.scores, auth.NewTokenService("", 0)),
		NewWSHandler(service.scores),
	))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/scores?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Subscription is registered before this message is sent.
	msgType, payload := readNext(conn, t, "subscribed")
	if payload["userId"] != "u1" {
		t.Fatalf("expected subscribed payload for u1, got %v (%s)", payload, msgType)
	}

	if _, err := service.scores.Submit(context.Background(), domain.ScoreSubmission{
		UserID: "u2", GoalID: 4, QuizID: "quiz-4", Score: 1, TotalQuestions: 2,
	}); err != nil {
		t.Fatalf("submit for other user: %v", err)
	}
	if _, err := service.scores.Submit(context.Background(), domain.ScoreSubmission{
		UserID: "u1", GoalID: 4, QuizID: "quiz-4", Score: 2, TotalQuestions: 2,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, payload = readNext(conn, t, "score")
	if payload["userId"] != "u1" || payload["score"] != float64(2) {
		t.Fatalf("unexpected score payload %v", payload)
	}
}

func TestWebSocketRequiresUser(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(
		NewAPIHandler(service.catalog, service.scores, auth.NewTokenService("", 0)),
		NewWSHandler(service.scores),
	))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/scores"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure without userId")
	}
	if resp == nil || resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %+v", resp)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

type testService struct {
	catalog *memory.CatalogRepository
	scores  *app.ScoreService
}

func newTestService() testService {
	catalog := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(sampleQuizzes()), time.Minute)
	return testService{
		catalog: catalog,
		scores:  app.NewScoreService(memory.NewScoreStore(), catalog, nil),
	}
}

func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:     "quiz-4",
			GoalID: 4,
			Title:  "Quality Education",
			Questions: []domain.Question{
				{
					Prompt: "Which target covers free primary education?",
					Options: []domain.Option{
						{Text: "4.1", IsCorrect: true},
						{Text: "4.7"},
					},
				},
				{
					Prompt: "What share of children lack basic reading skills?",
					Options: []domain.Option{
						{Text: "About one in ten"},
						{Text: "More than half", IsCorrect: true},
					},
				},
			},
		},
	}
}
