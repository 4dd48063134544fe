package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trivia-live-service/internal/domain"
	"trivia-live-service/internal/game"
	"trivia-live-service/internal/infra/memory"
)

type wsFixture struct {
	server   *httptest.Server
	registry *memory.Registry
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()

	registry := memory.NewRegistry()
	records := memory.NewRecordStore()
	repo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	hub := NewHub()
	service := game.NewGameService(registry, repo, records, hub, zerolog.Nop(), game.Settings{})
	handler := NewWSHandler(service, hub, zerolog.Nop())

	if err := records.Create(context.Background(), domain.SessionRecord{
		Code: "123456", QuizID: "quiz-1", HostID: "h1",
		Status: "pending", CurrentQuestionIndex: -1,
	}); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &wsFixture{server: server, registry: registry}
}

func (f *wsFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	u := "ws" + f.server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForSession blocks until the host attach has registered the session;
// attachHost has no ack event, so the test observes the registry directly.
func (f *wsFixture) waitForSession(t *testing.T, code string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := f.registry.Lookup(code); err == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s never registered", code)
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn, expect string) map[string]any {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%v)", expect, msg.Type, msg.Payload)
	}
	return msg.Payload
}

func TestWebSocketGameFlow(t *testing.T) {
	f := newWSFixture(t)

	host := f.dial(t)
	send(t, host, "attachHost", map[string]any{"code": "123456", "quizId": "quiz-1", "hostId": "h1"})
	f.waitForSession(t, "123456")

	player := f.dial(t)
	send(t, player, "join", map[string]any{"code": "123456", "displayName": "Alice"})

	// Both sides see the roster broadcast.
	hostJoined := readNext(t, host, "playerJoined")
	readNext(t, player, "playerJoined")
	roster := hostJoined["roster"].([]any)
	if len(roster) != 1 {
		t.Fatalf("expected roster of 1, got %v", roster)
	}

	send(t, host, "advance", map[string]any{"code": "123456"})
	hostQ := readNext(t, host, "question")
	playerQ := readNext(t, player, "question")
	if hostQ["id"] != "q1" || playerQ["id"] != "q1" {
		t.Fatalf("expected q1 on both connections, got %v / %v", hostQ["id"], playerQ["id"])
	}
	if _, leaked := playerQ["correctOption"]; leaked {
		t.Fatalf("correct option leaked to player: %v", playerQ)
	}

	send(t, player, "submitAnswer", map[string]any{"code": "123456", "questionId": "q1", "selectedOptionIndex": 1})
	update := readNext(t, player, "scoreUpdate")
	if update["score"].(float64) != 100 {
		t.Fatalf("expected score 100, got %v", update["score"])
	}
	received := readNext(t, host, "answerReceived")
	if received["correct"] != true {
		t.Fatalf("expected correct answer report, got %v", received)
	}

	send(t, host, "forceFinish", map[string]any{"code": "123456"})
	readNext(t, player, "quizEnded")
	ended := readNext(t, host, "quizEnded")
	results := ended["results"].([]any)
	top := results[0].(map[string]any)
	if top["displayName"] != "Alice" || top["score"].(float64) != 100 {
		t.Fatalf("unexpected leaderboard: %v", results)
	}
}

func TestWebSocketRejectsMalformedMessages(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t)

	send(t, conn, "submitAnswer", map[string]any{"code": "123456"})
	errPayload := readNext(t, conn, "error")
	if errPayload["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected validation error, got %v", errPayload)
	}

	send(t, conn, "teleport", map[string]any{})
	errPayload = readNext(t, conn, "error")
	if errPayload["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected validation error for unknown type, got %v", errPayload)
	}

	send(t, conn, "join", map[string]any{"code": "999999", "displayName": "Ghost"})
	errPayload = readNext(t, conn, "error")
	if errPayload["code"] != "SESSION_NOT_FOUND" {
		t.Fatalf("expected session not found, got %v", errPayload)
	}
}

func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{
					ID:   "q1",
					Text: "What is 2 + 2?",
					Options: []domain.Option{
						{Text: "3"}, {Text: "4"}, {Text: "5"},
					},
					CorrectOption: 1,
				},
				{
					ID:   "q2",
					Text: "Which planet is red?",
					Options: []domain.Option{
						{Text: "Venus"}, {Text: "Mars"},
					},
					CorrectOption: 1,
				},
			},
		},
	}
}
