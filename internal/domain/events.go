package domain

// Event is a tagged outbound message. Each variant has a fixed schema; the
// transport serializes them as {type, payload} envelopes.
type Event interface {
	EventType() string
}

// PlayerJoinedEvent carries the full roster after a join, sent to everyone
// in the session including the new player.
type PlayerJoinedEvent struct {
	Roster []RosterEntry `json:"roster"`
}

func (PlayerJoinedEvent) EventType() string { return "playerJoined" }

// PlayerLeftEvent carries the roster after a leave or disconnect.
type PlayerLeftEvent struct {
	Roster []RosterEntry `json:"roster"`
}

func (PlayerLeftEvent) EventType() string { return "playerLeft" }

// QuestionEvent delivers the sanitized current question, either broadcast on
// advance or sent directly to a late joiner.
type QuestionEvent struct {
	SanitizedQuestion
}

func (QuestionEvent) EventType() string { return "question" }

// AnswerReceivedEvent is sent to the host only, never to other players.
type AnswerReceivedEvent struct {
	ConnectionID string `json:"connectionId"`
	Correct      bool   `json:"correct"`
	Score        int    `json:"score"`
}

func (AnswerReceivedEvent) EventType() string { return "answerReceived" }

// ScoreUpdateEvent is sent to the submitting player only.
type ScoreUpdateEvent struct {
	Score int `json:"score"`
}

func (ScoreUpdateEvent) EventType() string { return "scoreUpdate" }

// QuizEndedEvent carries the final leaderboard, ordered by score descending
// with ties broken by join order.
type QuizEndedEvent struct {
	Results []LeaderboardEntry `json:"results"`
}

func (QuizEndedEvent) EventType() string { return "quizEnded" }

// ErrorEvent reports a failure scoped to a single connection.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (ErrorEvent) EventType() string { return "error" }
