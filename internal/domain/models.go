package domain

// SessionState tracks the lifecycle of a live game session.
// Transitions are one-directional: Pending -> Active -> Finished.
type SessionState int

const (
	StatePending SessionState = iota
	StateActive
	StateFinished
)

func (s SessionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Option is one selectable answer. It carries text only, so option slices
// are safe to send to players as-is; the correct index lives on Question.
type Option struct {
	Text string `json:"text"`
}

// Question models an MCQ question with a single correct option index.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []Option `json:"options"`
	CorrectOption int      `json:"correctOption"`
	MediaURL      string   `json:"mediaUrl,omitempty"`
}

// Sanitize strips the correct-option index for transmission to clients.
func (q Question) Sanitize() SanitizedQuestion {
	return SanitizedQuestion{
		ID:       q.ID,
		Text:     q.Text,
		Options:  q.Options,
		MediaURL: q.MediaURL,
	}
}

// SanitizedQuestion is the only question shape that ever leaves the engine.
type SanitizedQuestion struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Options  []Option `json:"options"`
	MediaURL string   `json:"mediaUrl,omitempty"`
}

// Quiz is an immutable point-in-time snapshot of a quiz's question list.
// A session holds its own copy for its entire lifetime; later edits to the
// stored quiz never affect a game in progress.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// RosterEntry is a snapshot-friendly view of one attached player.
type RosterEntry struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
	Score        int    `json:"score"`
}

// LeaderboardEntry is one row of the final scoreboard.
type LeaderboardEntry struct {
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// SessionRecord is the persisted mirror of a game session. It is
// authoritative before a live session exists and after one is evicted;
// while a session is live the in-memory state wins.
type SessionRecord struct {
	Code                 string `json:"code"`
	QuizID               string `json:"quizId"`
	HostID               string `json:"hostId"`
	Status               string `json:"status"`
	CurrentQuestionIndex int    `json:"currentQuestionIndex"`
}
