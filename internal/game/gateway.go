package game

import (
	"context"

	"trivia-live-service/internal/domain"
)

// BroadcastGateway delivers engine events to connections. Implementations
// must never block the caller on slow receivers. Delivery order is only
// guaranteed within a single call; events from separate calls may arrive
// interleaved, and the engine does not rely on cross-call ordering.
type BroadcastGateway interface {
	Broadcast(connIDs []string, event domain.Event)
	Send(connID string, event domain.Event)
}

// QuizRepository loads immutable quiz snapshots (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// RecordStore persists session records for durability and auditing. Writes
// after creation are best-effort mirrors; failures degrade observability
// only and never block the live session.
type RecordStore interface {
	// Create inserts a new record, failing with domain.ErrCodeTaken when
	// the code is already claimed.
	Create(ctx context.Context, rec domain.SessionRecord) error
	// Get returns the record for code or domain.ErrRecordNotFound.
	Get(ctx context.Context, code string) (domain.SessionRecord, error)
	// UpdateStatus mirrors live state onto the record.
	UpdateStatus(ctx context.Context, code, status string, index int) error
}
