package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-live-service/internal/domain"
)

// RecordStore persists game session records in Postgres. Code uniqueness is
// enforced by the primary key, so racing creates cannot both claim a code.
type RecordStore struct {
	pool *pgxpool.Pool
}

func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

func (s *RecordStore) Create(ctx context.Context, rec domain.SessionRecord) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO game_sessions (code, quiz_id, host_id, status, current_index)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (code) DO NOTHING`,
		rec.Code, rec.QuizID, rec.HostID, rec.Status, rec.CurrentQuestionIndex)
	if err != nil {
		return fmt.Errorf("insert game session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeTaken
	}
	return nil
}

func (s *RecordStore) Get(ctx context.Context, code string) (domain.SessionRecord, error) {
	var rec domain.SessionRecord
	err := s.pool.QueryRow(ctx,
		`SELECT code, quiz_id, host_id, status, current_index FROM game_sessions WHERE code=$1`,
		code).Scan(&rec.Code, &rec.QuizID, &rec.HostID, &rec.Status, &rec.CurrentQuestionIndex)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SessionRecord{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("load game session: %w", err)
	}
	return rec, nil
}

func (s *RecordStore) UpdateStatus(ctx context.Context, code, status string, index int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE game_sessions SET status=$2, current_index=$3, updated_at=now() WHERE code=$1`,
		code, status, index)
	if err != nil {
		return fmt.Errorf("update game session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}
