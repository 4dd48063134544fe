package memory

import (
	"context"
	"testing"

	"trivia-live-service/internal/domain"
)

func TestRecordStoreLifecycle(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	rec := domain.SessionRecord{
		Code: "123456", QuizID: "quiz-1", HostID: "h1",
		Status: "pending", CurrentQuestionIndex: -1,
	}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, rec); err != domain.ErrCodeTaken {
		t.Fatalf("expected code taken, got %v", err)
	}

	got, err := store.Get(ctx, "123456")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != rec {
		t.Fatalf("expected %+v, got %+v", rec, got)
	}

	if err := store.UpdateStatus(ctx, "123456", "active", 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.Get(ctx, "123456")
	if got.Status != "active" || got.CurrentQuestionIndex != 0 {
		t.Fatalf("expected mirrored status, got %+v", got)
	}

	if _, err := store.Get(ctx, "999999"); err != domain.ErrRecordNotFound {
		t.Fatalf("expected record not found, got %v", err)
	}
	if err := store.UpdateStatus(ctx, "999999", "active", 0); err != domain.ErrRecordNotFound {
		t.Fatalf("expected record not found, got %v", err)
	}
}
