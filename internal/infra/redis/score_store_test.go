package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"sdg-quest/internal/domain"
)

func TestScoreStoreAppendsAndLists(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewScoreStore(newClient(mr))
	created := time.Date(2024, 11, 22, 9, 30, 0, 0, time.UTC)

	if err := store.Append(ctx, domain.ScoreRecord{ID: "r1", UserID: "u1", GoalID: 3, QuizID: "quiz-3", Score: 2, TotalQuestions: 3, CreatedAt: created}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, domain.ScoreRecord{ID: "r2", UserID: "u1", GoalID: 4, QuizID: "quiz-4", Score: 5, TotalQuestions: 5}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !mr.Exists("quest:scores:u1") {
		t.Fatalf("expected redis list for u1")
	}

	records, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].ID != "r1" || records[1].ID != "r2" {
		t.Fatalf("unexpected records %+v", records)
	}
	if !records[0].CreatedAt.Equal(created) || records[0].GoalID != 3 {
		t.Fatalf("record fields not preserved: %+v", records[0])
	}

	empty, err := store.ListByUser(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty history, got %+v err=%v", empty, err)
	}
}
