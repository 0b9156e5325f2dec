package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"sdg-quest/internal/domain"
)

// ScoreStore persists score records in the scores table.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Append(ctx context.Context, r domain.ScoreRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scores (id, user_id, goal_id, quiz_id, score, total_questions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.UserID, int(r.GoalID), r.QuizID, r.Score, r.TotalQuestions, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) ListByUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, goal_id, quiz_id, score, total_questions, created_at
		 FROM scores WHERE user_id=$1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	records := []domain.ScoreRecord{}
	for rows.Next() {
		var (
			r    domain.ScoreRecord
			goal int
		)
		if err := rows.Scan(&r.ID, &r.UserID, &goal, &r.QuizID, &r.Score, &r.TotalQuestions, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		r.GoalID = domain.GoalID(goal)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return records, nil
}
