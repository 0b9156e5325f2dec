package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"sdg-quest/internal/domain"
)

// SeedCatalog upserts quizzes; position follows the slice order. A quiz
// replaces any other quiz stored for its goal.
func SeedCatalog(ctx context.Context, db *bun.DB, quizzes []domain.Quiz) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i, quiz := range quizzes {
			data, err := json.Marshal(quiz)
			if err != nil {
				return fmt.Errorf("marshal quiz %s: %w", quiz.ID, err)
			}
			// goal_id is unique too: drop whatever else holds this goal.
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM quizzes WHERE goal_id = ? AND id <> ?`,
				int(quiz.GoalID), quiz.ID); err != nil {
				return fmt.Errorf("replace quiz for goal %d: %w", quiz.GoalID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO quizzes (id, goal_id, position, data) VALUES (?, ?, ?, ?::jsonb)
				 ON CONFLICT (id) DO UPDATE SET goal_id=EXCLUDED.goal_id, position=EXCLUDED.position, data=EXCLUDED.data`,
				quiz.ID, int(quiz.GoalID), i, string(data)); err != nil {
				return fmt.Errorf("insert quiz %s: %w", quiz.ID, err)
			}
		}
		return nil
	})
}
