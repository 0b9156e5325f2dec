package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const createScoresSQL = `
CREATE TABLE IF NOT EXISTS scores (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	goal_id         INTEGER NOT NULL,
	quiz_id         TEXT NOT NULL,
	score           INTEGER NOT NULL CHECK (score >= 0),
	total_questions INTEGER NOT NULL CHECK (total_questions >= score),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createScoresIndexSQL = `CREATE INDEX IF NOT EXISTS scores_user_created_idx ON scores (user_id, created_at)`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, createScoresSQL); err != nil {
				return err
			}
			_, err := db.ExecContext(ctx, createScoresIndexSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS scores`)
			return err
		},
	)
}
