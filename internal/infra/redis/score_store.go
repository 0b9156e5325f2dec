package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sdg-quest/internal/domain"
)

// ScoreStore keeps each user's records in a Redis list, oldest first:
// RPUSH quest:scores:{userID} {record JSON}
type ScoreStore struct {
	client *redis.Client
}

func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

func (s *ScoreStore) Append(ctx context.Context, record domain.ScoreRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, s.key(record.UserID), data).Err()
}

func (s *ScoreStore) ListByUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	raw, err := s.client.LRange(ctx, s.key(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]domain.ScoreRecord, 0, len(raw))
	for i, item := range raw {
		var record domain.ScoreRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("decode score %d of %s: %w", i, userID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *ScoreStore) key(userID string) string {
	return "quest:scores:" + userID
}
