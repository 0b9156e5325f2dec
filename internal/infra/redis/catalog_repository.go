package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"sdg-quest/internal/domain"
)

// CatalogLoader fetches the catalog from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Quiz, error)
}

// CatalogKey holds the JSON encoded catalog.
const CatalogKey = "quest:catalog"

// CatalogRepository caches the catalog in Redis (one JSON string) and falls
// back to a loader on cache miss.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	if quizzes, ok := r.cached(ctx); ok {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do(CatalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quizzes, ok := r.cached(ctx); ok {
			return quizzes, nil
		}

		quizzes, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(quizzes)
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, CatalogKey, data, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache catalog: %v", err)
		}
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

// Invalidate drops the cached catalog so the next read reloads it.
func (r *CatalogRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, CatalogKey).Err()
}

func (r *CatalogRepository) cached(ctx context.Context) ([]domain.Quiz, bool) {
	data, err := r.client.Get(ctx, CatalogKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached catalog: %v", err)
		}
		return nil, false
	}
	var quizzes []domain.Quiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		log.Printf("decode cached catalog: %v", err)
		return nil, false
	}
	return quizzes, true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
