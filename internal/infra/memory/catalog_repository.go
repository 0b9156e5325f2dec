package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sdg-quest/internal/domain"
)

// CatalogLoader fetches the quiz catalog from a backing store (file, Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Quiz, error)
}

// CatalogRepository caches the catalog with TTL to avoid repeated store hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu        sync.RWMutex
	cached    []domain.Quiz
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ListQuizzes returns the catalog in its configured order.
func (r *CatalogRepository) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	if quizzes, ok := r.fresh(r.clock()); ok {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		now := r.clock()
		if quizzes, ok := r.fresh(now); ok {
			return quizzes, nil
		}

		quizzes, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cached = quizzes
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

// Invalidate drops the cached catalog.
func (r *CatalogRepository) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.expiresAt = time.Time{}
	r.mu.Unlock()
}

func (r *CatalogRepository) fresh(now time.Time) ([]domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached != nil && r.expiresAt.After(now) {
		return r.cached, true
	}
	return nil, false
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves a fixed catalog (useful for tests/demos).
type StaticCatalogLoader struct {
	quizzes []domain.Quiz
}

func NewStaticCatalogLoader(quizzes []domain.Quiz) *StaticCatalogLoader {
	return &StaticCatalogLoader{quizzes: quizzes}
}

func (l *StaticCatalogLoader) LoadCatalog(context.Context) ([]domain.Quiz, error) {
	return l.quizzes, nil
}
