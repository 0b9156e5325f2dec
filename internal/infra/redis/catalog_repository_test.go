package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"sdg-quest/internal/domain"
	"sdg-quest/internal/infra/memory"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(client, loader, time.Minute)

	quizzes, err := repo.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].GoalID != 5 {
		t.Fatalf("unexpected catalog %+v", quizzes)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(CatalogKey) {
		t.Fatalf("expected catalog key to be set")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list cached: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached[0].Questions[0].Options[1].IsCorrect != true || cached[0].ID != "quiz-5" {
		t.Fatalf("cached catalog lost content: %+v", cached[0])
	}

	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.ListQuizzes(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestCatalogRepositoryExpiresWithTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(newClient(mr), loader, time.Minute)

	_, _ = repo.ListQuizzes(context.Background())
	mr.FastForward(2 * time.Minute)
	_, _ = repo.ListQuizzes(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestCatalogRepositoryPropagatesLoaderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	boom := errors.New("db down")
	repo := NewCatalogRepository(newClient(mr), failingLoader{err: boom}, time.Minute)
	if _, err := repo.ListQuizzes(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if mr.Exists(CatalogKey) {
		t.Fatalf("failed load must not be cached")
	}
}

type countingLoader struct {
	memory.CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.Quiz, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx)
}

type failingLoader struct {
	err error
}

func (l failingLoader) LoadCatalog(context.Context) ([]domain.Quiz, error) {
	return nil, l.err
}

func sampleCatalog() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:     "quiz-5",
			GoalID: 5,
			Questions: []domain.Question{
				{
					Prompt: "Which goal covers gender equality?",
					Options: []domain.Option{
						{Text: "SDG 3", IsCorrect: false},
						{Text: "SDG 5", IsCorrect: true},
					},
				},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
