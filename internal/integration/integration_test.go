package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"sdg-quest/internal/app"
	"sdg-quest/internal/badge"
	"sdg-quest/internal/domain"
	"sdg-quest/internal/infra/memory"
	"sdg-quest/internal/infra/postgres"
	pgmigrations "sdg-quest/internal/infra/postgres/migrations"
	infraredis "sdg-quest/internal/infra/redis"
)

func TestScoreSubmissionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	catalog := memory.SampleCatalog()
	migrateAndSeed(t, ctx, pgURL, catalog)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	reseedUnderNewID(t, ctx, pgURL, pool, catalog)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizzes := infraredis.NewCatalogRepository(redisClient, postgres.NewCatalogLoader(pool), 5*time.Minute)
	loaded, err := quizzes.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(loaded) != len(catalog) || loaded[0].GoalID != catalog[0].GoalID || len(loaded[0].Questions) != len(catalog[0].Questions) {
		t.Fatalf("catalog not loaded in seed order: %+v", loaded)
	}
	if n, err := redisClient.Exists(ctx, infraredis.CatalogKey).Result(); err != nil || n != 1 {
		t.Fatalf("expected catalog cached in redis, exists=%d err=%v", n, err)
	}

	service := app.NewScoreService(postgres.NewScoreStore(pool), quizzes, nil)
	first := catalog[0]
	for _, score := range []int{2, 4} {
		if _, err := service.Submit(ctx, domain.ScoreSubmission{
			UserID: "u1", GoalID: first.GoalID, QuizID: first.ID, Score: score, TotalQuestions: len(first.Questions),
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	_, err = service.Submit(ctx, domain.ScoreSubmission{
		UserID: "u1", GoalID: 17, QuizID: "sdg-17", Score: 1, TotalQuestions: 5,
	})
	if !errors.Is(err, domain.ErrInvalidSubmission) {
		t.Fatalf("expected unknown goal to be rejected, got %v", err)
	}

	history, err := service.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Score != 2 || history[1].Score != 4 {
		t.Fatalf("expected two records in submission order, got %+v", history)
	}
	if history[0].ID == "" || history[0].CreatedAt.IsZero() {
		t.Fatalf("record missing id or timestamp: %+v", history[0])
	}
	if got := badge.DefaultRules().Total(history); got != 4 {
		t.Fatalf("best-per-goal total: expected 4, got %d", got)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quest", "POSTGRES_PASSWORD": "questpass", "POSTGRES_DB": "questdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quest:questpass@%s:%s/questdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateAndSeed(t *testing.T, ctx context.Context, dsn string, quizzes []domain.Quiz) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := postgres.SeedCatalog(ctx, db, quizzes); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	// Seeding twice must be an idempotent upsert.
	if err := postgres.SeedCatalog(ctx, db, quizzes); err != nil {
		t.Fatalf("reseed catalog: %v", err)
	}
}

// reseedUnderNewID stores the first goal under another quiz id, checks the
// goal keeps a single quiz, then restores the original catalog.
func reseedUnderNewID(t *testing.T, ctx context.Context, dsn string, pool *pgxpool.Pool, quizzes []domain.Quiz) {
	t.Helper()
	renamed := append([]domain.Quiz(nil), quizzes...)
	renamed[0].ID = quizzes[0].ID + "-v2"

	seedCatalog(t, ctx, dsn, renamed)
	loaded, err := postgres.NewCatalogLoader(pool).LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("load reseeded catalog: %v", err)
	}
	if len(loaded) != len(quizzes) || loaded[0].ID != renamed[0].ID || loaded[0].GoalID != quizzes[0].GoalID {
		t.Fatalf("expected goal %d replaced by %s, got %+v", quizzes[0].GoalID, renamed[0].ID, loaded)
	}

	seedCatalog(t, ctx, dsn, quizzes)
}

func seedCatalog(t *testing.T, ctx context.Context, dsn string, quizzes []domain.Quiz) {
	t.Helper()
	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), pgdialect.New())
	defer db.Close()
	if err := postgres.SeedCatalog(ctx, db, quizzes); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
