package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"sdg-quest/internal/app"
	"sdg-quest/internal/auth"
	"sdg-quest/internal/config"
	"sdg-quest/internal/infra/memory"
	"sdg-quest/internal/infra/postgres"
	"sdg-quest/internal/infra/rabbit"
	rediscache "sdg-quest/internal/infra/redis"
	transport "sdg-quest/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the backend.
func NewStartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz and score API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.CatalogLoader = fileOrSampleLoader(cfg)
	if pool != nil {
		loader = postgres.NewCatalogLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var catalog app.QuizCatalog
	if redisClient != nil {
		catalog = rediscache.NewCatalogRepository(redisClient, loader, quizTTL)
	} else {
		catalog = memory.NewCatalogRepository(loader, quizTTL)
	}

	var scores app.ScoreStore
	switch {
	case pool != nil:
		scores = postgres.NewScoreStore(pool)
	case redisClient != nil:
		scores = rediscache.NewScoreStore(redisClient)
	default:
		scores = memory.NewScoreStore()
	}

	var events app.EventPublisher
	if cfg.Events.AMQPURL != "" {
		publisher, err := rabbit.Dial(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		events = publisher
	}

	tokens := auth.NewTokenService(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	if !tokens.Enforcing() {
		log.Printf("auth.secret not set: accepting any bearer token")
	}

	service := app.NewScoreService(scores, catalog, events)
	router := transport.NewRouter(
		transport.NewAPIHandler(catalog, service, tokens),
		transport.NewWSHandler(service),
	)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting sdg-quest api on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// fileOrSampleLoader reads quiz.catalog when set, else the built-in sample.
func fileOrSampleLoader(cfg config.Config) memory.CatalogLoader {
	if cfg.Quiz.Catalog != "" {
		return memory.NewFileCatalogLoader(cfg.Quiz.Catalog)
	}
	return memory.NewStaticCatalogLoader(memory.SampleCatalog())
}
