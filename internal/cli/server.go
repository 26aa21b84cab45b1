package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"lms-quiz-service/internal/app"
	"lms-quiz-service/internal/config"
	"lms-quiz-service/internal/domain"
	"lms-quiz-service/internal/infra/memory"
	"lms-quiz-service/internal/infra/postgres"
	rediscache "lms-quiz-service/internal/infra/redis"
	transport "lms-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz attempt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var (
		quizStore app.QuizStore
		loader    memory.QuizLoader
		ledger    app.AttemptLedger
	)
	if cfg.Postgres.URL != "" {
		db := postgres.NewDB(cfg.Postgres.URL)
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		quizStore = postgres.NewQuizStore(db)
		loader = postgres.NewQuizLoader(pool)
		ledger = postgres.NewAttemptLedger(db)
	} else {
		// demo mode: everything in process, seeded with one open quiz
		memStore := memory.NewQuizStore(sampleQuiz())
		quizStore = memStore
		loader = memStore
		ledger = memory.NewAttemptLedger()
		log.Printf("no postgres url configured, running with in-memory storage")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var (
		quizRepo  app.QuizRepository
		quizCache app.QuizCacheInvalidator
	)
	if redisClient != nil {
		cache := rediscache.NewQuizCache(redisClient, loader, quizTTL)
		quizRepo, quizCache = cache, cache
	} else {
		cache := memory.NewQuizCache(loader, quizTTL)
		quizRepo, quizCache = cache, cache
	}

	feed := app.NewResultsFeed()
	attempts := app.NewAttemptService(quizRepo, ledger, feed)
	admin := app.NewQuizAdminService(quizStore, quizCache)
	handler := transport.NewHandler(attempts, admin, feed)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz attempt service on :%s", finalPort)
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

// sampleQuiz seeds demo mode with a quiz whose window opened five minutes
// ago and stays open for a day.
func sampleQuiz() domain.Quiz {
	now := time.Now().UTC()
	return domain.Quiz{
		ID:           uuid.New(),
		CourseID:     uuid.New(),
		InstructorID: uuid.New(),
		Title:        "Demo quiz",
		Description:  "Seeded automatically when no database is configured",
		StartTime:    now.Add(-5 * time.Minute),
		EndTime:      now.Add(24 * time.Hour),
		MaxAttempts:  3,
		Questions: []domain.Question{
			{
				ID: uuid.New(), Text: "What is 2 + 2?", Points: 1,
				Options: []domain.Option{
					{ID: uuid.New(), Label: "A", Text: "3"},
					{ID: uuid.New(), Label: "B", Text: "4", IsCorrect: true},
					{ID: uuid.New(), Label: "C", Text: "5"},
				},
			},
			{
				ID: uuid.New(), Text: "Which keyword starts a goroutine?", Points: 2,
				Options: []domain.Option{
					{ID: uuid.New(), Label: "A", Text: "go", IsCorrect: true},
					{ID: uuid.New(), Label: "B", Text: "async"},
				},
			},
		},
	}
}
