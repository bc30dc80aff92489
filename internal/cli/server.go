package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/config"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/infra/memory"
	pgstore "quiz-assessment-service/internal/infra/postgres"
	redisinfra "quiz-assessment-service/internal/infra/redis"
	transport "quiz-assessment-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
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

	var (
		questions   app.QuestionSource
		questionSto app.QuestionStore
		results     app.ResultStore
		submissions app.SubmissionStore
		users       app.UserStore
	)

	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		store := pgstore.NewStore(db)

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}

		questions = store
		questionSto = store
		results = store
		submissions = store
		users = store

		if cfg.Redis.Addr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			ttl := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
			cache := redisinfra.NewQuestionCache(redisClient, pgstore.NewQuestionLoader(pool), store, ttl)
			questions = cache
			questionSto = cache
		}
	} else {
		log.Printf("no postgres configured, running on in-memory stores with demo data")
		store := memory.NewStore()
		seedDemoData(ctx, store)
		questions = store
		questionSto = store
		results = store
		submissions = store
		users = store
	}

	feed := app.NewResultFeed()
	submissionSvc := app.NewSubmissionService(users, questions, results, submissions, feed)
	importSvc := app.NewImportService(questionSto)
	api := transport.NewAPI(submissionSvc, importSvc, feed)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting assessment service on :%s", finalPort)
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

// seedDemoData loads a small quiz and a few users so the demo mode is usable
// out of the box.
func seedDemoData(ctx context.Context, store *memory.Store) {
	store.SetRole("student-1", domain.RoleStudent)
	store.SetRole("student-2", domain.RoleStudent)
	store.SetRole("teacher-1", domain.RoleTeacher)

	_ = store.SaveAll(ctx, []domain.Question{
		{
			ID:             "q1",
			QuizID:         "quiz-1",
			Text:           "What is 2 + 2?",
			Type:           domain.SingleChoice,
			Options:        []string{"3", "4", "5"},
			CorrectAnswers: []string{"4"},
			Points:         1,
			Order:          0,
		},
		{
			ID:             "q2",
			QuizID:         "quiz-1",
			Text:           "Which of these are prime?",
			Type:           domain.MultipleChoice,
			Options:        []string{"2", "3", "4", "5"},
			CorrectAnswers: []string{"2", "3", "5"},
			Points:         2,
			Order:          1,
		},
		{
			ID:             "q3",
			QuizID:         "quiz-1",
			Text:           "The sky is blue.",
			Type:           domain.TrueFalse,
			Options:        []string{"true", "false"},
			CorrectAnswers: []string{"true"},
			Points:         1,
			Order:          2,
		},
		{
			ID:             "q4",
			QuizID:         "quiz-1",
			Text:           "Match the capital to the country.",
			Type:           domain.Matching,
			Options:        []string{"France", "Japan"},
			CorrectAnswers: []string{"Paris", "Tokyo"},
			Points:         2,
			Order:          3,
		},
	})
}
