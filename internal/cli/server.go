package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/config"
	"quiz-session-service/internal/domain"
	fileloader "quiz-session-service/internal/infra/file"
	"quiz-session-service/internal/infra/memory"
	pgloader "quiz-session-service/internal/infra/postgres"
	rediscache "quiz-session-service/internal/infra/redis"
	transport "quiz-session-service/internal/transport/ws"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// quizSource is whatever can produce the session's quiz definition.
type quizSource interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
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

	// A definition source is mandatory: the session cannot start half
	// initialized, so a missing or broken source aborts before any
	// listener opens.
	var loader memory.QuizLoader
	switch {
	case cfg.Postgres.URL != "":
		if cfg.Quiz.ID == "" {
			return fmt.Errorf("quiz.id must be set when loading from postgres")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		loader = pgloader.NewQuizLoader(pool)
	case cfg.Quiz.Path != "":
		loader = fileloader.NewLoader(cfg.Quiz.Path)
	default:
		return fmt.Errorf("no quiz definition source configured: set quiz.path or postgres.url")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var source quizSource
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		source = rediscache.NewCache(client, loader, quizTTL)
	} else {
		source = memory.NewCache(loader, quizTTL)
	}

	quiz, err := source.GetQuiz(ctx, cfg.Quiz.ID)
	if err != nil {
		return fmt.Errorf("load quiz definition: %w", err)
	}

	coordinator := app.NewCoordinator()
	if err := coordinator.LoadQuiz(quiz); err != nil {
		return err
	}
	log.Printf("quiz session server running quiz: %s", quiz.Name)

	handler := transport.NewHandler(coordinator)
	server := &http.Server{
		Addr:    ":" + finalPort,
		Handler: handler.Routes(),
	}

	go func() {
		log.Printf("starting quiz session service on :%s", finalPort)
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
