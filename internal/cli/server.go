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
	"quiz-ranking-service/internal/app"
	"quiz-ranking-service/internal/config"
	"quiz-ranking-service/internal/domain"
	"quiz-ranking-service/internal/infra/memory"
	"quiz-ranking-service/internal/infra/postgres"
	rediscache "quiz-ranking-service/internal/infra/redis"
	"quiz-ranking-service/internal/seed"
	transport "quiz-ranking-service/internal/transport/http"
)

const defaultCacheTTL = 10 * time.Minute

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// answerBackend is the answer store seen by both services.
type answerBackend interface {
	app.AnswerStore
	app.ScoreSource
}

// questionSource is a backend question store that can also fill a cache.
type questionSource interface {
	app.QuestionStore
	memory.QuestionLoader
}

// backends holds the stores selected for this process and how to release them.
type backends struct {
	questions questionSource
	answers   answerBackend
	users     app.UserDirectory
	closers   []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	questions, closeQuestions := selectQuestionStore(cfg, b.questions)
	defer closeQuestions()

	quiz := app.NewQuizService(questions, b.answers, app.Config{BatchSize: cfg.Quiz.BatchSize})
	ranking := app.NewRankingService(b.answers, b.users)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(quiz, ranking),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s (batch size %d)", finalPort, quiz.BatchSize())
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

// selectQuestionStore puts a cache in front of the backend store: Redis when configured,
// otherwise in process. A quiz.ttl of "0" or "off" serves straight from the backend.
func selectQuestionStore(cfg config.Config, source questionSource) (app.QuestionStore, func()) {
	if config.CacheDisabled(cfg.Quiz.TTL) {
		log.Printf("question cache disabled")
		return source, func() {}
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, defaultCacheTTL)
	if cfg.Redis.Addr == "" {
		return memory.NewQuestionCache(source, quizTTL), func() {}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := rediscache.NewQuestionStore(redisClient, source, config.TTLDuration(cfg.Redis.TTL, quizTTL))
	return store, func() { _ = redisClient.Close() }
}

// openBackends picks Postgres when configured, otherwise in-memory stores filled from the seed file.
func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	if cfg.Postgres.URL == "" {
		return memoryBackends(cfg)
	}

	db := openBunDB(cfg.Postgres.URL)
	if err := migrateDB(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("using postgres backend")
	return &backends{
		questions: postgres.NewQuestionStore(pool),
		answers:   postgres.NewAnswerStore(db),
		users:     postgres.NewUserDirectory(pool),
		closers:   []func(){func() { db.Close() }, pool.Close},
	}, nil
}

func memoryBackends(cfg config.Config) (*backends, error) {
	file, err := seed.LoadOrDefault(cfg.Seed.Path)
	if err != nil {
		return nil, err
	}
	questions, err := file.DomainQuestions()
	if err != nil {
		return nil, err
	}
	users, err := file.DomainUsers()
	if err != nil {
		return nil, err
	}

	identities := make([]domain.UserIdentity, 0, len(users))
	for _, u := range users {
		identities = append(identities, u.Identity())
	}

	log.Printf("using in-memory backend with %d questions", len(questions))
	return &backends{
		questions: memory.NewQuestionBank(questions),
		answers:   memory.NewAnswerStore(),
		users:     memory.NewUserDirectory(identities),
	}, nil
}
