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
	"quiz-ranking-service/internal/app"
	"quiz-ranking-service/internal/domain"
	"quiz-ranking-service/internal/infra/postgres"
	pgmigrations "quiz-ranking-service/internal/infra/postgres/migrations"
	infraredis "quiz-ranking-service/internal/infra/redis"
	"quiz-ranking-service/internal/seed"
)

const (
	adminID  = "4b3f0c7e-2d1a-4f5e-9c8b-1a2b3c4d5e01"
	playerID = "4b3f0c7e-2d1a-4f5e-9c8b-1a2b3c4d5e02"
)

func TestQuizAndRankingEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openDB(pgURL)
	defer db.Close()
	migrateAndSeed(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	questions := infraredis.NewQuestionStore(redisClient, postgres.NewQuestionStore(pool), 5*time.Minute)
	answers := postgres.NewAnswerStore(db)
	quiz := app.NewQuizService(questions, answers, app.Config{})
	ranking := app.NewRankingService(answers, postgres.NewUserDirectory(pool))

	key := answerKey(t)

	views, err := quiz.GetQuestions(ctx)
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(views) != app.DefaultBatchSize {
		t.Fatalf("expected %d questions, got %d", app.DefaultBatchSize, len(views))
	}

	result, err := quiz.SubmitAnswers(ctx, playerID, submissions(views, key, 2))
	if err != nil {
		t.Fatalf("submit player: %v", err)
	}
	if result.Score != 2 {
		t.Fatalf("expected player score 2, got %d", result.Score)
	}
	if _, err := quiz.SubmitAnswers(ctx, adminID, submissions(views, key, 5)); err != nil {
		t.Fatalf("submit admin: %v", err)
	}

	score, err := quiz.GetUserScore(ctx, adminID)
	if err != nil || score != 5 {
		t.Fatalf("expected admin score 5, got %d err=%v", score, err)
	}

	board, err := ranking.GetRanking(ctx)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if board.TotalUsers != 2 {
		t.Fatalf("expected 2 ranked users, got %+v", board)
	}
	if board.Rankings[0].DisplayName != "admin" || board.Rankings[0].Position != 1 {
		t.Fatalf("expected admin leading, got %+v", board.Rankings)
	}
	if board.Rankings[1].DisplayName != "player" || board.Rankings[1].Score != 2 {
		t.Fatalf("expected player second, got %+v", board.Rankings)
	}

	me, ok, err := ranking.GetUserRanking(ctx, playerID)
	if err != nil || !ok || me.Position != 2 {
		t.Fatalf("expected player at position 2, got %+v ok=%v err=%v", me, ok, err)
	}

	// Unknown question ids are rejected before anything is written.
	bad := submissions(views, key, 5)
	bad[4].QuestionID = "00000000-0000-0000-0000-000000000000"
	if _, err := quiz.SubmitAnswers(ctx, playerID, bad); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
	if score, _ := quiz.GetUserScore(ctx, playerID); score != 2 {
		t.Fatalf("expected player score unchanged, got %d", score)
	}
}

func TestPostgresSamplingWithoutCache(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := openDB(pgURL)
	defer db.Close()
	migrateAndSeed(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := postgres.NewQuestionStore(pool)
	active := 0
	for _, q := range answerKey(t) {
		if q.Active {
			active++
		}
	}

	sample, err := store.SampleActive(ctx, app.DefaultBatchSize)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sample) != app.DefaultBatchSize {
		t.Fatalf("expected %d questions, got %d", app.DefaultBatchSize, len(sample))
	}
	seen := map[string]bool{}
	for _, q := range sample {
		if !q.Active || seen[q.ID] {
			t.Fatalf("expected distinct active questions, got %+v", sample)
		}
		seen[q.ID] = true
	}

	all, err := store.SampleActive(ctx, active+5)
	if err != nil {
		t.Fatalf("sample all: %v", err)
	}
	if len(all) != active {
		t.Fatalf("expected the %d active questions, got %d", active, len(all))
	}

	quiz := app.NewQuizService(store, postgres.NewAnswerStore(db), app.Config{BatchSize: active + 1})
	if _, err := quiz.GetQuestions(ctx); !errors.Is(err, domain.ErrInsufficientQuestions) {
		t.Fatalf("expected insufficient questions, got %v", err)
	}
}

func migrateAndSeed(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	file, err := seed.Default()
	if err != nil {
		t.Fatalf("default seed: %v", err)
	}
	questions, err := file.DomainQuestions()
	if err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	users, err := file.DomainUsers()
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}

	seeder := postgres.NewSeeder(db)
	if _, err := seeder.SeedQuestions(ctx, questions); err != nil {
		t.Fatalf("insert questions: %v", err)
	}
	if _, err := seeder.SeedUsers(ctx, users); err != nil {
		t.Fatalf("insert users: %v", err)
	}
	// Reseeding must be a no-op.
	if n, err := seeder.SeedQuestions(ctx, questions); err != nil || n != 0 {
		t.Fatalf("expected idempotent reseed, inserted=%d err=%v", n, err)
	}
}

func answerKey(t *testing.T) map[string]domain.Question {
	t.Helper()
	file, err := seed.Default()
	if err != nil {
		t.Fatalf("default seed: %v", err)
	}
	questions, err := file.DomainQuestions()
	if err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	key := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		key[q.ID] = q
	}
	return key
}

// submissions answers the first `correct` views right and the rest wrong.
func submissions(views []domain.QuestionView, key map[string]domain.Question, correct int) []domain.AnswerSubmission {
	out := make([]domain.AnswerSubmission, 0, len(views))
	for i, v := range views {
		letter := key[v.ID].CorrectAnswer
		if i >= correct {
			if letter == domain.LetterA {
				letter = domain.LetterB
			} else {
				letter = domain.LetterA
			}
		}
		out = append(out, domain.AnswerSubmission{QuestionID: v.ID, Answer: string(letter)})
	}
	return out
}

func openDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
