package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"quiz-ranking-service/internal/config"
	"quiz-ranking-service/internal/infra/postgres"
	"quiz-ranking-service/internal/seed"
)

// NewSeedCmd loads the question bank and demo users into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var seedPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed questions and users into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if seedPath != "" {
				cfg.Seed.Path = seedPath
			}
			return runSeed(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&seedPath, "file", "", "seed YAML file (defaults to seed.path, then the bundled bank)")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return errNoPostgres
	}

	file, err := seed.LoadOrDefault(cfg.Seed.Path)
	if err != nil {
		return err
	}
	questions, err := file.DomainQuestions()
	if err != nil {
		return err
	}
	users, err := file.DomainUsers()
	if err != nil {
		return err
	}

	db := openBunDB(cfg.Postgres.URL)
	defer db.Close()
	if err := migrateDB(ctx, db); err != nil {
		return err
	}

	seeder := postgres.NewSeeder(db)
	nq, err := seeder.SeedQuestions(ctx, questions)
	if err != nil {
		return err
	}
	nu, err := seeder.SeedUsers(ctx, users)
	if err != nil {
		return err
	}
	log.Printf("seeded %d/%d questions and %d/%d users", nq, len(questions), nu, len(users))
	return nil
}
