package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-ranking-service/internal/domain"
)

// UserDirectory resolves leaderboard identities from the users table.
// The username is preferred; users without one are shown by email.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) ResolveMany(ctx context.Context, ids []string) ([]domain.UserIdentity, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx,
		`SELECT id::text, COALESCE(NULLIF(username, ''), email) FROM users WHERE id::text = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	defer rows.Close()

	identities := make([]domain.UserIdentity, 0, len(ids))
	for rows.Next() {
		var identity domain.UserIdentity
		if err := rows.Scan(&identity.ID, &identity.DisplayName); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return identities, nil
}
