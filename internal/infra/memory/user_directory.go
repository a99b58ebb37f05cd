package memory

import (
	"context"

	"quiz-ranking-service/internal/domain"
)

// UserDirectory resolves display identities from a fixed set of users.
type UserDirectory struct {
	users map[string]domain.UserIdentity
}

func NewUserDirectory(users []domain.UserIdentity) *UserDirectory {
	byID := make(map[string]domain.UserIdentity, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &UserDirectory{users: byID}
}

// ResolveMany returns the identities it knows about; unknown IDs are skipped.
func (d *UserDirectory) ResolveMany(_ context.Context, ids []string) ([]domain.UserIdentity, error) {
	out := make([]domain.UserIdentity, 0, len(ids))
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
