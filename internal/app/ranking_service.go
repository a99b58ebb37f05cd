package app

import (
	"context"
	"sort"

	"quiz-ranking-service/internal/domain"
)

// ScoreSource is the read side of the answer store used for rankings.
type ScoreSource interface {
	ScoresByUser(ctx context.Context) ([]domain.ScoreRow, error)
}

// UserDirectory resolves user IDs to display identities in one round trip.
type UserDirectory interface {
	ResolveMany(ctx context.Context, ids []string) ([]domain.UserIdentity, error)
}

// RankingService builds the leaderboard on demand from accumulated scores.
type RankingService struct {
	scores ScoreSource
	users  UserDirectory
}

func NewRankingService(scores ScoreSource, users UserDirectory) *RankingService {
	return &RankingService{scores: scores, users: users}
}

// GetRanking returns every user with at least one correct answer, best first.
// Equal scores get sequential positions ordered by user ID.
func (s *RankingService) GetRanking(ctx context.Context) (domain.Ranking, error) {
	rows, err := s.orderedScores(ctx)
	if err != nil {
		return domain.Ranking{}, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	names, err := s.displayNames(ctx, ids)
	if err != nil {
		return domain.Ranking{}, err
	}

	rankings := make([]domain.UserScore, 0, len(rows))
	for i, row := range rows {
		rankings = append(rankings, userScore(row, i+1, names))
	}
	return domain.Ranking{Rankings: rankings, TotalUsers: len(rankings)}, nil
}

// GetUserRanking returns the leaderboard row for one user. The boolean is false
// when the user has no correct answers yet.
func (s *RankingService) GetUserRanking(ctx context.Context, userID string) (domain.UserScore, bool, error) {
	rows, err := s.orderedScores(ctx)
	if err != nil {
		return domain.UserScore{}, false, err
	}

	for i, row := range rows {
		if row.UserID != userID {
			continue
		}
		names, err := s.displayNames(ctx, []string{userID})
		if err != nil {
			return domain.UserScore{}, false, err
		}
		return userScore(row, i+1, names), true, nil
	}
	return domain.UserScore{}, false, nil
}

// orderedScores re-applies the leaderboard order so ties never depend on the backend.
func (s *RankingService) orderedScores(ctx context.Context) ([]domain.ScoreRow, error) {
	rows, err := s.scores.ScoresByUser(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]domain.ScoreRow, 0, len(rows))
	for _, row := range rows {
		if row.Score > 0 {
			kept = append(kept, row)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].UserID < kept[j].UserID
	})
	return kept, nil
}

func (s *RankingService) displayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	identities, err := s.users.ResolveMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, identity := range identities {
		names[identity.ID] = identity.DisplayName
	}
	return names, nil
}

func userScore(row domain.ScoreRow, position int, names map[string]string) domain.UserScore {
	name, ok := names[row.UserID]
	if !ok || name == "" {
		name = domain.UnknownDisplayName
	}
	return domain.UserScore{
		UserID:      row.UserID,
		DisplayName: name,
		Score:       row.Score,
		Position:    position,
	}
}
