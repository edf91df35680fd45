package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
)

type LeagueService struct {
	leagueRepo league.Repository
}

func NewLeagueService(leagueRepo league.Repository) *LeagueService {
	return &LeagueService{leagueRepo: leagueRepo}
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]league.League, error) {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leagues, nil
}

// ResolveLeagues looks up every requested name in the catalog, keeping the
// request order and dropping repeats.
func (s *LeagueService) ResolveLeagues(ctx context.Context, names []string) ([]league.League, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one league is required", ErrInvalidInput)
	}

	out := make([]league.League, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty league name", ErrInvalidInput)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		lg, exists, err := s.leagueRepo.GetByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("get league: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: league=%s", ErrNotFound, name)
		}
		out = append(out, lg)
	}

	return out, nil
}
