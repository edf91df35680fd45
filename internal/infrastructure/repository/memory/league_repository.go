package memory

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
)

//go:embed leagues.yaml
var leaguesYAML []byte

type LeagueRepository struct {
	mu     sync.RWMutex
	items  map[string]league.League
	orders []string
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	orders := make([]string, 0, len(leagues))

	for _, l := range leagues {
		if _, ok := items[l.Name]; !ok {
			orders = append(orders, l.Name)
		}
		items[l.Name] = l
	}

	return &LeagueRepository{
		items:  items,
		orders: orders,
	}
}

// NewLeagueCatalog builds the repository from the embedded league table.
func NewLeagueCatalog() (*LeagueRepository, error) {
	leagues, err := ParseLeagues(leaguesYAML)
	if err != nil {
		return nil, err
	}
	return NewLeagueRepository(leagues), nil
}

func ParseLeagues(raw []byte) ([]league.League, error) {
	var leagues []league.League
	if err := yaml.Unmarshal(raw, &leagues); err != nil {
		return nil, fmt.Errorf("decode league catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(leagues))
	for _, l := range leagues {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("league catalog: %w", err)
		}
		if _, ok := seen[l.Name]; ok {
			return nil, fmt.Errorf("league catalog: duplicate league %q", l.Name)
		}
		seen[l.Name] = struct{}{}
	}
	return leagues, nil
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.orders))
	for _, name := range r.orders {
		out = append(out, r.items[name])
	}

	return out, nil
}

func (r *LeagueRepository) GetByName(_ context.Context, name string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[name]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}
