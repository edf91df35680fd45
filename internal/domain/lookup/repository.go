package lookup

import "context"

// Repository persists dictionaries between runs.
type Repository interface {
	LoadStore(ctx context.Context, store *Store) error
	SaveStore(ctx context.Context, store *Store) error
	LoadDirectory(ctx context.Context, dir *Directory) error
	SaveDirectory(ctx context.Context, dir *Directory) error
}

// Set bundles the dictionaries threaded through one event pipeline run.
type Set struct {
	Qualifiers *Store
	Referees   *Store
	Stadiums   *Store
	Players    *Directory
	Teams      *Directory
}

func NewSet() *Set {
	return &Set{
		Qualifiers: NewStore("Qualifiers"),
		Referees:   NewStore("Referees"),
		Stadiums:   NewStore("Stadiums"),
		Players:    NewDirectory("Players"),
		Teams:      NewDirectory("Teams"),
	}
}

func (s *Set) Stores() []*Store {
	return []*Store{s.Qualifiers, s.Referees, s.Stadiums}
}

func (s *Set) Directories() []*Directory {
	return []*Directory{s.Players, s.Teams}
}

func (s *Set) Load(ctx context.Context, repo Repository) error {
	for _, store := range s.Stores() {
		if err := repo.LoadStore(ctx, store); err != nil {
			return err
		}
	}
	for _, dir := range s.Directories() {
		if err := repo.LoadDirectory(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}

func (s *Set) Save(ctx context.Context, repo Repository) error {
	for _, store := range s.Stores() {
		if err := repo.SaveStore(ctx, store); err != nil {
			return err
		}
	}
	for _, dir := range s.Directories() {
		if err := repo.SaveDirectory(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}
