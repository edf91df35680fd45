// Package lookup holds the append-only string dictionaries that compact
// repeated names (qualifiers, referees, stadiums) into integer codes, and the
// id-to-name directories collected for players and teams.
package lookup

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

// Store maps 1-based integer codes to display strings. Codes are never reused
// or removed, so a value keeps its code for the lifetime of the persisted file.
type Store struct {
	name string

	mu     sync.RWMutex
	codes  map[string]int
	values map[int]string
	next   int
}

type Entry struct {
	Code  int
	Value string
}

func NewStore(name string) *Store {
	return &Store{
		name:   name,
		codes:  make(map[string]int),
		values: make(map[int]string),
		next:   1,
	}
}

func (s *Store) Name() string {
	return s.name
}

// AssignIfAbsent returns the code of value, assigning the next free code when
// the value is new.
func (s *Store) AssignIfAbsent(value string) int {
	s.mu.RLock()
	code, ok := s.codes[value]
	s.mu.RUnlock()
	if ok {
		return code
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if code, ok := s.codes[value]; ok {
		return code
	}
	code = s.next
	s.next++
	s.codes[value] = code
	s.values[code] = value
	return code
}

func (s *Store) Code(value string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.codes[value]
	return code, ok
}

func (s *Store) Value(code int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[code]
	return value, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes)
}

// Entries returns all pairs ordered by code.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.values))
	for code, value := range s.values {
		out = append(out, Entry{Code: code, Value: value})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Table renders the store as an (id, valueColumn) warehouse table.
func (s *Store) Table(valueColumn string) dataset.Table {
	table := dataset.New("id", valueColumn)
	for _, e := range s.Entries() {
		table.Rows = append(table.Rows, dataset.Row{"id": int64(e.Code), valueColumn: e.Value})
	}
	return table
}

// MarshalJSON writes {"<code>": "<value>"}.
func (s *Store) MarshalJSON() ([]byte, error) {
	entries := s.Entries()
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[strconv.Itoa(e.Code)] = e.Value
	}
	return sonic.ConfigStd.Marshal(out)
}

// UnmarshalJSON merges a persisted dictionary into the store. Conflicting
// assignments are rejected rather than silently renumbered.
func (s *Store) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode %s lookup: %w", s.name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codes == nil {
		s.codes = make(map[string]int)
		s.values = make(map[int]string)
		s.next = 1
	}
	for key, value := range raw {
		code, err := strconv.Atoi(key)
		if err != nil || code < 1 {
			return fmt.Errorf("%s lookup: invalid code %q", s.name, key)
		}
		if existing, ok := s.values[code]; ok && existing != value {
			return fmt.Errorf("%s lookup: code %d maps to both %q and %q", s.name, code, existing, value)
		}
		if existing, ok := s.codes[value]; ok && existing != code {
			return fmt.Errorf("%s lookup: value %q has codes %d and %d", s.name, value, existing, code)
		}
		s.codes[value] = code
		s.values[code] = value
		if code >= s.next {
			s.next = code + 1
		}
	}
	return nil
}
