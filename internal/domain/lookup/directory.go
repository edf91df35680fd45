package lookup

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

// Directory maps external ids (player or team) to display names. Later seasons
// overwrite earlier names for the same id.
type Directory struct {
	name string

	mu    sync.RWMutex
	names map[string]string
}

func NewDirectory(name string) *Directory {
	return &Directory{name: name, names: make(map[string]string)}
}

func (d *Directory) Name() string {
	return d.name
}

func (d *Directory) Put(id, name string) {
	d.mu.Lock()
	d.names[id] = name
	d.mu.Unlock()
}

func (d *Directory) Get(id string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[id]
	return name, ok
}

func (d *Directory) Merge(other map[string]string) {
	d.mu.Lock()
	for id, name := range other {
		d.names[id] = name
	}
	d.mu.Unlock()
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.names)
}

func (d *Directory) ids() []string {
	ids := make([]string, 0, len(d.names))
	for id := range d.names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Table renders the directory as an (id, nameColumn) table. Numeric ids are
// written as integers.
func (d *Directory) Table(nameColumn string) dataset.Table {
	d.mu.RLock()
	defer d.mu.RUnlock()

	table := dataset.New("id", nameColumn)
	for _, id := range d.ids() {
		var idValue any = id
		if f, ok := dataset.Float(id); ok {
			idValue = int64(f)
		}
		table.Rows = append(table.Rows, dataset.Row{"id": idValue, nameColumn: d.names[id]})
	}
	return table
}

func (d *Directory) MarshalJSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sonic.ConfigStd.Marshal(d.names)
}

func (d *Directory) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode %s directory: %w", d.name, err)
	}
	d.mu.Lock()
	if d.names == nil {
		d.names = make(map[string]string, len(raw))
	}
	d.mu.Unlock()
	d.Merge(raw)
	return nil
}
