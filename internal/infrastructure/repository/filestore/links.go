package filestore

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// ScrapedLinks returns the set of match URLs already written to the warehouse.
func (s *Store) ScrapedLinks(ctx context.Context) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok, err := readOptional(s.linksPath())
	if err != nil || !ok {
		return map[string]struct{}{}, err
	}

	links := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if link := strings.TrimSpace(scanner.Text()); link != "" {
			links[link] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, crerr.Wrap(err, "scan links cache")
	}
	return links, nil
}

// MarkScraped appends links to the cache file.
func (s *Store) MarkScraped(ctx context.Context, links []string) error {
	if len(links) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for _, link := range links {
		_, _ = buf.WriteString(link)
		_ = buf.WriteByte('\n')
	}

	path := s.linksPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return crerr.Wrap(err, "create links cache dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return crerr.Wrap(err, "open links cache")
	}
	if _, err := f.Write(buf.B); err != nil {
		_ = f.Close()
		return crerr.Wrap(err, "append links cache")
	}
	return f.Close()
}
