package match

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/bytedance/sonic"
)

// Season is the resumable scrape state of one league season: match centre
// URL to payload. A URL without a payload has not been scraped yet and is
// written to disk as "".
type Season map[string]json.RawMessage

func NewSeason(links []string) Season {
	s := make(Season, len(links))
	for _, link := range links {
		s[link] = nil
	}
	return s
}

func (s Season) Record(url string, raw Raw) {
	s[url] = raw.Payload
}

// Drop forgets a URL, e.g. a fixture that has not been played yet.
func (s Season) Drop(url string) {
	delete(s, url)
}

func (s Season) Pending() []string {
	return s.urls(func(payload json.RawMessage) bool { return pending(payload) })
}

func (s Season) Scraped() []string {
	return s.urls(func(payload json.RawMessage) bool { return !pending(payload) })
}

// Raws decodes every scraped payload in URL order.
func (s Season) Raws() ([]Raw, error) {
	urls := s.Scraped()
	out := make([]Raw, 0, len(urls))
	for _, url := range urls {
		raw, err := DecodeRaw(s[url])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", url, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

func (s Season) urls(keep func(json.RawMessage) bool) []string {
	out := make([]string, 0, len(s))
	for url, payload := range s {
		if keep(payload) {
			out = append(out, url)
		}
	}
	slices.Sort(out)
	return out
}

func (s Season) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s))
	for url, payload := range s {
		if pending(payload) {
			payload = json.RawMessage(`""`)
		}
		out[url] = payload
	}
	return sonic.Marshal(out)
}

func (s *Season) UnmarshalJSON(data []byte) error {
	var in map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(Season, len(in))
	for url, payload := range in {
		if pending(payload) {
			out[url] = nil
			continue
		}
		out[url] = payload
	}
	*s = out
	return nil
}

func pending(payload json.RawMessage) bool {
	switch string(payload) {
	case "", `""`, "null":
		return true
	}
	return false
}
