package whoscored

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/football-scraper/internal/domain/match"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

const argsMarker = `require.config.params["args"]`

// Top-level keys of the args object are emitted as bare JavaScript identifiers.
var bareKeys = regexp.MustCompile(`([{,]\s*)(matchId|matchCentreData|matchCentreEventTypeJson|formationIdNameMappings)(\s*:)`)

// ScrapeMatch opens a match centre page and returns its decoded payload.
// Fixtures that have not been played yet yield usecase.ErrMatchUnavailable.
func (c *Client) ScrapeMatch(ctx context.Context, url string) (match.Raw, error) {
	if err := c.session.Get(ctx, url); err != nil {
		return match.Raw{}, crerr.Wrapf(err, "open match %s", url)
	}
	doc, err := c.session.Document(ctx)
	if err != nil {
		return match.Raw{}, err
	}

	payload, err := extractPayload(doc)
	if err != nil {
		return match.Raw{}, crerr.Wrapf(err, "match %s", url)
	}
	if err := validatePayload(payload); err != nil {
		return match.Raw{}, crerr.Wrapf(err, "match %s", url)
	}

	raw, err := match.DecodeRaw(payload)
	if err != nil {
		return match.Raw{}, layoutChanged("decode %s: %v", url, err)
	}
	if !raw.Played() {
		return match.Raw{}, crerr.Wrapf(usecase.ErrMatchUnavailable, "match %s", url)
	}
	return raw, nil
}

func extractPayload(doc *goquery.Document) ([]byte, error) {
	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, argsMarker) {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return nil, layoutChanged("match centre script not found")
	}
	return QuotePayload(script)
}

// QuotePayload turns the args assignment script into strict JSON.
func QuotePayload(script string) ([]byte, error) {
	_, assigned, ok := strings.Cut(script, " = ")
	if !ok {
		return nil, layoutChanged("match centre assignment not found")
	}
	start := strings.Index(assigned, "{")
	end := strings.LastIndex(assigned, "}")
	if start < 0 || end < start {
		return nil, layoutChanged("match centre object not found")
	}
	object := []byte(strings.TrimSpace(assigned[start : end+1]))
	return bytes.TrimSpace(bareKeys.ReplaceAll(object, []byte(`$1"$2"$3`))), nil
}
