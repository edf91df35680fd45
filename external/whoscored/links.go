package whoscored

import (
	"context"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
)

// MatchLinks returns every match centre link of a season, walking each stage
// backwards week by week until the fixtures page stops changing.
func (c *Client) MatchLinks(ctx context.Context, lg league.League, year int) ([]string, error) {
	seasonURL, err := c.SeasonURL(ctx, lg, year)
	if err != nil {
		return nil, err
	}
	if err := c.session.Get(ctx, seasonURL); err != nil {
		return nil, crerr.Wrapf(err, "open season page %s", seasonURL)
	}

	stages, err := c.stageURLs(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, stage := range stages {
		if err := c.collectStage(ctx, stage, seen); err != nil {
			return nil, err
		}
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	slices.Sort(links)
	c.logger.InfoContext(ctx, "match links discovered", "league", lg.Name, "year", year, "stages", len(stages), "links", len(links))
	return links, nil
}

func (c *Client) stageURLs(ctx context.Context) ([]string, error) {
	doc, err := c.session.Document(ctx)
	if err != nil {
		return nil, err
	}
	var stages []string
	doc.Find("select#stages option").Each(func(_ int, opt *goquery.Selection) {
		if value, ok := opt.Attr("value"); ok && value != "" {
			stages = append(stages, c.absolute(value))
		}
	})
	if len(stages) > 0 {
		return stages, nil
	}

	current, err := c.session.CurrentURL(ctx)
	if err != nil {
		return nil, err
	}
	return []string{current}, nil
}

func (c *Client) collectStage(ctx context.Context, stage string, seen map[string]struct{}) error {
	if err := c.session.Get(ctx, stage); err != nil {
		return crerr.Wrapf(err, "open stage %s", stage)
	}

	for cycle := 0; ; cycle++ {
		if cycle >= c.maxCycles {
			return layoutChanged("stage %s did not settle after %d pages", stage, c.maxCycles)
		}

		before, err := c.session.PageSource(ctx)
		if err != nil {
			return err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(before))
		if err != nil {
			return crerr.Wrap(err, "parse fixtures page")
		}
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if isMatchLink(href) {
				seen[c.absolute(href)] = struct{}{}
			}
		})

		if err := c.session.Click(ctx, prevWeekButton); err != nil {
			return crerr.Wrapf(err, "page back on %s", stage)
		}
		if err := c.sleep(ctx, c.wait); err != nil {
			return err
		}
		after, err := c.session.PageSource(ctx)
		if err != nil {
			return err
		}
		if after == before {
			c.logger.Debug("stage exhausted", "stage", stage, "pages", cycle+1)
			return nil
		}
	}
}

func isMatchLink(href string) bool {
	return strings.Contains(href, "Live") && strings.Contains(href, "Matches")
}
