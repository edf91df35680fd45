package fbref

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/stats"
)

// CategoryURL rewrites a season URL to one of its stat pages:
// .../2023-2024/2023-2024-Premier-League-Stats becomes
// .../2023-2024/shooting/2023-2024-Premier-League-Stats.
func CategoryURL(seasonURL string, category stats.Category) string {
	idx := strings.LastIndex(seasonURL, "/")
	if idx < 0 {
		return seasonURL
	}
	return seasonURL[:idx+1] + category.URL + "/" + seasonURL[idx+1:]
}

// FixturesURL rewrites a season URL to its scores and fixtures page.
func FixturesURL(seasonURL string) string {
	idx := strings.LastIndex(seasonURL, "/")
	if idx < 0 {
		return seasonURL
	}
	slug := seasonURL[idx+1:]
	if cut := strings.LastIndex(slug, "-"); cut >= 0 {
		slug = slug[:cut]
	}
	return seasonURL[:idx] + "/schedule/" + slug + "-Scores-and-Fixtures"
}

// CategoryStats scrapes one stat page. Squad and opponent tables gain a
// "Team ID" column; the player table gains "Player Link" and "Player ID".
func (c *Client) CategoryStats(ctx context.Context, lg league.League, year int, category stats.Category) (stats.CategoryPage, error) {
	seasonURL, err := c.SeasonURL(ctx, lg, year)
	if err != nil {
		return stats.CategoryPage{}, err
	}
	url := CategoryURL(seasonURL, category)
	doc, err := c.document(ctx, url)
	if err != nil {
		return stats.CategoryPage{}, err
	}

	out := stats.CategoryPage{Category: category}
	var ok bool
	var missing string
	if out.Squad, ok = findTable(doc, "for"); !ok {
		missing = "squad"
	} else if out.Opponent, ok = findTable(doc, "against"); !ok {
		missing = "opponent"
	} else if out.Players, ok = findTable(doc, "stats_"+category.HTML); !ok {
		missing = "player"
	}
	if missing != "" {
		// The season URL may be what moved; resolve it again next time.
		c.forgetSeasons(ctx, lg)
		return stats.CategoryPage{}, layoutChanged("no %s table on %s", missing, url)
	}

	teamID := func(href string) string { return pathSegment(href, 3) }
	out.Squad.AppendColumn(stats.Header{Inner: "Team ID"}, linkColumn(out.Squad, "team", teamID))
	out.Opponent.AppendColumn(stats.Header{Inner: "Team ID"}, linkColumn(out.Opponent, "team", teamID))

	links := linkColumn(out.Players, "player", c.absolute)
	ids := make([]string, len(links))
	for i, link := range links {
		if link != "" {
			ids[i] = pathSegment(link, -2)
		}
	}
	out.Players.AppendColumn(stats.Header{Inner: "Player Link"}, links)
	out.Players.AppendColumn(stats.Header{Inner: "Player ID"}, ids)

	c.logger.DebugContext(ctx, "scraped stat category",
		"league", lg.Name,
		"year", year,
		"category", category.Name,
		"players", len(out.Players.Rows),
	)
	return out, nil
}

// MatchLinks lists the match report URLs of every played fixture.
func (c *Client) MatchLinks(ctx context.Context, lg league.League, year int) ([]string, error) {
	seasonURL, err := c.SeasonURL(ctx, lg, year)
	if err != nil {
		return nil, err
	}
	fixturesURL := FixturesURL(seasonURL)
	doc, err := c.document(ctx, fixturesURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	doc.Find(`td[data-stat="score"] a[href]`).Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		for _, finder := range lg.FBrefFinders {
			if strings.Contains(href, finder) {
				seen[c.absolute(href)] = struct{}{}
				return
			}
		}
	})
	if len(seen) == 0 {
		c.logger.WarnContext(ctx, "no match report links found", "url", fixturesURL)
		return nil, nil
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	slices.Sort(links)
	return links, nil
}

func squadLogURL(baseURL, teamID string, year int, page string) string {
	return fmt.Sprintf("%s/en/squads/%s/%d-%d/matchlogs/all_comps/%s", baseURL, teamID, year-1, year, page)
}
