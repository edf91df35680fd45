package fbref

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/riskibarqy/football-scraper/internal/domain/stats"
)

var matchTableSuffixes = map[string]string{
	"Summary":    "summary",
	"Passing":    "passing",
	"Pass Types": "passing_types",
	"Defense":    "defense",
	"Possession": "possession",
	"Misc":       "misc",
}

// ScrapeMatch parses a match report page.
func (c *Client) ScrapeMatch(ctx context.Context, url string) (stats.MatchReport, error) {
	doc, err := c.document(ctx, url)
	if err != nil {
		return stats.MatchReport{}, err
	}
	report, err := parseMatchReport(doc)
	if err != nil {
		return stats.MatchReport{}, layoutChanged("%s: %v", url, err)
	}
	report.URL = url
	return report, nil
}

func parseMatchReport(doc *goquery.Document) (stats.MatchReport, error) {
	scorebox := doc.Find("div.scorebox").First()
	if scorebox.Length() == 0 {
		return stats.MatchReport{}, errors.New("missing scorebox")
	}

	var report stats.MatchReport
	sides := scorebox.ChildrenFiltered("div")
	if sides.Length() < 2 {
		return stats.MatchReport{}, errors.New("scorebox has fewer than two teams")
	}
	for i := range 2 {
		side := sides.Eq(i)
		anchor := side.Find("strong a[href]").First()
		name := strings.TrimSpace(anchor.Text())
		id := pathSegment(anchor.AttrOr("href", ""), 3)
		goals := parseGoals(side.Find("div.score").First().Text())
		if i == 0 {
			report.Meta.HomeTeam, report.HomeID, report.Meta.HomeGoals = name, id, goals
		} else {
			report.Meta.AwayTeam, report.AwayID, report.Meta.AwayGoals = name, id, goals
		}
	}
	if report.HomeID == "" || report.AwayID == "" {
		return stats.MatchReport{}, errors.New("scorebox team links missing")
	}

	meta := scorebox.Find("div.scorebox_meta").First()
	if date, ok := meta.Find("span.venuetime[data-venue-date]").First().Attr("data-venue-date"); ok {
		if parsed, err := time.Parse(time.DateOnly, date); err == nil {
			report.Meta.Date = parsed
		}
	}
	if report.Meta.Date.IsZero() {
		if parsed, err := time.Parse("Monday January 2, 2006", strings.TrimSpace(meta.Find("strong a").First().Text())); err == nil {
			report.Meta.Date = parsed
		}
	}
	meta.ChildrenFiltered("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		text := strings.Join(strings.Fields(div.Text()), " ")
		if strings.Contains(text, "(") && div.Find("a[href*='/comps/']").Length() > 0 {
			report.Meta.Stage = text
			return false
		}
		return true
	})

	report.Players = make(map[string][]stats.NamedRaw, 2)
	for _, teamID := range []string{report.HomeID, report.AwayID} {
		for _, name := range stats.MatchPlayerCategories {
			sel := doc.Find("table#stats_" + teamID + "_" + matchTableSuffixes[name]).First()
			if sel.Length() == 0 {
				continue
			}
			raw := parseTable(sel)
			if name == "Summary" {
				ids := linkColumn(raw, "player", func(href string) string { return pathSegment(href, -2) })
				raw.AppendColumn(stats.Header{Inner: "Player ID"}, ids)
			}
			report.Players[teamID] = append(report.Players[teamID], stats.NamedRaw{Name: name, Raw: raw})
		}
	}

	if shots := doc.Find("table#shots_all").First(); shots.Length() > 0 {
		report.Shots = parseTable(shots)
	}
	return report, nil
}

func parseGoals(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &n
}
