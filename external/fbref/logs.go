package fbref

import (
	"context"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/stats"
)

// SquadMatchLog fetches every match-log category of a team's season and the
// schedule, and assembles them into one table.
func (c *Client) SquadMatchLog(ctx context.Context, teamID, squad string, year int) (dataset.Table, error) {
	categories := make([]dataset.Table, 0, len(stats.MatchLogPrefixes))
	for _, prefix := range stats.MatchLogPrefixes {
		url := squadLogURL(c.baseURL, teamID, year, prefix)
		doc, err := c.document(ctx, url)
		if err != nil {
			return dataset.Table{}, err
		}
		raw, ok := firstTable(doc)
		if !ok {
			return dataset.Table{}, layoutChanged("no match log table on %s", url)
		}
		categories = append(categories, stats.FlattenMatchLog(raw, prefix))
	}

	url := squadLogURL(c.baseURL, teamID, year, "schedule")
	doc, err := c.document(ctx, url)
	if err != nil {
		return dataset.Table{}, err
	}
	raw, ok := firstTable(doc)
	if !ok {
		return dataset.Table{}, layoutChanged("no schedule table on %s", url)
	}
	schedule := stats.Flatten(raw, "")

	c.logger.DebugContext(ctx, "scraped squad match logs", "squad", squad, "year", year)
	return stats.SquadMatchLog(schedule, categories, squad), nil
}
