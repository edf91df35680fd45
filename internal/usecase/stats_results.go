package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/reconcile"
	"github.com/riskibarqy/football-scraper/internal/domain/stats"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
)

const (
	minutesColumn   = "Standard_Playing_Time_90s"
	leagueStageMark = "Matchweek"
)

// Summary columns copied over their defensive counterparts before adjustment.
var summaryDefense = [][2]string{
	{"Defense_Blocks", "Summary_Performance_Blocks"},
	{"Defense_Tackles_Tkl", "Summary_Performance_Tkl"},
	{"Defense_Int", "Summary_Performance_Int"},
}

type namedTable struct {
	name  string
	table dataset.Table
}

// parseResults normalizes column names, reconciles match-report team names
// with the season tables and adds the possession-adjusted and per-90 metrics
// to the player table.
func (p *StatsPipeline) parseResults(ctx context.Context, logger *logging.Logger, results map[string]dataset.Table) ([]namedTable, error) {
	parsed := make(map[string]dataset.Table, len(results))
	for key, table := range results {
		out, err := stats.ParseColumns(table)
		if err != nil {
			return nil, fmt.Errorf("parse %s columns: %w", key, err)
		}
		parsed[key] = out
	}

	players := parsed[resultPlayerStats]
	playerLogs := parsed[resultPlayerLogs]
	squadLogs := parsed[resultSquadLogs]

	leaguePlayerLogs := playerLogs.Filter(columnContains("Stage", leagueStageMark))
	leagueSquadLogs := squadLogs.Filter(columnContains("Round", leagueStageMark))

	if leaguePlayerLogs.Len() == 0 || leagueSquadLogs.Len() == 0 {
		logger.WarnContext(ctx, "no league match logs, skipping possession adjustment")
	} else {
		padj, err := p.possessionAdjusted(ctx, logger, leaguePlayerLogs, leagueSquadLogs, players)
		if err != nil {
			return nil, err
		}
		players = dataset.LeftJoinOn(players, padj,
			[]string{"Standard_Player", "Standard_Player_ID"},
			[]string{"Summary_Player", "Summary_Player_ID"},
		)
	}
	players = stats.Per90(players, minutesColumn)

	if p.positions != nil {
		positions, err := p.positions.Positions(ctx)
		if err != nil {
			logger.WarnContext(ctx, "position sheet unavailable", "error", err)
		} else {
			players.AddColumn("Position", nil)
			for _, row := range players.Rows {
				if pos, ok := positions[dataset.String(row["Standard_Player_ID"])]; ok {
					row["Position"] = pos
				}
			}
		}
	}

	return []namedTable{
		{"squad", parsed[resultSquad]},
		{"against", parsed[resultAgainst]},
		{"players", players},
		{"squad_gks", parsed[resultSquadGKs]},
		{"against_gks", parsed[resultAgainstGKs]},
		{"players_gk", parsed[resultPlayerGK]},
		{"shots", parsed[resultShots]},
		{"squad_logs", squadLogs},
		{"player_logs", playerLogs},
	}, nil
}

// possessionAdjusted attributes each league player-log row to a squad, joins
// the squad's possession for that fixture and sums the adjusted metrics per
// player.
func (p *StatsPipeline) possessionAdjusted(ctx context.Context, logger *logging.Logger, logs, squadLogs, players dataset.Table) (dataset.Table, error) {
	logs = logs.Clone()

	logTeams := distinctValues(logs, "Home_Team", "Away_Team")
	squadTeams := distinctValues(squadLogs, "Squad")
	toSquadLogs, err := p.matcher.Match(logTeams, squadTeams)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("map match teams to squad logs: %w", err)
	}
	renameValues(logs, toSquadLogs, "Home_Team", "Away_Team")

	for _, pair := range summaryDefense {
		if logs.HasColumn(pair[1]) {
			logs.AddColumn(pair[0], nil)
			for _, row := range logs.Rows {
				row[pair[0]] = row[pair[1]]
			}
		}
	}

	teamsByPlayer := make(map[string][]string)
	for _, row := range players.Rows {
		name := dataset.String(row["Standard_Player"])
		squad := dataset.String(row["Standard_Squad"])
		if !slices.Contains(teamsByPlayer[name], squad) {
			teamsByPlayer[name] = append(teamsByPlayer[name], squad)
		}
	}
	logs.AddColumn("Squad", nil)
	for _, row := range logs.Rows {
		player := dataset.String(row["Summary_Player"])
		team, ambiguous, err := reconcile.FindTeam(player, dataset.String(row["Home_Team"]), dataset.String(row["Away_Team"]), teamsByPlayer)
		if err != nil {
			return dataset.Table{}, err
		}
		if ambiguous {
			logger.WarnContext(ctx, "player found in both squads, using home", "player", player, "stage", row["Stage"])
		}
		row["Squad"] = team
	}

	toStats, err := p.matcher.Match(distinctValues(logs, "Home_Team", "Away_Team"), distinctValues(players, "Standard_Squad"))
	if err != nil {
		return dataset.Table{}, fmt.Errorf("map squad logs to season stats: %w", err)
	}
	keys := make([]string, 0, len(toStats))
	for k := range toStats {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if !slices.Equal(keys, squadTeams) {
		return dataset.Table{}, fmt.Errorf("%w: mapped teams %v differ from squad log teams %v", reconcile.ErrNoConfidentMatch, keys, squadTeams)
	}
	logger.InfoContext(ctx, "mapped teams from logs to stats", "teams", len(toStats))
	renameValues(logs, toStats, "Home_Team", "Away_Team", "Squad")

	addMatchString(&logs, "Home_Team", "Away_Team")
	fixtures := squadLogs.Clone()
	addMatchString(&fixtures, "Squad", "Opponent")
	possession := dataset.New("Fixture_Squad", "Fixture_Match_String", "Poss")
	for _, row := range fixtures.Rows {
		possession.Rows = append(possession.Rows, dataset.Row{
			"Fixture_Squad":        row["Squad"],
			"Fixture_Match_String": row["Match_String"],
			"Poss":                 row["Poss"],
		})
	}

	merged := dataset.LeftJoinOn(logs, possession,
		[]string{"Match_String", "Squad"},
		[]string{"Fixture_Match_String", "Fixture_Squad"},
	).DropColumns("Fixture_Squad", "Fixture_Match_String")
	merged, err = merged.DedupeRowsBy("Stage", "Summary_Player", "Squad")
	if err != nil {
		return dataset.Table{}, err
	}
	for _, team := range distinctValues(merged, "Squad") {
		count := merged.Filter(func(row dataset.Row) bool { return row["Squad"] == team }).Len()
		logger.DebugContext(ctx, "matched player logs", "squad", team, "rows", count)
	}
	logger.InfoContext(ctx, "merged player logs with possession", "merged", merged.Len(), "player_logs", logs.Len())

	var metrics []string
	for _, col := range merged.Columns {
		if stats.AdjustableMetric(col) {
			metrics = append(metrics, col)
		}
	}
	if err := adjustMetrics(merged, metrics); err != nil {
		return dataset.Table{}, err
	}
	return sumAdjusted(merged, metrics), nil
}

func adjustMetrics(t dataset.Table, metrics []string) error {
	for _, metric := range metrics {
		name := stats.AdjustedName(metric)
		for _, row := range t.Rows {
			row[name] = nil
			value, ok := dataset.Float(row[metric])
			if !ok {
				continue
			}
			poss, ok := dataset.Float(row["Poss"])
			if !ok {
				continue
			}
			adjusted, err := stats.PossessionAdjust(value, poss)
			if err != nil {
				return fmt.Errorf("%s for %v: %w", metric, row["Summary_Player"], err)
			}
			row[name] = adjusted
		}
	}
	return nil
}

// sumAdjusted groups by player name and id, summing every adjusted metric.
// Missing values count as zero.
func sumAdjusted(t dataset.Table, metrics []string) dataset.Table {
	columns := []string{"Summary_Player", "Summary_Player_ID"}
	for _, metric := range metrics {
		columns = append(columns, stats.AdjustedName(metric))
	}
	out := dataset.New(columns...)

	index := make(map[[2]string]dataset.Row)
	var order [][2]string
	for _, row := range t.Rows {
		key := [2]string{dataset.String(row["Summary_Player"]), dataset.String(row["Summary_Player_ID"])}
		agg, ok := index[key]
		if !ok {
			agg = dataset.Row{"Summary_Player": row["Summary_Player"], "Summary_Player_ID": row["Summary_Player_ID"]}
			for _, col := range columns[2:] {
				agg[col] = 0.0
			}
			index[key] = agg
			order = append(order, key)
		}
		for _, col := range columns[2:] {
			if v, ok := dataset.Float(row[col]); ok {
				agg[col] = agg[col].(float64) + v
			}
		}
	}

	slices.SortFunc(order, func(a, b [2]string) int {
		if c := strings.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return strings.Compare(a[1], b[1])
	})
	for _, key := range order {
		out.Rows = append(out.Rows, index[key])
	}
	return out
}

// addMatchString keys a fixture by its two team names in sorted order.
func addMatchString(t *dataset.Table, a, b string) {
	t.AddColumn("Match_String", nil)
	for _, row := range t.Rows {
		teams := []string{dataset.String(row[a]), dataset.String(row[b])}
		slices.Sort(teams)
		row["Match_String"] = strings.Join(teams, "")
	}
}

func renameValues(t dataset.Table, mapping map[string]string, columns ...string) {
	for _, row := range t.Rows {
		for _, col := range columns {
			if mapped, ok := mapping[dataset.String(row[col])]; ok {
				row[col] = mapped
			}
		}
	}
}

// distinctValues lists the non-empty values of columns, sorted.
func distinctValues(t dataset.Table, columns ...string) []string {
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		for _, col := range columns {
			if v := dataset.String(row[col]); v != "" {
				seen[v] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func columnContains(col, substr string) func(dataset.Row) bool {
	return func(row dataset.Row) bool {
		return strings.Contains(dataset.String(row[col]), substr)
	}
}
