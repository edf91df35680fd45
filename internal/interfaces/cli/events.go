package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/football-scraper/internal/usecase"
)

func (c *commands) eventsCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Scrape WhoScored match events into Event_Data",
		Example: `  scraper events --start 2024 --end 2024 --leagues EPL
  scraper events --start 2022 --end 2024 --leagues EPL --leagues "La Liga" --dry-run`,
		Args: cobra.NoArgs,
	}
	bindRunFlags(cmd, &flags)
	cmd.RunE = c.traced("events", func(ctx context.Context, cmd *cobra.Command) error {
		leagues, err := c.resolve(ctx, flags)
		if err != nil {
			return err
		}

		c.logger.InfoContext(ctx, "starting event run",
			"leagues", len(leagues),
			"start", flags.Start,
			"end", flags.End,
			"dry_run", flags.DryRun,
		)
		result, err := c.rt.RunEvents(ctx, usecase.EventRunInput{Leagues: leagues, Years: flags.years()}, flags.DryRun)
		printSeasons(cmd, result)
		return err
	})
	return cmd
}

func printSeasons(cmd *cobra.Command, result usecase.EventRunResult) {
	out := cmd.OutOrStdout()
	for _, s := range result.Seasons {
		if s.Skipped {
			fmt.Fprintf(out, "%s %d: no matches\n", s.League, s.Year)
			continue
		}
		fmt.Fprintf(out, "%s %d: %d matches, %d events, %d unplayed\n", s.League, s.Year, s.Matches, s.Events, s.Dropped)
	}
}
