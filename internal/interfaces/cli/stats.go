package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

func (c *commands) statsCommand() *cobra.Command {
	var flags statsFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Scrape FBref season stats into CSV files and the Stats dataset",
		Example: `  scraper stats --start 2023 --end 2024 --leagues EPL --write-type WRITE_TRUNCATE
  scraper stats --start 2024 --end 2024 --leagues Bundesliga --write-type APPEND --dry-run`,
		Args: cobra.NoArgs,
	}
	bindRunFlags(cmd, &flags.runFlags)
	cmd.Flags().StringVar(&flags.WriteType, "write-type", string(warehouse.WriteTruncate), "WRITE_TRUNCATE or APPEND")
	cmd.RunE = c.traced("stats", func(ctx context.Context, cmd *cobra.Command) error {
		leagues, mode, err := c.resolveStats(ctx, flags)
		if err != nil {
			return err
		}

		c.logger.InfoContext(ctx, "starting stats run",
			"leagues", len(leagues),
			"start", flags.Start,
			"end", flags.End,
			"mode", mode,
			"dry_run", flags.DryRun,
		)
		result, err := c.rt.RunStats(ctx, usecase.StatsRunInput{Leagues: leagues, Years: flags.years(), Mode: mode}, flags.DryRun)
		out := cmd.OutOrStdout()
		for _, year := range result.Years {
			for _, table := range year.Tables {
				status := fmt.Sprintf("%d rows", table.Rows)
				if table.Write.Skipped {
					status += ", unchanged"
				}
				fmt.Fprintf(out, "%d %s: %s -> %s\n", year.Year, table.Name, status, table.CSVPath)
			}
		}
		return err
	})
	return cmd
}
