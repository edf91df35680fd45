package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

type runFlags struct {
	Start   int      `validate:"min=1990,max=2100"`
	End     int      `validate:"min=1990,max=2100,gtefield=Start"`
	Leagues []string `validate:"required,min=1,dive,required"`
	DryRun  bool
}

type statsFlags struct {
	runFlags
	WriteType string `validate:"required,oneof=WRITE_TRUNCATE APPEND"`
}

func (f runFlags) years() []int {
	out := make([]int, 0, f.End-f.Start+1)
	for year := f.Start; year <= f.End; year++ {
		out = append(out, year)
	}
	return out
}

func (c *commands) validateFlags(ctx context.Context, flags any) error {
	if err := c.validate.StructCtx(ctx, flags); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// resolve validates the common run flags and maps league names to the catalog.
func (c *commands) resolve(ctx context.Context, flags runFlags) ([]league.League, error) {
	for i, name := range flags.Leagues {
		flags.Leagues[i] = strings.TrimSpace(name)
	}
	if err := c.validateFlags(ctx, flags); err != nil {
		return nil, err
	}
	return c.rt.ResolveLeagues(ctx, flags.Leagues)
}

func (c *commands) resolveStats(ctx context.Context, flags statsFlags) ([]league.League, warehouse.WriteMode, error) {
	flags.WriteType = strings.ToUpper(strings.TrimSpace(flags.WriteType))
	if err := c.validateFlags(ctx, flags); err != nil {
		return nil, "", err
	}
	mode, err := warehouse.ParseWriteMode(flags.WriteType)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", usecase.ErrInvalidInput, err)
	}
	leagues, err := c.resolve(ctx, flags.runFlags)
	if err != nil {
		return nil, "", err
	}
	return leagues, mode, nil
}

func bindRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().IntVar(&flags.Start, "start", 0, "first season year")
	cmd.Flags().IntVar(&flags.End, "end", 0, "last season year, inclusive")
	cmd.Flags().StringArrayVar(&flags.Leagues, "leagues", nil, "league name from the catalog; repeat for several")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "write to an in-memory warehouse")
}
