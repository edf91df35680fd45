// Package cli exposes the scraping pipelines as cobra commands.
package cli

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/proxy"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

var cliTracer = otel.Tracer("football-scraper/internal/interfaces/cli")

// Runtime is what the commands drive. app.App satisfies it.
type Runtime interface {
	ListLeagues(ctx context.Context) ([]league.League, error)
	ResolveLeagues(ctx context.Context, names []string) ([]league.League, error)
	RunEvents(ctx context.Context, input usecase.EventRunInput, dryRun bool) (usecase.EventRunResult, error)
	RunStats(ctx context.Context, input usecase.StatsRunInput, dryRun bool) (usecase.StatsRunResult, error)
	DiscoverProxies(ctx context.Context) ([]proxy.Proxy, error)
}

type commands struct {
	rt       Runtime
	logger   *logging.Logger
	validate *validator.Validate
}

func NewRootCommand(rt Runtime, logger *logging.Logger) *cobra.Command {
	if logger == nil {
		logger = logging.Default()
	}
	c := &commands{
		rt:       rt,
		logger:   logger.Named("cli"),
		validate: validator.New(),
	}

	root := &cobra.Command{
		Use:           "scraper",
		Short:         "Scrape WhoScored events and FBref stats into the warehouse",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		c.eventsCommand(),
		c.statsCommand(),
		c.proxiesCommand(),
		c.leaguesCommand(),
	)
	return root
}

// traced runs fn under a root span named after the command.
func (c *commands) traced(name string, fn func(ctx context.Context, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, span := cliTracer.Start(cmd.Context(), "cli."+name)
		defer span.End()

		if err := fn(ctx, cmd); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}
}
