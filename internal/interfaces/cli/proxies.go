package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type proxyFlags struct {
	Limit int `validate:"min=0"`
}

func (c *commands) proxiesCommand() *cobra.Command {
	var flags proxyFlags
	cmd := &cobra.Command{
		Use:   "proxies",
		Short: "Discover and probe public proxies",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVar(&flags.Limit, "limit", 0, "print at most N proxies, 0 for all")
	cmd.RunE = c.traced("proxies", func(ctx context.Context, cmd *cobra.Command) error {
		if err := c.validateFlags(ctx, flags); err != nil {
			return err
		}
		found, err := c.rt.DiscoverProxies(ctx)
		if err != nil {
			return err
		}
		if flags.Limit > 0 && len(found) > flags.Limit {
			found = found[:flags.Limit]
		}
		for _, p := range found {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	})
	return cmd
}
