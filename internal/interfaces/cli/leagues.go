package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *commands) leaguesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leagues",
		Short: "List the league catalog",
		Args:  cobra.NoArgs,
		RunE: c.traced("leagues", func(ctx context.Context, cmd *cobra.Command) error {
			leagues, err := c.rt.ListLeagues(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LEAGUE\tEVENTS\tSTATS")
			for _, lg := range leagues {
				fmt.Fprintf(w, "%s\t%s\t%s\n", lg.Name, yesNo(lg.HasWhoScored()), yesNo(lg.HasFBref()))
			}
			return w.Flush()
		}),
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}
