package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func tiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Print the interest fee charged for each rent bracket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close(context.Background())

			tiers, err := services(b, nil, nil, nil, cfg.AdminEmail).Settings.Tiers(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIER\tRENT\tFEE\t")
			for _, t := range tiers {
				mark := ""
				if t.Overridden {
					mark = "*"
				}
				fmt.Fprintf(w, "%d\t%s\t%s%s\t\n", t.Index, t.Label, t.Fee.String(), mark)
			}
			return w.Flush()
		},
	}
}
