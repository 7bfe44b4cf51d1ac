package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rentease-service/internal/model"
	"rentease-service/internal/report"
	"rentease-service/internal/service"
)

// cliActor runs admin-only operations from the command line.
var cliActor = model.Actor{UserID: "cli", Role: model.RoleAdmin}

func reportCmd() *cobra.Command {
	var start, end, fields, out string

	cmd := &cobra.Command{
		Use:   "report <properties|interests|collections>",
		Short: "Write an xlsx report from the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := report.ParseKind(args[0])
			if err != nil {
				return err
			}
			now := time.Now()
			from, to, err := report.ParseRange(start, end, now)
			if err != nil {
				return err
			}
			if out == "" {
				out = kind.Filename(now)
			}

			ctx := cmd.Context()
			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close(context.Background())

			svc := services(b, nil, nil, nil, cfg.AdminEmail)
			table, err := svc.Reports.Generate(ctx, cliActor, service.ReportRequest{
				Kind:   kind,
				Start:  from,
				End:    to,
				Fields: report.ParseFieldList(fields),
			})
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.WriteXLSX(f, table); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(table.Rows), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD (default 30 days ago)")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&fields, "fields", "", "comma separated columns (default set when empty)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <kind>_report_<date>.xlsx)")
	return cmd
}
