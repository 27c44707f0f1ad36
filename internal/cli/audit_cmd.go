package cli

import (
	"fmt"

	"github.com/alexanderramin/gradpath/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newAuditCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compute and inspect degree audits",
	}
	cmd.AddCommand(
		newAuditRecomputeCmd(a),
		newAuditLatestCmd(a),
		newAuditHistoryCmd(a),
		newAuditDiffCmd(a),
	)
	return cmd
}

func newAuditRecomputeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <plan-id>",
		Short: "Compute and store a fresh audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audit, err := a.Audits.Recompute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAudit(audit))
			return nil
		},
	}
}

func newAuditLatestCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "latest <plan-id>",
		Short: "Show the most recent stored audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audit, err := a.Audits.Latest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAudit(audit))
			return nil
		},
	}
}

func newAuditHistoryCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <plan-id>",
		Short: "List stored audits, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audits, err := a.Audits.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAuditHistory(audits))
			return nil
		},
	}
}

func newAuditDiffCmd(a *App) *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "diff <plan-id>",
		Short: "Diff two stored audits by history position (1 = newest)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audits, err := a.Audits.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, n := range []int{from, to} {
				if n < 1 || n > len(audits) {
					return fmt.Errorf("audit #%d out of range: plan has %d audits", n, len(audits))
				}
			}
			diff, err := formatter.DiffAudits(audits[from-1], audits[to-1])
			if err != nil {
				return err
			}
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No differences."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 2, "Older audit, by history position")
	cmd.Flags().IntVar(&to, "to", 1, "Newer audit, by history position")

	return cmd
}
