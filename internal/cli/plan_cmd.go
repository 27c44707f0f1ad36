package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newPlanCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage degree plans",
	}

	cmd.AddCommand(
		newPlanCreateCmd(a),
		newPlanShowCmd(a),
		newPlanTermsCmd(a),
		newPlanLogCmd(a),
		newPlanCheckCmd(a),
		newPlanReadyCmd(a),
		newPlanFinalizeCmd(a),
	)

	return cmd
}

func newPlanCreateCmd(a *App) *cobra.Command {
	var req app.CreatePlanRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a DRAFT plan pinned to a program version",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.Plans.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created plan %s (%s)\n", plan.Name, plan.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.UserID, "user", "", "Owning student id")
	cmd.Flags().StringVar(&req.ProgramVersionID, "version", "", "Program version id")
	cmd.Flags().StringVar(&req.Name, "name", "", "Plan name")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("version")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlanShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a plan and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.Plans.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlan(view))
			return nil
		},
	}
}

func newPlanTermsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "terms <plan-id>",
		Short: "List the terms of the plan's pinned catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			terms, err := a.Plans.Terms(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTerms(terms))
			return nil
		},
	}
}

func newPlanLogCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "log <plan-id>",
		Short: "Show the plan's certification transitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.Plans.AuditLog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAuditLog(entries))
			return nil
		},
	}
}

func newPlanCheckCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check <plan-id>",
		Short: "Run a readiness check without changing the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			check, err := a.Readiness.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReadyCheck(check))
			return nil
		},
	}
}

func newPlanReadyCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ready <plan-id>",
		Short: "Mark a plan READY if it passes the readiness check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			check, err := a.Certification.MarkReady(cmd.Context(), args[0])
			return reportTransition(cmd, check, err, "Plan marked READY")
		},
	}
}

func newPlanFinalizeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <plan-id>",
		Short: "Certify a READY plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			check, err := a.Certification.Finalize(cmd.Context(), args[0])
			return reportTransition(cmd, check, err, "Plan CERTIFIED")
		},
	}
}

// reportTransition prints the readiness check behind a transition. A refusal
// still prints its blockers before the error is returned.
func reportTransition(cmd *cobra.Command, check *app.ReadyCheck, err error, success string) error {
	out := cmd.OutOrStdout()
	var notReady *app.NotReadyError
	switch {
	case err == nil:
		fmt.Fprintln(out, formatter.StyleGreen.Render(success))
		return nil
	case errors.As(err, &notReady) && check != nil:
		fmt.Fprint(out, formatter.FormatReadyCheck(check))
	case errors.As(err, &notReady):
		fmt.Fprint(out, formatter.FormatBlockers(notReady.Blockers))
	}
	return err
}
