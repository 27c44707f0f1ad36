package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/cli/formatter"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// completionFlag is a pflag.Value restricted to the completion statuses.
type completionFlag domain.CompletionStatus

var _ pflag.Value = (*completionFlag)(nil)

func (f *completionFlag) String() string { return string(*f) }

func (f *completionFlag) Set(v string) error {
	upper := strings.ToUpper(strings.ReplaceAll(v, "-", "_"))
	if !domain.ValidCompletionStatuses[upper] {
		return fmt.Errorf("must be one of YES, IN_PROGRESS, NO, BLANK")
	}
	*f = completionFlag(upper)
	return nil
}

func (f *completionFlag) Type() string { return "completion" }

// itemFlags are shared by item validate and item put.
type itemFlags struct {
	planID     string
	itemID     string
	term       string
	position   int
	input      string
	completion completionFlag
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.planID, "plan", "", "Plan id")
	cmd.Flags().StringVar(&f.itemID, "item", "", "Existing item id")
	cmd.Flags().StringVar(&f.term, "term", "", "Term code or id")
	cmd.Flags().IntVar(&f.position, "position", 1, "Position within the term (1-based)")
	cmd.Flags().StringVar(&f.input, "input", "", "Course input, e.g. \"Calc II 01:640:152\"")
	cmd.Flags().Var(&f.completion, "completion", "YES, IN_PROGRESS, NO or BLANK")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("term")
}

func newItemCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Validate and store plan items",
	}
	cmd.AddCommand(newItemValidateCmd(a), newItemPutCmd(a))
	return cmd
}

func newItemValidateCmd(a *App) *cobra.Command {
	var f itemFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate course input for a slot without saving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			termID, err := resolveTermID(ctx, a, f.planID, f.term)
			if err != nil {
				return err
			}
			out, err := a.Items.Validate(ctx, app.ValidateItemRequest{
				PlanID:     f.planID,
				ItemID:     f.itemID,
				TermID:     termID,
				Position:   f.position,
				RawInput:   f.input,
				Completion: domain.CompletionStatus(f.completion),
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOutcome(out))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newItemPutCmd(a *App) *cobra.Command {
	var f itemFlags

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Create or update a plan item",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			termID, err := resolveTermID(ctx, a, f.planID, f.term)
			if err != nil {
				return err
			}
			res, err := a.Items.Upsert(ctx, app.UpsertItemRequest{
				ItemID:     f.itemID,
				PlanID:     f.planID,
				TermID:     termID,
				Position:   f.position,
				RawInput:   f.input,
				Completion: domain.CompletionStatus(f.completion),
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUpsert(res))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
