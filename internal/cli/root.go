package cli

import (
	"github.com/alexanderramin/gradpath/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Catalog       service.CatalogService
	Plans         service.PlanService
	Items         service.ItemService
	Audits        service.AuditService
	Readiness     service.ReadinessService
	Certification service.CertificationService
}

// NewRootCmd creates the top-level "gradpath" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "gradpath",
		Short:         "Degree plan validation, audit and certification",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCatalogCmd(app),
		newPlanCmd(app),
		newItemCmd(app),
		newAuditCmd(app),
	)

	return root
}
