package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/gradpath/internal/app"
)

// FormatImport summarises an imported catalog snapshot and the program
// versions it created.
func FormatImport(res *app.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported snapshot %s from %s\n", res.Snapshot.ID, orDash(res.Snapshot.Source))
	fmt.Fprintf(&b, "  %d terms, %d courses, %d offerings, %d rules, %d requirements\n",
		res.TermCount, res.CourseCount, res.OfferingCount, res.RuleCount, res.RequirementCount)
	if len(res.ProgramVersions) > 0 {
		rows := make([][]string, 0, len(res.ProgramVersions))
		for _, v := range res.ProgramVersions {
			rows = append(rows, []string{v.ID, v.CatalogYear, v.Campus})
		}
		b.WriteString("\n" + RenderTable([]string{"PROGRAM VERSION", "YEAR", "CAMPUS"}, rows))
	}
	return b.String()
}
