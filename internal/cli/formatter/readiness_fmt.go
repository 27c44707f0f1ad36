package formatter

import (
	"strings"

	"github.com/alexanderramin/gradpath/internal/app"
)

// FormatReadyCheck renders the outcome of a readiness check or transition.
func FormatReadyCheck(check *app.ReadyCheck) string {
	var b strings.Builder
	if check.OK {
		b.WriteString(StyleGreen.Render("✔ Plan is ready for certification"))
	} else {
		b.WriteString(StyleRed.Render("✘ Plan is not ready"))
	}
	b.WriteString("  " + Dim("audit "+shortID(check.AuditID)) + "\n")
	b.WriteString(FormatBlockers(check.Blockers))
	return b.String()
}

// FormatBlockers lists blockers one per line in their fixed order.
func FormatBlockers(blockers []app.Blocker) string {
	var b strings.Builder
	for _, bl := range blockers {
		b.WriteString("  " + StyleRed.Render("•") + " " + bl.String() + "\n")
	}
	return b.String()
}
