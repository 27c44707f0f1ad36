package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/gradpath/internal/app"
)

// FormatOutcome renders a validation outcome.
func FormatOutcome(out *app.ValidationOutcome) string {
	var b strings.Builder
	code := ""
	if out.CanonicalCode != nil {
		code = " " + Bold(*out.CanonicalCode)
	}
	if out.IsValid {
		fmt.Fprintf(&b, "%s%s\n", StyleGreen.Render("✔ valid"), code)
	} else {
		reason := ""
		if out.Reason != nil {
			reason = string(*out.Reason)
		}
		fmt.Fprintf(&b, "%s %s%s\n", StyleRed.Render("✘ invalid"), reason, code)
	}
	if len(out.MissingPrereqs) > 0 {
		fmt.Fprintf(&b, "  missing prerequisites: %s\n", strings.Join(out.MissingPrereqs, ", "))
	}
	fmt.Fprintf(&b, "  %s\n", Dim(fmt.Sprintf("snapshot %s from %s, synced %s",
		shortID(out.SnapshotID), orDash(out.SnapshotSource), Timestamp(out.SyncedAt))))
	return b.String()
}

// FormatUpsert renders the stored item and its outcome.
func FormatUpsert(res *app.UpsertResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Saved item %s\n", TruncID(res.Item.ID))
	if res.Reverted {
		b.WriteString(StyleYellow.Render("Plan reverted to DRAFT") + "\n")
	}
	b.WriteString(FormatOutcome(res.Outcome))
	return b.String()
}
