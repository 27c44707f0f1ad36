package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/domain"
)

// FormatPlan renders a plan header and its items grouped by term.
func FormatPlan(view *app.PlanView) string {
	p := view.Plan
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(p.Name), CertBadge(p.CertificationState))
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n\n",
		Dim("id"), p.ID, Dim("owner"), p.UserID, Dim("snapshot"), shortID(p.PinnedSnapshotID))

	if len(view.Items) == 0 {
		b.WriteString(Dim("No items yet.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(view.Items))
	for _, it := range view.Items {
		termCode := it.TermID
		if t, ok := view.Terms[it.TermID]; ok {
			termCode = t.Code
		}
		code := ""
		if it.CanonicalCode != nil {
			code = *it.CanonicalCode
		}
		reason := ""
		if it.Reason != nil {
			reason = string(*it.Reason)
		}
		rows = append(rows, []string{
			termCode,
			fmt.Sprintf("%d", it.Position),
			it.RawInput,
			orDash(code),
			string(it.Completion),
			ItemBadge(it.Status),
			reason,
			TruncID(it.ID),
		})
	}
	b.WriteString(RenderTable([]string{"TERM", "POS", "INPUT", "CODE", "COMPLETION", "STATUS", "REASON", "ITEM"}, rows))
	return b.String()
}

// FormatTerms lists terms in the order given.
func FormatTerms(terms []*domain.Term) string {
	rows := make([][]string, 0, len(terms))
	for _, t := range terms {
		rows = append(rows, []string{t.Code, string(t.Season), fmt.Sprintf("%d", t.Year), t.Campus, TruncID(t.ID)})
	}
	return RenderTable([]string{"CODE", "SEASON", "YEAR", "CAMPUS", "ID"}, rows)
}

// FormatAuditLog lists certification transitions oldest first.
func FormatAuditLog(entries []*domain.AuditLogEntry) string {
	if len(entries) == 0 {
		return Dim("No transitions recorded.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{Timestamp(e.CreatedAt), string(e.Action), e.ActorUserID, metaText(e.Meta)})
	}
	return RenderTable([]string{"WHEN", "ACTION", "ACTOR", "META"}, rows)
}

func metaText(meta map[string]string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + meta[k]
	}
	return Dim(strings.Join(parts, " "))
}
