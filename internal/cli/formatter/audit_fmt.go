package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/pmezard/go-difflib/difflib"
)

// FormatAudit renders one audit record: a summary box followed by one row
// per requirement in stored order.
func FormatAudit(a *domain.AuditRecord) string {
	s := a.Summary
	var summary strings.Builder
	fmt.Fprintf(&summary, "%s %s\n", Bold("Audit"), TruncID(a.ID))
	fmt.Fprintf(&summary, "Computed   %s\n", Timestamp(a.ComputedAt))
	fmt.Fprintf(&summary, "Progress   %s  %d/%d known requirements\n",
		RenderProgress(s.PercentComplete, 20), s.SatisfiedRequirements, s.KnownRequirementCount)
	fmt.Fprintf(&summary, "Credits    %d completed, %d in progress\n", s.CompletedCredits, s.PendingCredits)
	fmt.Fprintf(&summary, "Status     %s %d  %s %d  %s %d  %s %d",
		RequirementBadge(domain.RequirementSatisfied), s.SatisfiedRequirements,
		RequirementBadge(domain.RequirementPending), s.PendingRequirements,
		RequirementBadge(domain.RequirementMissing), s.MissingRequirements,
		RequirementBadge(domain.RequirementUnknown), s.UnknownRequirements)
	if a.HasUnsupportedRules {
		summary.WriteString("\n" + StyleYellow.Render("Some requirements use rules that cannot be evaluated."))
	}

	var b strings.Builder
	b.WriteString(RenderBox("Degree audit", summary.String()))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(a.Requirements))
	for i, r := range a.Requirements {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			TruncID(r.RequirementNodeID),
			RequirementBadge(r.Status),
			detailText(r.Detail),
		})
	}
	b.WriteString(RenderTable([]string{"#", "NODE", "STATUS", "DETAIL"}, rows))
	return b.String()
}

func detailText(d *domain.RequirementDetail) string {
	if d == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	if d.Reason != "" {
		parts = append(parts, d.Reason)
	}
	if len(d.MissingCourses) > 0 {
		parts = append(parts, "missing "+strings.Join(d.MissingCourses, ", "))
	}
	if len(d.Explanations) > 0 {
		parts = append(parts, Dim(strings.Join(d.Explanations, " ")))
	}
	return strings.Join(parts, "; ")
}

// FormatAuditHistory lists audit records newest first.
func FormatAuditHistory(audits []*domain.AuditRecord) string {
	if len(audits) == 0 {
		return Dim("No audits recorded.") + "\n"
	}
	rows := make([][]string, 0, len(audits))
	for i, a := range audits {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			TruncID(a.ID),
			Timestamp(a.ComputedAt),
			fmt.Sprintf("%d/%d", a.Summary.SatisfiedRequirements, a.Summary.KnownRequirementCount),
			fmt.Sprintf("%d", a.Summary.UnknownRequirements),
			RenderProgress(a.Summary.PercentComplete, 10),
		})
	}
	return Header("Audit history") + "\n" +
		RenderTable([]string{"#", "AUDIT", "COMPUTED", "SATISFIED", "UNKNOWN", "PROGRESS"}, rows)
}

// AuditText renders an audit as stable, uncoloured lines. Identifiers and
// timestamps are left out so two computations over the same plan state
// render identically.
func AuditText(a *domain.AuditRecord) string {
	s := a.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "completed credits: %d\n", s.CompletedCredits)
	fmt.Fprintf(&b, "pending credits: %d\n", s.PendingCredits)
	fmt.Fprintf(&b, "satisfied: %d\n", s.SatisfiedRequirements)
	fmt.Fprintf(&b, "pending: %d\n", s.PendingRequirements)
	fmt.Fprintf(&b, "missing: %d\n", s.MissingRequirements)
	fmt.Fprintf(&b, "unknown: %d\n", s.UnknownRequirements)
	fmt.Fprintf(&b, "percent complete: %.1f\n", s.PercentComplete*100)
	fmt.Fprintf(&b, "unsupported rules: %t\n", a.HasUnsupportedRules)
	for _, r := range a.Requirements {
		fmt.Fprintf(&b, "requirement %s: %s", r.RequirementNodeID, r.Status)
		if d := r.Detail; d != nil {
			if d.Reason != "" {
				fmt.Fprintf(&b, " reason=%s", d.Reason)
			}
			if len(d.MissingCourses) > 0 {
				fmt.Fprintf(&b, " missing=%s", strings.Join(d.MissingCourses, ","))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// DiffAudits returns a unified diff from one audit to another. An empty
// string means the two records agree.
func DiffAudits(from, to *domain.AuditRecord) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(AuditText(from)),
		B:        difflib.SplitLines(AuditText(to)),
		FromFile: "audit " + shortID(from.ID),
		ToFile:   "audit " + shortID(to.ID),
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diffing audits: %w", err)
	}
	return text, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
