package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/gradpath/internal/domain"
)

// resolveTermID resolves a --term flag against the plan's pinned catalog.
// The flag can be a term code (case-insensitive) or a term id.
func resolveTermID(ctx context.Context, a *App, planID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("term is required")
	}
	terms, err := a.Plans.Terms(ctx, planID)
	if err != nil {
		return "", err
	}
	for _, t := range terms {
		if strings.EqualFold(t.Code, input) || t.ID == input {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("term %q not found in plan catalog (known: %s)", input, termCodes(terms))
}

func termCodes(terms []*domain.Term) string {
	codes := make([]string, len(terms))
	for i, t := range terms {
		codes[i] = t.Code
	}
	return strings.Join(codes, ", ")
}
