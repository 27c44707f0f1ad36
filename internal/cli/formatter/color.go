package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// SetPlain switches every style to the ASCII profile so output carries no
// escape sequences.
func SetPlain(plain bool) {
	if plain {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// RequirementStyle colours a requirement status.
func RequirementStyle(s domain.RequirementStatus) lipgloss.Style {
	switch s {
	case domain.RequirementSatisfied:
		return StyleGreen
	case domain.RequirementPending:
		return StyleBlue
	case domain.RequirementMissing:
		return StyleRed
	case domain.RequirementUnknown:
		return StyleYellow
	default:
		return StyleDim
	}
}

// RequirementBadge returns an indicator such as "● MISSING".
func RequirementBadge(s domain.RequirementStatus) string {
	return RequirementStyle(s).Render("● " + string(s))
}

// CertBadge renders a plan's certification state.
func CertBadge(s domain.CertificationState) string {
	switch s {
	case domain.CertCertified:
		return StyleGreen.Render("✔ CERTIFIED")
	case domain.CertReady:
		return StyleBlue.Render("● READY")
	case domain.CertDraft:
		return StyleDim.Render("○ DRAFT")
	default:
		return StyleDim.Render(string(s))
	}
}

// ItemBadge renders a plan item's validation status.
func ItemBadge(s domain.PlanItemStatus) string {
	switch s {
	case domain.ItemValid:
		return StyleGreen.Render("VALID")
	case domain.ItemInvalid:
		return StyleRed.Render("INVALID")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
