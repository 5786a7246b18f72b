package report

import (
	"fmt"
	"strconv"
	"strings"

	"vehicle-damage-analyzer/internal/damage"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	severityStyles = map[damage.Severity]lipgloss.Style{
		damage.SeverityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		damage.SeverityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		damage.SeverityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))
)

// Render formats a full report for the terminal: per-image damage details,
// cost factors, the grand total, and the claims guide.
func Render(r *damage.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Vehicle Damage Assessment"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Report " + r.ID))
	b.WriteString("\n\n")

	for i, result := range r.Results {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("Image %d: %s", i+1, result.Image.Name)))
		b.WriteString("\n")
		writeAnalysis(&b, result.Analysis)
		b.WriteString("\n")
	}

	b.WriteString(totalStyle.Render("Grand total: INR " + formatINR(r.GrandTotalINR)))
	b.WriteString("\n\n")
	writeClaims(&b, r.Claims)

	return b.String()
}

func writeAnalysis(b *strings.Builder, a damage.DamageAnalysis) {
	if len(a.Damages) == 0 {
		b.WriteString("  No damage detected.\n")
		return
	}
	for _, d := range a.Damages {
		sev := severityStyles[d.Severity].Render(string(d.Severity))
		fmt.Fprintf(b, "  • [%s] %s — %s\n", sev, d.DamageType, d.Location)
		fmt.Fprintf(b, "    %s INR %s    %s %.0f%%\n",
			labelStyle.Render("estimate:"), formatINR(d.EstimatedCostINR),
			labelStyle.Render("confidence:"), d.ConfidenceScore*100)
		fmt.Fprintf(b, "    %s\n", d.Explanation)
	}
	fmt.Fprintf(b, "  Image total: INR %s\n", formatINR(a.TotalEstimatedCostINR))
	if len(a.CostFactors) > 0 {
		b.WriteString("  Cost factors:\n")
		for _, f := range a.CostFactors {
			fmt.Fprintf(b, "    - %s\n", f)
		}
	}
}

func writeClaims(b *strings.Builder, c damage.ClaimsInformation) {
	b.WriteString(sectionStyle.Render("Insurance Claims Guide"))
	b.WriteString("\n")

	b.WriteString("  Eligible claims:\n")
	for _, claim := range c.EligibleClaims {
		fmt.Fprintf(b, "    • %s: %s\n", claim.ClaimType, claim.Description)
	}

	b.WriteString("  Claim procedure:\n")
	for i, step := range c.ClaimProcedure {
		fmt.Fprintf(b, "    %d. %s\n", i+1, step)
	}

	b.WriteString("  Required documents:\n")
	for _, doc := range c.RequiredDocuments {
		fmt.Fprintf(b, "    - %s\n", doc)
	}
}

func formatINR(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
