package damage

import (
	"fmt"
	"strings"
)

// Clause formats one damage as "<severity> <damageType> on <location>".
func (d DamageDetail) Clause() string {
	return fmt.Sprintf("%s %s on %s", d.Severity, d.DamageType, d.Location)
}

// CombinedSummary flattens all damages across the results into one summary
// string, one clause per damage, joined with "; ". Returns "" when no damage
// was detected anywhere, which drives the no-claim guide.
func CombinedSummary(results []AnalysisResult) string {
	var clauses []string
	for _, r := range results {
		for _, d := range r.Analysis.Damages {
			clauses = append(clauses, d.Clause())
		}
	}
	return strings.Join(clauses, "; ")
}
