package damage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDamageClause(t *testing.T) {
	d := DamageDetail{
		DamageType: Dent,
		Location:   "front bumper",
		Severity:   SeverityHigh,
	}
	assert.Equal(t, "High Dent on front bumper", d.Clause())
}

func TestCombinedSummary(t *testing.T) {
	dent := DamageDetail{DamageType: Dent, Location: "front bumper", Severity: SeverityHigh}
	scratch := DamageDetail{DamageType: Scratch, Location: "rear door", Severity: SeverityLow}
	paint := DamageDetail{DamageType: PaintDamage, Location: "hood", Severity: SeverityMedium}

	tests := []struct {
		name    string
		results []AnalysisResult
		want    string
	}{
		{
			name: "no results",
			want: "",
		},
		{
			name: "no damages",
			results: []AnalysisResult{
				{Analysis: DamageAnalysis{}},
				{Analysis: DamageAnalysis{}},
			},
			want: "",
		},
		{
			name: "single clause has no separator",
			results: []AnalysisResult{
				{Analysis: DamageAnalysis{Damages: []DamageDetail{dent}}},
				{Analysis: DamageAnalysis{}},
			},
			want: "High Dent on front bumper",
		},
		{
			name: "clauses flattened across results in order",
			results: []AnalysisResult{
				{Analysis: DamageAnalysis{Damages: []DamageDetail{dent, scratch}}},
				{Analysis: DamageAnalysis{Damages: []DamageDetail{paint}}},
			},
			want: "High Dent on front bumper; Low Scratch on rear door; Medium Paint Damage on hood",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CombinedSummary(tt.results))
		})
	}
}
