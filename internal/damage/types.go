package damage

// DamageType classifies one visible defect on a vehicle.
type DamageType string

const (
	Scratch     DamageType = "Scratch"
	Dent        DamageType = "Dent"
	Crack       DamageType = "Crack"
	BrokenPart  DamageType = "Broken Part"
	PaintDamage DamageType = "Paint Damage"
)

// Valid reports whether d is one of the closed set of damage types.
func (d DamageType) Valid() bool {
	switch d {
	case Scratch, Dent, Crack, BrokenPart, PaintDamage:
		return true
	}
	return false
}

// Severity grades how serious a damage is.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Valid reports whether s is one of the closed set of severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// DamageDetail is one located defect identified by the appraiser model.
type DamageDetail struct {
	DamageType       DamageType `json:"damageType"`
	Location         string     `json:"location"`
	Severity         Severity   `json:"severity"`
	EstimatedCostINR float64    `json:"estimatedCostINR"`
	ConfidenceScore  float64    `json:"confidenceScore"`
	Explanation      string     `json:"explanation"`
}

// DamageAnalysis is the full assessment of one image. An empty Damages list is
// a valid "no damage detected" result.
type DamageAnalysis struct {
	Damages               []DamageDetail `json:"damages"`
	TotalEstimatedCostINR float64        `json:"totalEstimatedCostINR"`
	CostFactors           []string       `json:"costFactors"`
}

// Image is a caller-supplied photo. Name is a display label (file name or
// URL); the analyzer treats the payload as read-only.
type Image struct {
	Name     string
	Data     []byte
	MIMEType string
}

// AnalysisResult joins one input image with its analysis. Position in a batch
// result matches the position of the image in the submitted batch.
type AnalysisResult struct {
	Image    Image
	Analysis DamageAnalysis
}

// EligibleClaim is one claim type the user may be able to file.
type EligibleClaim struct {
	ClaimType   string `json:"claimType"`
	Description string `json:"description"`
}

// ClaimsInformation is the aggregated insurance-filing guide. ClaimProcedure
// steps are sequential; their order is meaningful.
type ClaimsInformation struct {
	EligibleClaims    []EligibleClaim `json:"eligibleClaims"`
	ClaimProcedure    []string        `json:"claimProcedure"`
	RequiredDocuments []string        `json:"requiredDocuments"`
}

// Report is the complete output of one batch orchestration.
type Report struct {
	ID            string
	Results       []AnalysisResult
	Claims        ClaimsInformation
	GrandTotalINR float64
}
