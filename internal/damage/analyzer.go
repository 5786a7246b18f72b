package damage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"vehicle-damage-analyzer/internal/model"

	"github.com/rs/zerolog/log"
)

// analysisModel is the strongest available model; damage appraisal is the
// accuracy-critical step of the pipeline.
const analysisModel = "gemini-3-pro-preview"

const appraiserPrompt = `You are a highly experienced and certified AI vehicle damage appraiser. Your primary task is to conduct a meticulous analysis of the provided vehicle image to identify and quantify all visible damages with the highest possible accuracy.

For each distinct damage you identify, you must provide the following details:
- damageType: Classify the damage into one: 'Scratch', 'Dent', 'Crack', 'Broken Part', 'Paint Damage'.
- location: Be very specific about the location (e.g., "Lower right section of the front bumper," "Above the handle on the rear passenger-side door").
- severity: Assess the severity as 'Low', 'Medium', or 'High'. Base this on the size, depth, and complexity of the damage.
- estimatedCostINR: Provide a precise repair cost estimate in Indian Rupees (INR). This estimate should factor in typical labor costs, part costs (if applicable), material (plastic, metal), and paint complexity (e.g., metallic, pearl). Be as accurate as possible.
- confidenceScore: A value between 0.0 and 1.0 indicating your confidence in this specific damage assessment.
- explanation: A clear, detailed sentence explaining your reasoning for the assessment and cost estimation, mentioning the factors considered (e.g., "Cost includes bumper reshaping and a three-coat paint job due to deep scratches.").

After detailing all individual damages, provide a comprehensive summary:
- totalEstimatedCostINR: The sum of all individual estimated repair costs.
- costFactors: A list of the most significant factors influencing the total cost (e.g., "Bumper replacement required", "Multi-panel paint blending needed", "High labor cost for dent removal on a crease line").

Your response MUST be a single, valid JSON object that strictly adheres to the provided schema. Do not include any text, markdown, or any characters outside of this JSON object.`

// ImageAnalyzer produces a damage assessment for one image.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, img Image) (*DamageAnalysis, error)
}

// Analyzer asks the appraiser model for a structured damage assessment.
// Exactly one model call per image, no retries.
type Analyzer struct {
	client model.Client
}

// NewAnalyzer creates an Analyzer on top of a structured model client.
func NewAnalyzer(client model.Client) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze implements ImageAnalyzer.
func (a *Analyzer) Analyze(ctx context.Context, img Image) (*DamageAnalysis, error) {
	raw, err := a.client.GenerateStructured(ctx, model.StructuredRequest{
		Model:  analysisModel,
		Prompt: appraiserPrompt,
		Image:  &model.Image{Data: img.Data, MIMEType: img.MIMEType},
		Schema: AnalysisSchema,
	})
	if err != nil {
		var invalid *model.ResponseInvalidError
		if errors.As(err, &invalid) {
			return nil, &InvalidAnalysisResponseError{Err: err}
		}
		return nil, err
	}

	var analysis DamageAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, &InvalidAnalysisResponseError{Err: err}
	}
	if err := validateAnalysis(&analysis); err != nil {
		return nil, &InvalidAnalysisResponseError{Err: err}
	}

	logTotalMismatch(img.Name, &analysis)

	log.Info().
		Str("image", img.Name).
		Int("damageCount", len(analysis.Damages)).
		Float64("totalEstimatedCostINR", analysis.TotalEstimatedCostINR).
		Msg("image analyzed")

	return &analysis, nil
}

// validateAnalysis enforces the per-damage and aggregate invariants that the
// schema document cannot express numerically.
func validateAnalysis(a *DamageAnalysis) error {
	if a.TotalEstimatedCostINR < 0 {
		return fmt.Errorf("totalEstimatedCostINR is negative: %v", a.TotalEstimatedCostINR)
	}
	for i, d := range a.Damages {
		if !d.DamageType.Valid() {
			return fmt.Errorf("damages[%d]: unknown damageType %q", i, d.DamageType)
		}
		if !d.Severity.Valid() {
			return fmt.Errorf("damages[%d]: unknown severity %q", i, d.Severity)
		}
		if strings.TrimSpace(d.Location) == "" {
			return fmt.Errorf("damages[%d]: location is empty", i)
		}
		if strings.TrimSpace(d.Explanation) == "" {
			return fmt.Errorf("damages[%d]: explanation is empty", i)
		}
		if d.EstimatedCostINR < 0 {
			return fmt.Errorf("damages[%d]: estimatedCostINR is negative: %v", i, d.EstimatedCostINR)
		}
		if d.ConfidenceScore < 0 || d.ConfidenceScore > 1 {
			return fmt.Errorf("damages[%d]: confidenceScore %v outside [0.0, 1.0]", i, d.ConfidenceScore)
		}
	}
	return nil
}

// logTotalMismatch flags when the model's total disagrees with the itemized
// sum. The total is trusted as-is; the mismatch is surfaced for observability
// only, never corrected.
func logTotalMismatch(imageName string, a *DamageAnalysis) {
	var sum float64
	for _, d := range a.Damages {
		sum += d.EstimatedCostINR
	}
	if math.Abs(sum-a.TotalEstimatedCostINR) > 0.5 {
		log.Warn().
			Str("image", imageName).
			Float64("totalEstimatedCostINR", a.TotalEstimatedCostINR).
			Float64("itemizedSum", sum).
			Msg("model total does not match itemized cost sum")
	}
}
