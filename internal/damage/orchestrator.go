package damage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Orchestrator runs the two-stage pipeline: concurrent per-image analyses,
// then exactly one claims-guide generation over the combined summary.
type Orchestrator struct {
	analyzer ImageAnalyzer
	claims   GuideGenerator
}

// NewOrchestrator wires an analyzer and a claims generator into a pipeline.
func NewOrchestrator(analyzer ImageAnalyzer, claims GuideGenerator) *Orchestrator {
	return &Orchestrator{analyzer: analyzer, claims: claims}
}

// Run analyzes all images concurrently and derives the claims guide from the
// combined result. Output order matches input order regardless of completion
// order. If any single analysis fails the whole batch fails; no partial
// report is returned.
func (o *Orchestrator) Run(ctx context.Context, images []Image) (*Report, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images provided")
	}

	results := make([]AnalysisResult, len(images))

	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			analysis, err := o.analyzer.Analyze(gctx, img)
			if err != nil {
				return &BatchError{Index: i, Name: img.Name, Err: err}
			}
			results[i] = AnalysisResult{Image: img, Analysis: *analysis}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var grandTotal float64
	for _, r := range results {
		grandTotal += r.Analysis.TotalEstimatedCostINR
	}

	summary := CombinedSummary(results)
	claims, err := o.claims.Generate(ctx, summary)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:            uuid.NewString(),
		Results:       results,
		Claims:        *claims,
		GrandTotalINR: grandTotal,
	}

	log.Info().
		Str("reportID", report.ID).
		Int("imageCount", len(images)).
		Float64("grandTotalINR", grandTotal).
		Msg("batch analysis complete")

	return report, nil
}
