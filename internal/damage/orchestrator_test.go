package damage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImageAnalyzer returns canned analyses by image name and records the
// order in which analyses complete. An optional waitFor map delays an image's
// completion until another image has finished, to force completion orders.
type fakeImageAnalyzer struct {
	mu        sync.Mutex
	analyses  map[string]*DamageAnalysis
	errs      map[string]error
	completed []string
	done      map[string]chan struct{}
	waitFor   map[string]string
}

func newFakeImageAnalyzer() *fakeImageAnalyzer {
	return &fakeImageAnalyzer{
		analyses: map[string]*DamageAnalysis{},
		errs:     map[string]error{},
		done:     map[string]chan struct{}{},
		waitFor:  map[string]string{},
	}
}

func (f *fakeImageAnalyzer) doneCh(name string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done[name] == nil {
		f.done[name] = make(chan struct{})
	}
	return f.done[name]
}

func (f *fakeImageAnalyzer) Analyze(ctx context.Context, img Image) (*DamageAnalysis, error) {
	f.mu.Lock()
	dep := f.waitFor[img.Name]
	f.mu.Unlock()
	if dep != "" {
		select {
		case <-f.doneCh(dep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	f.completed = append(f.completed, img.Name)
	analysis, err := f.analyses[img.Name], f.errs[img.Name]
	f.mu.Unlock()
	close(f.doneCh(img.Name))

	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// fakeGuideGenerator records the summaries it was asked about.
type fakeGuideGenerator struct {
	mu        sync.Mutex
	summaries []string
	claims    *ClaimsInformation
	err       error
}

func (f *fakeGuideGenerator) Generate(ctx context.Context, summary string) (*ClaimsInformation, error) {
	f.mu.Lock()
	f.summaries = append(f.summaries, summary)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.claims != nil {
		return f.claims, nil
	}
	return noClaimGuide(), nil
}

func analysisWithTotal(total float64, damages ...DamageDetail) *DamageAnalysis {
	return &DamageAnalysis{Damages: damages, TotalEstimatedCostINR: total, CostFactors: []string{}}
}

func imgs(names ...string) []Image {
	out := make([]Image, len(names))
	for i, n := range names {
		out[i] = Image{Name: n, Data: []byte(n), MIMEType: "image/jpeg"}
	}
	return out
}

func TestRunPreservesInputOrder(t *testing.T) {
	analyzer := newFakeImageAnalyzer()
	analyzer.analyses["a.jpg"] = analysisWithTotal(100)
	analyzer.analyses["b.jpg"] = analysisWithTotal(200)
	analyzer.analyses["c.jpg"] = analysisWithTotal(300)
	// Force completion order b, a, c
	analyzer.waitFor["a.jpg"] = "b.jpg"
	analyzer.waitFor["c.jpg"] = "a.jpg"

	orch := NewOrchestrator(analyzer, &fakeGuideGenerator{})
	report, err := orch.Run(context.Background(), imgs("a.jpg", "b.jpg", "c.jpg"))
	require.NoError(t, err)

	assert.Equal(t, []string{"b.jpg", "a.jpg", "c.jpg"}, analyzer.completed)

	require.Len(t, report.Results, 3)
	assert.Equal(t, "a.jpg", report.Results[0].Image.Name)
	assert.Equal(t, 100.0, report.Results[0].Analysis.TotalEstimatedCostINR)
	assert.Equal(t, "b.jpg", report.Results[1].Image.Name)
	assert.Equal(t, "c.jpg", report.Results[2].Image.Name)
}

func TestRunComputesGrandTotal(t *testing.T) {
	analyzer := newFakeImageAnalyzer()
	analyzer.analyses["a.jpg"] = analysisWithTotal(1500)
	analyzer.analyses["b.jpg"] = analysisWithTotal(2300)

	orch := NewOrchestrator(analyzer, &fakeGuideGenerator{})
	report, err := orch.Run(context.Background(), imgs("a.jpg", "b.jpg"))
	require.NoError(t, err)

	assert.Equal(t, 3800.0, report.GrandTotalINR)
	assert.NotEmpty(t, report.ID)
}

func TestRunDerivesCombinedSummary(t *testing.T) {
	analyzer := newFakeImageAnalyzer()
	analyzer.analyses["a.jpg"] = analysisWithTotal(4500, DamageDetail{
		DamageType:       Dent,
		Location:         "front bumper",
		Severity:         SeverityHigh,
		EstimatedCostINR: 4500,
		ConfidenceScore:  0.9,
		Explanation:      "Deep dent.",
	})
	analyzer.analyses["b.jpg"] = analysisWithTotal(0)

	gen := &fakeGuideGenerator{}
	orch := NewOrchestrator(analyzer, gen)
	_, err := orch.Run(context.Background(), imgs("a.jpg", "b.jpg"))
	require.NoError(t, err)

	// Single clause, no trailing separator, generator called exactly once
	assert.Equal(t, []string{"High Dent on front bumper"}, gen.summaries)
}

func TestRunNoDamageUsesEmptySummary(t *testing.T) {
	analyzer := newFakeImageAnalyzer()
	analyzer.analyses["a.jpg"] = analysisWithTotal(0)
	analyzer.analyses["b.jpg"] = analysisWithTotal(0)

	gen := &fakeGuideGenerator{}
	orch := NewOrchestrator(analyzer, gen)
	report, err := orch.Run(context.Background(), imgs("a.jpg", "b.jpg"))
	require.NoError(t, err)

	assert.Equal(t, []string{""}, gen.summaries)
	assert.Equal(t, "No Claim Recommended", report.Claims.EligibleClaims[0].ClaimType)
}

func TestRunFailsWholeBatchOnSingleFailure(t *testing.T) {
	analyzer := newFakeImageAnalyzer()
	analyzer.analyses["a.jpg"] = analysisWithTotal(100)
	analyzer.errs["b.jpg"] = &InvalidAnalysisResponseError{Err: errors.New("garbled")}
	analyzer.analyses["c.jpg"] = analysisWithTotal(300)

	gen := &fakeGuideGenerator{}
	orch := NewOrchestrator(analyzer, gen)
	report, err := orch.Run(context.Background(), imgs("a.jpg", "b.jpg", "c.jpg"))

	require.Error(t, err)
	assert.Nil(t, report, "no partial report on batch failure")

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, 1, batchErr.Index)
	assert.Equal(t, "b.jpg", batchErr.Name)

	var invalid *InvalidAnalysisResponseError
	assert.True(t, errors.As(err, &invalid))

	// Claims generation never runs for a failed batch
	assert.Empty(t, gen.summaries)
}

func TestRunRequiresImages(t *testing.T) {
	orch := NewOrchestrator(newFakeImageAnalyzer(), &fakeGuideGenerator{})
	_, err := orch.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRunPropagatesClaimsFailure(t *testing.T) {
	analyzer := newFakeImageAnalyzer()
	analyzer.analyses["a.jpg"] = analysisWithTotal(100, DamageDetail{
		DamageType: Scratch, Location: "hood", Severity: SeverityLow,
		EstimatedCostINR: 100, ConfidenceScore: 0.7, Explanation: "Light scratch.",
	})

	gen := &fakeGuideGenerator{err: &InvalidClaimsResponseError{Err: errors.New("garbled")}}
	orch := NewOrchestrator(analyzer, gen)
	report, err := orch.Run(context.Background(), imgs("a.jpg"))

	require.Error(t, err)
	assert.Nil(t, report)
	var invalid *InvalidClaimsResponseError
	assert.True(t, errors.As(err, &invalid))
}
