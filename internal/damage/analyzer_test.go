package damage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"vehicle-damage-analyzer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient implements model.Client without any network. Like the real
// client, it validates the canned response against the request's schema
// document before returning it.
type fakeClient struct {
	mu       sync.Mutex
	calls    int
	requests []model.StructuredRequest
	respond  func(req model.StructuredRequest) (json.RawMessage, error)
}

func (f *fakeClient) GenerateStructured(ctx context.Context, req model.StructuredRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(req)
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// respondWith returns canned JSON after schema validation, mirroring the real
// client's validate-then-return contract.
func respondWith(raw string) func(req model.StructuredRequest) (json.RawMessage, error) {
	return func(req model.StructuredRequest) (json.RawMessage, error) {
		if err := req.Schema.Validate([]byte(raw)); err != nil {
			return nil, err
		}
		return json.RawMessage(raw), nil
	}
}

const validAnalysisJSON = `{
	"damages": [
		{
			"damageType": "Dent",
			"location": "Lower right section of the front bumper",
			"severity": "High",
			"estimatedCostINR": 4500,
			"confidenceScore": 0.92,
			"explanation": "Cost includes bumper reshaping and a three-coat paint job."
		},
		{
			"damageType": "Scratch",
			"location": "Rear passenger-side door",
			"severity": "Low",
			"estimatedCostINR": 800,
			"confidenceScore": 0.85,
			"explanation": "Shallow clear-coat scratch requiring polishing only."
		}
	],
	"totalEstimatedCostINR": 5300,
	"costFactors": ["Bumper reshaping labor", "Multi-panel paint blending"]
}`

func testImage() Image {
	return Image{Name: "front.jpg", Data: []byte("jpeg-bytes"), MIMEType: "image/jpeg"}
}

func TestAnalyzeParsesValidResponse(t *testing.T) {
	client := &fakeClient{respond: respondWith(validAnalysisJSON)}
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), testImage())
	require.NoError(t, err)

	require.Len(t, analysis.Damages, 2)
	assert.Equal(t, Dent, analysis.Damages[0].DamageType)
	assert.Equal(t, SeverityHigh, analysis.Damages[0].Severity)
	assert.Equal(t, 4500.0, analysis.Damages[0].EstimatedCostINR)
	assert.Equal(t, 0.92, analysis.Damages[0].ConfidenceScore)
	assert.Equal(t, Scratch, analysis.Damages[1].DamageType)
	assert.Equal(t, 5300.0, analysis.TotalEstimatedCostINR)
	assert.Equal(t, []string{"Bumper reshaping labor", "Multi-panel paint blending"}, analysis.CostFactors)

	// Exactly one model call per image, with the image payload attached
	assert.Equal(t, 1, client.callCount())
	require.NotNil(t, client.requests[0].Image)
	assert.Equal(t, "image/jpeg", client.requests[0].Image.MIMEType)
}

func TestAnalyzeAcceptsNoDamage(t *testing.T) {
	client := &fakeClient{respond: respondWith(`{"damages": [], "totalEstimatedCostINR": 0, "costFactors": []}`)}
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), testImage())
	require.NoError(t, err)
	assert.Empty(t, analysis.Damages)
	assert.Zero(t, analysis.TotalEstimatedCostINR)
}

func TestAnalyzeRejectsInvalidResponses(t *testing.T) {
	damageObj := func(field, value string) string {
		base := map[string]any{
			"damageType":       "Dent",
			"location":         "front bumper",
			"severity":         "High",
			"estimatedCostINR": 1000,
			"confidenceScore":  0.9,
			"explanation":      "Deep dent.",
		}
		if value == "" {
			delete(base, field)
		} else {
			var v any
			if err := json.Unmarshal([]byte(value), &v); err != nil {
				panic(err)
			}
			base[field] = v
		}
		obj, _ := json.Marshal(base)
		return fmt.Sprintf(`{"damages": [%s], "totalEstimatedCostINR": 1000, "costFactors": []}`, obj)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"missing damages field", `{"totalEstimatedCostINR": 0, "costFactors": []}`},
		{"missing location", damageObj("location", "")},
		{"out-of-enum damage type", damageObj("damageType", `"Rust"`)},
		{"out-of-enum severity", damageObj("severity", `"Catastrophic"`)},
		{"mistyped cost", damageObj("estimatedCostINR", `"cheap"`)},
		{"confidence above one", damageObj("confidenceScore", `1.4`)},
		{"negative cost", damageObj("estimatedCostINR", `-200`)},
		{"blank location", damageObj("location", `"  "`)},
		{"blank explanation", damageObj("explanation", `""`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{respond: respondWith(tt.raw)}
			analyzer := NewAnalyzer(client)

			_, err := analyzer.Analyze(context.Background(), testImage())
			var invalid *InvalidAnalysisResponseError
			require.Error(t, err)
			assert.True(t, errors.As(err, &invalid), "want InvalidAnalysisResponseError, got %v", err)
		})
	}
}

func TestAnalyzePropagatesUnavailable(t *testing.T) {
	client := &fakeClient{respond: func(model.StructuredRequest) (json.RawMessage, error) {
		return nil, fmt.Errorf("%w: connection refused", model.ErrUnavailable)
	}}
	analyzer := NewAnalyzer(client)

	_, err := analyzer.Analyze(context.Background(), testImage())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnavailable))

	var invalid *InvalidAnalysisResponseError
	assert.False(t, errors.As(err, &invalid), "transport failure must not be reported as an invalid response")
}

func TestAnalyzeTrustsMismatchedTotal(t *testing.T) {
	// Total disagrees with the itemized sum; the model's total is kept as-is.
	raw := `{
		"damages": [{
			"damageType": "Crack",
			"location": "windshield",
			"severity": "Medium",
			"estimatedCostINR": 3000,
			"confidenceScore": 0.8,
			"explanation": "Long crack across the passenger side."
		}],
		"totalEstimatedCostINR": 9999,
		"costFactors": []
	}`
	client := &fakeClient{respond: respondWith(raw)}
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, 9999.0, analysis.TotalEstimatedCostINR)
}
