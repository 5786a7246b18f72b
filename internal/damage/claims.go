package damage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vehicle-damage-analyzer/internal/model"

	"github.com/rs/zerolog/log"
)

// claimsModel is a faster model; the claims guide is a text-only task.
const claimsModel = "gemini-3-flash-preview"

const claimsPrompt = `You are an expert insurance claims advisor for vehicle damages in India. Based on the following summary of detected vehicle damages, provide an accurate and practical guide for filing an insurance claim.

Damage Summary:
%s

Your response must be a single, valid JSON object. The guide should be tailored to the specific damages listed and include:
- eligibleClaims: An array of potential claims the user can make. For each, provide a 'claimType' (e.g., "Own Damage Claim," "Comprehensive Claim") and a 'description' of its relevance to the specified damages.
- claimProcedure: A detailed, step-by-step array of strings outlining the entire claim filing process, from notifying the insurer to the final settlement. Ensure the steps are in the correct order.
- requiredDocuments: A comprehensive array of strings listing all necessary documents for a smooth claim process in India (e.g., "Signed claim form," "Copy of vehicle's Registration Certificate (RC)," "Copy of driver's license").

Ensure the information is clear, accurate, and practical for a typical vehicle owner. Do not include any text, markdown, or characters outside of the JSON object.`

// noClaimGuide is the fixed guide returned when no damage was detected.
// Returned as a fresh value so callers cannot alias shared state.
func noClaimGuide() *ClaimsInformation {
	return &ClaimsInformation{
		EligibleClaims: []EligibleClaim{{
			ClaimType:   "No Claim Recommended",
			Description: "No significant damage was detected that would typically warrant an insurance claim.",
		}},
		ClaimProcedure:    []string{"No action is needed at this time."},
		RequiredDocuments: []string{"None, as no claim is being filed."},
	}
}

// GuideGenerator produces a claims guide from a combined damage summary.
type GuideGenerator interface {
	Generate(ctx context.Context, summary string) (*ClaimsInformation, error)
}

// ClaimsGenerator asks the advisor model for an insurance-claims guide.
type ClaimsGenerator struct {
	client model.Client
}

// NewClaimsGenerator creates a ClaimsGenerator on top of a structured model
// client.
func NewClaimsGenerator(client model.Client) *ClaimsGenerator {
	return &ClaimsGenerator{client: client}
}

// Generate implements GuideGenerator. A blank summary short-circuits to the
// fixed no-claim guide without any model call.
func (g *ClaimsGenerator) Generate(ctx context.Context, summary string) (*ClaimsInformation, error) {
	if strings.TrimSpace(summary) == "" {
		log.Info().Msg("no damage detected, returning fixed no-claim guide")
		return noClaimGuide(), nil
	}

	raw, err := g.client.GenerateStructured(ctx, model.StructuredRequest{
		Model:  claimsModel,
		Prompt: fmt.Sprintf(claimsPrompt, summary),
		Schema: ClaimsSchema,
	})
	if err != nil {
		var invalid *model.ResponseInvalidError
		if errors.As(err, &invalid) {
			return nil, &InvalidClaimsResponseError{Err: err}
		}
		return nil, err
	}

	var claims ClaimsInformation
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, &InvalidClaimsResponseError{Err: err}
	}

	log.Info().
		Int("eligibleClaims", len(claims.EligibleClaims)).
		Int("procedureSteps", len(claims.ClaimProcedure)).
		Msg("claims guide generated")

	return &claims, nil
}
