package damage

import (
	"vehicle-damage-analyzer/internal/model"

	"google.golang.org/genai"
)

// analysisResponseSchema is sent to the model API to constrain generation.
var analysisResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"damages": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"damageType": {
						Type: genai.TypeString,
						Enum: []string{"Scratch", "Dent", "Crack", "Broken Part", "Paint Damage"},
					},
					"location":         {Type: genai.TypeString},
					"severity":         {Type: genai.TypeString, Enum: []string{"Low", "Medium", "High"}},
					"estimatedCostINR": {Type: genai.TypeNumber},
					"confidenceScore":  {Type: genai.TypeNumber},
					"explanation":      {Type: genai.TypeString},
				},
				Required: []string{"damageType", "location", "severity", "estimatedCostINR", "confidenceScore", "explanation"},
			},
		},
		"totalEstimatedCostINR": {Type: genai.TypeNumber},
		"costFactors": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"damages", "totalEstimatedCostINR", "costFactors"},
}

// analysisDocument is the local validation contract for analysis responses.
// Responses failing it are rejected, never partially accepted.
const analysisDocument = `{
	"type": "object",
	"properties": {
		"damages": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"damageType": {
						"type": "string",
						"enum": ["Scratch", "Dent", "Crack", "Broken Part", "Paint Damage"]
					},
					"location": {"type": "string"},
					"severity": {"type": "string", "enum": ["Low", "Medium", "High"]},
					"estimatedCostINR": {"type": "number"},
					"confidenceScore": {"type": "number"},
					"explanation": {"type": "string"}
				},
				"required": ["damageType", "location", "severity", "estimatedCostINR", "confidenceScore", "explanation"]
			}
		},
		"totalEstimatedCostINR": {"type": "number"},
		"costFactors": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["damages", "totalEstimatedCostINR", "costFactors"]
}`

var claimsResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"eligibleClaims": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"claimType":   {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
				},
				Required: []string{"claimType", "description"},
			},
		},
		"claimProcedure": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"requiredDocuments": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"eligibleClaims", "claimProcedure", "requiredDocuments"},
}

const claimsDocument = `{
	"type": "object",
	"properties": {
		"eligibleClaims": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"properties": {
					"claimType": {"type": "string"},
					"description": {"type": "string"}
				},
				"required": ["claimType", "description"]
			}
		},
		"claimProcedure": {"type": "array", "items": {"type": "string"}},
		"requiredDocuments": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["eligibleClaims", "claimProcedure", "requiredDocuments"]
}`

var (
	// AnalysisSchema validates per-image damage assessments.
	AnalysisSchema = model.MustSchema(analysisResponseSchema, analysisDocument)
	// ClaimsSchema validates generated claims guides.
	ClaimsSchema = model.MustSchema(claimsResponseSchema, claimsDocument)
)
