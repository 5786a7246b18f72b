package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Gemini pricing (per million tokens)
const (
	geminiProInputPricePerMillion    = 1.25
	geminiProOutputPricePerMillion   = 10.00
	geminiFlashInputPricePerMillion  = 0.50 // $0.50 per 1M input tokens (text/image)
	geminiFlashOutputPricePerMillion = 3.00 // $3.00 per 1M output tokens (including thinking)
)

// Gemini implements Client and ChatStarter on Google's Gemini API.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini-backed model client.
// It uses the GEMINI_API_KEY environment variable for authentication.
func NewGemini(ctx context.Context) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// GenerateStructured implements Client. It sends one request with an inline
// image part (if present) and a response schema, then validates the returned
// text against the schema document before handing it back.
func (g *Gemini) GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}
	if req.Image != nil && req.Image.MIMEType == "" {
		return nil, fmt.Errorf("image payload requires a MIME type")
	}
	if req.Schema == nil {
		return nil, fmt.Errorf("schema is required")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
	}
	if req.Image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: req.Image.Data, MIMEType: req.Image.MIMEType},
		})
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema.Response,
	}

	result, err := g.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, &ResponseInvalidError{Reason: "empty response"}
	}

	logUsage(result, req.Model, req.Image != nil)

	raw, err := extractJSONObject(result.Text())
	if err != nil {
		return nil, err
	}
	if err := req.Schema.Validate([]byte(raw)); err != nil {
		return nil, err
	}

	return json.RawMessage(raw), nil
}

// geminiChat adapts *genai.Chat to ChatChannel.
type geminiChat struct {
	model string
	chat  *genai.Chat
}

// StartChat implements ChatStarter. The system instruction is fixed for the
// lifetime of the channel; subsequent turns carry message text only.
func (g *Gemini) StartChat(ctx context.Context, modelName, systemInstruction string) (ChatChannel, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
	chat, err := g.client.Chats.Create(ctx, modelName, config, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &geminiChat{model: modelName, chat: chat}, nil
}

// Send implements ChatChannel.
func (c *geminiChat) Send(ctx context.Context, text string) (string, error) {
	result, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", &ResponseInvalidError{Reason: "empty chat response"}
	}

	logUsage(result, c.model, false)

	return result.Text(), nil
}

// extractJSONObject extracts a JSON object from text that may contain markdown
// code blocks or other formatting. Returns the extracted JSON string or a
// ResponseInvalidError.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", &ResponseInvalidError{Reason: "no JSON object found in response", Response: text}
	}
	return text[start : end+1], nil
}

func logUsage(result *genai.GenerateContentResponse, model string, hasImage bool) {
	if result.UsageMetadata == nil {
		return
	}
	inputTokens := int64(result.UsageMetadata.PromptTokenCount)
	outputTokens := int64(result.UsageMetadata.CandidatesTokenCount)
	log.Info().
		Str("model", model).
		Bool("hasImage", hasImage).
		Int64("inputTokens", inputTokens).
		Int64("outputTokens", outputTokens).
		Float64("costUSD", calculateGeminiCost(model, inputTokens, outputTokens)).
		Msg("gemini llm call")
}

func calculateGeminiCost(model string, inputTokens, outputTokens int64) float64 {
	inputPrice := geminiFlashInputPricePerMillion
	outputPrice := geminiFlashOutputPricePerMillion
	if strings.Contains(model, "pro") {
		inputPrice = geminiProInputPricePerMillion
		outputPrice = geminiProOutputPricePerMillion
	}
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}
