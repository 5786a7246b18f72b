package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"
)

// ErrUnavailable indicates the model service itself could not be reached or
// rejected the call (network, auth, quota). The caller decides whether to
// retry; nothing in this package does.
var ErrUnavailable = errors.New("model service unavailable")

// ResponseInvalidError indicates the model returned text that could not be
// parsed as JSON or that failed schema validation. It is never coerced into a
// partial result.
type ResponseInvalidError struct {
	Reason   string
	Response string
}

func (e *ResponseInvalidError) Error() string {
	return fmt.Sprintf("invalid model response: %s", e.Reason)
}

// Image is a raw image payload for a structured request.
type Image struct {
	Data     []byte
	MIMEType string
}

// Schema pairs the schema sent to the model API with a compiled JSON Schema
// document used to validate the response locally before it is decoded.
type Schema struct {
	Response *genai.Schema
	document *gojsonschema.Schema
}

// NewSchema compiles the JSON Schema document and pairs it with the API-side
// response schema.
func NewSchema(response *genai.Schema, document string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema document: %w", err)
	}
	return &Schema{Response: response, document: compiled}, nil
}

// MustSchema is like NewSchema but panics on error. For package-level schema
// constants.
func MustSchema(response *genai.Schema, document string) *Schema {
	s, err := NewSchema(response, document)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks raw JSON against the schema document. Returns a
// ResponseInvalidError describing every violation, or nil.
func (s *Schema) Validate(data []byte) error {
	result, err := s.document.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ResponseInvalidError{Reason: err.Error(), Response: string(data)}
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return &ResponseInvalidError{
			Reason:   strings.Join(reasons, "; "),
			Response: string(data),
		}
	}
	return nil
}

// StructuredRequest is a single request for schema-constrained JSON output.
type StructuredRequest struct {
	Model  string
	Prompt string
	Image  *Image
	Schema *Schema
}

// Client performs one structured request/response cycle with the model.
// Implementations send exactly one request and do not retry.
type Client interface {
	// GenerateStructured returns the validated JSON object produced by the
	// model, or ErrUnavailable / ResponseInvalidError.
	GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
}

// ChatChannel is an open multi-turn exchange with the model.
type ChatChannel interface {
	// Send delivers one user message and returns the model's text reply.
	Send(ctx context.Context, text string) (string, error)
}

// ChatStarter opens chat channels with a fixed system instruction.
type ChatStarter interface {
	StartChat(ctx context.Context, modelName, systemInstruction string) (ChatChannel, error)
}
