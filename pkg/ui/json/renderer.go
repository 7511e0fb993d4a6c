// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

// Renderer writes one indented JSON document per call
type Renderer struct {
	encoder *json.Encoder
}

type errorDoc struct {
	Error   string                 `json:"error"`
	Code    errors.ErrorCode       `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// New creates a new JSON renderer
func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}, nil
}

// RenderResult renders any result type as JSON
func (r *Renderer) RenderResult(result interface{}) error {
	return r.encoder.Encode(result)
}

// RenderError renders an error, its code and details as JSON
func (r *Renderer) RenderError(err error) error {
	doc := errorDoc{Error: err.Error(), Details: errors.GetErrorDetails(err)}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		doc.Code = code
	}
	return r.encoder.Encode(doc)
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
