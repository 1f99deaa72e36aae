package detect

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gy212/cheekai-core/model"
	"github.com/gy212/cheekai-core/schema"
)

//go:embed schemas/detect-request.schema.json
var detectRequestSchema []byte

var requestValidator *schema.Validator

func init() {
	v, err := schema.NewValidator(detectRequestSchema)
	if err != nil {
		panic(fmt.Sprintf("detect: invalid embedded request schema: %v", err))
	}
	requestValidator = v
}

// Request is the decoded form of the detect/detect_dual_mode operation
// input, per spec.md §6.
type Request struct {
	Text          string            `json:"text"`
	UsePerplexity bool              `json:"use_perplexity"`
	UseStylometry bool              `json:"use_stylometry"`
	Sensitivity   model.Sensitivity `json:"sensitivity"`
	Provider      string            `json:"provider,omitempty"`
	DualMode      bool              `json:"dual_mode"`
}

// ValidateRequestJSON checks raw request bytes against the embedded schema
// before they cross the external interface boundary.
func ValidateRequestJSON(raw []byte) error {
	diags, err := requestValidator.ValidateJSON(raw)
	if err != nil {
		return fmt.Errorf("malformed request JSON: %w", err)
	}
	if len(diags) > 0 {
		messages := make([]string, len(diags))
		for i, d := range diags {
			messages[i] = d.Message
		}
		return fmt.Errorf("request schema validation failed: %s", strings.Join(messages, "; "))
	}
	return nil
}

// ParseRequest validates and decodes a raw DetectRequest, applying the
// "use_perplexity"/"use_stylometry" default of true and the sensitivity
// default of "medium" when absent.
func ParseRequest(raw []byte) (Request, error) {
	if err := ValidateRequestJSON(raw); err != nil {
		return Request{}, err
	}

	var wire struct {
		Text          string  `json:"text"`
		UsePerplexity *bool   `json:"use_perplexity"`
		UseStylometry *bool   `json:"use_stylometry"`
		Sensitivity   *string `json:"sensitivity"`
		Provider      string  `json:"provider"`
		DualMode      bool    `json:"dual_mode"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Request{}, fmt.Errorf("malformed request JSON: %w", err)
	}

	req := Request{
		Text:          wire.Text,
		UsePerplexity: true,
		UseStylometry: true,
		Sensitivity:   model.SensitivityMedium,
		Provider:      wire.Provider,
		DualMode:      wire.DualMode,
	}
	if wire.UsePerplexity != nil {
		req.UsePerplexity = *wire.UsePerplexity
	}
	if wire.UseStylometry != nil {
		req.UseStylometry = *wire.UseStylometry
	}
	if wire.Sensitivity != nil {
		req.Sensitivity = model.Sensitivity(*wire.Sensitivity)
	}
	return req, nil
}
