package translator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Zenoooe/ai-crm/internal/prompt"
	"github.com/Zenoooe/ai-crm/internal/sales"
)

var (
	errNoCustomer     = errors.New("customer_id or customer must be provided")
	errEmptyMessage   = errors.New("message must be provided")
	errEmptyContent   = errors.New("content must be provided")
	errInvalidSetting = errors.New("invalid advanced settings")
)

// ScriptRequest models the POST /api/ai/scripts payload. The customer is
// either referenced by id or supplied inline.
type ScriptRequest struct {
	CustomerID  int64
	Customer    *sales.CustomerSnapshot
	ScriptType  sales.ScriptType
	Methodology sales.Methodology
	Model       string
	Advanced    *prompt.AdvancedSettings
}

// UnmarshalJSON implements custom parsing to enforce validation.
func (r *ScriptRequest) UnmarshalJSON(data []byte) error {
	type alias struct {
		CustomerID       int64                   `json:"customer_id"`
		Customer         *sales.CustomerSnapshot `json:"customer"`
		ScriptType       string                  `json:"script_type"`
		Methodology      string                  `json:"methodology"`
		Model            string                  `json:"model"`
		AdvancedSettings json.RawMessage         `json:"advanced_settings"`
	}

	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode script request: %w", err)
	}

	r.CustomerID = raw.CustomerID
	r.Customer = raw.Customer
	r.ScriptType = sales.ScriptType(strings.TrimSpace(raw.ScriptType))
	if r.ScriptType == "" {
		r.ScriptType = sales.ScriptOpening
	}
	r.Methodology = sales.Methodology(strings.TrimSpace(raw.Methodology))
	if r.Methodology == "" {
		r.Methodology = sales.DefaultMethodology
	}
	r.Model = strings.TrimSpace(raw.Model)

	advanced, err := parseAdvanced(raw.AdvancedSettings)
	if err != nil {
		return err
	}
	r.Advanced = advanced

	return r.validate()
}

func (r *ScriptRequest) validate() error {
	if r.CustomerID < 0 {
		return fmt.Errorf("customer_id must be positive, got %d", r.CustomerID)
	}
	if r.CustomerID == 0 && (r.Customer == nil || strings.TrimSpace(r.Customer.Name) == "") {
		return errNoCustomer
	}
	if r.Advanced != nil && r.Advanced.Creativity != nil {
		if c := *r.Advanced.Creativity; c < 0 || c > 1 {
			return fmt.Errorf("%w: creativity %.2f must be within [0, 1]", errInvalidSetting, c)
		}
	}
	if r.Advanced != nil && r.Advanced.ScriptLength < 0 {
		return fmt.Errorf("%w: scriptLength must not be negative", errInvalidSetting)
	}
	return nil
}

// ToPrompt converts the request into the composer's input for a loaded
// customer.
func (r ScriptRequest) ToPrompt(customer sales.CustomerSnapshot) prompt.ScriptRequest {
	return prompt.ScriptRequest{
		Customer:    customer,
		ScriptType:  r.ScriptType,
		Methodology: r.Methodology,
		Advanced:    r.Advanced,
		Model:       r.Model,
	}
}

// parseAdvanced accepts an absent or null settings object.
func parseAdvanced(raw json.RawMessage) (*prompt.AdvancedSettings, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var settings prompt.AdvancedSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidSetting, err)
	}
	return &settings, nil
}

// AnalysisRequest models the POST /api/ai/analysis payload.
type AnalysisRequest struct {
	CustomerID int64
	Model      string
}

func (r *AnalysisRequest) UnmarshalJSON(data []byte) error {
	type alias struct {
		CustomerID int64  `json:"customer_id"`
		Model      string `json:"model"`
	}

	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode analysis request: %w", err)
	}
	if raw.CustomerID <= 0 {
		return fmt.Errorf("customer_id must be positive, got %d", raw.CustomerID)
	}

	r.CustomerID = raw.CustomerID
	r.Model = strings.TrimSpace(raw.Model)
	return nil
}

// ConversationRequest models the POST /api/ai/conversation-analysis payload.
type ConversationRequest struct {
	Content    string
	CustomerID int64
	Customer   *sales.CustomerSnapshot
	Model      string
}

func (r *ConversationRequest) UnmarshalJSON(data []byte) error {
	type alias struct {
		Content    string                  `json:"content"`
		CustomerID int64                   `json:"customer_id"`
		Customer   *sales.CustomerSnapshot `json:"customer"`
		Model      string                  `json:"model"`
	}

	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode conversation request: %w", err)
	}
	if strings.TrimSpace(raw.Content) == "" {
		return errEmptyContent
	}

	r.Content = raw.Content
	r.CustomerID = raw.CustomerID
	r.Customer = raw.Customer
	r.Model = strings.TrimSpace(raw.Model)
	return nil
}

// ChatRequest models the POST /api/ai/chat payload.
type ChatRequest struct {
	Message string
	Context string
	Model   string
}

func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	type alias struct {
		Message string `json:"message"`
		Context string `json:"context"`
		Model   string `json:"model"`
	}

	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode chat request: %w", err)
	}
	if strings.TrimSpace(raw.Message) == "" {
		return errEmptyMessage
	}

	r.Message = raw.Message
	r.Context = raw.Context
	r.Model = strings.TrimSpace(raw.Model)
	return nil
}
