package translator

import (
	"github.com/Zenoooe/ai-crm/internal/assistant"
	"github.com/Zenoooe/ai-crm/internal/models"
	"github.com/Zenoooe/ai-crm/internal/normalize"
	"github.com/Zenoooe/ai-crm/internal/sales"
)

// Usage mirrors the OpenAI usage block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ScriptResponse struct {
	RequestID   string                 `json:"request_id"`
	Model       string                 `json:"model"`
	ScriptType  string                 `json:"script_type"`
	Methodology string                 `json:"methodology"`
	Source      string                 `json:"source"`
	Script      normalize.ScriptResult `json:"script"`
	Usage       *Usage                 `json:"usage,omitempty"`
}

type AnalysisResponse struct {
	RequestID  string                   `json:"request_id"`
	Model      string                   `json:"model"`
	CustomerID int64                    `json:"customer_id"`
	Source     string                   `json:"source"`
	Analysis   normalize.AnalysisResult `json:"analysis"`
	Usage      *Usage                   `json:"usage,omitempty"`
}

type TextResponse struct {
	RequestID string `json:"request_id"`
	Model     string `json:"model"`
	Content   string `json:"content"`
	Usage     *Usage `json:"usage,omitempty"`
}

type Model struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Model     string `json:"model"`
	Family    string `json:"family"`
	Available bool   `json:"available"`
}

type ModelsResponse struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// Option is one selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type ScriptOptionsResponse struct {
	ScriptTypes        []Option `json:"script_types"`
	Methodologies      []Option `json:"methodologies"`
	DefaultMethodology string   `json:"default_methodology"`
}

type UpstreamModelsResponse struct {
	Model  string   `json:"model"`
	Models []string `json:"models"`
}

func FromScript(out assistant.ScriptOutput) ScriptResponse {
	return ScriptResponse{
		RequestID:   out.RequestID,
		Model:       out.Model,
		ScriptType:  string(out.ScriptType),
		Methodology: string(out.Methodology),
		Source:      string(out.Script.Source),
		Script:      out.Script,
		Usage:       fromUsage(out.Usage),
	}
}

func FromAnalysis(out assistant.AnalysisOutput) AnalysisResponse {
	return AnalysisResponse{
		RequestID:  out.RequestID,
		Model:      out.Model,
		CustomerID: out.Customer.ID,
		Source:     string(out.Analysis.Source),
		Analysis:   out.Analysis,
		Usage:      fromUsage(out.Usage),
	}
}

func FromText(out assistant.TextOutput) TextResponse {
	return TextResponse{
		RequestID: out.RequestID,
		Model:     out.Model,
		Content:   out.Content,
		Usage:     fromUsage(out.Usage),
	}
}

func FromModels(list []assistant.ModelInfo) ModelsResponse {
	data := make([]Model, 0, len(list))
	for _, m := range list {
		data = append(data, Model{
			ID:        m.ID,
			Name:      m.Description,
			Model:     m.Model,
			Family:    string(m.Family),
			Available: m.Available,
		})
	}
	return ModelsResponse{Object: "list", Data: data}
}

// ScriptOptions lists the script types and methodologies a script request
// accepts.
func ScriptOptions() ScriptOptionsResponse {
	types := sales.ScriptTypes()
	methods := sales.Methodologies()
	resp := ScriptOptionsResponse{
		ScriptTypes:        make([]Option, 0, len(types)),
		Methodologies:      make([]Option, 0, len(methods)),
		DefaultMethodology: string(sales.DefaultMethodology),
	}
	for _, t := range types {
		resp.ScriptTypes = append(resp.ScriptTypes, Option{Value: string(t), Label: t.Label()})
	}
	for _, m := range methods {
		resp.Methodologies = append(resp.Methodologies, Option{Value: string(m), Label: m.Label()})
	}
	return resp
}

func fromUsage(u *models.Usage) *Usage {
	if u == nil {
		return nil
	}
	return &Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
