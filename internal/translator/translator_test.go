package translator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zenoooe/ai-crm/internal/assistant"
	"github.com/Zenoooe/ai-crm/internal/models"
	"github.com/Zenoooe/ai-crm/internal/normalize"
	"github.com/Zenoooe/ai-crm/internal/provider"
	"github.com/Zenoooe/ai-crm/internal/sales"
)

func TestScriptRequestUnmarshal(t *testing.T) {
	var req ScriptRequest
	err := json.Unmarshal([]byte(`{
		"customer_id": 12,
		"script_type": "closing",
		"methodology": "challenger",
		"model": " xai:grok-4 ",
		"advanced_settings": {"languageStyle": "professional", "creativity": 0.4, "roleSettings": {"professionalRole": "consultant"}}
	}`), &req)

	require.NoError(t, err)
	assert.Equal(t, int64(12), req.CustomerID)
	assert.Equal(t, sales.ScriptClosing, req.ScriptType)
	assert.Equal(t, sales.MethodChallenger, req.Methodology)
	assert.Equal(t, "xai:grok-4", req.Model)
	require.NotNil(t, req.Advanced)
	assert.Equal(t, "professional", req.Advanced.LanguageStyle)
	require.NotNil(t, req.Advanced.Role)
	assert.Equal(t, "consultant", req.Advanced.Role.ProfessionalRole)

	p := req.ToPrompt(sales.CustomerSnapshot{Name: "王总"})
	assert.Equal(t, "王总", p.Customer.Name)
	assert.Equal(t, sales.ScriptClosing, p.ScriptType)
}

func TestScriptRequestDefaults(t *testing.T) {
	var req ScriptRequest
	err := json.Unmarshal([]byte(`{"customer":{"name":"张三","company":"远景"},"advanced_settings":null}`), &req)

	require.NoError(t, err)
	assert.Equal(t, sales.ScriptOpening, req.ScriptType)
	assert.Equal(t, sales.DefaultMethodology, req.Methodology)
	assert.Nil(t, req.Advanced)
	require.NotNil(t, req.Customer)
	assert.Equal(t, "远景", req.Customer.Company)
}

func TestScriptRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		text string
	}{
		{name: "no customer", body: `{"script_type":"opening"}`, text: "customer_id or customer"},
		{name: "nameless inline customer", body: `{"customer":{"company":"x"}}`, text: "customer_id or customer"},
		{name: "negative id", body: `{"customer_id":-1}`, text: "positive"},
		{name: "creativity", body: `{"customer_id":1,"advanced_settings":{"creativity":1.5}}`, text: "creativity"},
		{name: "settings type", body: `{"customer_id":1,"advanced_settings":"loud"}`, text: "advanced settings"},
		{name: "malformed", body: `{"customer_id":`, text: "decode script request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ScriptRequest
			err := json.Unmarshal([]byte(tt.body), &req)

			assert.ErrorContains(t, err, tt.text)
		})
	}
}

func TestOtherRequestsValidate(t *testing.T) {
	var analysis AnalysisRequest
	assert.Error(t, json.Unmarshal([]byte(`{"customer_id":0}`), &analysis))
	require.NoError(t, json.Unmarshal([]byte(`{"customer_id":3,"model":"gemini-pro"}`), &analysis))
	assert.Equal(t, int64(3), analysis.CustomerID)

	var conversation ConversationRequest
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"content":"  "}`), &conversation), errEmptyContent)
	require.NoError(t, json.Unmarshal([]byte(`{"content":"客户说太贵了","customer_id":5}`), &conversation))
	assert.Equal(t, int64(5), conversation.CustomerID)

	var chat ChatRequest
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"context":"x"}`), &chat), errEmptyMessage)
	require.NoError(t, json.Unmarshal([]byte(`{"message":"你好","context":"CRM"}`), &chat))
	assert.Equal(t, "CRM", chat.Context)
}

func TestFromScriptKeepsFieldOrder(t *testing.T) {
	out := assistant.ScriptOutput{
		Generation:  assistant.Generation{RequestID: "r1", Model: "deepseek-chat", Usage: &models.Usage{TotalTokens: 7}},
		ScriptType:  sales.ScriptOpening,
		Methodology: sales.MethodSPIN,
		Script: normalize.ScriptResult{
			Keys:   []string{"opening", "next_step"},
			Values: map[string]string{"opening": "a", "next_step": "b"},
			Source: normalize.StageSegmented,
		},
	}

	raw, err := json.Marshal(FromScript(out))

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"request_id":"r1","model":"deepseek-chat","script_type":"opening","methodology":"spin",
		"source":"segmented","script":{"opening":"a","next_step":"b"},
		"usage":{"prompt_tokens":0,"completion_tokens":0,"total_tokens":7}
	}`, string(raw))
	assert.Contains(t, string(raw), `"script":{"opening":"a","next_step":"b"}`)
}

func TestFromModels(t *testing.T) {
	resp := FromModels([]assistant.ModelInfo{{ID: "gemini-pro", Description: "Google Gemini Pro", Model: "gemini-pro", Family: provider.FamilyGemini}})

	assert.Equal(t, "list", resp.Object)
	assert.Equal(t, []Model{{ID: "gemini-pro", Name: "Google Gemini Pro", Model: "gemini-pro", Family: "gemini"}}, resp.Data)
}

func TestFromTextWithoutUsage(t *testing.T) {
	resp := FromText(assistant.TextOutput{Generation: assistant.Generation{RequestID: "r"}, Content: "hi"})

	assert.Nil(t, resp.Usage)
	assert.Equal(t, "hi", resp.Content)
}

func TestScriptOptions(t *testing.T) {
	resp := ScriptOptions()

	require.NotEmpty(t, resp.ScriptTypes)
	assert.Equal(t, Option{Value: "opening", Label: "开场白"}, resp.ScriptTypes[0])
	assert.Len(t, resp.Methodologies, len(sales.Methodologies()))
	for _, m := range resp.Methodologies {
		assert.True(t, sales.Methodology(m.Value).Known(), m.Value)
		assert.NotEqual(t, m.Value, m.Label)
	}
	assert.Equal(t, string(sales.DefaultMethodology), resp.DefaultMethodology)
}
