package profile

import (
	"log/slog"

	"github.com/Zenoooe/ai-crm/internal/provider"
)

// Profile holds generation parameters and style guidance for one model.
type Profile struct {
	Temperature float64
	MaxTokens   int
	Style       string
	// Summary is a one-line description of the model's personality.
	Summary string
}

// Selector reads tuned profiles from the registry. It has no side effects
// beyond logging.
type Selector struct {
	registry *provider.Registry
}

// NewSelector constructs a selector backed by the registry.
func NewSelector(registry *provider.Registry) *Selector {
	return &Selector{registry: registry}
}

// Profile returns the tuned parameters for a canonical model id. Models
// without tuning receive the caller's values and no style guidance.
func (s *Selector) Profile(id string, temperature float64, maxTokens int) Profile {
	d, err := s.registry.Lookup(id)
	if err != nil || d.MaxTokens <= 0 {
		return Profile{Temperature: temperature, MaxTokens: maxTokens, Summary: "标准配置"}
	}

	p := Profile{
		Temperature: d.Temperature,
		MaxTokens:   d.MaxTokens,
		Style:       d.Style,
		Summary:     d.Description,
	}
	slog.Debug("model profile selected",
		"model", id,
		"temperature", p.Temperature,
		"max_tokens", p.MaxTokens,
	)
	return p
}

// Style returns the style guidance for a canonical model id, or "".
func (s *Selector) Style(id string) string {
	d, err := s.registry.Lookup(id)
	if err != nil {
		return ""
	}
	return d.Style
}

// Builtin returns the hand-tuned profile shipped for a canonical id.
func Builtin(id string) (Profile, bool) {
	p, ok := builtin[id]
	return p, ok
}

var builtin = map[string]Profile{
	"deepseek-chat": {
		Temperature: 0.7,
		MaxTokens:   8192,
		Summary:     "对话专家，回答准确，内容详实",
		Style: `
风格要求（DeepSeek 对话模型）：
- 回答要准确扎实，每个观点都给出可落地的话术示例
- 语言自然专业，避免空话套话
- 字数要求：每部分不少于350字，总字数不少于1800字
- 重点突出准确性和可执行性`,
	},
	"deepseek-reasoner": {
		Temperature: 0.3,
		MaxTokens:   12000,
		Summary:     "深度推理，逻辑严密，超长内容",
		Style: `
风格要求（DeepSeek 推理模型）：
- 进行深度逻辑分析，给出完整的推理过程和数据支撑
- 每个销售步骤都要说明原因、依据和实施细节
- 内容严谨专业，包含具体的案例分析和数据论证
- 字数要求：每部分不少于500字，总字数不少于2500字
- 重点突出数据分析、理性说服和深度思考`,
	},
	"moonshot-kimi-k2": {
		Temperature: 0.8,
		MaxTokens:   16000,
		Summary:     "创意丰富，表达生动，超长文本",
		Style: `
风格要求（Moonshot 长文本模型）：
- 内容极其丰富，充分展现创意和表达力
- 语言生动有感染力，多用比喻、故事和场景描写
- 字数要求：每部分不少于600字，总字数不少于3000字
- 重点突出情感共鸣和生动描述，给出对话示例和情感引导技巧`,
	},
	"openai-gpt4": {
		Temperature: 0.7,
		MaxTokens:   10000,
		Summary:     "通用均衡，表达自然，详细内容",
		Style: `
风格要求（GPT-4 通用模型）：
- 专业而自然，理性分析与情感诉求保持平衡
- 语言流畅易懂，结构完整，逻辑清晰
- 字数要求：每部分不少于400字，总字数不少于2000字
- 重点突出专业性和可操作性，给出操作指南和话术模板`,
	},
	"gemini-pro": {
		Temperature: 0.9,
		MaxTokens:   12000,
		Summary:     "多元思维，视角独特，丰富内容",
		Style: `
风格要求（Gemini 多元思维模型）：
- 从多个角度分析客户需求和销售策略，提供多维度方案
- 结合行业趋势、市场洞察和前沿理念
- 字数要求：每部分不少于550字，总字数不少于2800字
- 重点突出前瞻性思考，给出多种可选方案和趋势分析`,
	},
	"grok-4": {
		Temperature: 1.0,
		MaxTokens:   14000,
		Summary:     "幽默风趣，思维跳跃，超详细",
		Style: `
风格要求（Grok 模型）：
- 保持专业的同时加入幽默元素和创意表达
- 语言极具亲和力，迅速拉近与客户的距离
- 字数要求：每部分不少于650字，总字数不少于3200字
- 重点突出人性化沟通和独特风格，给出幽默的对话技巧`,
	},
}
