// Package prompt assembles the outbound message lists for script generation,
// customer analysis, conversation analysis and free chat. Composition is a
// pure function of its inputs.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Zenoooe/ai-crm/internal/models"
	"github.com/Zenoooe/ai-crm/internal/sales"
)

// RecentInteractionLimit caps how many interactions an analysis prompt quotes.
const RecentInteractionLimit = 5

// StyleSource supplies per-model style guidance.
type StyleSource interface {
	Style(id string) string
}

// ScriptRequest is the structured input of script generation.
type ScriptRequest struct {
	Customer    sales.CustomerSnapshot
	ScriptType  sales.ScriptType
	Methodology sales.Methodology
	Advanced    *AdvancedSettings
	// Model is the caller's model preference; empty means the default.
	Model string
}

// Composer builds message lists. The zero value composes without style
// guidance.
type Composer struct {
	styles StyleSource
}

// NewComposer returns a composer that appends style guidance from styles.
func NewComposer(styles StyleSource) *Composer {
	return &Composer{styles: styles}
}

func (c *Composer) style(modelID string) string {
	if c == nil || c.styles == nil || modelID == "" {
		return ""
	}
	return c.styles.Style(modelID)
}

// ComposeScript builds the system persona and the user instruction block
// for a sales script. modelID is the resolved canonical model id and only
// selects style guidance.
func (c *Composer) ComposeScript(req ScriptRequest, modelID string) []models.Message {
	methodology := req.Methodology
	if methodology == "" {
		methodology = sales.DefaultMethodology
	}
	schema := sales.SchemaFor(req.ScriptType, req.Customer)
	customer := req.Customer

	var b strings.Builder
	fmt.Fprintf(&b, "请为以下客户撰写完整的销售话术，输出必须包含%d个部分，每个部分都要详细，给出具体的话术示例、实施步骤和说明。\n\n", len(schema.Fields))
	b.WriteString("客户信息：\n")
	writeCustomer(&b, customer)
	if bg := strings.TrimSpace(customer.ProjectBackground); bg != "" {
		fmt.Fprintf(&b, "- 项目背景：%s\n", bg)
	}
	fmt.Fprintf(&b, "\n销售方法论：%s\n", methodology.Label())
	fmt.Fprintf(&b, "当前销售情况：%s\n", req.ScriptType.Label())

	writeBlocks(&b,
		SituationGuidance(req.ScriptType, methodology),
		ContentFocus(req.ScriptType),
		MethodologyGuidance(methodology),
		PersonaDirective(req.Advanced),
		strings.TrimSpace(c.style(modelID)),
	)

	b.WriteString("\n请严格按照以下JSON格式返回，每个字段都要有具体、详细的内容：\n")
	b.WriteString(RenderSchema(schema))
	b.WriteString("\n\n输出要求：\n")
	b.WriteString("1. 只返回标准JSON，不要添加任何其他文字\n")
	b.WriteString("2. 每个字段都要具体实用，不能是空泛的模板\n")
	fmt.Fprintf(&b, "3. 话术要符合%s的核心原则\n", methodology.Label())
	fmt.Fprintf(&b, "4. 内容要贴合%s行业的特点\n", sales.Or(customer.Industry, "客户所在"))
	fmt.Fprintf(&b, "5. 当前销售情况是\"%s\"，请按上面的内容重点调整各部分的侧重点\n", req.ScriptType.Label())

	system := fmt.Sprintf(`你是一名专业的销售话术专家，精通多种销售方法论。
当前使用的销售方法论是：%s

请为客户生成专业、个性化的销售话术，要求：
1. 符合所选方法论的原则
2. 针对客户的具体情况定制
3. 自然流畅，不生硬
4. 包含可执行的行动指导`, methodology.Label())

	return []models.Message{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleUser, Content: b.String()},
	}
}

// RenderSchema renders a schema as the JSON object the model must fill in,
// keys in declared order.
func RenderSchema(s sales.Schema) string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range s.Fields {
		key, _ := json.Marshal(f.Key)
		value, _ := json.Marshal(fmt.Sprintf("%s（至少%d字）", f.Description, f.MinLength))
		fmt.Fprintf(&b, "  %s: %s", key, value)
		if i < len(s.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

const analysisSystem = `你是一名专业的CRM销售分析师，擅长客户画像分析和销售策略制定。
请根据客户信息和互动历史生成详细的客户分析报告，内容包括：
1. 客户画像总结
2. 沟通风格偏好
3. 潜在需求和痛点
4. 成交概率评估
5. 下一步行动建议

语言要专业易懂，突出可执行的销售建议。`

const analysisShape = `请用以下JSON格式返回分析结果：
{
  "profile_analysis": {
    "content": "客户画像分析（200-300字）",
    "time": "最佳联系时间段",
    "method": "推荐沟通方式",
    "topics": ["关键话题1", "关键话题2", "关键话题3"],
    "opportunities": ["机会点1", "机会点2", "机会点3"],
    "strategies": ["策略1", "策略2", "策略3"],
    "competition_analysis": "竞争分析和差异化建议"
  },
  "next_contact_suggestion": "下次联系的具体建议",
  "sales_opportunity": "销售机会评估",
  "success_probability": 0.5
}

成交概率评估标准（请保持理性保守）：
- 初次接触或了解阶段：0.2-0.4
- 有明确需求但未确定供应商：0.4-0.6
- 进入商务谈判或方案讨论：0.6-0.8
- 只有客户明确表达购买意向或进入合同阶段，才可能高于0.8`

// ComposeAnalysis builds the customer analysis request. Only the most recent
// interactions are quoted; interactions are expected oldest first.
func (c *Composer) ComposeAnalysis(customer sales.CustomerSnapshot, interactions []sales.Interaction) []models.Message {
	var b strings.Builder
	b.WriteString("请分析以下客户信息。\n\n客户基本信息：\n")
	writeCustomer(&b, customer)
	fmt.Fprintf(&b, "- 优先级：%s\n", sales.Or(customer.Priority, "中等"))

	if bg := strings.TrimSpace(customer.ProjectBackground); bg != "" {
		fmt.Fprintf(&b, "\n重要项目背景：\n%s\n请在各部分分析中充分运用以上项目背景，其中的信息优先于基本信息。\n", bg)
	}

	if len(interactions) > 0 {
		b.WriteString("\n最近互动记录：\n")
		for _, it := range RecentInteractions(interactions) {
			stamp := ""
			if !it.CreatedAt.IsZero() {
				stamp = it.CreatedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(&b, "- %s：%s\n", stamp, strings.TrimSpace(it.Content))
		}
	}

	b.WriteString("\n")
	b.WriteString(analysisShape)

	return []models.Message{
		{Role: models.RoleSystem, Content: analysisSystem},
		{Role: models.RoleUser, Content: b.String()},
	}
}

// RecentInteractions returns the trailing RecentInteractionLimit entries.
func RecentInteractions(interactions []sales.Interaction) []sales.Interaction {
	if len(interactions) <= RecentInteractionLimit {
		return interactions
	}
	return interactions[len(interactions)-RecentInteractionLimit:]
}

// ComposeConversation builds a conversation analysis request. customer may
// be nil.
func (c *Composer) ComposeConversation(content string, customer *sales.CustomerSnapshot) []models.Message {
	var b strings.Builder
	b.WriteString("请分析以下对话内容：\n\n对话内容：\n")
	b.WriteString(strings.TrimSpace(content))
	b.WriteString("\n")

	if customer != nil {
		if raw, err := json.MarshalIndent(customer, "", "  "); err == nil {
			b.WriteString("\n客户背景：\n")
			b.Write(raw)
			b.WriteString("\n")
		}
	}

	b.WriteString(`
请提供：
1. 对话情绪分析（积极/中性/消极）
2. 关键信息提取
3. 客户兴趣点和痛点
4. 销售机会评估
5. 下次跟进建议`)

	return []models.Message{
		{Role: models.RoleSystem, Content: "你是一名专业的对话分析师，擅长从销售对话中提取关键信息和洞察。"},
		{Role: models.RoleUser, Content: b.String()},
	}
}

// ComposeChat wraps a free-form message, preceded by context as a system
// message when context is non-empty.
func (c *Composer) ComposeChat(message, context string) []models.Message {
	messages := make([]models.Message, 0, 2)
	if strings.TrimSpace(context) != "" {
		messages = append(messages, models.Message{Role: models.RoleSystem, Content: context})
	}
	return append(messages, models.Message{Role: models.RoleUser, Content: message})
}

func writeCustomer(b *strings.Builder, c sales.CustomerSnapshot) {
	fmt.Fprintf(b, "- 姓名：%s\n", sales.Or(c.Name, "未知"))
	fmt.Fprintf(b, "- 公司：%s\n", sales.Or(c.Company, "未知"))
	fmt.Fprintf(b, "- 职位：%s\n", sales.Or(c.Position, "未知"))
	fmt.Fprintf(b, "- 行业：%s\n", sales.Or(c.Industry, "未知"))
}

func writeBlocks(b *strings.Builder, blocks ...string) {
	for _, block := range blocks {
		if block == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(block)
		b.WriteString("\n")
	}
}
