package sales

import "fmt"

// Field is one named section of a structured script.
type Field struct {
	Key string
	// MinLength is the minimum prose length in characters requested from
	// the model. It is stated in the prompt and never enforced.
	MinLength   int
	Description string
}

// Schema is the ordered output field set for one script type.
type Schema struct {
	Fields []Field
}

// Keys returns the field keys in declared order.
func (s Schema) Keys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

// PrimaryKey returns the key that receives an unsplittable block of prose:
// the middle field of the schema.
func PrimaryKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[len(keys)/2]
}

type fieldTemplate struct {
	key       string
	minLength int
	// describe renders the description from customer name, industry and
	// position.
	describe func(name, industry, position string) string
}

func static(s string) func(string, string, string) string {
	return func(string, string, string) string { return s }
}

var (
	objectionFields = []fieldTemplate{
		{"objection_acknowledgment", 300, func(name, _, _ string) string {
			return fmt.Sprintf("异议确认与共情：先完整复述%s提出的顾虑，表达理解，不做正面反驳，体现倾听与服务意识", name)
		}},
		{"objection_analysis", 400, func(_, industry, position string) string {
			return fmt.Sprintf("异议根因分析：拆解顾虑背后的预算、时机、决策权或信任问题，结合%s行业特点和%s岗位的常见担忧", industry, position)
		}},
		{"evidence_presentation", 500, static("证据与案例：用同行业成功案例、ROI测算、风险评估和实施保障等具体材料化解顾虑")},
		{"alternative_solution", 350, static("替代方案：针对具体顾虑给出分阶段实施、试用、定制调整等灵活选择")},
		{"objection_close", 250, static("异议化解后的推进：把注意力拉回价值与收益，明确下一步行动")},
	}

	closingFields = []fieldTemplate{
		{"urgency_creation", 300, func(name, industry, _ string) string {
			return fmt.Sprintf("紧迫感营造：借助市场趋势、竞争压力和机会窗口，让%s意识到现在行动的必要，突出%s行业的时效性", name, industry)
		}},
		{"value_reinforcement", 400, func(_, _, position string) string {
			return fmt.Sprintf("价值强化：系统回顾前期已确认的价值点，量化收益与ROI，说明方案对%s工作的直接帮助", position)
		}},
		{"risk_mitigation", 500, static("风险消除：说明实施保障、售后服务和风险控制措施，打消最后的顾虑")},
		{"decision_facilitation", 350, static("决策引导：帮助客户梳理决策要素，给出评估框架和标准，引导积极决策")},
		{"closing_action", 250, static("成交行动：明确提出合作建议，说明签约流程、实施时间表和启动安排")},
	}

	discoveryFields = []fieldTemplate{
		{"situation_inquiry", 300, func(name, industry, position string) string {
			return fmt.Sprintf("现状调研：了解%s当前的业务现状、组织结构和运营方式，关注%s行业的特殊性以及%s的具体职责", name, industry, position)
		}},
		{"problem_exploration", 400, static("问题探索：用开放式和引导式提问挖掘业务挑战、运营痛点和发展瓶颈")},
		{"impact_analysis", 500, static("影响评估：帮助客户量化现有问题造成的成本损失、效率下降和竞争劣势")},
		{"need_confirmation", 350, static("需求确认：确认真实需求和期望，理清优先级与紧迫程度")},
		{"solution_direction", 250, static("解决方向：初步探讨可能的解决思路，为后续方案介绍做铺垫")},
	}

	followUpFields = []fieldTemplate{
		{"relationship_maintenance", 300, func(name, industry, _ string) string {
			return fmt.Sprintf("关系维护：真诚问候，回顾上次沟通要点，体现对%s及其%s业务的持续关注", name, industry)
		}},
		{"value_reminder", 400, static("价值提醒：重申方案价值，分享新的行业洞察、案例或产品更新")},
		{"progress_update", 500, static("进展分享：介绍同行业或相近规模客户的实施进展和成果，增强信心")},
		{"concern_addressing", 350, static("顾虑处理：主动了解新的顾虑或变化，提供额外支持和解决办法")},
		{"next_engagement", 250, static("下次互动：约定下一次沟通的时间、议题和目标，保持推进节奏")},
	}

	genericFields = []fieldTemplate{
		{"opening", 300, func(name, industry, position string) string {
			return fmt.Sprintf("针对%s的个性化开场白：介绍自己、公司和专业能力，结合%s行业背景与%s身份给出行业洞察和价值主张", name, industry, position)
		}},
		{"pain_point", 400, func(_, industry, position string) string {
			return fmt.Sprintf("%s行业痛点分析：剖析%s可能面对的业务挑战，涵盖行业趋势、市场压力和竞争环境", industry, position)
		}},
		{"solution", 500, static("解决方案介绍：针对上述痛点说明产品或服务特点、实施方法、预期效果和技术优势")},
		{"social_proof", 350, static("社会证明：给出成功案例、客户评价、数据和行业认可，包含具体数字、时间和效果")},
		{"next_step", 250, static("下一步计划：明确会议、演示、试用或合作流程等具体安排和时间节点")},
	}
)

// SchemaFor returns the output schema for a script type with descriptions
// tailored to the customer. Unknown script types get the generic schema.
func SchemaFor(t ScriptType, c CustomerSnapshot) Schema {
	name := Or(c.Name, "客户")
	industry := Or(c.Industry, "行业")
	position := Or(c.Position, "职位")

	templates := templatesFor(t)
	fields := make([]Field, len(templates))
	for i, tpl := range templates {
		fields[i] = Field{
			Key:         tpl.key,
			MinLength:   tpl.minLength,
			Description: tpl.describe(name, industry, position),
		}
	}
	return Schema{Fields: fields}
}

// KeysFor returns the schema keys for a script type without rendering
// descriptions.
func KeysFor(t ScriptType) []string {
	templates := templatesFor(t)
	keys := make([]string, len(templates))
	for i, tpl := range templates {
		keys[i] = tpl.key
	}
	return keys
}

func templatesFor(t ScriptType) []fieldTemplate {
	switch t.Canonical() {
	case ScriptObjectionHandling:
		return objectionFields
	case ScriptClosing:
		return closingFields
	case ScriptNeedsDiscovery:
		return discoveryFields
	case ScriptFollowUp:
		return followUpFields
	default:
		return genericFields
	}
}
