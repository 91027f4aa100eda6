package normalize

import (
	"fmt"

	"github.com/Zenoooe/ai-crm/internal/sales"
)

type fallbackVars struct {
	name, company, industry, position string
}

// fallbackTemplates hold five sentences per methodology, mapped in order
// onto the generic schema's fields.
var fallbackTemplates = map[sales.Methodology]func(v fallbackVars) []string{
	sales.MethodStraightLine: func(v fallbackVars) []string {
		return []string{
			fmt.Sprintf("%s您好！我是专业的销售顾问，今天联系您，是因为我们有一个能马上提升%s业绩的机会。", v.name, v.company),
			fmt.Sprintf("作为%s的%s，您一定清楚现在市场竞争激烈、成本上升而利润下滑的压力，绝大多数%s企业都面临同样的挑战。", v.industry, v.position, v.industry),
			fmt.Sprintf("我们的方案专为%s设计，已经帮助同类企业在30天内提升25%%的效率、降低15%%的成本，这是实打实的结果。", v.industry),
			fmt.Sprintf("上个月，一家和%s规模相当的%s企业用了我们的方案，月收入增长了40%%。", v.company, v.industry),
			"我知道您时间宝贵，只需要15分钟就能向您展示具体做法。明天上午10点还是下午3点更方便？",
		}
	},
	sales.MethodSPIN: func(v fallbackVars) []string {
		return []string{
			fmt.Sprintf("%s您好，我是专业顾问，想先了解一下%s在%s领域的现状，以便给您更有针对性的建议。", v.name, v.company, v.industry),
			fmt.Sprintf("请问%s目前在%s运营中最关心的是哪方面：效率提升、成本控制，还是市场拓展？", v.company, v.industry),
			fmt.Sprintf("结合您提到的情况，我们有一套针对%s的方案，可以系统地解决这些问题。", v.industry),
			fmt.Sprintf("我们已经帮助多家%s企业解决过类似问题，客户反馈很积极。", v.industry),
			fmt.Sprintf("建议我们安排一次深入的需求分析会议，我可以更好地了解%s的情况，为您定制方案。", v.company),
		}
	},
	sales.MethodChallenger: func(v fallbackVars) []string {
		return []string{
			fmt.Sprintf("%s您好，我想和您分享一个可能会改变您对%s传统做法看法的观点。", v.name, v.industry),
			fmt.Sprintf("大多数%s企业仍在用同样的方法解决问题，但在当下的市场环境里，这种方法已经不够有效了。", v.industry),
			fmt.Sprintf("我们找到了一种打破%s传统思路的新方法，不仅能解决现有问题，还能带来新的竞争优势。", v.industry),
			fmt.Sprintf("敢于突破传统的%s领先者已经用这种方法取得了明显的竞争优势。", v.industry),
			fmt.Sprintf("我想向您展示这种方法的具体应用，以及它能为%s创造的独特价值。我们约一次战略讨论可以吗？", v.company),
		}
	},
	sales.MethodConsultative: func(v fallbackVars) []string {
		return []string{
			fmt.Sprintf("%s您好，作为%s领域的顾问，我希望了解%s的发展规划，看看我们能提供哪些支持。", v.name, v.industry, v.company),
			fmt.Sprintf("在和众多%s企业合作的过程中，我发现%s们常常面临战略规划和执行落地之间的落差。", v.industry, v.position),
			fmt.Sprintf("基于在%s的深厚经验，我们可以为%s提供从战略规划到执行落地的全程咨询。", v.industry, v.company),
			fmt.Sprintf("我们已经帮助多家%s企业实现了战略目标，并建立了长期的合作关系。", v.industry),
			fmt.Sprintf("建议先做一次免费的战略诊断，深入了解%s的现状和目标，再给出专属建议。", v.company),
		}
	},
	sales.MethodSolution: func(v fallbackVars) []string {
		return []string{
			fmt.Sprintf("%s您好，我关注到%s在%s领域的发展，想和您探讨业务优化的可能性。", v.name, v.company, v.industry),
			fmt.Sprintf("%s企业普遍同时面临数字化转型、运营效率和成本控制的挑战，%s在这些方面有具体的困扰吗？", v.industry, v.company),
			fmt.Sprintf("我们为%s企业设计了一套整体方案，覆盖从业务流程优化到技术升级的全链条。", v.industry),
			fmt.Sprintf("这套方案已在多家%s企业落地，平均帮助客户提升35%%的运营效率。", v.industry),
			fmt.Sprintf("我想为%s做一次全面的业务诊断，找出具体的优化机会，再为您设计定制方案。", v.company),
		}
	},
	sales.MethodValue: func(v fallbackVars) []string {
		return []string{
			fmt.Sprintf("%s您好，我想和您聊聊如何为%s创造更大的商业价值。", v.name, v.company),
			fmt.Sprintf("在当前的经济环境下，%s企业都在寻找能带来实际回报的投入。%s做投资决策时最看重哪些指标？", v.industry, v.company),
			fmt.Sprintf("我们的方案不只解决问题，更能为%s创造可量化的商业价值。", v.company),
			fmt.Sprintf("我们帮助%s企业实现的投资回收期通常在6到12个月之内。", v.industry),
			fmt.Sprintf("建议我们做一次价值评估，量化分析方案能为%s带来的具体回报。", v.company),
		}
	},
}

func defaultFallback(v fallbackVars) []string {
	return []string{
		fmt.Sprintf("%s您好，我是公司的销售顾问，很高兴有机会向您介绍我们的解决方案。", v.name),
		fmt.Sprintf("在%s行业里，我们发现很多%s都面临效率提升和成本控制的挑战。", v.industry, v.position),
		"我们的方案正是针对这些痛点设计的，能帮助您明显提升效率、降低运营成本。",
		"我们已经为多家同行企业提供过类似服务，客户满意度很高。",
		"建议我们安排一次详细的产品演示，让您直观了解方案如何帮助贵企业。",
	}
}

// stageFallbacks cover the fields of the stage-specific schemas, which do
// not follow the opening-to-next-step arc of the methodology sentences.
var stageFallbacks = map[string]func(v fallbackVars) string{
	"objection_acknowledgment": func(v fallbackVars) string {
		return fmt.Sprintf("%s，非常理解您的顾虑，很多%s企业在做决定前都会有同样的考虑，谢谢您坦诚地告诉我。", v.name, v.industry)
	},
	"objection_analysis": func(v fallbackVars) string {
		return fmt.Sprintf("我想确认一下，您的顾虑主要在预算、实施时机，还是对效果的把握？作为%s，您最看重的是哪一点？", v.position)
	},
	"evidence_presentation": func(v fallbackVars) string {
		return fmt.Sprintf("去年有一家和%s规模相近的%s企业也有类似担心，上线三个月后投入就收回了，我可以把完整的案例数据发给您。", v.company, v.industry)
	},
	"alternative_solution": func(v fallbackVars) string {
		return "如果一次性投入压力较大，我们可以先从一个部门试点，分阶段实施，效果确认后再逐步推广。"
	},
	"objection_close": func(v fallbackVars) string {
		return fmt.Sprintf("如果这些顾虑能够解决，您看我们下周安排一次针对%s的详细方案沟通，好吗？", v.company)
	},

	"urgency_creation": func(v fallbackVars) string {
		return fmt.Sprintf("%s，%s行业的竞争格局正在快速变化，越早部署的企业越能抢占先机，本季度也正是导入的最佳窗口。", v.name, v.industry)
	},
	"value_reinforcement": func(v fallbackVars) string {
		return fmt.Sprintf("回顾一下我们确认过的价值：提升效率、降低成本，并让%s的团队把精力集中在更重要的业务上。", v.company)
	},
	"risk_mitigation": func(v fallbackVars) string {
		return "我们提供专属实施团队和全程售后保障，关键节点都有明确的验收标准，您不需要承担额外风险。"
	},
	"decision_facilitation": func(v fallbackVars) string {
		return fmt.Sprintf("为了方便您内部决策，我可以整理一份评估清单，列出%s最关心的几项指标和对应的预期结果。", v.company)
	},
	"closing_action": func(v fallbackVars) string {
		return "如果您认可这个方案，我们本周就可以确认合作细节，并安排项目启动会。您看哪天方便？"
	},

	"situation_inquiry": func(v fallbackVars) string {
		return fmt.Sprintf("%s您好，想先了解一下%s目前的业务情况，您作为%s，日常最关注哪些环节？", v.name, v.company, v.position)
	},
	"problem_exploration": func(v fallbackVars) string {
		return "在目前的运营中，有没有哪些环节让您觉得效率不高，或者投入了很多精力却效果有限？"
	},
	"impact_analysis": func(v fallbackVars) string {
		return "这些问题如果持续下去，对团队效率、成本和客户满意度大概会有多大影响？"
	},
	"need_confirmation": func(v fallbackVars) string {
		return "也就是说，您最希望优先解决的是这几个问题，对吗？这对您接下来的工作安排有多紧迫？"
	},
	"solution_direction": func(v fallbackVars) string {
		return fmt.Sprintf("根据您谈到的情况，我们在%s行业有一些成熟的做法，下次可以具体给您介绍思路。", v.industry)
	},

	"relationship_maintenance": func(v fallbackVars) string {
		return fmt.Sprintf("%s您好，上次沟通后一直记挂着%s的项目进展，最近一切顺利吗？", v.name, v.company)
	},
	"value_reminder": func(v fallbackVars) string {
		return fmt.Sprintf("想再和您分享一下，我们的方案能帮助%s企业在效率和成本上取得明显改善。", v.industry)
	},
	"progress_update": func(v fallbackVars) string {
		return fmt.Sprintf("最近又有几家%s企业完成了实施，反馈都很积极，我整理了一些数据给您参考。", v.industry)
	},
	"concern_addressing": func(v fallbackVars) string {
		return "如果您这边有新的考虑或者疑问，随时告诉我，我们可以一起想办法解决。"
	},
	"next_engagement": func(v fallbackVars) string {
		return "您看下周是否方便再约个时间，我们具体聊聊下一步的安排？"
	},
}

// Fallback returns deterministic content for every key with the customer's
// details substituted. Generic schema fields are written in the voice of the
// methodology; stage-specific fields have their own sentences.
func Fallback(m sales.Methodology, c sales.CustomerSnapshot, keys []string) map[string]string {
	if m == sales.MethodStraightLineSnake {
		m = sales.MethodStraightLine
	}
	vars := fallbackVars{
		name:     sales.Or(c.Name, "客户"),
		company:  sales.Or(c.Company, "贵公司"),
		industry: sales.Or(c.Industry, "行业"),
		position: sales.Or(c.Position, "负责人"),
	}

	render, ok := fallbackTemplates[m]
	if !ok {
		render = defaultFallback
	}
	sentences := render(vars)

	out := make(map[string]string, len(keys))
	for i, key := range keys {
		if stage, ok := stageFallbacks[key]; ok {
			out[key] = stage(vars)
			continue
		}
		out[key] = sentences[i%len(sentences)]
	}
	return out
}
