package prompt

import (
	"fmt"

	"github.com/Zenoooe/ai-crm/internal/sales"
)

const generalGuidance sales.Methodology = "general"

var situationGuidance = map[sales.ScriptType]map[sales.Methodology]string{
	sales.ScriptInitialContact: {
		generalGuidance:          "这是第一次接触客户，核心是建立信任并激发兴趣。开场要简洁有力，尽快让客户看到价值。",
		sales.MethodSPIN:         "按SPIN思路先了解客户现状，再逐步引出问题。",
		sales.MethodChallenger:   "以挑战者姿态切入，用新的行业洞察吸引客户注意。",
		sales.MethodConsultative: "以顾问身份出现，展示专业度和对客户行业的深入理解。",
	},
	sales.ScriptOpening: {
		generalGuidance:          "开场阶段要在30秒内抓住客户注意力，建立初步信任。",
		sales.MethodStraightLine: "开门见山，清楚说明来意和价值主张。",
		sales.MethodSPIN:         "从了解客户现状入手，避免一上来就推销。",
		sales.MethodChallenger:   "分享行业趋势，或挑战客户的固有认知。",
	},
	sales.ScriptNeedsDiscovery: {
		generalGuidance:          "需求挖掘阶段，重点是深入理解客户的痛点与需求。",
		sales.MethodSPIN:         "系统地提出SPIN四类问题：情况、问题、影响、需求回报。",
		sales.MethodConsultative: "像顾问一样对客户业务问题做深入诊断。",
		sales.MethodSolution:     "聚焦发现客户的业务挑战和改进空间。",
	},
	sales.ScriptPainPointDiscovery: {
		generalGuidance:        "痛点挖掘阶段，要让客户意识到问题的严重性和紧迫性。",
		sales.MethodChallenger: "引导客户看到他们尚未意识到的问题。",
		sales.MethodSPIN:       "用影响类问题让客户感受到问题带来的后果。",
		sales.MethodValue:      "量化问题对客户业务造成的影响。",
	},
	sales.ScriptPresentation: {
		generalGuidance:          "方案展示阶段，要把解决方案和客户的具体需求紧密对应。",
		sales.MethodSolution:     "展示整体方案如何解决客户的业务问题。",
		sales.MethodValue:        "重点强调投资回报和业务价值。",
		sales.MethodConsultative: "以专业建议的方式推荐方案。",
	},
	sales.ScriptObjectionHandling: {
		generalGuidance:          "异议处理阶段，要理解异议背后的真实担忧，并给出有说服力的回应。",
		sales.MethodChallenger:   "用数据和案例正面回应客户的担忧。",
		sales.MethodConsultative: "站在客户立场分析异议是否合理。",
		sales.MethodValue:        "用ROI分析化解价格方面的异议。",
	},
	sales.ScriptClosing: {
		generalGuidance:          "成交阶段，要营造紧迫感并明确下一步行动。",
		sales.MethodStraightLine: "直接提出成交请求，不拖泥带水。",
		sales.MethodChallenger:   "基于前期建立的价值认知推动客户决策。",
		sales.MethodSolution:     "强调方案的完整性以及尽快实施的重要性。",
	},
	sales.ScriptFollowUp: {
		generalGuidance:          "跟进阶段，要保持客户兴趣并持续推进销售进程。",
		sales.MethodConsultative: "提供额外的专业见解和建议。",
		sales.MethodValue:        "分享更多价值证明和成功案例。",
		sales.MethodChallenger:   "持续教育客户，巩固其价值认知。",
	},
}

// SituationGuidance returns the guidance for a script type and methodology
// pair, falling back to the script type's general entry. It returns "" when
// the script type has no guidance at all.
func SituationGuidance(t sales.ScriptType, m sales.Methodology) string {
	entries, ok := situationGuidance[t.Canonical()]
	if !ok {
		return ""
	}
	text, ok := entries[m]
	if !ok {
		text = entries[generalGuidance]
	}
	return "销售情况指导：" + text
}

var contentFocus = map[sales.ScriptType]string{
	sales.ScriptOpening: `内容重点要求：
- opening：简短有力的自我介绍和价值主张，30秒内抓住注意力
- pain_point：点出行业普遍问题，引发思考，不必过度展开
- solution：概括方案的核心价值，激发兴趣而不是详细讲解
- social_proof：提及知名客户或简单数据，建立初步信任
- next_step：争取一次简短会面或电话沟通`,
	sales.ScriptInitialContact: `内容重点要求：
- opening：说明联系原因，快速建立可信度
- pain_point：用一个贴近客户的问题引起共鸣
- solution：一句话说清能带来的改变
- social_proof：给出一个同行案例作为背书
- next_step：请求一次低门槛的后续交流`,
	sales.ScriptPainPointDiscovery: `内容重点要求：
- opening：承接之前的沟通，自然过渡到问题讨论
- pain_point：层层追问，让客户亲口说出痛点及其后果
- solution：只点到为止，暗示问题可以被解决
- social_proof：分享曾有同样痛点的客户如何受损或获益
- next_step：提议一次专门的问题诊断`,
	sales.ScriptNeedsDiscovery: `内容重点要求：
- situation_inquiry：回顾之前的接触，表达对客户业务的关注
- problem_exploration：用开放式问题引导客户充分表达
- impact_analysis：帮助客户认识问题对业务的量化影响
- need_confirmation：复述并确认需求，不急于介绍产品
- solution_direction：提议深入的需求分析会议或现场调研`,
	sales.ScriptPresentation: `内容重点要求：
- opening：确认客户需求，为方案展示做铺垫
- pain_point：总结已发现的关键痛点并获得客户确认
- solution：逐一说明方案如何解决每个痛点，包含功能与效果
- social_proof：提供详细的成功案例和ROI数据
- next_step：提议试用、演示或深入的方案讨论`,
	sales.ScriptObjectionHandling: `内容重点要求：
- objection_acknowledgment：理解并认同客户的担忧，保持专业和耐心
- objection_analysis：说明不解决问题的风险和机会成本
- evidence_presentation：针对具体异议给出有说服力的证据
- alternative_solution：提供试用期、分阶段实施等降低风险的选择
- objection_close：分享类似客户打消顾虑后成功合作的经历并推进决策`,
	sales.ScriptClosing: `内容重点要求：
- urgency_creation：强调不立即行动的机会成本和竞争风险
- value_reinforcement：总结前期沟通成果，确认客户认同的价值
- risk_mitigation：说明保障措施，消除最后的顾虑
- decision_facilitation：展示其他客户快速决策后获得的收益
- closing_action：明确提出签约或承诺，可附带限时优惠或激励`,
	sales.ScriptFollowUp: `内容重点要求：
- relationship_maintenance：跟进此前的承诺或讨论，体现持续关注
- value_reminder：提供额外价值或优化建议，保持客户兴趣
- progress_update：分享最新的成功案例或行业趋势
- concern_addressing：了解客户情况的新变化，发现新需求
- next_engagement：推进到下一销售阶段或维护长期关系`,
}

// ContentFocus returns the field emphasis guidance for a script type, or ""
// when none is defined.
func ContentFocus(t sales.ScriptType) string {
	return contentFocus[t.Canonical()]
}

var methodologyGuidance = map[sales.Methodology]string{
	sales.MethodStraightLine: `销售方法论详细指导：华尔街之狼直线销售法
核心原则：
1. 直接：开门见山，直接说明来意和价值
2. 掌控：主导对话节奏，引导客户沿着你的逻辑思考
3. 紧迫：强调机会的稀缺性和时效性
4. 确定：展现十足的自信，让客户感受到专业与权威

话术要求：
- 开场白：30秒内建立权威，直接说明来意
- 痛点挖掘：快速锁定核心问题，不做过度分析
- 解决方案：简洁有力地呈现价值，少谈技术细节
- 成交促成：直接请求决策，不给犹豫的空间
- 语言风格：坚定、自信、有说服力`,
	sales.MethodSPIN: `销售方法论详细指导：SPIN销售法
四类问题：
1. Situation 情况问题：了解客户现状，建立背景
   - "能介绍一下贵公司目前在这方面的情况吗？"
2. Problem 难点问题：发现不满和困难
   - "这个过程中最让您头疼的是什么？"
3. Implication 影响问题：放大问题的后果
   - "如果一直不解决，会对业务造成什么影响？"
4. Need-payoff 需求回报问题：让客户说出解决后的价值
   - "如果这个问题解决了，对您意味着什么？"

话术特点：以提问为主线，让客户自己说出需求和价值`,
	sales.MethodChallenger: `销售方法论详细指导：挑战者销售法
三个步骤：
1. Teach 教导：提供新的行业洞察，挑战客户的现有认知
   - 分享行业趋势和最佳实践
   - 指出客户可能忽视的问题
   - 用数据和案例支撑观点
2. Tailor 定制：把洞察和客户的具体情况结合
   - 分析客户的独特挑战
   - 量化改进的潜在收益
3. Take Control 掌控：主导销售进程，推动决策
   - 营造紧迫感，明确下一步
   - 不被客户的拖延牵着走

话术特点：权威、有教育意义、数据驱动，敢于挑战客户的想法`,
	sales.MethodConsultative: `销售方法论详细指导：顾问式销售法
核心理念：以顾问身份与客户合作，而不是传统的买卖关系

实施步骤：
1. 建立信任：展现专业度和对客户行业的理解
2. 深度诊断：全面了解客户的业务状况
3. 协作分析：和客户一起找到问题的根因
4. 共创方案：让客户参与方案设计
5. 长期伙伴：关注客户的长期成功而非单次成交

话术特点：善用行业洞察，提出诊断性问题，语气谦逊而专业，避免推销感`,
	sales.MethodSolution: `销售方法论详细指导：解决方案销售法
核心理念：围绕客户的业务问题展开，而不是推销产品

实施框架：
1. 业务诊断：梳理业务流程，识别效率瓶颈和改进机会
2. 方案设计：整合资源，提供端到端且可落地的方案
3. 价值量化：计算ROI和成本节约，给出具体改进指标
4. 实施支持：提供详细的实施计划、里程碑和持续优化

话术特点：系统、全面，重视业务价值和实施细节`,
	sales.MethodValue: `销售方法论详细指导：价值销售法
核心理念：始终围绕客户能获得的价值展开对话

价值框架：
1. 价值发现：了解客户的成功指标，识别当前的成本和损失
2. 价值量化：计算财务收益、成本节约和效率提升
3. 价值证明：提供ROI分析和类似客户的可衡量成果
4. 价值实现：规划实现路径，设定可追踪的成功指标

话术特点：数据驱动、量化分析，突出投资回报和业务成果`,
}

// MethodologyGuidance returns the deep-dive block for a methodology. Methods
// without a dedicated block get a one-line instruction naming them.
func MethodologyGuidance(m sales.Methodology) string {
	if m == sales.MethodStraightLineSnake {
		m = sales.MethodStraightLine
	}
	if text, ok := methodologyGuidance[m]; ok {
		return text
	}
	return fmt.Sprintf("销售方法论：%s（请按照该方法的核心原则设计话术）", m.Label())
}
