package prompt

import (
	"strings"
)

// PersonaHeader introduces the advanced settings block in a prompt.
const PersonaHeader = "高级设置指导："

// AdvancedSettings are the optional user-tunable persona and style options
// of a script request. Every field is independently optional.
type AdvancedSettings struct {
	Role                *RoleSettings `json:"roleSettings,omitempty"`
	LanguageStyle       string        `json:"languageStyle,omitempty"`
	ScriptLength        int           `json:"scriptLength,omitempty"`
	Creativity          *float64      `json:"creativity,omitempty"`
	IndustryTerms       bool          `json:"industryTerms,omitempty"`
	PersonalSignature   string        `json:"personalSignature,omitempty"`
	OutputFormat        string        `json:"outputFormat,omitempty"`
	ChannelOptimization string        `json:"channelOptimization,omitempty"`
	TimeSensitivity     string        `json:"timeSensitivity,omitempty"`
}

// RoleSettings describe the professional identity the script speaks with.
type RoleSettings struct {
	ProfessionalRole    string          `json:"professionalRole,omitempty"`
	CustomRole          string          `json:"customRole,omitempty"`
	EducationBackground string          `json:"educationBackground,omitempty"`
	CustomEducation     string          `json:"customEducation,omitempty"`
	ExperienceYears     string          `json:"experienceYears,omitempty"`
	ExpertiseArea       string          `json:"expertiseArea,omitempty"`
	Services            map[string]bool `json:"services,omitempty"`
	Achievements        string          `json:"achievements,omitempty"`
	ValueProposition    string          `json:"valueProposition,omitempty"`
}

var (
	roleText = map[string]string{
		"brand_consultant":     "以品牌升级专家的身份，关注品牌价值提升和市场定位优化",
		"marketing_specialist": "以市场营销专家的身份，聚焦营销策略和客户获取",
		"sales_director":       "以销售总监的身份，强调销售流程优化和业绩提升",
		"business_consultant":  "以商业顾问的身份，提供全面的业务发展建议",
		"strategy_advisor":     "以战略顾问的身份，聚焦长期战略规划和竞争优势",
	}
	educationText = map[string]string{
		"mba":      "运用MBA水准的商业分析能力和战略思维",
		"master":   "体现硕士水准的专业深度和理论功底",
		"bachelor": "结合本科专业知识给出务实建议",
		"phd":      "运用博士水准的研究能力和深度洞察",
	}
	experienceText = map[string]string{
		"1-3":  "以新锐专家的视角，提供创新思路和敏锐洞察",
		"3-5":  "结合扎实的实战经验，提供成熟可靠的方案",
		"5-10": "凭借资深专家的经验，给出权威建议",
		"10+":  "站在行业领袖的高度，提供战略性和前瞻性指导",
	}
	expertiseText = map[string]string{
		"brand_strategy":         "专注品牌战略规划和品牌价值提升",
		"market_analysis":        "擅长市场分析和竞争环境评估",
		"business_optimization":  "专长于业务流程优化和效率提升",
		"digital_transformation": "专注数字化转型和技术创新应用",
	}
	serviceOrder = []struct{ key, name string }{
		{"brandConsulting", "品牌咨询"},
		{"strategyPlanning", "战略规划"},
		{"marketAnalysis", "市场分析"},
		{"businessOptimization", "业务优化"},
		{"teamTraining", "团队培训"},
		{"digitalTransformation", "数字化转型"},
	}
	languageStyleText = map[string]string{
		"professional": "使用正式、专业的商务语言，避免口语化",
		"friendly":     "语气友好亲切，拉近与客户的距离",
		"confident":    "展现自信坚定的专业态度，表达有权威感",
		"consultative": "以顾问身份给出专业建议和洞察",
	}
	scriptLengthText = map[int]string{
		1: "简洁明了，突出核心信息",
		2: "长度适中，兼顾信息量和可读性",
		3: "详尽全面，提供充分的背景和论证",
	}
	outputFormatText = map[string]string{
		"structured":     "采用结构化格式，条理清晰",
		"conversational": "采用对话式风格，自然流畅",
		"bullet":         "采用要点式表达，简洁明了",
	}
	channelText = map[string]string{
		"phone":   "针对电话沟通优化，注重口语表达效果",
		"email":   "针对邮件沟通优化，注重文字清晰",
		"meeting": "针对面对面会议优化，注重互动",
		"video":   "针对视频会议优化，兼顾画面和语音",
	}
	timeSensitivityText = map[string]string{
		"urgent":  "强调紧迫性，突出立即行动的重要",
		"normal":  "保持正常节奏，适度引导决策",
		"relaxed": "保持耐心，重在建立长期关系",
	}
)

// CreativityBand describes a creativity level in one of three bands.
func CreativityBand(level float64) string {
	switch {
	case level <= 0.3:
		return "保持传统稳重的表达，注重可靠"
	case level <= 0.7:
		return "适度创新，兼顾传统与新颖的表达"
	default:
		return "采用新颖独特的表达，突出差异化"
	}
}

// PersonaDirective renders the advanced settings into a directive block.
// It returns "" for nil settings or when no option contributes text.
func PersonaDirective(s *AdvancedSettings) string {
	if s == nil {
		return ""
	}

	var parts []string
	add := func(label, text string) {
		if text != "" {
			parts = append(parts, label+"："+text)
		}
	}

	if r := s.Role; r != nil {
		if text, ok := roleText[r.ProfessionalRole]; ok {
			add("专业身份", text)
		} else if r.CustomRole != "" {
			add("专业身份", "以"+r.CustomRole+"的身份提供专业服务")
		}

		if text, ok := educationText[r.EducationBackground]; ok {
			add("专业水平", text)
		} else if r.CustomEducation != "" {
			add("专业水平", "具备"+r.CustomEducation+"的专业背景")
		}

		add("经验水平", experienceText[r.ExperienceYears])
		add("专业领域", expertiseText[r.ExpertiseArea])

		var services []string
		for _, svc := range serviceOrder {
			if r.Services[svc.key] {
				services = append(services, svc.name)
			}
		}
		if len(services) > 0 {
			add("服务范围", "提供"+strings.Join(services, "、")+"等专业服务")
		}

		add("专业成就", r.Achievements)
		add("价值主张", r.ValueProposition)
	}

	add("语言风格", languageStyleText[s.LanguageStyle])
	add("内容长度", scriptLengthText[s.ScriptLength])
	if s.Creativity != nil {
		add("创意程度", CreativityBand(*s.Creativity))
	}
	if s.IndustryTerms {
		add("专业术语", "适当使用行业术语，体现专业性")
	}
	add("个人特色", s.PersonalSignature)
	add("表达格式", outputFormatText[s.OutputFormat])
	add("沟通渠道", channelText[s.ChannelOptimization])
	add("时间节奏", timeSensitivityText[s.TimeSensitivity])

	if len(parts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(PersonaHeader)
	for _, p := range parts {
		b.WriteString("\n- ")
		b.WriteString(p)
	}
	return b.String()
}
