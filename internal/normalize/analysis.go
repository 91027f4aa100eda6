package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/Zenoooe/ai-crm/internal/sales"
)

const (
	recommendedApproach = "基于AI分析的个性化销售方法"
	// baselineProbability is reported when the model produced nothing usable.
	baselineProbability = 0.65
	profileRuneLimit    = 500
	sectionRuneLimit    = 300
)

// ProfileDetails is the structured part of a customer profile analysis.
type ProfileDetails struct {
	Time                string   `json:"time"`
	Method              string   `json:"method"`
	Topics              []string `json:"topics"`
	Opportunities       []string `json:"opportunities"`
	Strategies          []string `json:"strategies"`
	CompetitionAnalysis string   `json:"competition_analysis"`
}

// AnalysisResult is a complete customer analysis.
type AnalysisResult struct {
	ProfileAnalysis       string          `json:"profile_analysis"`
	ProfileDetails        *ProfileDetails `json:"profile_details,omitempty"`
	NextContactSuggestion string          `json:"next_contact_suggestion"`
	SalesOpportunity      string          `json:"sales_opportunity"`
	SuccessProbability    float64         `json:"success_probability"`
	RecommendedApproach   string          `json:"recommended_approach"`
	FullAnalysis          string          `json:"full_analysis,omitempty"`
	Source                Stage           `json:"-"`
}

type analysisPayload struct {
	ProfileAnalysis       json.RawMessage `json:"profile_analysis"`
	NextContactSuggestion *string         `json:"next_contact_suggestion"`
	SalesOpportunity      *string         `json:"sales_opportunity"`
	SuccessProbability    json.RawMessage `json:"success_probability"`
}

type profilePayload struct {
	Content             *string  `json:"content"`
	Time                *string  `json:"time"`
	Method              *string  `json:"method"`
	Topics              []string `json:"topics"`
	Opportunities       []string `json:"opportunities"`
	Strategies          []string `json:"strategies"`
	CompetitionAnalysis *string  `json:"competition_analysis"`
}

var analysisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\{[^{}]*"profile_analysis"[^{}]*"success_probability"[^{}]*\}`),
	regexp.MustCompile(`(?s)\{.*?"profile_analysis".*?"success_probability".*?\}`),
	regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile(`(?s)\{.*"profile_analysis".*\}`),
}

var (
	profileKeywords     = []string{"画像", "特征", "性格", "背景", "客户"}
	contactKeywords     = []string{"联系", "跟进", "沟通", "建议", "时间"}
	opportunityKeywords = []string{"机会", "销售", "潜力", "需求", "价值"}
	probabilityKeywords = []string{"概率", "可能", "成交", "成功"}
)

// Analysis normalizes a customer analysis response. interactionCount is the
// number of interactions the analysis was based on and only feeds the
// default text.
func Analysis(raw string, c sales.CustomerSnapshot, interactionCount int, policy ConfidencePolicy) AnalysisResult {
	if strings.TrimSpace(raw) == "" {
		return DefaultAnalysis(c, interactionCount)
	}

	if payload, ok := findAnalysisJSON(raw); ok {
		result := fromPayload(payload, policy)
		result.FullAnalysis = raw
		result.Source = StageEmbeddedJSON
		return result
	}

	slog.Info("analysis output is not JSON, classifying paragraphs")
	return classify(raw, c, interactionCount, policy)
}

// DefaultAnalysis is the deterministic analysis used when the model produced
// nothing.
func DefaultAnalysis(c sales.CustomerSnapshot, interactionCount int) AnalysisResult {
	return AnalysisResult{
		ProfileAnalysis:       defaultProfile(c, interactionCount),
		NextContactSuggestion: "建议在1-2周内通过电话或邮件跟进，重点了解客户当前的项目进展和具体需求。",
		SalesOpportunity:      "客户在当前业务领域表现出明确的改进需求，存在较好的合作机会。",
		SuccessProbability:    baselineProbability,
		RecommendedApproach:   "基于客户特点的个性化销售方法",
		Source:                StageFallback,
	}
}

func defaultProfile(c sales.CustomerSnapshot, interactionCount int) string {
	return fmt.Sprintf("客户%s在%s行业担任%s，基于%d次沟通记录分析，该客户展现出专业的业务素养和明确的需求导向。",
		c.Name, c.Industry, c.Position, interactionCount)
}

func findAnalysisJSON(raw string) (analysisPayload, bool) {
	candidates := []string{stripFence(raw)}
	for _, re := range analysisPatterns {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		candidates = append(candidates, m[len(m)-1])
	}

	for _, candidate := range candidates {
		for _, variant := range []string{candidate, repair(candidate)} {
			var payload analysisPayload
			if err := json.Unmarshal([]byte(variant), &payload); err != nil {
				continue
			}
			if len(payload.ProfileAnalysis) == 0 && len(payload.SuccessProbability) == 0 {
				continue
			}
			return payload, true
		}
	}
	return analysisPayload{}, false
}

func fromPayload(p analysisPayload, policy ConfidencePolicy) AnalysisResult {
	result := AnalysisResult{
		NextContactSuggestion: stringOr(p.NextContactSuggestion, "建议在1-2周内进行跟进，通过电话或邮件了解项目进展。"),
		SalesOpportunity:      stringOr(p.SalesOpportunity, "客户显示出明确的购买意向，建议重点跟进。"),
		SuccessProbability:    probability(p.SuccessProbability, policy),
		RecommendedApproach:   recommendedApproach,
	}

	var legacy string
	if err := json.Unmarshal(p.ProfileAnalysis, &legacy); err == nil {
		result.ProfileAnalysis = legacy
		return result
	}

	var profile profilePayload
	if err := json.Unmarshal(p.ProfileAnalysis, &profile); err != nil {
		result.ProfileAnalysis = "客户画像分析中..."
		return result
	}
	result.ProfileAnalysis = stringOr(profile.Content, "客户画像分析中...")
	result.ProfileDetails = &ProfileDetails{
		Time:                stringOr(profile.Time, "工作日上午9-11点"),
		Method:              stringOr(profile.Method, "电话+邮件跟进"),
		Topics:              listOr(profile.Topics, "产品需求", "预算情况", "决策流程"),
		Opportunities:       listOr(profile.Opportunities, "明确需求", "预算充足", "决策权限"),
		Strategies:          listOr(profile.Strategies, "需求挖掘", "价值展示", "关系建立"),
		CompetitionAnalysis: stringOr(profile.CompetitionAnalysis, "需要进一步了解竞争情况"),
	}
	return result
}

func probability(raw json.RawMessage, policy ConfidencePolicy) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return policy.Default
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return policy.Clamp(v)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return policy.Clamp(f)
		}
		if f, ok := policy.Extract(s); ok {
			return f
		}
	}
	slog.Warn("invalid model probability, using default", "raw", string(raw), "default", policy.Default)
	return policy.Default
}

// classify assigns prose paragraphs to analysis fields by keyword.
func classify(raw string, c sales.CustomerSnapshot, interactionCount int, policy ConfidencePolicy) AnalysisResult {
	result := AnalysisResult{
		SuccessProbability:  policy.Default,
		RecommendedApproach: recommendedApproach,
		FullAnalysis:        raw,
		Source:              StageKeywords,
	}

	var sections []string
	for _, s := range blankLine.Split(raw, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sections = append(sections, s)
		}
	}

	for _, section := range sections {
		lower := strings.ToLower(section)
		switch {
		case result.ProfileAnalysis == "" && containsAny(lower, profileKeywords):
			result.ProfileAnalysis = truncateRunes(section, profileRuneLimit)
		case result.NextContactSuggestion == "" && containsAny(lower, contactKeywords):
			result.NextContactSuggestion = truncateRunes(section, sectionRuneLimit)
		case result.SalesOpportunity == "" && containsAny(lower, opportunityKeywords):
			result.SalesOpportunity = truncateRunes(section, sectionRuneLimit)
		case containsAny(lower, probabilityKeywords):
			if v, ok := policy.Extract(section); ok {
				result.SuccessProbability = v
			}
		}
	}

	if result.ProfileAnalysis == "" && len(sections) > 0 {
		result.ProfileAnalysis = truncateRunes(sections[0], profileRuneLimit)
	}
	if result.NextContactSuggestion == "" && len(sections) > 1 {
		result.NextContactSuggestion = truncateRunes(sections[1], sectionRuneLimit)
	}
	if result.SalesOpportunity == "" && len(sections) > 2 {
		result.SalesOpportunity = truncateRunes(sections[2], sectionRuneLimit)
	}

	defaults := DefaultAnalysis(c, interactionCount)
	if result.ProfileAnalysis == "" {
		result.ProfileAnalysis = defaults.ProfileAnalysis
	}
	if result.NextContactSuggestion == "" {
		result.NextContactSuggestion = defaults.NextContactSuggestion
	}
	if result.SalesOpportunity == "" {
		result.SalesOpportunity = defaults.SalesOpportunity
	}
	return result
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func stringOr(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}

func listOr(v []string, fallback ...string) []string {
	if len(v) == 0 {
		return fallback
	}
	return v
}
