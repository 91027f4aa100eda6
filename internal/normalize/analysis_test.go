package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisStructuredProfile(t *testing.T) {
	raw := "分析如下：\n```json\n" + `{
  "profile_analysis": {
    "content": "决策谨慎，重视数据",
    "time": "周二上午",
    "topics": ["成本", "交付"]
  },
  "next_contact_suggestion": "下周电话回访",
  "sales_opportunity": "二期扩容",
  "success_probability": 0.92
}` + "\n```"

	result := Analysis(raw, testCustomer, 3, DefaultConfidencePolicy())

	assert.Equal(t, StageEmbeddedJSON, result.Source)
	assert.Equal(t, "决策谨慎，重视数据", result.ProfileAnalysis)
	require.NotNil(t, result.ProfileDetails)
	assert.Equal(t, "周二上午", result.ProfileDetails.Time)
	assert.Equal(t, "电话+邮件跟进", result.ProfileDetails.Method)
	assert.Equal(t, []string{"成本", "交付"}, result.ProfileDetails.Topics)
	assert.Equal(t, []string{"需求挖掘", "价值展示", "关系建立"}, result.ProfileDetails.Strategies)
	assert.Equal(t, "下周电话回访", result.NextContactSuggestion)
	assert.Equal(t, 0.75, result.SuccessProbability)
	assert.Equal(t, raw, result.FullAnalysis)
}

func TestAnalysisLegacyStringProfile(t *testing.T) {
	raw := `{"profile_analysis":"老客户","success_probability":"0.4"}`

	result := Analysis(raw, testCustomer, 0, DefaultConfidencePolicy())

	assert.Equal(t, "老客户", result.ProfileAnalysis)
	assert.Nil(t, result.ProfileDetails)
	assert.Equal(t, 0.4, result.SuccessProbability)
	assert.NotEmpty(t, result.NextContactSuggestion)
	assert.NotEmpty(t, result.SalesOpportunity)
}

func TestAnalysisInvalidProbabilityUsesDefault(t *testing.T) {
	raw := `{"profile_analysis":"x","success_probability":"很高"}`

	result := Analysis(raw, testCustomer, 0, DefaultConfidencePolicy())

	assert.Equal(t, 0.45, result.SuccessProbability)
}

func TestAnalysisClassifiesProse(t *testing.T) {
	raw := "客户画像：技术出身，注重细节。\n\n建议下周三电话跟进。\n\n存在年度框架采购的销售机会。\n\n综合判断成交概率约70%。"

	result := Analysis(raw, testCustomer, 2, DefaultConfidencePolicy())

	assert.Equal(t, StageKeywords, result.Source)
	assert.Equal(t, "客户画像：技术出身，注重细节。", result.ProfileAnalysis)
	assert.Equal(t, "建议下周三电话跟进。", result.NextContactSuggestion)
	assert.Equal(t, "存在年度框架采购的销售机会。", result.SalesOpportunity)
	assert.InDelta(t, 0.7, result.SuccessProbability, 1e-9)
}

func TestAnalysisEmptyInputUsesDefaults(t *testing.T) {
	result := Analysis("   ", testCustomer, 4, DefaultConfidencePolicy())

	assert.Equal(t, StageFallback, result.Source)
	assert.Contains(t, result.ProfileAnalysis, "王总")
	assert.Contains(t, result.ProfileAnalysis, "4次")
	assert.Equal(t, 0.65, result.SuccessProbability)
}
