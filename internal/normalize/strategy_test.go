package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var genericKeys = []string{"opening", "pain_point", "solution", "social_proof", "next_step"}

func TestStrictJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
		want map[string]string
	}{
		{
			name: "matching keys",
			raw:  `{"opening":"a","solution":"b","extra":"x"}`,
			ok:   true,
			want: map[string]string{"opening": "a", "solution": "b"},
		},
		{
			name: "positional when nothing matches",
			raw:  `{"first":"a","second":"b"}`,
			ok:   true,
			want: map[string]string{"opening": "a", "pain_point": "b"},
		},
		{
			name: "array values become lines",
			raw:  `{"opening":["一","二"]}`,
			ok:   true,
			want: map[string]string{"opening": "一\n二"},
		},
		{name: "trailing text", raw: `{"opening":"a"} 谢谢`},
		{name: "not an object", raw: `"opening"`},
		{name: "empty object", raw: `{}`},
		{name: "only blank values", raw: `{"opening":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StrictJSON(tt.raw, genericKeys)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEmbeddedJSONRepairsSmartQuotesAndCommas(t *testing.T) {
	raw := "结果如下 {“opening”: “你好”, “next_step”: “再联系”,} 以上"

	got, ok := EmbeddedJSON(raw, genericKeys)

	assert.True(t, ok)
	assert.Equal(t, "你好", got["opening"])
	assert.Equal(t, "再联系", got["next_step"])
}

func TestEmbeddedJSONPrefersFencedBlock(t *testing.T) {
	raw := "说明 {不是json}\n```json\n{\"opening\":\"围栏内\"}\n```"

	got, ok := EmbeddedJSON(raw, genericKeys)

	assert.True(t, ok)
	assert.Equal(t, "围栏内", got["opening"])
}

func TestEmbeddedJSONWithoutObject(t *testing.T) {
	_, ok := EmbeddedJSON("完全没有花括号", genericKeys)

	assert.False(t, ok)
}

func TestPartialJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
		want map[string]string
	}{
		{
			name: "cut off inside a value",
			raw:  `{"opening":"你好","pain_point":"成本`,
			ok:   true,
			want: map[string]string{"opening": "你好", "pain_point": "成本"},
		},
		{
			name: "escapes are decoded",
			raw:  `{"opening":"第一行\n第二行 \"引用\"", "next_step":`,
			ok:   true,
			want: map[string]string{"opening": "第一行\n第二行 \"引用\""},
		},
		{
			name: "raw newline inside a value",
			raw:  "{\"solution\": \"一\n二\"",
			ok:   true,
			want: map[string]string{"solution": "一\n二"},
		},
		{
			name: "truncated array",
			raw:  `{"social_proof": ["案例一", "案例二`,
			ok:   true,
			want: map[string]string{"social_proof": "案例一\n案例二"},
		},
		{
			name: "smart quotes",
			raw:  "{“opening”: “您好",
			ok:   true,
			want: map[string]string{"opening": "您好"},
		},
		{name: "unknown keys only", raw: `{"intro":"你好"`},
		{name: "blank values", raw: `{"opening":"", "solution": "  "`},
		{name: "prose", raw: "没有任何键"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PartialJSON(tt.raw, genericKeys)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSegmentedRejectsJSONShapedText(t *testing.T) {
	for _, raw := range []string{
		"{\"opening\": \"\",\n\"note\": \"说明\"}",
		"```json\n{\n\"opening\": \"你好\n```",
		"[\"一\",\n\"二\"]",
	} {
		_, ok := Segmented(raw, genericKeys)

		assert.False(t, ok, raw)
	}
}

func TestSegmentedDropsFenceLines(t *testing.T) {
	got, ok := Segmented("```markdown\n第一行\n第二行\n```", genericKeys)

	assert.True(t, ok)
	assert.Equal(t, map[string]string{"opening": "第一行", "pain_point": "第二行"}, got)

	got, ok = Segmented("说明如下：\n```text\n第一行\n第二行\n```", genericKeys)

	assert.True(t, ok)
	assert.Equal(t, map[string]string{"opening": "第一行", "pain_point": "第二行"}, got)
}

func TestSegmentedSplitterPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "blank lines first",
			raw:  "第一段\n仍是第一段\n\n第二段",
			want: map[string]string{"opening": "第一段\n仍是第一段", "pain_point": "第二段"},
		},
		{
			name: "then lines",
			raw:  "第一行\n第二行",
			want: map[string]string{"opening": "第一行", "pain_point": "第二行"},
		},
		{
			name: "then sentences",
			raw:  "第一句。第二句！第三句？",
			want: map[string]string{"opening": "第一句。", "pain_point": "第二句！", "solution": "第三句？"},
		},
		{
			name: "extra segments join the last key",
			raw:  "一一\n\n二二\n\n三三\n\n四四\n\n五五\n\n六六",
			want: map[string]string{
				"opening": "一一", "pain_point": "二二", "solution": "三三",
				"social_proof": "四四", "next_step": "五五\n\n六六",
			},
		},
		{
			name: "markdown rules are ignored",
			raw:  "第一段\n\n---\n\n第二段",
			want: map[string]string{"opening": "第一段", "pain_point": "第二段"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Segmented(tt.raw, genericKeys)

			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegmentedLongProseBecomesPrimaryField(t *testing.T) {
	raw := strings.Repeat("整段没有任何分隔的长文本", 6)

	got, ok := Segmented(raw, genericKeys)

	assert.True(t, ok)
	assert.Equal(t, map[string]string{"solution": raw}, got)
}

func TestSegmentedShortProseFails(t *testing.T) {
	_, ok := Segmented("太短", genericKeys)

	assert.False(t, ok)
}
