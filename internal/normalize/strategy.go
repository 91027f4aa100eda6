package normalize

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Zenoooe/ai-crm/internal/sales"
)

// Strategy recovers field values for the given schema keys from raw model
// output. It reports false when it cannot produce at least one non-empty
// field. Strategies are pure.
type Strategy func(raw string, keys []string) (map[string]string, bool)

// MinPrimaryRunes is the minimum length of unsplittable prose that is still
// kept as the schema's primary field.
const MinPrimaryRunes = 50

var (
	fencedObject   = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")
	trailingCommas = regexp.MustCompile(`,\s*([}\]])`)
	blankLine      = regexp.MustCompile(`\n[ \t\r]*\n`)
	smartQuotes    = strings.NewReplacer("“", `"`, "”", `"`)
	jsonShaped     = regexp.MustCompile(`^(?:\{|\[\s*["{\[\]])`)
	fenceLine      = regexp.MustCompile("^```[A-Za-z0-9_+-]*$")
	// partialString matches a JSON string that may be missing its closing
	// quote.
	partialString = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"?`)
	rawControl    = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)
)

// StrictJSON parses the whole text, minus a Markdown code fence, as one JSON
// object.
func StrictJSON(raw string, keys []string) (map[string]string, bool) {
	order, values, ok := decodeObject(stripFence(raw))
	if !ok {
		return nil, false
	}
	return assign(order, values, keys)
}

// EmbeddedJSON searches the text for JSON objects, from the most to the
// least specific pattern, and parses each candidate as is and then repaired.
func EmbeddedJSON(raw string, keys []string) (map[string]string, bool) {
	for _, candidate := range embeddedCandidates(raw, keys) {
		for _, variant := range []string{candidate, repair(candidate)} {
			order, values, ok := decodeObject(variant)
			if !ok {
				continue
			}
			if out, ok := assign(order, values, keys); ok {
				return out, true
			}
		}
	}
	return nil, false
}

// PartialJSON pulls each key's string or string-array value out of JSON that
// does not parse as a whole, such as a reply cut off at the token limit. A
// value missing its closing quote is kept as far as it goes.
func PartialJSON(raw string, keys []string) (map[string]string, bool) {
	text := smartQuotes.Replace(raw)
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v := keyedValue(text, key); strings.TrimSpace(v) != "" {
			out[key] = v
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func keyedValue(text, key string) string {
	re, err := regexp.Compile(regexp.QuoteMeta(`"`+key+`"`) + `\s*:\s*`)
	if err != nil {
		return ""
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]

	switch {
	case strings.HasPrefix(rest, `"`):
		m := partialString.FindStringSubmatch(rest)
		return unescape(m[1])
	case strings.HasPrefix(rest, "["):
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			end = len(rest)
		}
		var lines []string
		for _, m := range partialString.FindAllStringSubmatch(rest[1:end], -1) {
			if line := strings.TrimSpace(unescape(m[1])); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

// unescape decodes JSON string escapes, leaving the text as is when a
// truncated escape makes it undecodable.
func unescape(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+rawControl.Replace(s)+`"`), &out); err == nil {
		return out
	}
	return s
}

// Segmented splits prose into sections by blank line, then by line, then by
// sentence, using the first splitter that yields at least two meaningful
// segments, and assigns them to the keys in order. Segments beyond the last
// key are appended to it. Prose that cannot be split becomes the primary
// field when it is long enough. JSON-shaped text is never segmented.
func Segmented(raw string, keys []string) (map[string]string, bool) {
	text := stripFence(raw)
	if text == "" || len(keys) == 0 {
		return nil, false
	}
	if jsonShaped.MatchString(text) {
		return nil, false
	}

	splitters := []func(string) []string{
		func(s string) []string { return blankLine.Split(s, -1) },
		func(s string) []string { return strings.Split(s, "\n") },
		splitSentences,
	}
	for _, split := range splitters {
		segments := meaningful(split(text))
		if len(segments) < 2 {
			continue
		}
		out := make(map[string]string, len(keys))
		last := len(keys) - 1
		for i, seg := range segments {
			if i < last {
				out[keys[i]] = seg
				continue
			}
			if out[keys[last]] == "" {
				out[keys[last]] = seg
			} else {
				out[keys[last]] += "\n\n" + seg
			}
		}
		return out, true
	}

	if utf8.RuneCountInString(text) >= MinPrimaryRunes {
		return map[string]string{sales.PrimaryKey(keys): text}, true
	}
	return nil, false
}

func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// decodeObject decodes a single JSON object that spans the whole text,
// preserving key order.
func decodeObject(text string) ([]string, map[string]string, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, nil, false
	}

	var order []string
	values := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, false
		}
		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		values[key] = flatten(raw)
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, false
	}
	return order, values, true
}

// flatten renders a JSON value as field text: strings verbatim, arrays one
// element per line, anything else as compact JSON.
func flatten(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		lines := make([]string, 0, len(list))
		for _, item := range list {
			if line := strings.TrimSpace(flatten(item)); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// assign maps decoded values onto schema keys by name, or by position when
// no key matches.
func assign(order []string, values map[string]string, keys []string) (map[string]string, bool) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := values[key]; ok {
			out[key] = v
		}
	}
	if len(out) == 0 {
		for i, key := range order {
			if i >= len(keys) {
				break
			}
			out[keys[i]] = values[key]
		}
	}
	for _, v := range out {
		if strings.TrimSpace(v) != "" {
			return out, true
		}
	}
	return nil, false
}

func embeddedCandidates(raw string, keys []string) []string {
	var candidates []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			candidates = append(candidates, s)
		}
	}

	for _, m := range fencedObject.FindAllStringSubmatch(raw, -1) {
		add(m[1])
	}

	if len(keys) > 0 {
		first := regexp.QuoteMeta(`"` + keys[0] + `"`)
		last := regexp.QuoteMeta(`"` + keys[len(keys)-1] + `"`)
		patterns := []string{
			`\{[^{}]*` + first + `[^{}]*` + last + `[^{}]*\}`,
			`(?s)\{.*?` + first + `.*?` + last + `.*?\}`,
		}
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				continue
			}
			add(re.FindString(raw))
		}
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start >= 0 && end > start {
		add(raw[start : end+1])
	}
	return candidates
}

func repair(s string) string {
	s = smartQuotes.Replace(s)
	return trailingCommas.ReplaceAllString(s, "$1")
}

func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		cur.WriteRune(r)
		end := false
		switch r {
		case '。', '！', '？', '!', '?':
			end = true
		case '.':
			end = i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\n')
		}
		if end {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// meaningful trims segments, drops trivial ones and a leading lead-in line
// that only announces what follows.
func meaningful(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if trivial(seg) {
			continue
		}
		out = append(out, seg)
	}
	if len(out) > 1 && (strings.HasSuffix(out[0], ":") || strings.HasSuffix(out[0], "：")) {
		out = out[1:]
	}
	return out
}

func trivial(seg string) bool {
	if utf8.RuneCountInString(seg) < 2 {
		return true
	}
	return strings.Trim(seg, "#*-_=`>|~ \t") == "" || fenceLine.MatchString(seg)
}
