package normalize

import (
	"bytes"
	"encoding/json"
)

// Stage names the recovery strategy that produced a result.
type Stage string

const (
	StageStrictJSON   Stage = "strict_json"
	StageEmbeddedJSON Stage = "embedded_json"
	StagePartialJSON  Stage = "partial_json"
	StageSegmented    Stage = "segmented"
	StageKeywords     Stage = "keywords"
	StageFallback     Stage = "fallback"
)

// ScriptResult maps every field of a script type's schema to text. Keys
// keeps the schema's declared order.
type ScriptResult struct {
	Keys   []string
	Values map[string]string
	Source Stage
}

// Get returns the text of one field.
func (r ScriptResult) Get(key string) string {
	return r.Values[key]
}

// MarshalJSON encodes the fields as one object in declared order.
func (r ScriptResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
