// Package normalize turns raw model output into complete structured results.
// It never fails: when nothing can be recovered it returns deterministic
// template content.
package normalize

import (
	"log/slog"
	"strings"

	"github.com/Zenoooe/ai-crm/internal/sales"
)

type stage struct {
	name Stage
	run  Strategy
}

// scriptCascade is tried in order; the first strategy that recovers any
// field wins.
var scriptCascade = []stage{
	{StageStrictJSON, StrictJSON},
	{StageEmbeddedJSON, EmbeddedJSON},
	{StagePartialJSON, PartialJSON},
	{StageSegmented, Segmented},
}

// Script normalizes raw model output for a script type. The result always
// holds exactly the schema's keys; fields the model did not supply come from
// the methodology's fallback template.
func Script(raw string, t sales.ScriptType, m sales.Methodology, c sales.CustomerSnapshot) ScriptResult {
	keys := sales.KeysFor(t)
	fallback := Fallback(m, c, keys)
	result := ScriptResult{Keys: keys, Values: fallback, Source: StageFallback}

	for _, s := range scriptCascade {
		values, ok := s.run(raw, keys)
		if !ok {
			continue
		}
		merged := make(map[string]string, len(keys))
		for _, key := range keys {
			if v := values[key]; strings.TrimSpace(v) != "" {
				merged[key] = v
			} else {
				merged[key] = fallback[key]
			}
		}
		result.Values = merged
		result.Source = s.name
		break
	}

	if result.Source != StageStrictJSON {
		slog.Info("script output recovered", "script_type", string(t), "stage", string(result.Source))
	}
	return result
}
