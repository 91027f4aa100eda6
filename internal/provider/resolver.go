package provider

import (
	"log/slog"
	"strings"
)

const aliasSeparator = ":"

// Resolver maps caller-supplied model names onto canonical ids.
type Resolver struct {
	aliases map[string]string
}

// NewResolver copies the alias table, lower-casing its keys.
func NewResolver(aliases map[string]string) *Resolver {
	table := make(map[string]string, len(aliases))
	for alias, target := range aliases {
		table[strings.ToLower(strings.TrimSpace(alias))] = strings.TrimSpace(target)
	}
	return &Resolver{aliases: table}
}

// Resolve returns the canonical id for raw. Names without a separator are
// already canonical. A "provider:model" name not in the table is returned
// unchanged so callers try it literally.
func (r *Resolver) Resolve(raw string) string {
	if !strings.Contains(raw, aliasSeparator) {
		return raw
	}

	if target, ok := r.aliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		slog.Info("resolved model alias", "alias", raw, "model", target)
		return target
	}

	slog.Warn("model alias not mapped, using it literally", "alias", raw)
	return raw
}
