// Package sales holds the CRM sales vocabulary shared by prompt composition
// and response normalization: script types, methodologies, customer
// snapshots and the per-script-type output schemas.
package sales

import (
	"strings"
	"time"
)

// ScriptType is the funnel stage a generated script targets.
type ScriptType string

const (
	ScriptOpening            ScriptType = "opening"
	ScriptDiscovery          ScriptType = "discovery"
	ScriptNeedsDiscovery     ScriptType = "needs_discovery"
	ScriptPresentation       ScriptType = "presentation"
	ScriptObjection          ScriptType = "objection"
	ScriptObjectionHandling  ScriptType = "objection_handling"
	ScriptClosing            ScriptType = "closing"
	ScriptFollowUp           ScriptType = "follow_up"
	ScriptInitialContact     ScriptType = "initial_contact"
	ScriptPainPointDiscovery ScriptType = "pain_point_discovery"
)

var scriptLabels = map[ScriptType]string{
	ScriptOpening:            "开场白",
	ScriptDiscovery:          "需求挖掘",
	ScriptNeedsDiscovery:     "需求挖掘",
	ScriptPresentation:       "方案展示",
	ScriptObjection:          "异议处理",
	ScriptObjectionHandling:  "异议处理",
	ScriptClosing:            "成交促成",
	ScriptFollowUp:           "跟进话术",
	ScriptInitialContact:     "初次接触",
	ScriptPainPointDiscovery: "痛点挖掘",
}

// Known reports whether t is one of the supported script types.
func (t ScriptType) Known() bool {
	_, ok := scriptLabels[t]
	return ok
}

// Label returns the Chinese display name, or the raw value when unknown.
func (t ScriptType) Label() string {
	if label, ok := scriptLabels[t]; ok {
		return label
	}
	return string(t)
}

// Canonical folds synonymous script types onto one value.
func (t ScriptType) Canonical() ScriptType {
	switch t {
	case ScriptDiscovery:
		return ScriptNeedsDiscovery
	case ScriptObjection:
		return ScriptObjectionHandling
	default:
		return t
	}
}

// ScriptTypes lists every supported script type in a stable order.
func ScriptTypes() []ScriptType {
	return []ScriptType{
		ScriptOpening, ScriptDiscovery, ScriptNeedsDiscovery, ScriptPresentation,
		ScriptObjection, ScriptObjectionHandling, ScriptClosing, ScriptFollowUp,
		ScriptInitialContact, ScriptPainPointDiscovery,
	}
}

// Methodology is a named sales-conversation framework.
type Methodology string

const (
	MethodStraightLine      Methodology = "straightLine"
	MethodStraightLineSnake Methodology = "straight_line"
	MethodSPIN              Methodology = "spin"
	MethodChallenger        Methodology = "challenger"
	MethodConsultative      Methodology = "consultative"
	MethodSolution          Methodology = "solution"
	MethodValue             Methodology = "value"
	MethodSandler           Methodology = "sandler"
	MethodOBPPC             Methodology = "obppc"
)

// DefaultMethodology is used when a request names none.
const DefaultMethodology = MethodStraightLine

var methodologyLabels = map[Methodology]string{
	MethodStraightLine:      "华尔街之狼直线销售法",
	MethodStraightLineSnake: "直线销售法",
	MethodSPIN:              "SPIN销售法",
	MethodChallenger:        "挑战者销售法",
	MethodConsultative:      "顾问式销售法",
	MethodSolution:          "解决方案销售法",
	MethodValue:             "价值销售法",
	MethodSandler:           "桑德拉七步销售法",
	MethodOBPPC:             "OBPPC销售模型",
}

// Known reports whether m is one of the supported methodologies.
func (m Methodology) Known() bool {
	_, ok := methodologyLabels[m]
	return ok
}

// Label returns the Chinese display name, or the raw value when unknown.
func (m Methodology) Label() string {
	if label, ok := methodologyLabels[m]; ok {
		return label
	}
	return string(m)
}

// Methodologies lists every supported methodology in a stable order.
func Methodologies() []Methodology {
	return []Methodology{
		MethodStraightLine, MethodStraightLineSnake, MethodSPIN, MethodChallenger,
		MethodConsultative, MethodSolution, MethodValue, MethodSandler, MethodOBPPC,
	}
}

// CustomerSnapshot is the read-only view of a customer record that the AI
// layer consumes.
type CustomerSnapshot struct {
	ID                int64  `json:"id,omitempty"`
	Name              string `json:"name"`
	Company           string `json:"company"`
	Position          string `json:"position"`
	Industry          string `json:"industry"`
	Priority          string `json:"priority,omitempty"`
	ProjectBackground string `json:"project_background,omitempty"`
}

// Interaction is one logged communication with a customer.
type Interaction struct {
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
	Kind      string    `json:"type,omitempty"`
}

// Or returns v unless it is blank, in which case it returns fallback.
func Or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
