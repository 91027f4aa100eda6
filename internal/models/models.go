package models

import (
	"errors"
	"strings"
)

// Role identifies the author of a message in the unified schema.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single conversational message in the unified schema.
// Order is significant: a system message, when present, precedes all others.
type Message struct {
	Role    Role
	Content string
}

// GenerationRequest is the canonical representation of one outbound model call.
type GenerationRequest struct {
	ID          string
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Usage records token accounting information.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Sentinels that every Failure unwraps to, one per FailureKind.
var (
	ErrConfiguration     = errors.New("model configuration error")
	ErrTransport         = errors.New("provider transport error")
	ErrMalformedResponse = errors.New("malformed provider response")
)

// FailureKind classifies why a generation did not produce content.
type FailureKind int

const (
	FailureConfiguration FailureKind = iota + 1
	FailureTransport
	FailureMalformedResponse
)

func (k FailureKind) String() string {
	switch k {
	case FailureConfiguration:
		return "configuration"
	case FailureTransport:
		return "transport"
	case FailureMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureConfiguration:
		return ErrConfiguration
	case FailureMalformedResponse:
		return ErrMalformedResponse
	default:
		return ErrTransport
	}
}

// Result is the outcome of a generation. The only implementations are
// Success and Failure, so a type switch over the two is exhaustive.
type Result interface {
	isResult()
}

// Success carries non-empty generated content.
type Success struct {
	Content string
	Usage   *Usage
	Model   string
}

func (Success) isResult() {}

// Failure carries a non-empty, log-oriented error description.
type Failure struct {
	Kind    FailureKind
	Message string
	// Status is the upstream HTTP status when one was received.
	Status int
}

func (Failure) isResult() {}

func (f Failure) Error() string {
	return f.Kind.String() + ": " + f.Message
}

func (f Failure) Unwrap() error {
	return f.Kind.sentinel()
}

// NewFailure builds a Failure, substituting a generic message for an empty one.
func NewFailure(kind FailureKind, message string) Failure {
	message = strings.TrimSpace(message)
	if message == "" {
		message = kind.sentinel().Error()
	}
	return Failure{Kind: kind, Message: message}
}
