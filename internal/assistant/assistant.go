// Package assistant is the AI service facade the CRM calls: it loads
// customer context, composes prompts, dispatches the generation and
// normalizes the answer.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Zenoooe/ai-crm/internal/metrics"
	"github.com/Zenoooe/ai-crm/internal/models"
	"github.com/Zenoooe/ai-crm/internal/normalize"
	"github.com/Zenoooe/ai-crm/internal/prompt"
	"github.com/Zenoooe/ai-crm/internal/provider"
	"github.com/Zenoooe/ai-crm/internal/sales"
	"github.com/Zenoooe/ai-crm/internal/store"
)

// UnavailableMessage is the only failure text end users see.
const UnavailableMessage = "抱歉，AI服务暂时不可用，请稍后重试。"

const (
	scriptTemperature   = 0.7
	analysisTemperature = 0.3
	chatTemperature     = 0.7
	defaultMaxTokens    = 16000
)

// Dispatcher performs generations against the model catalogue.
type Dispatcher interface {
	Invoke(ctx context.Context, req models.GenerationRequest) models.Result
	Describe(raw string) (provider.Descriptor, error)
	ListUpstreamModels(ctx context.Context, id string) ([]string, error)
}

// Options wires a Service. Metrics may be nil.
type Options struct {
	Dispatcher Dispatcher
	Registry   *provider.Registry
	Styles     prompt.StyleSource
	Customers  store.CustomerStore
	Confidence normalize.ConfidencePolicy
	Metrics    *metrics.Metrics
}

type Service struct {
	dispatcher Dispatcher
	registry   *provider.Registry
	composer   *prompt.Composer
	customers  store.CustomerStore
	policy     normalize.ConfidencePolicy
	metrics    *metrics.Metrics
}

func New(opts Options) (*Service, error) {
	if opts.Dispatcher == nil {
		return nil, errors.New("dispatcher must not be nil")
	}
	if opts.Registry == nil {
		return nil, errors.New("registry must not be nil")
	}
	if opts.Customers == nil {
		return nil, errors.New("customer store must not be nil")
	}

	return &Service{
		dispatcher: opts.Dispatcher,
		registry:   opts.Registry,
		composer:   prompt.NewComposer(opts.Styles),
		customers:  opts.Customers,
		policy:     opts.Confidence,
		metrics:    opts.Metrics,
	}, nil
}

// Generation describes the call that produced an output.
type Generation struct {
	RequestID string
	// Model is the canonical id the request resolved to.
	Model string
	Usage *models.Usage
}

type ScriptOutput struct {
	Generation
	ScriptType  sales.ScriptType
	Methodology sales.Methodology
	Script      normalize.ScriptResult
}

type AnalysisOutput struct {
	Generation
	Customer sales.CustomerSnapshot
	Analysis normalize.AnalysisResult
}

type TextOutput struct {
	Generation
	Content string
}

// ModelInfo is one catalogue entry.
type ModelInfo struct {
	ID          string
	Description string
	Model       string
	Family      provider.Family
	Available   bool
}

// Customer loads a customer snapshot from the store.
func (s *Service) Customer(ctx context.Context, id int64) (sales.CustomerSnapshot, error) {
	return s.customers.Customer(ctx, id)
}

// GenerateScript produces a complete structured sales script. Unparseable
// model output is recovered by the normalizer; only a failed generation is
// an error, and that error is a models.Failure.
func (s *Service) GenerateScript(ctx context.Context, req prompt.ScriptRequest) (ScriptOutput, error) {
	if req.Methodology == "" {
		req.Methodology = sales.DefaultMethodology
	}

	d, err := s.dispatcher.Describe(req.Model)
	if err != nil {
		return ScriptOutput{}, models.NewFailure(models.FailureConfiguration, err.Error())
	}

	gen, content, err := s.generate(ctx, d.ID, s.composer.ComposeScript(req, d.ID), scriptTemperature)
	out := ScriptOutput{Generation: gen, ScriptType: req.ScriptType, Methodology: req.Methodology}
	if err != nil {
		return out, err
	}

	out.Script = normalize.Script(content, req.ScriptType, req.Methodology, req.Customer)
	s.metrics.ObserveNormalization("script", string(out.Script.Source))
	return out, nil
}

// AnalyzeCustomer analyzes a stored customer and their recent interactions.
func (s *Service) AnalyzeCustomer(ctx context.Context, customerID int64, model string) (AnalysisOutput, error) {
	customer, err := s.customers.Customer(ctx, customerID)
	if err != nil {
		return AnalysisOutput{}, err
	}
	interactions, err := s.customers.RecentInteractions(ctx, customerID, prompt.RecentInteractionLimit)
	if err != nil {
		return AnalysisOutput{}, fmt.Errorf("load interactions: %w", err)
	}

	gen, content, err := s.generate(ctx, model, s.composer.ComposeAnalysis(customer, interactions), analysisTemperature)
	out := AnalysisOutput{Generation: gen, Customer: customer}
	if err != nil {
		return out, err
	}

	out.Analysis = normalize.Analysis(content, customer, len(interactions), s.policy)
	s.metrics.ObserveNormalization("analysis", string(out.Analysis.Source))
	return out, nil
}

// AnalyzeConversation analyzes a conversation transcript. customer may be
// nil. The model's prose is returned as is.
func (s *Service) AnalyzeConversation(ctx context.Context, content string, customer *sales.CustomerSnapshot, model string) (TextOutput, error) {
	if strings.TrimSpace(content) == "" {
		return TextOutput{}, errors.New("conversation content must not be empty")
	}
	gen, text, err := s.generate(ctx, model, s.composer.ComposeConversation(content, customer), analysisTemperature)
	return TextOutput{Generation: gen, Content: text}, err
}

// Chat sends a free-form message. An empty model selects the default.
func (s *Service) Chat(ctx context.Context, message, chatContext, model string) (TextOutput, error) {
	if strings.TrimSpace(message) == "" {
		return TextOutput{}, errors.New("message must not be empty")
	}
	gen, text, err := s.generate(ctx, model, s.composer.ComposeChat(message, chatContext), chatTemperature)
	return TextOutput{Generation: gen, Content: text}, err
}

// Models lists the catalogue in registration order.
func (s *Service) Models() []ModelInfo {
	descriptors := s.registry.Models()
	out := make([]ModelInfo, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, ModelInfo{
			ID:          d.ID,
			Description: d.Description,
			Model:       d.Model,
			Family:      d.Family,
			Available:   d.Configured(),
		})
	}
	return out
}

// UpstreamModels lists what the provider behind a model serves.
func (s *Service) UpstreamModels(ctx context.Context, model string) ([]string, error) {
	return s.dispatcher.ListUpstreamModels(ctx, model)
}

func (s *Service) generate(ctx context.Context, model string, messages []models.Message, temperature float64) (Generation, string, error) {
	gen := Generation{RequestID: uuid.NewString(), Model: model}

	result := s.dispatcher.Invoke(ctx, models.GenerationRequest{
		ID:          gen.RequestID,
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   defaultMaxTokens,
	})

	switch r := result.(type) {
	case models.Success:
		if d, err := s.dispatcher.Describe(model); err == nil {
			gen.Model = d.ID
		}
		gen.Usage = r.Usage
		return gen, r.Content, nil
	case models.Failure:
		return gen, "", r
	default:
		return gen, "", models.NewFailure(models.FailureMalformedResponse, fmt.Sprintf("unexpected result %T", result))
	}
}

// UserMessage maps an error from this package onto end-user text. Details
// of generation failures are logged by the router and never shown.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrCustomerNotFound):
		return "客户不存在"
	case IsGenerationFailure(err):
		return UnavailableMessage
	default:
		return err.Error()
	}
}

// IsGenerationFailure reports whether err came from a failed model call.
func IsGenerationFailure(err error) bool {
	var f models.Failure
	return errors.As(err, &f)
}
