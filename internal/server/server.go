package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Zenoooe/ai-crm/internal/assistant"
	"github.com/Zenoooe/ai-crm/internal/config"
	"github.com/Zenoooe/ai-crm/internal/metrics"
	"github.com/Zenoooe/ai-crm/internal/models"
	"github.com/Zenoooe/ai-crm/internal/prompt"
	"github.com/Zenoooe/ai-crm/internal/sales"
	"github.com/Zenoooe/ai-crm/internal/store"
	"github.com/Zenoooe/ai-crm/internal/translator"
)

const (
	maxBodyBytes        = 1 << 20 // 1 MiB
	shutdownGracePeriod = 10 * time.Second
	idleTimeout         = 120 * time.Second
)

// AIService is the part of the assistant the HTTP layer calls.
type AIService interface {
	Customer(ctx context.Context, id int64) (sales.CustomerSnapshot, error)
	GenerateScript(ctx context.Context, req prompt.ScriptRequest) (assistant.ScriptOutput, error)
	AnalyzeCustomer(ctx context.Context, customerID int64, model string) (assistant.AnalysisOutput, error)
	AnalyzeConversation(ctx context.Context, content string, customer *sales.CustomerSnapshot, model string) (assistant.TextOutput, error)
	Chat(ctx context.Context, message, chatContext, model string) (assistant.TextOutput, error)
	Models() []assistant.ModelInfo
	UpstreamModels(ctx context.Context, model string) ([]string, error)
}

type Server struct {
	cfg     config.Config
	ai      AIService
	metrics *metrics.Metrics
	app     *echo.Echo
	address string
}

// New constructs an HTTP server wired with routing and middleware. m may be
// nil, in which case /metrics is not served.
func New(cfg config.Config, ai AIService, m *metrics.Metrics) (*Server, error) {
	if ai == nil {
		return nil, errors.New("ai service must not be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"http_request_id", v.RequestID,
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'; form-action 'none'",
	}))

	srv := &Server{
		cfg:     cfg,
		ai:      ai,
		metrics: m,
		app:     e,
		address: fmt.Sprintf(":%d", cfg.Server.Port),
	}

	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	printStartupBanner(s.cfg.Server.Port)
	slog.Info("starting server", "addr", s.address)

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.app,
		ReadTimeout:  s.cfg.Server.ReadTimeout(),
		WriteTimeout: s.cfg.Server.WriteTimeout(),
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.app.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	api := s.app.Group("/api/ai")
	api.GET("/models", s.handleModels)
	api.GET("/models/:id/upstream", s.handleUpstreamModels)
	api.GET("/script-options", s.handleScriptOptions)
	api.POST("/scripts", s.handleScript)
	api.POST("/analysis", s.handleAnalysis)
	api.POST("/conversation-analysis", s.handleConversation)
	api.POST("/chat", s.handleChat)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModels(c echo.Context) error {
	return c.JSON(http.StatusOK, translator.FromModels(s.ai.Models()))
}

func (s *Server) handleUpstreamModels(c echo.Context) error {
	id := c.Param("id")
	names, err := s.ai.UpstreamModels(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, translator.UpstreamModelsResponse{Model: id, Models: names})
}

func (s *Server) handleScriptOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, translator.ScriptOptions())
}

func (s *Server) handleScript(c echo.Context) error {
	var req translator.ScriptRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var customer sales.CustomerSnapshot
	if req.CustomerID > 0 {
		loaded, err := s.ai.Customer(ctx, req.CustomerID)
		if err != nil {
			return toHTTPError(err)
		}
		customer = loaded
	} else {
		customer = *req.Customer
	}

	out, err := s.ai.GenerateScript(ctx, req.ToPrompt(customer))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, translator.FromScript(out))
}

func (s *Server) handleAnalysis(c echo.Context) error {
	var req translator.AnalysisRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	out, err := s.ai.AnalyzeCustomer(c.Request().Context(), req.CustomerID, req.Model)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, translator.FromAnalysis(out))
}

func (s *Server) handleConversation(c echo.Context) error {
	var req translator.ConversationRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	customer := req.Customer
	if req.CustomerID > 0 {
		loaded, err := s.ai.Customer(ctx, req.CustomerID)
		if err != nil {
			return toHTTPError(err)
		}
		customer = &loaded
	}

	out, err := s.ai.AnalyzeConversation(ctx, req.Content, customer, req.Model)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, translator.FromText(out))
}

func (s *Server) handleChat(c echo.Context) error {
	var req translator.ChatRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	out, err := s.ai.Chat(c.Request().Context(), req.Message, req.Context, req.Model)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, translator.FromText(out))
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{
				Status:  http.StatusBadRequest,
				Message: "request body is required",
				Type:    "invalid_request_error",
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
			Type:    "invalid_request_error",
		}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "request body must contain a single JSON object",
			Type:    "invalid_request_error",
		}
	}
	return nil
}

type requestError struct {
	Status  int
	Message string
	Type    string
	Code    string
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
}

func writeError(c echo.Context, status int, message, errType, code string) error {
	var payload errorBody
	payload.Error.Message = message
	payload.Error.Type = errType
	payload.Error.Code = code
	return c.JSON(status, payload)
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr.Status, reqErr.Message, reqErr.Type, reqErr.Code)
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = writeError(c, he.Code, fmt.Sprint(he.Message), "invalid_request_error", "")
		return
	}

	_ = writeError(c, http.StatusInternalServerError, "internal server error", "server_error", "")
}

// toHTTPError maps service errors onto responses. Generation failures carry
// only the localized text; their details are already logged.
func toHTTPError(err error) error {
	var reqErr requestError
	if errors.As(err, &reqErr) {
		return reqErr
	}

	switch {
	case errors.Is(err, store.ErrCustomerNotFound):
		return requestError{
			Status:  http.StatusNotFound,
			Message: assistant.UserMessage(err),
			Type:    "not_found",
		}
	case errors.Is(err, models.ErrConfiguration):
		return requestError{
			Status:  http.StatusServiceUnavailable,
			Message: assistant.UnavailableMessage,
			Type:    "service_unavailable",
			Code:    "model_not_configured",
		}
	case errors.Is(err, models.ErrTransport), errors.Is(err, models.ErrMalformedResponse):
		return requestError{
			Status:  http.StatusBadGateway,
			Message: assistant.UnavailableMessage,
			Type:    "upstream_error",
		}
	}

	slog.Error("unhandled service error", "error", err)
	return requestError{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		Type:    "server_error",
	}
}

func printStartupBanner(port int) {
	host := "127.0.0.1"
	fmt.Println()
	fmt.Println("ai-crm ready")
	fmt.Printf("Listening on http://%s:%d\n", host, port)
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /metrics")
	fmt.Println("  GET  /api/ai/models")
	fmt.Println("  GET  /api/ai/models/:id/upstream")
	fmt.Println("  GET  /api/ai/script-options")
	fmt.Println("  POST /api/ai/scripts")
	fmt.Println("  POST /api/ai/analysis")
	fmt.Println("  POST /api/ai/conversation-analysis")
	fmt.Println("  POST /api/ai/chat")
	fmt.Printf("Example:\n  curl http://%s:%d/api/ai/chat -H 'Content-Type: application/json' -d '{\"model\":\"deepseek:deepseek-chat\",\"message\":\"你好\"}'\n\n", host, port)
}
