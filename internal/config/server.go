package config

import (
	chatHandler "VoiceAssistant/internal/api/chat/handler"
	chatService "VoiceAssistant/internal/api/chat/service"
	"VoiceAssistant/internal/metrics"
	"VoiceAssistant/internal/middleware"
	"VoiceAssistant/pkg/gemini"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	env          *Env
	log          *logrus.Logger
	middleware   middleware.Middleware
	metrics      *metrics.Metrics
	geminiClient gemini.IGemini
	handlers     []handler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.env == nil {
		return nil, fmt.Errorf("environment is required")
	}
	if server.geminiClient == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.metrics == nil {
		server.metrics = metrics.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithEnv(env *Env) ServerOption {
	return func(s *Server) error {
		s.env = env
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) error {
		s.metrics = m
		return nil
	}
}

// WithGeminiClient builds the upstream client the environment asks for. It
// must come after WithEnv and WithLogger.
func WithGeminiClient(ctx context.Context) ServerOption {
	return func(s *Server) error {
		if s.env == nil || s.log == nil {
			return fmt.Errorf("environment and logger must be initialized before the gemini client")
		}

		cfg := gemini.Config{
			APIKey:    s.env.GeminiAPIKey,
			ModelName: s.env.GeminiModelName,
			BaseURL:   s.env.GeminiBaseURL,
		}

		var (
			client gemini.IGemini
			err    error
		)
		switch s.env.GeminiTransport {
		case TransportREST:
			client, err = gemini.NewRESTClient(cfg, s.log)
		default:
			client, err = gemini.NewGeminiClient(ctx, cfg)
		}
		if err != nil {
			s.log.Errorf("Failed to create Gemini client: %v", err)
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}

		if s.env.BreakerEnabled {
			client = gemini.WithBreaker(client, s.log)
		}

		s.geminiClient = client
		return nil
	}
}

// WithGemini injects a ready client instead of building one.
func WithGemini(client gemini.IGemini) ServerOption {
	return func(s *Server) error {
		s.geminiClient = client
		return nil
	}
}

func (s *Server) RegisterHandler() {
	s.engine.Use(s.middleware.NewRecoverMiddleware())
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewCORSMiddleware(s.env.CORSAllowOrigins))
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	chatServices := chatService.NewChatService(s.log, s.geminiClient, s.metrics)
	chatHandlers := chatHandler.New(s.log, s.middleware, chatServices, s.metrics)

	s.setupHealthCheck()
	s.engine.Get("/metrics", s.metrics.Handler())

	s.handlers = append(s.handlers, chatHandlers)

	router := s.engine.Group("/api")
	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) App() *fiber.App {
	return s.engine
}

func (s *Server) Run() error {
	return s.engine.Listen(fmt.Sprintf(":%s", s.env.AppPort))
}

func (s *Server) Shutdown() error {
	err := s.engine.Shutdown()
	if closeErr := s.geminiClient.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
