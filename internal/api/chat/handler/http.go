package chatHandler

import (
	chatService "VoiceAssistant/internal/api/chat/service"
	"VoiceAssistant/internal/metrics"
	"VoiceAssistant/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	log         *logrus.Logger
	middleware  middleware.Middleware
	chatService chatService.IChatService
	metrics     *metrics.Metrics
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	cs chatService.IChatService,
	metrics *metrics.Metrics,
) *ChatHandler {
	return &ChatHandler{
		log:         log,
		middleware:  middleware,
		chatService: cs,
		metrics:     metrics,
	}
}

func (h *ChatHandler) Start(srv fiber.Router) {
	srv.Post("/chat", h.Chat)
}
