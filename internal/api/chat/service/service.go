package chatService

import (
	"VoiceAssistant/internal/api/chat"
	"VoiceAssistant/internal/metrics"
	"VoiceAssistant/pkg/gemini"
	"context"

	"github.com/sirupsen/logrus"
)

type IChatService interface {
	Chat(ctx context.Context, req chat.ChatRequest) (*chat.ChatResponse, error)
}

type chatService struct {
	log     *logrus.Logger
	gemini  gemini.IGemini
	metrics *metrics.Metrics
}

func NewChatService(
	log *logrus.Logger,
	gemini gemini.IGemini,
	metrics *metrics.Metrics,
) IChatService {
	return &chatService{
		log:     log,
		gemini:  gemini,
		metrics: metrics,
	}
}
