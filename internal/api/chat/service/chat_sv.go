package chatService

import (
	"VoiceAssistant/internal/api/chat"
	"VoiceAssistant/internal/metrics"
	contextPkg "VoiceAssistant/pkg/context"
	"VoiceAssistant/pkg/gemini"
	"VoiceAssistant/pkg/response"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// Chat forwards the prompt untouched, including an empty one, and returns the
// first candidate's text. A missing or empty text becomes chat.FallbackReply.
// Every other upstream failure collapses into chat.ErrGeminiAPI.
func (s *chatService) Chat(ctx context.Context, req chat.ChatRequest) (*chat.ChatResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	start := time.Now()
	text, err := s.gemini.GenerateText(ctx, req.Prompt)
	s.metrics.ObserveUpstream(time.Since(start))

	if err != nil && !errors.Is(err, gemini.ErrNoCandidate) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Gemini request failed")
		s.metrics.ObserveRequest(metrics.OutcomeUpstreamError)
		return nil, response.Wrap(chat.ErrGeminiAPI, err)
	}

	if text == "" {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Gemini returned no candidate text")
		s.metrics.ObserveRequest(metrics.OutcomeFallback)
		return &chat.ChatResponse{Reply: chat.FallbackReply}, nil
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"reply_chars": len(text),
	}).Debug("Gemini reply received")
	s.metrics.ObserveRequest(metrics.OutcomeOK)

	return &chat.ChatResponse{Reply: text}, nil
}
