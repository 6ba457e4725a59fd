package chat

import (
	"VoiceAssistant/pkg/response"
	"net/http"
)

var (
	ErrGeminiAPI          = response.NewError(http.StatusInternalServerError, "Gemini API error")
	ErrInvalidRequestBody = response.NewError(http.StatusBadRequest, "invalid request body")
)
