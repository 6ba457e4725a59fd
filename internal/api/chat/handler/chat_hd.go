package chatHandler

import (
	"VoiceAssistant/internal/api/chat"
	"VoiceAssistant/internal/metrics"
	contextPkg "VoiceAssistant/pkg/context"
	"VoiceAssistant/pkg/handlerUtil"
	"VoiceAssistant/pkg/log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

func (h *ChatHandler) Chat(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing chat request")

	// Bodies that are not declared JSON are ignored and the prompt stays empty.
	var req chat.ChatRequest
	if len(ctx.Body()) > 0 && isJSON(ctx) {
		var raw chat.RawChatRequest
		if err := ctx.BodyParser(&raw); err != nil {
			h.metrics.ObserveRequest(metrics.OutcomeBadRequest)
			return errHandler.Handle(ctx, requestID, chat.ErrInvalidRequestBody, ctx.Path(), "parse_request_body")
		}

		decoded, ok := raw.Decode()
		if !ok {
			// Upstream rejects a prompt that is not text, which ends as the fallback reply.
			h.log.WithFields(log.Fields{
				"request_id": requestID,
			}).Warn("Prompt is not a string")
			h.metrics.ObserveRequest(metrics.OutcomeFallback)
			return errHandler.HandleSuccess(ctx, fiber.StatusOK, chat.ChatResponse{Reply: chat.FallbackReply})
		}
		req = decoded
	}

	res, err := h.chatService.Chat(contextPkg.FromFiberCtx(ctx), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "chat")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
}

func isJSON(ctx *fiber.Ctx) bool {
	ctype := utils.ToLower(ctx.Get(fiber.HeaderContentType))
	return strings.HasPrefix(ctype, fiber.MIMEApplicationJSON)
}
