package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"roomie/internal/middleware"
	"roomie/internal/model"
	"roomie/internal/service"
)

const (
	chatFailure  = "Failed to generate response"
	parseFailure = "Failed to process message. Please try again or use the manual form."
	msgRequired  = "Message is required"
)

// AIHandler serves the simulated assistant endpoints
type AIHandler struct {
	selector  *service.ResponseSelector
	extractor *service.ListingExtractor
	logger    *slog.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(selector *service.ResponseSelector, extractor *service.ListingExtractor, logger *slog.Logger) *AIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIHandler{
		selector:  selector,
		extractor: extractor,
		logger:    logger,
	}
}

// Chat handles POST /api/ai/chat
func (h *AIHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.chatFailed(c, chatFailure, h.selector.Apology(), err)
		return
	}

	reply, err := h.selector.Reply(c.Request.Context(), req.Message, req.Context)
	if err != nil {
		h.chatFailed(c, processingMessage(err, chatFailure), fallbackReply(err, h.selector.Apology()), err)
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{
		Success:   true,
		Response:  reply.Text,
		Timestamp: model.FormatTimestamp(reply.Timestamp),
	})
}

// ChatStream handles POST /api/ai/chat/stream - SSE typing indicator then reply
func (h *AIHandler) ChatStream(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.chatFailed(c, chatFailure, h.selector.Apology(), err)
		return
	}

	setSSEHeaders(c)
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	sendSSE(c, "start", map[string]any{"message": req.Message})
	flusher.Flush()
	sendSSE(c, "typing", map[string]any{"typing": true})
	flusher.Flush()

	reply, err := h.selector.Reply(c.Request.Context(), req.Message, req.Context)
	if err != nil {
		h.logger.Warn("chat_stream_failed", "request_id", middleware.GetRequestID(c), "error", err)
		sendSSE(c, "error", model.ChatErrorResponse{
			Success:  false,
			Error:    processingMessage(err, chatFailure),
			Response: fallbackReply(err, h.selector.Apology()),
		})
		flusher.Flush()
		return
	}

	sendSSE(c, "reply", model.ChatResponse{
		Success:   true,
		Response:  reply.Text,
		Timestamp: model.FormatTimestamp(reply.Timestamp),
	})
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// ParseListing handles POST /api/ai/parse-listing
func (h *AIHandler) ParseListing(c *gin.Context) {
	var req model.ParseListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgRequired})
			return
		}
		h.logger.Warn("parse_listing_bad_body", "request_id", middleware.GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": parseFailure})
		return
	}

	draft, err := h.extractor.Extract(c.Request.Context(), req.Message)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			return
		}
		h.logger.Error("parse_listing_failed", "request_id", middleware.GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": processingMessage(err, parseFailure)})
		return
	}

	c.JSON(http.StatusOK, model.ParseListingResponse{
		Success: true,
		Listing: draft,
	})
}

func (h *AIHandler) chatFailed(c *gin.Context, message, fallback string, err error) {
	h.logger.Warn("chat_failed", "request_id", middleware.GetRequestID(c), "error", err)
	c.JSON(http.StatusInternalServerError, model.ChatErrorResponse{
		Success:  false,
		Error:    message,
		Response: fallback,
	})
}

func processingMessage(err error, def string) string {
	var perr *service.ProcessingError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return def
}

func fallbackReply(err error, def string) string {
	var perr *service.ProcessingError
	if errors.As(err, &perr) && perr.Fallback != "" {
		return perr.Fallback
	}
	return def
}
