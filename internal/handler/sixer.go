package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"roomie/internal/middleware"
	"roomie/internal/model"
	"roomie/internal/service"
)

// SixerHandler serves the simulated Sixer checkout
type SixerHandler struct {
	sixer  *service.SixerService
	logger *slog.Logger
}

// NewSixerHandler creates a new Sixer handler
func NewSixerHandler(sixer *service.SixerService, logger *slog.Logger) *SixerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SixerHandler{sixer: sixer, logger: logger}
}

// Start handles POST /api/sixer/start
func (h *SixerHandler) Start(c *gin.Context) {
	var req model.SixerStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// A wrongly typed field fails the same check a wrong value would
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			switch typeErr.Field {
			case "amount":
				req.Amount = -1
			case "currency":
				req.Currency = ""
			default:
				h.internalError(c, err)
				return
			}
		} else {
			h.internalError(c, err)
			return
		}
	}

	resp, err := h.sixer.Start(c.Request.Context(), &req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		case errors.Is(err, service.ErrPaymentDeclined):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SixerHandler) internalError(c *gin.Context, err error) {
	h.logger.Error("sixer_start_failed", "request_id", middleware.GetRequestID(c), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
