package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/middleware"
	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/response"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
)

// SubscriptionHandler exposes the simulated payment flow.
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
	log           zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptions *service.SubscriptionService, log zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, log: log}
}

// Activate handles POST /api/v1/subscription/activate.
func (h *SubscriptionHandler) Activate(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.ActivateSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	state, err := h.subscriptions.Activate(c.Request.Context(), claims.UserID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentAmountTooLow):
			response.Fail(c, http.StatusBadRequest, response.ErrPaymentAmountTooLow)
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrUserNotFound)
		default:
			failInternal(c, h.log, err)
		}
		return
	}
	response.Success(c, http.StatusOK, state)
}
