package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/response"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
)

// TicketHandler exposes the ticket catalog.
type TicketHandler struct {
	tickets *service.TicketService
	auth    *service.AuthService
	log     zerolog.Logger
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(tickets *service.TicketService, auth *service.AuthService, log zerolog.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, auth: auth, log: log}
}

// List handles GET /api/v1/tickets.
func (h *TicketHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.auth, h.log)
	if !ok {
		return
	}

	views, err := h.tickets.List(c.Request.Context(), user)
	if err != nil {
		failInternal(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"total": len(views), "tickets": views})
}

// Questions handles GET /api/v1/tickets/:id/questions (subscription-gated).
func (h *TicketHandler) Questions(c *gin.Context) {
	user, ok := currentUser(c, h.auth, h.log)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := h.tickets.GetQuestions(c.Request.Context(), user, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrTicketNotFound)
		case errors.Is(err, service.ErrSubscriptionRequired):
			response.Fail(c, http.StatusForbidden, response.ErrSubscriptionRequired)
		default:
			failInternal(c, h.log, err)
		}
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Create handles POST /api/v1/tickets (admin).
func (h *TicketHandler) Create(c *gin.Context) {
	var req model.CreateTicketRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.tickets.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrTicketNumberTaken) {
			response.FailWithFields(c, http.StatusConflict, response.ErrValidation,
				map[string]string{"ticket_number": "Bu bilet raqami band."})
			return
		}
		failInternal(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, ticket)
}

// Update handles PUT /api/v1/tickets/:id (admin).
func (h *TicketHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateTicketRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.tickets.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrTicketNotFound)
		case errors.Is(err, service.ErrTicketNumberTaken):
			response.FailWithFields(c, http.StatusConflict, response.ErrValidation,
				map[string]string{"ticket_number": "Bu bilet raqami band."})
		default:
			failInternal(c, h.log, err)
		}
		return
	}
	response.Success(c, http.StatusOK, ticket)
}

// Delete handles DELETE /api/v1/tickets/:id (admin).
func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.tickets.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrTicketNotFound)
			return
		}
		failInternal(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
