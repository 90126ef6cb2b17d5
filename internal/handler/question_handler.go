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

// QuestionHandler exposes question catalog administration.
type QuestionHandler struct {
	questions *service.QuestionService
	log       zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questions *service.QuestionService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, log: log}
}

func (h *QuestionHandler) failQuestion(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrTicketNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrTicketNotFound)
	case errors.Is(err, service.ErrCorrectOptionRange):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"correct_option": "correct_option options ichidagi indeks bo'lishi kerak"})
	default:
		failInternal(c, h.log, err)
	}
}

// Get handles GET /api/v1/questions/:id (admin, answer key included).
func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	q, err := h.questions.Get(c.Request.Context(), id)
	if err != nil {
		h.failQuestion(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// Create handles POST /api/v1/questions (admin).
func (h *QuestionHandler) Create(c *gin.Context) {
	var req model.CreateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	q, err := h.questions.Create(c.Request.Context(), &req)
	if err != nil {
		h.failQuestion(c, err)
		return
	}
	response.Success(c, http.StatusCreated, q)
}

// Update handles PUT /api/v1/questions/:id (admin).
func (h *QuestionHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	q, err := h.questions.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.failQuestion(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// Delete handles DELETE /api/v1/questions/:id (admin).
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.questions.Delete(c.Request.Context(), id); err != nil {
		h.failQuestion(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
