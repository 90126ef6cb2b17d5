package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/middleware"
	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/response"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
)

// MistakeHandler exposes ticket practice and the mistake ledger.
type MistakeHandler struct {
	mistakes *service.MistakeService
	auth     *service.AuthService
	log      zerolog.Logger
}

// NewMistakeHandler creates a new MistakeHandler.
func NewMistakeHandler(mistakes *service.MistakeService, auth *service.AuthService, log zerolog.Logger) *MistakeHandler {
	return &MistakeHandler{mistakes: mistakes, auth: auth, log: log}
}

// SubmitTicket handles POST /api/v1/mistakes/ticket-submit: grades one
// ticket run and feeds wrong answers into the ledger.
func (h *MistakeHandler) SubmitTicket(c *gin.Context) {
	user, ok := currentUser(c, h.auth, h.log)
	if !ok {
		return
	}

	var req model.TicketAnswersRequest
	if !bindAnswers(c, &req) {
		return
	}

	result, err := h.mistakes.SubmitTicketAnswers(c.Request.Context(), user, req.TicketID, req.Answers)
	if err != nil {
		var foreign *service.ForeignQuestionError
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrTicketNotFound)
		case errors.Is(err, service.ErrSubscriptionRequired):
			response.Fail(c, http.StatusForbidden, response.ErrSubscriptionRequired)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
		case errors.As(err, &foreign):
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrForeignQuestion,
				fmt.Sprintf("%d ID li savol ushbu biletga tegishli emas", foreign.QuestionID))
		default:
			failInternal(c, h.log, err)
		}
		return
	}
	response.Success(c, http.StatusOK, result)
}

// My handles GET /api/v1/mistakes/my: the caller's remaining ledger.
func (h *MistakeHandler) My(c *gin.Context) {
	claims := middleware.GetClaims(c)

	list, err := h.mistakes.ListMyMistakes(c.Request.Context(), claims.UserID)
	if err != nil {
		failInternal(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Practice handles POST /api/v1/mistakes/practice: re-answers ledger
// questions, deleting the solved ones.
func (h *MistakeHandler) Practice(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.PracticeAnswersRequest
	if !bindAnswers(c, &req) {
		return
	}

	result, err := h.mistakes.PracticeSubmit(c.Request.Context(), claims.UserID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyAnswers):
			response.Fail(c, http.StatusBadRequest, response.ErrEmptyAnswers)
		case errors.Is(err, service.ErrNoMatchingMistakes):
			response.Fail(c, http.StatusNotFound, response.ErrNoMatchingMistakes)
		default:
			failInternal(c, h.log, err)
		}
		return
	}
	response.Success(c, http.StatusOK, result)
}
