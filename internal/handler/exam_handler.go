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

// ExamHandler exposes the final exam session lifecycle.
type ExamHandler struct {
	exams *service.ExamService
	log   zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(exams *service.ExamService, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{exams: exams, log: log}
}

// failExam maps exam engine errors onto the response envelope. An expired
// session answers 400 with the auto-scored result attached so the client
// can render it immediately.
func (h *ExamHandler) failExam(c *gin.Context, err error) {
	var expired *service.ExamExpiredError
	var insufficient *service.InsufficientQuestionsError
	var foreign *service.QuestionNotInExamError

	switch {
	case errors.As(err, &expired):
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrExamExpired, expired.Result)
	case errors.As(err, &insufficient):
		response.Fail(c, http.StatusBadRequest, response.ErrInsufficientQuestions)
	case errors.As(err, &foreign):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionNotInExam)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	default:
		failInternal(c, h.log, err)
	}
}

// Start handles POST /api/v1/exam/start: resumes the pending session or
// draws a fresh one.
func (h *ExamHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)

	result, err := h.exams.StartOrResume(c.Request.Context(), claims.UserID)
	if err != nil {
		h.failExam(c, err)
		return
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

// Answer handles POST /api/v1/exam/answer: saves one answer.
func (h *ExamHandler) Answer(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.AnswerRequest
	if !bindAnswers(c, &req) {
		return
	}

	progress, err := h.exams.RecordAnswer(c.Request.Context(), claims.UserID, req.ExamID, req.QuestionID, req.SelectedOption)
	if err != nil {
		h.failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, progress)
}

// AnswerBatch handles POST /api/v1/exam/answers: saves several answers at once.
func (h *ExamHandler) AnswerBatch(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.AnswerBatchRequest
	if !bindAnswers(c, &req) {
		return
	}

	progress, err := h.exams.RecordAnswers(c.Request.Context(), claims.UserID, req.ExamID, req.Answers)
	if err != nil {
		h.failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, progress)
}

// Submit handles POST /api/v1/exam/submit: scores the pending session.
func (h *ExamHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SubmitExamRequest
	if !bindAnswers(c, &req) {
		return
	}

	result, err := h.exams.Submit(c.Request.Context(), claims.UserID, req.ExamID, req.Answers)
	if err != nil {
		h.failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// History handles GET /api/v1/exam/history.
func (h *ExamHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)

	history, err := h.exams.GetHistory(c.Request.Context(), claims.UserID)
	if err != nil {
		h.failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, history)
}

// Result handles GET /api/v1/exam/:exam_id/result.
func (h *ExamHandler) Result(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := paramID(c, "exam_id")
	if !ok {
		return
	}

	view, err := h.exams.GetResult(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		h.failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Cancel handles DELETE /api/v1/exam/:exam_id.
func (h *ExamHandler) Cancel(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := paramID(c, "exam_id")
	if !ok {
		return
	}

	if err := h.exams.Cancel(c.Request.Context(), claims.UserID, examID); err != nil {
		h.failExam(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}
