package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCorrectOptionRange is returned when correct_option does not index
	// into the options slice.
	ErrCorrectOptionRange = errors.New("correct_option must index into options")
)

// QuestionAdminStore is the write surface for catalog administration.
type QuestionAdminStore interface {
	GetByID(ctx context.Context, id int) (*model.Question, error)
	ListByTicket(ctx context.Context, ticketID int) ([]model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id int) error
}

// QuestionService manages the question catalog (admin CRUD).
type QuestionService struct {
	questions QuestionAdminStore
	tickets   TicketStore
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionAdminStore, tickets TicketStore, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		tickets:   tickets,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// Get retrieves one question with its answer key.
func (s *QuestionService) Get(ctx context.Context, id int) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("find question: %w", err)
	}
	return q, nil
}

// Create adds a question to an existing ticket.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	if req.CorrectOption >= len(req.Options) {
		return nil, ErrCorrectOptionRange
	}

	if _, err := s.tickets.GetByID(ctx, req.TicketID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}

	q := &model.Question{
		TicketID:      req.TicketID,
		QuestionText:  req.QuestionText,
		Image:         req.Image,
		Options:       req.Options,
		CorrectOption: req.CorrectOption,
		Explanation:   req.Explanation,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.log.Info().Int("question_id", q.ID).Int("ticket_id", q.TicketID).Msg("question created")
	return q, nil
}

// Update applies a partial patch to a question.
func (s *QuestionService) Update(ctx context.Context, id int, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("find question: %w", err)
	}

	if req.QuestionText != nil {
		q.QuestionText = *req.QuestionText
	}
	if req.Image != nil {
		q.Image = req.Image
	}
	if len(req.Options) > 0 {
		q.Options = req.Options
	}
	if req.CorrectOption != nil {
		q.CorrectOption = *req.CorrectOption
	}
	if req.Explanation != nil {
		q.Explanation = req.Explanation
	}
	if q.CorrectOption >= len(q.Options) {
		return nil, ErrCorrectOptionRange
	}

	if err := s.questions.Update(ctx, q); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// Delete removes a question; ledger rows referencing it cascade away.
func (s *QuestionService) Delete(ctx context.Context, id int) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("delete question: %w", err)
	}
	s.log.Info().Int("question_id", id).Msg("question deleted")
	return nil
}
