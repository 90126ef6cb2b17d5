package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
)

var ErrTicketNumberTaken = errors.New("ticket number already in use")

// TicketCatalog is the full ticket persistence surface.
type TicketCatalog interface {
	GetByID(ctx context.Context, id int) (*model.Ticket, error)
	ListAll(ctx context.Context) ([]model.Ticket, error)
	Create(ctx context.Context, t *model.Ticket) error
	Update(ctx context.Context, t *model.Ticket) error
	Delete(ctx context.Context, id int) error
}

// TicketService manages the ticket catalog and the per-user access view.
type TicketService struct {
	tickets   TicketCatalog
	questions TicketQuestions
	log       zerolog.Logger
	now       func() time.Time
}

// NewTicketService creates a new TicketService.
func NewTicketService(tickets TicketCatalog, questions TicketQuestions, log zerolog.Logger) *TicketService {
	return &TicketService{
		tickets:   tickets,
		questions: questions,
		log:       log.With().Str("component", "ticket_service").Logger(),
		now:       time.Now,
	}
}

// TicketView is a ticket annotated with whether the requesting user may
// open it.
type TicketView struct {
	model.Ticket
	Accessible bool `json:"accessible"`
}

// List returns every ticket, each flagged with the caller's access.
func (s *TicketService) List(ctx context.Context, user *model.User) ([]TicketView, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	now := s.now()
	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, TicketView{
			Ticket:     tickets[i],
			Accessible: user.CanAccessTicket(&tickets[i], now),
		})
	}
	return views, nil
}

// TicketQuestionsResult is one ticket's full question set for practice.
// Correct options and explanations are included: grading still happens
// server-side, this payload just lets the client explain afterwards.
type TicketQuestionsResult struct {
	Ticket    model.TicketRef  `json:"ticket"`
	Total     int              `json:"total"`
	Questions []model.Question `json:"questions"`
}

// GetQuestions returns a ticket's questions, subscription gate applied.
func (s *TicketService) GetQuestions(ctx context.Context, user *model.User, ticketID int) (*TicketQuestionsResult, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}

	if !user.CanAccessTicket(ticket, s.now()) {
		return nil, ErrSubscriptionRequired
	}

	questions, err := s.questions.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("load ticket questions: %w", err)
	}

	return &TicketQuestionsResult{
		Ticket:    model.TicketRef{ID: ticket.ID, TicketNumber: ticket.TicketNumber, Name: ticket.Name},
		Total:     len(questions),
		Questions: questions,
	}, nil
}

// Create adds a new ticket to the catalog.
func (s *TicketService) Create(ctx context.Context, req *model.CreateTicketRequest) (*model.Ticket, error) {
	ticket := &model.Ticket{
		TicketNumber: req.TicketNumber,
		Name:         req.Name,
		Description:  req.Description,
		IsDemo:       req.IsDemo,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTicketNumberTaken
		}
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.log.Info().Int("ticket_id", ticket.ID).Int("ticket_number", ticket.TicketNumber).Msg("ticket created")
	return ticket, nil
}

// Update applies a partial patch to a ticket.
func (s *TicketService) Update(ctx context.Context, id int, req *model.UpdateTicketRequest) (*model.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}

	if req.TicketNumber != nil {
		ticket.TicketNumber = *req.TicketNumber
	}
	if req.Name != nil {
		ticket.Name = *req.Name
	}
	if req.Description != nil {
		ticket.Description = req.Description
	}
	if req.IsDemo != nil {
		ticket.IsDemo = *req.IsDemo
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTicketNumberTaken
		}
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return ticket, nil
}

// Delete removes a ticket; its questions cascade away with it.
func (s *TicketService) Delete(ctx context.Context, id int) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("delete ticket: %w", err)
	}
	s.log.Info().Int("ticket_id", id).Msg("ticket deleted")
	return nil
}
