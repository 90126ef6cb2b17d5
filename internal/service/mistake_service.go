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

// Mistake flow errors.
var (
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrSubscriptionRequired = errors.New("subscription required for this ticket")
	ErrNoQuestions          = errors.New("ticket has no questions")
	ErrEmptyAnswers         = errors.New("answers map is empty")
	ErrNoMatchingMistakes   = errors.New("no submitted question is in the mistake ledger")
)

// ForeignQuestionError is returned when a ticket submission answers a
// question that belongs to a different ticket.
type ForeignQuestionError struct {
	QuestionID int
}

func (e *ForeignQuestionError) Error() string {
	return fmt.Sprintf("question %d does not belong to this ticket", e.QuestionID)
}

// MistakeStore is the ledger persistence surface.
type MistakeStore interface {
	UpsertWrong(ctx context.Context, m *model.Mistake) (bool, error)
	ListByUser(ctx context.Context, userID int) ([]model.MistakeWithQuestion, error)
	ListByUserAndQuestions(ctx context.Context, userID int, questionIDs []int) ([]model.MistakeWithQuestion, error)
	IncrementWrong(ctx context.Context, id, selectedOption int, at time.Time) error
	Delete(ctx context.Context, id int) error
	CountByUser(ctx context.Context, userID int) (int, error)
}

// TicketStore is the ticket lookup surface the mistake flows need.
type TicketStore interface {
	GetByID(ctx context.Context, id int) (*model.Ticket, error)
}

// TicketQuestions lists a ticket's questions in stable order.
type TicketQuestions interface {
	ListByTicket(ctx context.Context, ticketID int) ([]model.Question, error)
}

// MistakeService owns the wrong-answer ledger: it grades ad-hoc ticket
// submissions, accumulates wrong answers into per-question counters, and
// runs the re-practice flow that drains the ledger.
type MistakeService struct {
	mistakes  MistakeStore
	tickets   TicketStore
	questions TicketQuestions
	log       zerolog.Logger
	now       func() time.Time
}

// NewMistakeService creates a new MistakeService.
func NewMistakeService(mistakes MistakeStore, tickets TicketStore, questions TicketQuestions, log zerolog.Logger) *MistakeService {
	return &MistakeService{
		mistakes:  mistakes,
		tickets:   tickets,
		questions: questions,
		log:       log.With().Str("component", "mistake_service").Logger(),
		now:       time.Now,
	}
}

// TicketSummary aggregates one graded ticket submission. Percentage here is
// computed over the ticket's own question count, unlike the fixed-total
// final exam.
type TicketSummary struct {
	TotalQuestions  int    `json:"total_questions"`
	AnsweredCount   int    `json:"answered_count"`
	CorrectCount    int    `json:"correct_count"`
	WrongCount      int    `json:"wrong_count"`
	UnansweredCount int    `json:"unanswered_count"`
	Percentage      string `json:"percentage"`
}

// TicketSubmitResult is the graded outcome of one ticket practice run.
type TicketSubmitResult struct {
	Ticket  model.TicketRef  `json:"ticket"`
	Summary TicketSummary    `json:"summary"`
	Details []QuestionResult `json:"details"`
}

// MistakeEntry is one ledger row shaped for the client, question attached.
type MistakeEntry struct {
	ID              int           `json:"id"`
	WrongCount      int           `json:"wrong_count"`
	LastWrongAnswer int           `json:"last_wrong_answer"`
	LastWrongAt     time.Time     `json:"last_wrong_at"`
	Question        MistakeDetail `json:"question"`
}

// MistakeDetail is the full question payload inside a ledger entry,
// correct option and explanation included.
type MistakeDetail struct {
	ID            int              `json:"id"`
	TicketID      int              `json:"ticket_id"`
	Ticket        *model.TicketRef `json:"ticket"`
	QuestionText  string           `json:"question_text"`
	Image         *string          `json:"image"`
	Options       []string         `json:"options"`
	CorrectOption int              `json:"correct_option"`
	Explanation   *string          `json:"explanation"`
}

// MistakeList is a user's whole ledger, most recent mistake first.
type MistakeList struct {
	Total    int            `json:"total"`
	Mistakes []MistakeEntry `json:"mistakes"`
}

// PracticeDetail is one line of a graded re-practice run.
type PracticeDetail struct {
	QuestionID     int          `json:"question_id"`
	SelectedOption int          `json:"selected_option"`
	CorrectAnswer  int          `json:"correct_answer"`
	IsCorrect      bool         `json:"is_correct"`
	Status         AnswerStatus `json:"status"`
}

// PracticeSummary aggregates one re-practice run.
type PracticeSummary struct {
	SubmittedCount  int `json:"submitted_count"`
	SolvedCount     int `json:"solved_count"`
	StillWrongCount int `json:"still_wrong_count"`
	RemainingCount  int `json:"remaining_count"`
}

// PracticeResult is the outcome of one re-practice run against the ledger.
type PracticeResult struct {
	Summary PracticeSummary  `json:"summary"`
	Details []PracticeDetail `json:"details"`
}

// SubmitTicketAnswers grades an ad-hoc submission against one ticket's
// question set and feeds every wrong answer into the ledger. Unanswered
// questions are reported but never recorded as mistakes. Access to
// non-demo tickets requires an active subscription or the admin role.
func (s *MistakeService) SubmitTicketAnswers(ctx context.Context, user *model.User, ticketID int, answers map[int]int) (*TicketSubmitResult, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}

	now := s.now()
	if !user.CanAccessTicket(ticket, now) {
		return nil, ErrSubscriptionRequired
	}

	questions, err := s.questions.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("load ticket questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	inTicket := make(map[int]bool, len(questions))
	for i := range questions {
		inTicket[questions[i].ID] = true
	}
	for id := range answers {
		if !inTicket[id] {
			return nil, &ForeignQuestionError{QuestionID: id}
		}
	}

	var correct, wrong, unanswered int
	details := make([]QuestionResult, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		sel, answered := answers[q.ID]

		if !answered {
			unanswered++
			details = append(details, QuestionResult{
				QuestionID:    q.ID,
				CorrectAnswer: q.CorrectOption,
				Status:        AnswerStatusUnanswered,
			})
			continue
		}

		if sel == q.CorrectOption {
			correct++
			details = append(details, QuestionResult{
				QuestionID:    q.ID,
				UserAnswer:    &sel,
				CorrectAnswer: q.CorrectOption,
				IsCorrect:     true,
				Status:        AnswerStatusCorrect,
			})
			continue
		}

		wrong++
		if _, err := s.RecordOutcome(ctx, user.ID, q.ID, ticket.ID, sel); err != nil {
			return nil, err
		}
		details = append(details, QuestionResult{
			QuestionID:    q.ID,
			UserAnswer:    &sel,
			CorrectAnswer: q.CorrectOption,
			Status:        AnswerStatusWrong,
		})
	}

	s.log.Info().
		Int("user_id", user.ID).
		Int("ticket_id", ticket.ID).
		Int("wrong", wrong).
		Msg("ticket submission graded")

	return &TicketSubmitResult{
		Ticket: model.TicketRef{ID: ticket.ID, TicketNumber: ticket.TicketNumber, Name: ticket.Name},
		Summary: TicketSummary{
			TotalQuestions:  len(questions),
			AnsweredCount:   len(answers),
			CorrectCount:    correct,
			WrongCount:      wrong,
			UnansweredCount: unanswered,
			Percentage:      formatPercentage(float64(correct) / float64(len(questions)) * 100),
		},
		Details: details,
	}, nil
}

// RecordOutcome writes one wrong answer into the ledger: first wrong creates
// the row with wrong_count 1, repeats increment it and overwrite the
// last-wrong fields. Returns the row's resulting wrong count.
func (s *MistakeService) RecordOutcome(ctx context.Context, userID, questionID, ticketID, selectedOption int) (int, error) {
	m := &model.Mistake{
		UserID:          userID,
		QuestionID:      questionID,
		TicketID:        ticketID,
		LastWrongAnswer: selectedOption,
		LastWrongAt:     s.now(),
	}
	if _, err := s.mistakes.UpsertWrong(ctx, m); err != nil {
		return 0, fmt.Errorf("upsert mistake: %w", err)
	}
	return m.WrongCount, nil
}

// ListMyMistakes returns the user's ledger joined with full question
// payloads, most recent wrong answer first. Rows whose question has been
// deleted are silently dropped.
func (s *MistakeService) ListMyMistakes(ctx context.Context, userID int) (*MistakeList, error) {
	rows, err := s.mistakes.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list mistakes: %w", err)
	}

	entries := make([]MistakeEntry, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.Question == nil {
			continue
		}
		entries = append(entries, MistakeEntry{
			ID:              row.ID,
			WrongCount:      row.WrongCount,
			LastWrongAnswer: row.LastWrongAnswer,
			LastWrongAt:     row.LastWrongAt,
			Question: MistakeDetail{
				ID:            row.Question.ID,
				TicketID:      row.Question.TicketID,
				Ticket:        row.Ticket,
				QuestionText:  row.Question.QuestionText,
				Image:         row.Question.Image,
				Options:       row.Question.Options,
				CorrectOption: row.Question.CorrectOption,
				Explanation:   row.Question.Explanation,
			},
		})
	}

	return &MistakeList{Total: len(entries), Mistakes: entries}, nil
}

// PracticeSubmit grades answers against the user's own ledger. A correct
// answer solves the mistake and deletes its row; a wrong one increments the
// counter. Submitted questions outside the ledger are ignored, but when
// none of them match the call fails with ErrNoMatchingMistakes.
func (s *MistakeService) PracticeSubmit(ctx context.Context, userID int, answers map[int]int) (*PracticeResult, error) {
	if len(answers) == 0 {
		return nil, ErrEmptyAnswers
	}

	questionIDs := make([]int, 0, len(answers))
	for id := range answers {
		questionIDs = append(questionIDs, id)
	}

	rows, err := s.mistakes.ListByUserAndQuestions(ctx, userID, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("match mistakes: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoMatchingMistakes
	}

	var solved, stillWrong int
	details := make([]PracticeDetail, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.Question == nil {
			continue
		}

		sel := answers[row.QuestionID]
		correct := sel == row.Question.CorrectOption

		if correct {
			solved++
			if err := s.mistakes.Delete(ctx, row.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("delete solved mistake: %w", err)
			}
		} else {
			stillWrong++
			if err := s.mistakes.IncrementWrong(ctx, row.ID, sel, s.now()); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("increment mistake: %w", err)
			}
		}

		status := AnswerStatusWrong
		if correct {
			status = AnswerStatusSolved
		}
		details = append(details, PracticeDetail{
			QuestionID:     row.QuestionID,
			SelectedOption: sel,
			CorrectAnswer:  row.Question.CorrectOption,
			IsCorrect:      correct,
			Status:         status,
		})
	}

	remaining, err := s.mistakes.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count remaining mistakes: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Int("solved", solved).
		Int("still_wrong", stillWrong).
		Msg("mistake practice graded")

	return &PracticeResult{
		Summary: PracticeSummary{
			SubmittedCount:  len(details),
			SolvedCount:     solved,
			StillWrongCount: stillWrong,
			RemainingCount:  remaining,
		},
		Details: details,
	}, nil
}
