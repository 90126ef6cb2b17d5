package model

import "time"

// Mistake is the per-user-per-question ledger row tracking repeated wrong
// answers. At most one row exists per (UserID, QuestionID); TicketID is
// denormalized from the question and refreshed on every upsert.
type Mistake struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	QuestionID      int       `json:"question_id"`
	TicketID        int       `json:"ticket_id"`
	WrongCount      int       `json:"wrong_count"`
	LastWrongAnswer int       `json:"last_wrong_answer"`
	LastWrongAt     time.Time `json:"last_wrong_at"`
}

// MistakeWithQuestion is a ledger row joined with its question and the
// question's ticket summary. Question is nil when the reference dangles.
type MistakeWithQuestion struct {
	Mistake
	Question *Question  `json:"question,omitempty"`
	Ticket   *TicketRef `json:"ticket,omitempty"`
}
