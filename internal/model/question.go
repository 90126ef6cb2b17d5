package model

import "time"

// Question is a single multiple-choice question belonging to a ticket.
// CorrectOption is a 0-based index into Options.
type Question struct {
	ID            int       `json:"id"`
	TicketID      int       `json:"ticket_id"`
	QuestionText  string    `json:"question_text"`
	Image         *string   `json:"image,omitempty"`
	Options       []string  `json:"options"`
	CorrectOption int       `json:"correct_option"`
	Explanation   *string   `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Public returns the question stripped of the correct answer and
// explanation, safe to show while an exam is still running.
func (q *Question) Public() QuestionPublic {
	return QuestionPublic{
		ID:           q.ID,
		TicketID:     q.TicketID,
		QuestionText: q.QuestionText,
		Image:        q.Image,
		Options:      q.Options,
	}
}

// QuestionPublic is a question without the correct option, sent to users
// while their exam is pending.
type QuestionPublic struct {
	ID           int      `json:"id"`
	TicketID     int      `json:"ticket_id"`
	QuestionText string   `json:"question_text"`
	Image        *string  `json:"image,omitempty"`
	Options      []string `json:"options"`
}

// CreateQuestionRequest is the payload for adding a question to a ticket.
type CreateQuestionRequest struct {
	TicketID      int      `json:"ticket_id" binding:"required,min=1"`
	QuestionText  string   `json:"question_text" binding:"required,min=1,max=4000"`
	Image         *string  `json:"image" binding:"omitempty,max=255"`
	Options       []string `json:"options" binding:"required,min=2,dive,required"`
	CorrectOption int      `json:"correct_option" binding:"min=0"`
	Explanation   *string  `json:"explanation" binding:"omitempty,max=4000"`
}

// UpdateQuestionRequest is the payload for editing a question.
type UpdateQuestionRequest struct {
	QuestionText  *string  `json:"question_text" binding:"omitempty,min=1,max=4000"`
	Image         *string  `json:"image" binding:"omitempty,max=255"`
	Options       []string `json:"options" binding:"omitempty,min=2,dive,required"`
	CorrectOption *int     `json:"correct_option" binding:"omitempty,min=0"`
	Explanation   *string  `json:"explanation" binding:"omitempty,max=4000"`
}
