package model

import "time"

// ExamStatus enumerates final exam session states.
type ExamStatus string

const (
	ExamStatusPending   ExamStatus = "pending"
	ExamStatusCompleted ExamStatus = "completed"
)

// FinalExam is one attempt at the timed 50-question final exam.
//
// QuestionIDs is fixed at creation and immutable; Answers grows while the
// session is pending (keys are always a subset of QuestionIDs). Once the
// status becomes completed the record is append-only.
type FinalExam struct {
	ID             int         `json:"id"`
	UserID         int         `json:"user_id"`
	QuestionIDs    []int       `json:"question_ids"`
	Answers        map[int]int `json:"answers"`
	CorrectCount   int         `json:"correct_count"`
	WrongCount     int         `json:"wrong_count"`
	TotalQuestions int         `json:"total_questions"`
	Status         ExamStatus  `json:"status"`
	Passed         bool        `json:"passed"`
	StartedAt      time.Time   `json:"started_at"`
	ExpiresAt      time.Time   `json:"expires_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ExpiredAt reports whether the exam deadline has passed at the given instant.
func (e *FinalExam) ExpiredAt(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// RemainingSeconds returns the whole seconds left until the deadline,
// never negative.
func (e *FinalExam) RemainingSeconds(now time.Time) int {
	remaining := int(e.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasQuestion reports whether the question belongs to this exam's fixed set.
func (e *FinalExam) HasQuestion(questionID int) bool {
	for _, id := range e.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// AnswerRequest is the payload for answering a single exam question.
type AnswerRequest struct {
	ExamID         int `json:"exam_id" binding:"required,min=1"`
	QuestionID     int `json:"question_id" binding:"required,min=1"`
	SelectedOption int `json:"selected_option" binding:"min=0"`
}

// AnswerBatchRequest is the payload for answering several questions at once.
// Non-integer keys or values fail JSON binding, which is the whole-map shape
// validation for answer payloads.
type AnswerBatchRequest struct {
	ExamID  int         `json:"exam_id" binding:"required,min=1"`
	Answers map[int]int `json:"answers" binding:"required"`
}

// SubmitExamRequest is the payload for finishing an exam. Answers is an
// optional final batch merged before scoring.
type SubmitExamRequest struct {
	ExamID  int         `json:"exam_id" binding:"required,min=1"`
	Answers map[int]int `json:"answers" binding:"omitempty"`
}

// TicketAnswersRequest is the payload for the ad-hoc ticket practice flow.
type TicketAnswersRequest struct {
	TicketID int         `json:"ticket_id" binding:"required,min=1"`
	Answers  map[int]int `json:"answers" binding:"required"`
}

// PracticeAnswersRequest is the payload for re-practicing mistakes.
type PracticeAnswersRequest struct {
	Answers map[int]int `json:"answers" binding:"required"`
}
