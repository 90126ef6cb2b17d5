package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
)

// FinalExamRepository handles final exam session data access.
//
// The "one pending exam per user" invariant is enforced by a partial unique
// index on (user_id) WHERE status = 'pending', so concurrent starts resolve
// at the database rather than with check-then-create.
type FinalExamRepository struct {
	pool *pgxpool.Pool
}

// NewFinalExamRepository creates a new FinalExamRepository.
func NewFinalExamRepository(pool *pgxpool.Pool) *FinalExamRepository {
	return &FinalExamRepository{pool: pool}
}

const examColumns = `id, user_id, question_ids, answers, correct_count, wrong_count,
	total_questions, status, passed, started_at, expires_at, completed_at, created_at`

func scanExam(row interface{ Scan(...any) error }) (*model.FinalExam, error) {
	e := &model.FinalExam{}
	err := row.Scan(&e.ID, &e.UserID, &e.QuestionIDs, &e.Answers, &e.CorrectCount,
		&e.WrongCount, &e.TotalQuestions, &e.Status, &e.Passed,
		&e.StartedAt, &e.ExpiresAt, &e.CompletedAt, &e.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return e, nil
}

// PendingByUser retrieves the user's single pending exam, if any.
func (r *FinalExamRepository) PendingByUser(ctx context.Context, userID int) (*model.FinalExam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM final_exams
		 WHERE user_id = $1 AND status = 'pending'`, userID))
}

// ByIDAndUser retrieves an exam owned by the user, regardless of status.
func (r *FinalExamRepository) ByIDAndUser(ctx context.Context, examID, userID int) (*model.FinalExam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM final_exams
		 WHERE id = $1 AND user_id = $2`, examID, userID))
}

// Create inserts a new pending exam. Returns ErrDuplicate if the user
// already has a pending exam (partial unique index conflict).
func (r *FinalExamRepository) Create(ctx context.Context, e *model.FinalExam) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO final_exams (user_id, question_ids, answers, total_questions, status, started_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) WHERE status = 'pending' DO NOTHING
		 RETURNING id, created_at`,
		e.UserID, e.QuestionIDs, e.Answers, e.TotalQuestions, model.ExamStatusPending, e.StartedAt, e.ExpiresAt,
	).Scan(&e.ID, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicate
	}
	return err
}

// MergeAnswers merges the given answers into the exam's answer map with a
// single JSONB concatenation, last write wins per question. The update is
// guarded by status = 'pending' so it can never touch a scored exam.
// Returns the merged map.
func (r *FinalExamRepository) MergeAnswers(ctx context.Context, examID int, answers map[int]int) (map[int]int, error) {
	var merged map[int]int
	err := r.pool.QueryRow(ctx,
		`UPDATE final_exams
		 SET answers = answers || $2
		 WHERE id = $1 AND status = 'pending'
		 RETURNING answers`, examID, answers,
	).Scan(&merged)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return merged, nil
}

// Complete scores an exam exactly once: the status guard makes a second
// completion attempt (late submit racing lazy expiry) a no-op reported as
// ErrNotFound.
func (r *FinalExamRepository) Complete(ctx context.Context, examID int, answers map[int]int, correct, wrong int, passed bool, completedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE final_exams
		 SET answers = $2, correct_count = $3, wrong_count = $4, passed = $5,
		     status = $6, completed_at = $7
		 WHERE id = $1 AND status = 'pending'`,
		examID, answers, correct, wrong, passed, model.ExamStatusCompleted, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePending hard-deletes a pending exam owned by the user.
func (r *FinalExamRepository) DeletePending(ctx context.Context, examID, userID int) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM final_exams
		 WHERE id = $1 AND user_id = $2 AND status = 'pending'`, examID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser retrieves all of a user's exams, newest first.
func (r *FinalExamRepository) ListByUser(ctx context.Context, userID int) ([]model.FinalExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM final_exams
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.FinalExam
	for rows.Next() {
		e := model.FinalExam{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.QuestionIDs, &e.Answers, &e.CorrectCount,
			&e.WrongCount, &e.TotalQuestions, &e.Status, &e.Passed,
			&e.StartedAt, &e.ExpiresAt, &e.CompletedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// ListExpiredPending retrieves pending exams whose deadline passed before
// the cutoff. Used by the hygiene sweep; lazy expiry on access remains the
// contract.
func (r *FinalExamRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]model.FinalExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM final_exams
		 WHERE status = 'pending' AND expires_at < $1
		 ORDER BY expires_at ASC LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.FinalExam
	for rows.Next() {
		e := model.FinalExam{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.QuestionIDs, &e.Answers, &e.CorrectCount,
			&e.WrongCount, &e.TotalQuestions, &e.Status, &e.Passed,
			&e.StartedAt, &e.ExpiresAt, &e.CompletedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
