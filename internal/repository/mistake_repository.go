package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
)

// MistakeRepository handles the per-user wrong-answer ledger.
//
// The UNIQUE (user_id, question_id) constraint backs every upsert, so
// concurrent wrong answers to the same question can never produce a
// duplicate row.
type MistakeRepository struct {
	pool *pgxpool.Pool
}

// NewMistakeRepository creates a new MistakeRepository.
func NewMistakeRepository(pool *pgxpool.Pool) *MistakeRepository {
	return &MistakeRepository{pool: pool}
}

// UpsertWrong records one wrong answer atomically: it creates the ledger row
// with wrong_count = 1 or increments the existing row, overwriting
// last_wrong_answer, last_wrong_at and the denormalized ticket_id.
// Returns true when a new row was created.
func (r *MistakeRepository) UpsertWrong(ctx context.Context, m *model.Mistake) (bool, error) {
	var created bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO user_mistakes (user_id, question_id, ticket_id, wrong_count, last_wrong_answer, last_wrong_at)
		 VALUES ($1, $2, $3, 1, $4, $5)
		 ON CONFLICT (user_id, question_id) DO UPDATE
		 SET wrong_count = user_mistakes.wrong_count + 1,
		     ticket_id = EXCLUDED.ticket_id,
		     last_wrong_answer = EXCLUDED.last_wrong_answer,
		     last_wrong_at = EXCLUDED.last_wrong_at
		 RETURNING id, wrong_count, (wrong_count = 1)`,
		m.UserID, m.QuestionID, m.TicketID, m.LastWrongAnswer, m.LastWrongAt,
	).Scan(&m.ID, &m.WrongCount, &created)
	return created, err
}

const mistakeJoinQuery = `
	SELECT m.id, m.user_id, m.question_id, m.ticket_id, m.wrong_count,
	       m.last_wrong_answer, m.last_wrong_at,
	       q.id, q.ticket_id, q.question_text, q.image, q.options,
	       q.correct_option, q.explanation, q.created_at, q.updated_at,
	       t.id, t.ticket_number, t.name
	FROM user_mistakes m
	LEFT JOIN questions q ON q.id = m.question_id
	LEFT JOIN tickets t ON t.id = q.ticket_id`

func (r *MistakeRepository) queryJoined(ctx context.Context, query string, args ...any) ([]model.MistakeWithQuestion, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mistakes []model.MistakeWithQuestion
	for rows.Next() {
		var (
			m model.MistakeWithQuestion
			q model.Question
			t model.TicketRef

			qID, qTicketID, qCorrect *int
			qText                    *string
			qImage, qExplanation     *string
			qOptions                 []string
			qCreatedAt, qUpdatedAt   *time.Time
			tID, tNumber             *int
			tName                    *string
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.QuestionID, &m.TicketID, &m.WrongCount,
			&m.LastWrongAnswer, &m.LastWrongAt,
			&qID, &qTicketID, &qText, &qImage, &qOptions,
			&qCorrect, &qExplanation, &qCreatedAt, &qUpdatedAt,
			&tID, &tNumber, &tName); err != nil {
			return nil, err
		}
		if qID != nil {
			q = model.Question{
				ID:            *qID,
				TicketID:      *qTicketID,
				QuestionText:  *qText,
				Image:         qImage,
				Options:       qOptions,
				CorrectOption: *qCorrect,
				Explanation:   qExplanation,
				CreatedAt:     *qCreatedAt,
				UpdatedAt:     *qUpdatedAt,
			}
			m.Question = &q
		}
		if tID != nil {
			t = model.TicketRef{ID: *tID, TicketNumber: *tNumber, Name: *tName}
			m.Ticket = &t
		}
		mistakes = append(mistakes, m)
	}
	return mistakes, rows.Err()
}

// ListByUser retrieves a user's whole mistake ledger joined with questions
// and ticket summaries, most recent wrong answer first.
func (r *MistakeRepository) ListByUser(ctx context.Context, userID int) ([]model.MistakeWithQuestion, error) {
	return r.queryJoined(ctx,
		mistakeJoinQuery+` WHERE m.user_id = $1 ORDER BY m.last_wrong_at DESC`, userID)
}

// ListByUserAndQuestions restricts the joined ledger to the given question ids.
func (r *MistakeRepository) ListByUserAndQuestions(ctx context.Context, userID int, questionIDs []int) ([]model.MistakeWithQuestion, error) {
	return r.queryJoined(ctx,
		mistakeJoinQuery+` WHERE m.user_id = $1 AND m.question_id = ANY($2)`, userID, questionIDs)
}

// IncrementWrong bumps an existing ledger row after a failed re-practice.
func (r *MistakeRepository) IncrementWrong(ctx context.Context, id, selectedOption int, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_mistakes
		 SET wrong_count = wrong_count + 1, last_wrong_answer = $2, last_wrong_at = $3
		 WHERE id = $1`, id, selectedOption, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a solved ledger row.
func (r *MistakeRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_mistakes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByUser returns the size of a user's remaining mistake ledger.
func (r *MistakeRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_mistakes WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}
