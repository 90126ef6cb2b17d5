package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
)

// QuestionRepository handles question catalog data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, ticket_id, question_text, image, options, correct_option, explanation, created_at, updated_at`

func (r *QuestionRepository) queryQuestions(ctx context.Context, query string, args ...any) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TicketID, &q.QuestionText, &q.Image, &q.Options,
			&q.CorrectOption, &q.Explanation, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a question by primary key.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.TicketID, &q.QuestionText, &q.Image, &q.Options,
		&q.CorrectOption, &q.Explanation, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return q, nil
}

// ListByTicket retrieves all questions belonging to a ticket, ordered by id.
func (r *QuestionRepository) ListByTicket(ctx context.Context, ticketID int) ([]model.Question, error) {
	return r.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE ticket_id = $1 ORDER BY id ASC`, ticketID)
}

// ListByIDs retrieves the given questions in no particular order.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []int) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
}

// CountAll returns the total size of the question catalog.
func (r *QuestionRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

// SampleIDs draws n distinct question ids uniformly at random from the
// whole catalog.
func (r *QuestionRepository) SampleIDs(ctx context.Context, n int) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM questions ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0, n)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (ticket_id, question_text, image, options, correct_option, explanation)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		q.TicketID, q.QuestionText, q.Image, q.Options, q.CorrectOption, q.Explanation,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update saves question fields.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET question_text = $1, image = $2, options = $3, correct_option = $4, explanation = $5, updated_at = NOW()
		 WHERE id = $6`,
		q.QuestionText, q.Image, q.Options, q.CorrectOption, q.Explanation, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a question. Mistake ledger rows cascade at the database level.
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
