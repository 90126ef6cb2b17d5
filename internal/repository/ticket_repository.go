package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
)

// TicketRepository handles ticket data access.
type TicketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository creates a new TicketRepository.
func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

// GetByID retrieves a ticket by primary key.
func (r *TicketRepository) GetByID(ctx context.Context, id int) (*model.Ticket, error) {
	t := &model.Ticket{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, ticket_number, name, description, is_demo, created_at, updated_at
		 FROM tickets WHERE id = $1`, id,
	).Scan(&t.ID, &t.TicketNumber, &t.Name, &t.Description, &t.IsDemo, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return t, nil
}

// ListAll retrieves every ticket ordered by ticket number.
func (r *TicketRepository) ListAll(ctx context.Context) ([]model.Ticket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, ticket_number, name, description, is_demo, created_at, updated_at
		 FROM tickets ORDER BY ticket_number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []model.Ticket
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.Name, &t.Description, &t.IsDemo, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// Create inserts a new ticket. Returns ErrDuplicate on a taken ticket number.
func (r *TicketRepository) Create(ctx context.Context, t *model.Ticket) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tickets (ticket_number, name, description, is_demo)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.TicketNumber, t.Name, t.Description, t.IsDemo,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Update saves ticket fields.
func (r *TicketRepository) Update(ctx context.Context, t *model.Ticket) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets
		 SET ticket_number = $1, name = $2, description = $3, is_demo = $4, updated_at = NOW()
		 WHERE id = $5`,
		t.TicketNumber, t.Name, t.Description, t.IsDemo, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a ticket. Questions cascade at the database level.
func (r *TicketRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
