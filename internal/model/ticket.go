package model

import "time"

// Ticket is a named, numbered group of questions mirroring a real exam
// ticket. Demo tickets are free; everything else is subscription-gated.
type Ticket struct {
	ID           int       `json:"id"`
	TicketNumber int       `json:"ticket_number"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	IsDemo       bool      `json:"is_demo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TicketRef is the compact ticket summary embedded in joined payloads.
type TicketRef struct {
	ID           int    `json:"id"`
	TicketNumber int    `json:"ticket_number"`
	Name         string `json:"name"`
}

// CreateTicketRequest is the payload for creating a ticket.
type CreateTicketRequest struct {
	TicketNumber int     `json:"ticket_number" binding:"required,min=1"`
	Name         string  `json:"name" binding:"required,min=1,max=255"`
	Description  *string `json:"description" binding:"omitempty,max=2000"`
	IsDemo       bool    `json:"is_demo"`
}

// UpdateTicketRequest is the payload for updating a ticket.
type UpdateTicketRequest struct {
	TicketNumber *int    `json:"ticket_number" binding:"omitempty,min=1"`
	Name         *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description  *string `json:"description" binding:"omitempty,max=2000"`
	IsDemo       *bool   `json:"is_demo" binding:"omitempty"`
}
