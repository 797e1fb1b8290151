package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// TicketHistoryRepository is the append-only audit trail of a ticket.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

// Create appends an entry; id and timestamp come from the database.
func (r *ticketHistoryRepository) Create(ctx context.Context, entry *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, changed_by_id, change_type, old_value, new_value)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID, entry.ChangedByID, entry.ChangeType, entry.OldValue, entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByTicket returns entries oldest first, each with the acting user's name
// when the actor still exists.
func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT h.id, h.ticket_id, h.changed_by_id, u.name, h.change_type, h.old_value, h.new_value, h.created_at
        FROM ticket_history h
        LEFT JOIN users u ON u.id = h.changed_by_id
        WHERE h.ticket_id = $1
        ORDER BY h.created_at ASC, h.id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, scanHistoryEntry)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.TicketHistory{}
	}
	return entries, nil
}

func scanHistoryEntry(row pgx.CollectableRow) (domain.TicketHistory, error) {
	var entry domain.TicketHistory
	err := row.Scan(
		&entry.ID, &entry.TicketID, &entry.ChangedByID, &entry.ChangedByName,
		&entry.ChangeType, &entry.OldValue, &entry.NewValue, &entry.CreatedAt,
	)
	return entry, err
}
