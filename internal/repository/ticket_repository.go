package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// ErrStatusChanged reports a conditional update that lost to a concurrent writer.
var ErrStatusChanged = errors.New("ticket status changed concurrently")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	RequesterID *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	OverdueAt   *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdateFromStatus(ctx context.Context, ticket *domain.Ticket, from domain.TicketStatus) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, requester_user_id, template_id, item_id, service_id,
               title, description, status, priority, root_cause, issue_category,
               approval_action, approval_comment, approved_by, approved_at,
               sla_due_at, created_at, updated_at, closed_at`

// Create inserts the ticket and its custom values in one transaction.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, requester_user_id, template_id, item_id, service_id, title, description,
            status, priority, root_cause, issue_category, sla_due_at, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
        RETURNING id, created_at, updated_at`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			ticket.ExternalKey,
			ticket.RequesterID,
			ticket.TemplateID,
			ticket.ItemID,
			ticket.ServiceID,
			ticket.Title,
			ticket.Description,
			ticket.Status,
			ticket.Priority,
			ticket.RootCause,
			ticket.IssueCategory,
			ticket.SLADueAt,
			ticket.CreatedAt,
		).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return err
		}
		if len(ticket.CustomFieldValues) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, v := range ticket.CustomFieldValues {
			batch.Queue(`INSERT INTO ticket_custom_values (ticket_id, field_id, field_name, value) VALUES ($1,$2,$3,$4)`,
				ticket.ID, v.FieldID, v.FieldName, v.Value)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// UpdateFromStatus writes status, approval and closure fields only if the
// stored status still equals from.
func (r *ticketRepository) UpdateFromStatus(ctx context.Context, ticket *domain.Ticket, from domain.TicketStatus) error {
	const query = `
        UPDATE tickets SET status=$1, approval_action=$2, approval_comment=$3, approved_by=$4, approved_at=$5,
            closed_at=$6, updated_at=$7
        WHERE id=$8 AND status=$9`

	var action, comment, decidedBy *string
	var decidedAt *time.Time
	if a := ticket.Approval; a != nil {
		act := string(a.Action)
		action, comment, decidedBy, decidedAt = &act, &a.Comment, &a.DecidedBy, &a.DecidedAt
	}

	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		action,
		comment,
		decidedBy,
		decidedAt,
		ticket.ClosedAt,
		ticket.UpdatedAt,
		ticket.ID,
		from,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, ticket.ID); err != nil {
			return err
		}
		return ErrStatusChanged
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, noRowsOnMalformedID(err)
	}
	values, err := r.customValues(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.CustomFieldValues = values
	return ticket, nil
}

func (r *ticketRepository) customValues(ctx context.Context, ticketID string) ([]domain.CustomFieldValue, error) {
	const query = `
        SELECT v.field_id, v.field_name, v.value
        FROM ticket_custom_values v
        LEFT JOIN template_fields f ON f.id = v.field_id
        WHERE v.ticket_id=$1
        ORDER BY COALESCE(f.sort_order, 0), v.field_name`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []domain.CustomFieldValue{}
	for rows.Next() {
		var v domain.CustomFieldValue
		if err := rows.Scan(&v.FieldID, &v.FieldName, &v.Value); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.OverdueAt != nil {
		args = append(args, *filter.OverdueAt, domain.TicketStatusClosed)
		clauses = append(clauses, fmt.Sprintf("sla_due_at IS NOT NULL AND sla_due_at < $%d AND status <> $%d", len(args)-1, len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket    domain.Ticket
		action    *string
		comment   *string
		decidedBy *string
		decidedAt *time.Time
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.RequesterID,
		&ticket.TemplateID,
		&ticket.ItemID,
		&ticket.ServiceID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.RootCause,
		&ticket.IssueCategory,
		&action,
		&comment,
		&decidedBy,
		&decidedAt,
		&ticket.SLADueAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	if action != nil {
		ticket.Approval = &domain.ApprovalDecision{Action: domain.ApprovalAction(*action)}
		if comment != nil {
			ticket.Approval.Comment = *comment
		}
		if decidedBy != nil {
			ticket.Approval.DecidedBy = *decidedBy
		}
		if decidedAt != nil {
			ticket.Approval.DecidedAt = *decidedAt
		}
	}
	return &ticket, nil
}
