package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/events"
	"github.com/yanryp/servicedesk-sub004/internal/repository"
)

type memTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
	// raceTo simulates a concurrent writer that moves the ticket before the
	// conditional update lands.
	raceTo domain.TicketStatus
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("t-%d", r.seq)
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) UpdateFromStatus(_ context.Context, ticket *domain.Ticket, from domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.raceTo != "" {
		stored.Status = r.raceTo
		r.tickets[ticket.ID] = stored
		r.raceTo = ""
	}
	if stored.Status != from {
		return repository.ErrStatusChanged
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Ticket{}
	for i := 1; i <= r.seq; i++ {
		t, ok := r.tickets[fmt.Sprintf("t-%d", i)]
		if !ok {
			continue
		}
		if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		if filter.OverdueAt != nil && (t.SLADueAt == nil || !t.SLADueAt.Before(*filter.OverdueAt) || t.Status == domain.TicketStatusClosed) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memTicketRepo) put(t domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	t.ID = fmt.Sprintf("t-%d", r.seq)
	r.tickets[t.ID] = t
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
	err     error
}

func (r *memHistoryRepo) Create(_ context.Context, h *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	h.ID = fmt.Sprintf("h-%d", len(r.entries)+1)
	r.entries = append(r.entries, *h)
	return nil
}

func (r *memHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.TicketHistory{}
	for _, h := range r.entries {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}

type memCatalog struct {
	templates map[string]*domain.Template
	fields    map[string][]domain.FieldDefinition
	options   map[string][]domain.MasterDataOption
	fieldsErr error
	optsErr   error
}

func (c *memCatalog) GetByID(_ context.Context, id string) (*domain.Template, error) {
	tpl, ok := c.templates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return tpl, nil
}

func (c *memCatalog) Fields(_ context.Context, templateID string) ([]domain.FieldDefinition, error) {
	if c.fieldsErr != nil {
		return nil, c.fieldsErr
	}
	return c.fields[templateID], nil
}

func (c *memCatalog) Options(_ context.Context, fieldName string) ([]domain.MasterDataOption, error) {
	if c.optsErr != nil {
		return nil, c.optsErr
	}
	return c.options[fieldName], nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, len(d.events))
	for i, e := range d.events {
		out[i] = e.Type
	}
	return out
}

type memUsers struct {
	byID map[string]*domain.User
}

func (u *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := u.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (u *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range u.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

var errBackend = errors.New("backend unavailable")
