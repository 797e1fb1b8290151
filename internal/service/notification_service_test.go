package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/config"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/events"
	"github.com/yanryp/servicedesk-sub004/internal/notify"
)

type fakeChannels struct {
	mu       sync.Mutex
	mails    []notify.Message
	hooks    []events.Event
	attempts int
	hookErr  error
}

func (f *fakeChannels) Send(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mails = append(f.mails, msg)
	return nil
}

func (f *fakeChannels) Post(_ context.Context, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.hookErr != nil {
		return f.hookErr
	}
	f.hooks = append(f.hooks, payload.(events.Event))
	return nil
}

func (f *fakeChannels) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.mails), len(f.hooks)
}

func startNotifications(t *testing.T, cfg config.NotificationConfig, ch *fakeChannels) events.Dispatcher {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc := NewNotificationService(dispatcher, zap.NewNop(), cfg, NotificationChannels{Mail: ch, Webhook: ch})
	svc.RegisterHandlers()
	go svc.Run(ctx)
	return dispatcher
}

func TestPendingTicketMailsApprovers(t *testing.T) {
	ch := &fakeChannels{}
	dispatcher := startNotifications(t, config.NotificationConfig{ApproverEmails: []string{"kabag@bank.test"}}, ch)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventTicketCreated,
		TicketID:  "t-1",
		Timestamp: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Payload: events.TicketCreatedPayload{
			ExternalKey: "TCK-1A2B3C4D",
			Status:      domain.TicketStatusPendingApproval,
			Priority:    domain.TicketPriorityHigh,
			Title:       "Akses core banking",
		},
	}))

	require.Eventually(t, func() bool {
		mails, hooks := ch.counts()
		return mails == 1 && hooks == 1
	}, time.Second, 5*time.Millisecond)

	ch.mu.Lock()
	defer ch.mu.Unlock()
	assert.Equal(t, []string{"kabag@bank.test"}, ch.mails[0].To)
	assert.Contains(t, ch.mails[0].Subject, "TCK-1A2B3C4D")
	assert.Equal(t, "t-1", ch.hooks[0].TicketID)
}

func TestOpenTicketSkipsMail(t *testing.T) {
	ch := &fakeChannels{}
	dispatcher := startNotifications(t, config.NotificationConfig{ApproverEmails: []string{"kabag@bank.test"}}, ch)

	for _, evt := range []events.Event{
		{Type: events.EventTicketCreated, TicketID: "t-2", Payload: events.TicketCreatedPayload{Status: domain.TicketStatusOpen}},
		{Type: events.EventTicketApproved, TicketID: "t-3"},
		{Type: events.EventTicketStatusChanged, TicketID: "t-3"},
	} {
		require.NoError(t, dispatcher.Publish(context.Background(), evt))
	}

	require.Eventually(t, func() bool {
		_, hooks := ch.counts()
		return hooks == 3
	}, time.Second, 5*time.Millisecond)
	mails, _ := ch.counts()
	assert.Zero(t, mails)
}

func TestFailedDeliveryDoesNotStopWorker(t *testing.T) {
	ch := &fakeChannels{hookErr: errors.New("connection refused")}
	dispatcher := startNotifications(t, config.NotificationConfig{}, ch)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketStatusChanged, TicketID: "t-1"}))
	require.Eventually(t, func() bool {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		return ch.attempts == 1
	}, time.Second, 5*time.Millisecond)

	ch.mu.Lock()
	ch.hookErr = nil
	ch.mu.Unlock()
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketStatusChanged, TicketID: "t-2"}))

	require.Eventually(t, func() bool {
		_, hooks := ch.counts()
		return hooks == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "t-2", ch.hooks[0].TicketID)
}

func TestFullQueueDrops(t *testing.T) {
	ch := &fakeChannels{}
	svc := NewNotificationService(nil, zap.NewNop(), config.NotificationConfig{QueueSize: 1}, NotificationChannels{Webhook: ch})

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.handleTicketStatusChanged(context.Background(), events.Event{Type: events.EventTicketStatusChanged}))
	}
	assert.Len(t, svc.outbox, 1)
}
