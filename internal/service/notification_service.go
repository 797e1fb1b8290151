package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/config"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/events"
	"github.com/yanryp/servicedesk-sub004/internal/notify"
)

// MailSender delivers e-mail.
type MailSender interface {
	Send(ctx context.Context, msg notify.Message) error
}

// WebhookPoster delivers JSON payloads.
type WebhookPoster interface {
	Post(ctx context.Context, payload any) error
}

// NotificationChannels are the outbound channels. A nil channel is skipped.
type NotificationChannels struct {
	Mail    MailSender
	Webhook WebhookPoster
}

type delivery struct {
	kind  string
	event events.Event
	send  func(context.Context) error
}

// NotificationService turns domain events into e-mail and webhook
// deliveries. Handlers only enqueue; Run performs the sends.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	channels   NotificationChannels
	outbox     chan delivery
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, channels NotificationChannels) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		channels:   channels,
		outbox:     make(chan delivery, size),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketApproved, n.handleApprovalDecided)
	n.dispatcher.Subscribe(events.EventTicketRejected, n.handleApprovalDecided)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

// Run performs queued deliveries until ctx is done. Failed deliveries are
// logged and dropped.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-n.outbox:
			sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout())
			err := d.send(sendCtx)
			cancel()
			if err != nil {
				n.logger.Warn("notification delivery failed",
					zap.String("channel", d.kind),
					zap.String("event_type", string(d.event.Type)),
					zap.String("ticket_id", d.event.TicketID),
					zap.Error(err))
				continue
			}
			n.logger.Debug("notification delivered",
				zap.String("channel", d.kind),
				zap.String("event_type", string(d.event.Type)),
				zap.String("ticket_id", d.event.TicketID))
		}
	}
}

// Pending-approval tickets mail the approvers; every event goes to the webhook.
func (n *NotificationService) handleTicketCreated(_ context.Context, event events.Event) error {
	n.logger.Info("ticket created", zap.String("ticket_id", event.TicketID))
	if p, ok := event.Payload.(events.TicketCreatedPayload); ok && p.Status == domain.TicketStatusPendingApproval {
		n.enqueueMail(event, n.cfg.ApproverEmails, notify.Message{
			Subject: fmt.Sprintf("[%s] Approval needed: %s", p.ExternalKey, p.Title),
			Body: fmt.Sprintf("Ticket %s (%s priority) is waiting for your approval.\nSubmitted at %s.",
				p.ExternalKey, p.Priority, event.Timestamp.Format(time.RFC1123)),
		})
	}
	n.enqueueWebhook(event)
	return nil
}

func (n *NotificationService) handleApprovalDecided(_ context.Context, event events.Event) error {
	n.logger.Info("approval decided", zap.String("ticket_id", event.TicketID), zap.String("event_type", string(event.Type)))
	n.enqueueWebhook(event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("ticket status changed", zap.String("ticket_id", event.TicketID))
	n.enqueueWebhook(event)
	return nil
}

func (n *NotificationService) enqueueMail(event events.Event, to []string, msg notify.Message) {
	if n.channels.Mail == nil || len(to) == 0 {
		return
	}
	msg.To = to
	n.enqueue(delivery{kind: "email", event: event, send: func(ctx context.Context) error {
		return n.channels.Mail.Send(ctx, msg)
	}})
}

func (n *NotificationService) enqueueWebhook(event events.Event) {
	if n.channels.Webhook == nil {
		return
	}
	n.enqueue(delivery{kind: "webhook", event: event, send: func(ctx context.Context) error {
		return n.channels.Webhook.Post(ctx, event)
	}})
}

func (n *NotificationService) enqueue(d delivery) {
	select {
	case n.outbox <- d:
	default:
		n.logger.Warn("notification queue full, dropping",
			zap.String("channel", d.kind),
			zap.String("ticket_id", d.event.TicketID))
	}
}
