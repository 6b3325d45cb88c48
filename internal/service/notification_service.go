package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/events"
	"github.com/spec-kit/amelio/internal/mail"
	"github.com/spec-kit/amelio/internal/observability"
	"github.com/spec-kit/amelio/internal/repository"
	"github.com/spec-kit/amelio/internal/worker"
)

// NotificationService turns committed ticket events into mails to the ticket creator.
// Delivery runs on the worker pool; jobs of one ticket are delivered in publication order.
type NotificationService struct {
	dispatcher events.Dispatcher
	pool       *worker.Pool
	users      repository.UserRepository
	tickets    repository.TicketRepository
	renderer   *mail.Renderer
	sender     mail.Sender
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators for notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Pool       *worker.Pool
	UserRepo   repository.UserRepository
	TicketRepo repository.TicketRepository
	Renderer   *mail.Renderer
	Sender     mail.Sender
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		pool:       deps.Pool,
		users:      deps.UserRepo,
		tickets:    deps.TicketRepo,
		renderer:   deps.Renderer,
		sender:     deps.Sender,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleTicketCommentAdded)
}

func (n *NotificationService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.enqueue(event, func(ctx context.Context) (string, error) {
		return n.deliverStatusChange(ctx, event.TicketID, payload)
	})
	return nil
}

func (n *NotificationService) handleTicketCommentAdded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentAddedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.enqueue(event, func(ctx context.Context) (string, error) {
		return n.deliverComment(ctx, event.TicketID, payload)
	})
	return nil
}

// enqueue hands delivery to the pool. deliver returns the recipient address, which is
// empty when the failure happened before the recipient was known. A full queue drops
// the notification; the ticket change it reports is already committed.
func (n *NotificationService) enqueue(event events.Event, deliver func(ctx context.Context) (string, error)) {
	eventType := string(event.Type)
	err := n.pool.Submit(worker.Job{
		Key:  event.TicketID,
		Name: eventType,
		Run: func(ctx context.Context) {
			recipient, err := deliver(ctx)
			if err != nil {
				n.metrics.RecordNotification(eventType, observability.NotificationFailed)
				n.logger.Error("notification failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", eventType),
					zap.Int64("ticket_id", event.TicketID),
					zap.String("recipient", recipient),
					zap.Error(err),
				)
				return
			}
			n.metrics.RecordNotification(eventType, observability.NotificationSent)
		},
	})
	if err != nil {
		n.metrics.RecordNotification(eventType, observability.NotificationDropped)
		n.logger.Error("notification dropped",
			zap.String("event_id", event.ID),
			zap.String("event_type", eventType),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err),
		)
	}
}

func (n *NotificationService) deliverStatusChange(ctx context.Context, ticketID int64, payload events.TicketStatusChangedPayload) (string, error) {
	ticket, creator, err := n.loadTicketAndCreator(ctx, ticketID)
	if err != nil {
		return "", err
	}
	subject, body := n.renderer.StatusChange(creator.Name, mail.StatusDetails{
		TicketTitle: ticket.Title,
		TicketID:    ticket.ID,
		OldStatus:   payload.OldStatus,
		NewStatus:   payload.NewStatus,
	})
	return creator.Username, n.send(ctx, creator, subject, body)
}

func (n *NotificationService) deliverComment(ctx context.Context, ticketID int64, payload events.TicketCommentAddedPayload) (string, error) {
	ticket, creator, err := n.loadTicketAndCreator(ctx, ticketID)
	if err != nil {
		return "", err
	}
	writer, err := n.users.FindByID(ctx, payload.WriterID)
	if err != nil {
		return creator.Username, fmt.Errorf("load comment writer: %w", err)
	}
	subject, body := n.renderer.NewComment(creator.Name, mail.CommentDetails{
		TicketTitle: ticket.Title,
		TicketID:    ticket.ID,
		Comment:     payload.Message,
		WriterName:  writer.Name,
	})
	return creator.Username, n.send(ctx, creator, subject, body)
}

func (n *NotificationService) loadTicketAndCreator(ctx context.Context, ticketID int64) (*domain.Ticket, *domain.User, error) {
	ticket, err := n.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, nil, fmt.Errorf("load ticket: %w", err)
	}
	creator, err := n.users.FindTicketCreator(ctx, ticketID)
	if err != nil {
		return nil, nil, fmt.Errorf("load ticket creator: %w", err)
	}
	return ticket, creator, nil
}

func (n *NotificationService) send(ctx context.Context, recipient *domain.User, subject, body string) error {
	err := n.sender.Send(ctx, mail.Mail{
		To:      mail.Address{Email: recipient.Username, Name: recipient.Name},
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", recipient.Username, err)
	}
	return nil
}

// SendInvitation mails the activation link to a freshly invited user.
func (n *NotificationService) SendInvitation(user domain.User) {
	const eventType = "user_invited"
	err := n.pool.Submit(worker.Job{
		Key:  user.ID,
		Name: eventType,
		Run: func(ctx context.Context) {
			subject, body := n.renderer.Invitation(user.Name, user.Code)
			if err := n.send(ctx, &user, subject, body); err != nil {
				n.metrics.RecordNotification(eventType, observability.NotificationFailed)
				n.logger.Error("notification failed",
					zap.String("event_type", eventType),
					zap.Int64("user_id", user.ID),
					zap.String("recipient", user.Username),
					zap.Error(err),
				)
				return
			}
			n.metrics.RecordNotification(eventType, observability.NotificationSent)
		},
	})
	if err != nil {
		n.metrics.RecordNotification(eventType, observability.NotificationDropped)
		n.logger.Error("notification dropped",
			zap.String("event_type", eventType),
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}
}
