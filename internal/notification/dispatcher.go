package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GHXPortal/internal/auth"
	"GHXPortal/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RecipientFinder resolves an audience to users.
type RecipientFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error)
	FindActiveByRoles(ctx context.Context, roles []auth.Role) ([]*auth.User, error)
}

// Sender delivers a send request.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (*DeliveryReport, error)
}

// Dispatcher delivers each request once over the requested channels. There are
// no retries; partial failures are counted in the report.
type Dispatcher struct {
	recipients RecipientFinder
	store      Store
	mailer     config.Mailer
	publisher  Publisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewDispatcher(recipients RecipientFinder, store Store, mailer config.Mailer, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		recipients: recipients,
		store:      store,
		mailer:     mailer,
		publisher:  publisher,
		logger:     logger.Named("notification.dispatch"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Send returns an error when the in-app write failed or when every email failed.
func (d *Dispatcher) Send(ctx context.Context, req SendRequest) (*DeliveryReport, error) {
	if req.Channel == "" {
		req.Channel = ChannelInApp
	}
	report := &DeliveryReport{}

	users, err := d.resolve(ctx, req.Audience)
	if err != nil {
		return report, fmt.Errorf("resolve recipients: %w", err)
	}
	report.Recipients = len(users)
	if len(users) == 0 {
		d.logger.Debug("no recipients for notification", zap.String("title", req.Title))
		return report, nil
	}

	var errs []error
	if req.Channel.includesInApp() {
		if err := d.deliverInApp(ctx, req, users, report); err != nil {
			errs = append(errs, err)
		}
	}
	if req.Channel.includesEmail() {
		if err := d.deliverEmail(ctx, req, users, report); err != nil {
			errs = append(errs, err)
		}
	}

	d.logger.Info("notification dispatched",
		zap.String("type", string(req.Type)),
		zap.String("channel", string(req.Channel)),
		zap.Int("recipients", report.Recipients),
		zap.Int("in_app", report.InApp),
		zap.Int("pushed", report.Pushed),
		zap.Int("emails_sent", report.EmailsSent),
		zap.Int("emails_failed", report.EmailsFailed))
	return report, errors.Join(errs...)
}

func (d *Dispatcher) resolve(ctx context.Context, a Audience) ([]*auth.User, error) {
	seen := make(map[primitive.ObjectID]bool)
	var users []*auth.User
	add := func(u *auth.User) {
		if u != nil && u.IsActive && !seen[u.ID] {
			seen[u.ID] = true
			users = append(users, u)
		}
	}

	for _, id := range a.UserIDs {
		u, err := d.recipients.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			d.logger.Warn("skipping unknown recipient", zap.String("user_id", id.Hex()))
			continue
		}
		add(u)
	}
	if len(a.Roles) > 0 {
		byRole, err := d.recipients.FindActiveByRoles(ctx, a.Roles)
		if err != nil {
			return nil, err
		}
		for _, u := range byRole {
			add(u)
		}
	}
	return users, nil
}

func (d *Dispatcher) deliverInApp(ctx context.Context, req SendRequest, users []*auth.User, report *DeliveryReport) error {
	now := d.now()
	items := make([]*Notification, 0, len(users))
	for _, u := range users {
		items = append(items, &Notification{
			ID:          primitive.NewObjectID(),
			Title:       req.Title,
			Message:     req.Message,
			Type:        req.Type,
			Priority:    req.Priority,
			RecipientID: u.ID,
			SenderID:    req.SenderID,
			Metadata:    req.Metadata,
			Channel:     req.Channel,
			ActionURL:   req.ActionURL,
			SentAt:      &now,
			CreatedAt:   now,
		})
	}
	if err := d.store.InsertMany(ctx, items); err != nil {
		trackDelivery(string(ChannelInApp), "failed", len(items))
		return fmt.Errorf("store in-app notifications: %w", err)
	}
	report.InApp = len(items)
	trackDelivery(string(ChannelInApp), "sent", len(items))

	for _, n := range items {
		payload := ToNotificationResponses([]*Notification{n})[0]
		if err := d.publisher.Publish(ctx, UserChannel(n.RecipientID.Hex()), payload); err != nil {
			d.logger.Debug("realtime push failed", zap.String("user_id", n.RecipientID.Hex()), zap.Error(err))
			trackDelivery("realtime", "failed", 1)
			continue
		}
		report.Pushed++
	}
	trackDelivery("realtime", "sent", report.Pushed)
	return nil
}

func (d *Dispatcher) deliverEmail(ctx context.Context, req SendRequest, users []*auth.User, report *DeliveryReport) error {
	var lastErr error
	for _, u := range users {
		body, err := renderEmail(emailData{Name: u.Name, Title: req.Title, Message: req.Message, ActionURL: req.ActionURL})
		if err != nil {
			return fmt.Errorf("render email: %w", err)
		}
		if err := d.mailer.Send(ctx, config.Email{To: u.Email, Subject: req.Title, HTML: body}); err != nil {
			d.logger.Warn("email delivery failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
			report.EmailsFailed++
			lastErr = err
			continue
		}
		report.EmailsSent++
	}
	trackDelivery(string(ChannelEmail), "sent", report.EmailsSent)
	trackDelivery(string(ChannelEmail), "failed", report.EmailsFailed)

	if report.EmailsSent == 0 && report.EmailsFailed > 0 {
		return fmt.Errorf("email delivery failed for all %d recipients: %w", report.EmailsFailed, lastErr)
	}
	return nil
}
