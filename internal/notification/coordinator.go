package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"GHXPortal/internal/auth"
	"GHXPortal/internal/config"
	"GHXPortal/internal/program"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Coordinator turns domain events into send requests. It returns delivery
// errors to the caller, which decides whether they matter.
type Coordinator struct {
	sender  Sender
	baseURL string
	logger  *zap.Logger
}

func NewCoordinator(sender Sender, cfg *config.AppConfig, logger *zap.Logger) *Coordinator {
	return &Coordinator{sender: sender, baseURL: cfg.BaseURL, logger: logger.Named("notification")}
}

func (c *Coordinator) NotifyProgramCreated(ctx context.Context, p *program.Program) error {
	if p.Status == program.StatusDraft {
		trackEvent("program_created", "skipped")
		return nil
	}
	return c.dispatch(ctx, "program_created", SendRequest{
		Type:      TypeProgram,
		Priority:  PriorityMedium,
		Title:     "New program: " + p.Title,
		Message:   programSummary(p),
		ActionURL: c.programURL(p),
		Channel:   ChannelAll,
		Audience:  members(),
		SenderID:  p.CreatedBy,
		Metadata:  programMetadata(p, nil),
	})
}

func (c *Coordinator) NotifyProgramUpdated(ctx context.Context, p *program.Program, changes []string) error {
	if p.Status == program.StatusDraft || len(changes) == 0 {
		trackEvent("program_updated", "skipped")
		return nil
	}
	return c.dispatch(ctx, "program_updated", SendRequest{
		Type:      TypeProgram,
		Priority:  PriorityLow,
		Title:     "Program updated: " + p.Title,
		Message:   fmt.Sprintf("%s has been updated (%s).", p.Title, strings.Join(changes, ", ")),
		ActionURL: c.programURL(p),
		Channel:   ChannelInApp,
		Audience:  members(),
		Metadata:  programMetadata(p, map[string]interface{}{"changes": changes}),
	})
}

func (c *Coordinator) NotifyProgramStatusChanged(ctx context.Context, p *program.Program, from, to program.Status) error {
	if from == to || to == program.StatusDraft {
		trackEvent("program_status_changed", "skipped")
		return nil
	}
	priority := PriorityMedium
	channel := ChannelInApp
	if to == program.StatusPublished || to == program.StatusActive {
		priority = PriorityHigh
		channel = ChannelAll
	}
	return c.dispatch(ctx, "program_status_changed", SendRequest{
		Type:      TypeProgram,
		Priority:  priority,
		Title:     fmt.Sprintf("%s is now %s", p.Title, to),
		Message:   fmt.Sprintf("The status of %s changed from %s to %s.", p.Title, from, to),
		ActionURL: c.programURL(p),
		Channel:   channel,
		Audience:  members(),
		Metadata:  programMetadata(p, map[string]interface{}{"from": string(from), "to": string(to)}),
	})
}

func (c *Coordinator) NotifyProgramDeadlineApproaching(ctx context.Context, p *program.Program, daysLeft int) error {
	if p.Status == program.StatusDraft {
		trackEvent("program_deadline", "skipped")
		return nil
	}
	return c.dispatch(ctx, "program_deadline", SendRequest{
		Type:      TypeDeadline,
		Priority:  deadlinePriority(daysLeft),
		Title:     "Application deadline approaching: " + p.Title,
		Message:   fmt.Sprintf("Applications for %s close %s.", p.Title, daysPhrase(daysLeft)),
		ActionURL: c.programURL(p),
		Channel:   ChannelAll,
		Audience:  members(),
		Metadata:  programMetadata(p, map[string]interface{}{"daysLeft": daysLeft}),
	})
}

// NotifySessionBooked confirms a mentoring session to the member who booked it.
func (c *Coordinator) NotifySessionBooked(ctx context.Context, userID primitive.ObjectID, mentorName string, date time.Time, timeSlot string) error {
	return c.dispatch(ctx, "session_booked", SendRequest{
		Type:      TypeMeeting,
		Priority:  PriorityMedium,
		Title:     "Session booked with " + mentorName,
		Message:   fmt.Sprintf("Your session with %s on %s at %s is pending confirmation.", mentorName, date.Format("Mon, 02 Jan 2006"), timeSlot),
		ActionURL: c.baseURL + "/dashboard/calendar",
		Channel:   ChannelAll,
		Audience:  Audience{UserIDs: []primitive.ObjectID{userID}},
		Metadata:  map[string]interface{}{"mentorName": mentorName, "date": date, "timeSlot": timeSlot},
	})
}

// SendTest delivers a system notification to one user over every channel.
func (c *Coordinator) SendTest(ctx context.Context, recipientID, senderID primitive.ObjectID) (*DeliveryReport, error) {
	req := SendRequest{
		Type:     TypeSystem,
		Priority: PriorityLow,
		Title:    "Test notification",
		Message:  "This is a test notification from the GHX portal.",
		Channel:  ChannelAll,
		Audience: Audience{UserIDs: []primitive.ObjectID{recipientID}},
		SenderID: senderID,
	}
	report, err := c.sender.Send(ctx, req)
	if err != nil {
		trackEvent("test", "failed")
		return report, err
	}
	trackEvent("test", "sent")
	return report, nil
}

func (c *Coordinator) dispatch(ctx context.Context, event string, req SendRequest) error {
	report, err := c.sender.Send(ctx, req)
	if err != nil {
		trackEvent(event, "failed")
		return fmt.Errorf("%s: %w", event, err)
	}
	trackEvent(event, "sent")
	c.logger.Debug("event delivered", zap.String("event", event), zap.Int("recipients", report.Recipients))
	return nil
}

func (c *Coordinator) programURL(p *program.Program) string {
	return c.baseURL + "/dashboard/programs/" + p.ID.Hex()
}

func members() Audience {
	return Audience{Roles: auth.MemberRoles}
}

func programSummary(p *program.Program) string {
	if p.ShortDescription != "" {
		return p.ShortDescription
	}
	return fmt.Sprintf("A new %s program is open on GHX.", p.Category)
}

func programMetadata(p *program.Program, extra map[string]interface{}) map[string]interface{} {
	m := map[string]interface{}{
		"programId": p.ID.Hex(),
		"category":  string(p.Category),
		"status":    string(p.Status),
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func deadlinePriority(daysLeft int) Priority {
	switch {
	case daysLeft <= 1:
		return PriorityUrgent
	case daysLeft <= 3:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

func daysPhrase(daysLeft int) string {
	switch daysLeft {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", daysLeft)
	}
}
