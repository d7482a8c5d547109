package notification

import (
	"context"
	"fmt"

	pubnub "github.com/pubnub/go/v7"
)

// Publisher pushes a message to a realtime channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// NewPublisher wraps pn, or returns a no-op publisher when PubNub is not configured.
func NewPublisher(pn *pubnub.PubNub) Publisher {
	if pn == nil {
		return noopPublisher{}
	}
	return &pubNubPublisher{pn: pn}
}

type pubNubPublisher struct {
	pn *pubnub.PubNub
}

func (p *pubNubPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, status, err := p.pn.Publish().Channel(channel).Message(message).Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish to %s: %w", channel, err)
	}
	if status.StatusCode >= 400 {
		return fmt.Errorf("pubnub publish to %s: status %d", channel, status.StatusCode)
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// UserChannel is the per-user realtime channel the dashboard subscribes to.
func UserChannel(userID string) string {
	return "notifications." + userID
}
