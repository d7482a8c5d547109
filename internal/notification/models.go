package notification

import (
	"time"

	"GHXPortal/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Type string

const (
	TypeSystem        Type = "SYSTEM"
	TypeProgram       Type = "PROGRAM"
	TypeMeeting       Type = "MEETING"
	TypeApplication   Type = "APPLICATION"
	TypeDeadline      Type = "DEADLINE"
	TypeCollaboration Type = "COLLABORATION"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Channel selects how a send request is delivered.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "in_app"
	ChannelAll   Channel = "all"
)

func (c Channel) includesInApp() bool { return c == ChannelInApp || c == ChannelAll }
func (c Channel) includesEmail() bool { return c == ChannelEmail || c == ChannelAll }

// Notification is one in-app message for one recipient.
type Notification struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty"`
	Title        string                 `bson:"title"`
	Message      string                 `bson:"message"`
	Type         Type                   `bson:"type"`
	Priority     Priority               `bson:"priority"`
	IsRead       bool                   `bson:"is_read"`
	ReadAt       *time.Time             `bson:"read_at,omitempty"`
	RecipientID  primitive.ObjectID     `bson:"recipient_id"`
	SenderID     primitive.ObjectID     `bson:"sender_id,omitempty"`
	Metadata     map[string]interface{} `bson:"metadata,omitempty"`
	Channel      Channel                `bson:"channel"`
	ActionURL    string                 `bson:"action_url,omitempty"`
	ScheduledFor *time.Time             `bson:"scheduled_for,omitempty"`
	SentAt       *time.Time             `bson:"sent_at,omitempty"`
	CreatedAt    time.Time              `bson:"created_at"`
}

// Audience is who a send request targets: explicit users, every active user
// holding one of the roles, or both.
type Audience struct {
	UserIDs []primitive.ObjectID
	Roles   []auth.Role
}

// SendRequest is what the coordinator hands to the delivery layer.
type SendRequest struct {
	Type      Type
	Priority  Priority
	Title     string
	Message   string
	ActionURL string
	Channel   Channel
	Audience  Audience
	SenderID  primitive.ObjectID
	Metadata  map[string]interface{}
}

// DeliveryReport counts what one send request achieved.
type DeliveryReport struct {
	Recipients   int `json:"recipients"`
	InApp        int `json:"inApp"`
	Pushed       int `json:"pushed"`
	EmailsSent   int `json:"emailsSent"`
	EmailsFailed int `json:"emailsFailed"`
}

type NotificationResponse struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      Type                   `json:"type"`
	Priority  Priority               `json:"priority"`
	IsRead    bool                   `json:"isRead"`
	ReadAt    *time.Time             `json:"readAt,omitempty"`
	SenderID  string                 `json:"senderId,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ActionURL string                 `json:"actionUrl,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

func ToNotificationResponses(items []*Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		r := NotificationResponse{
			ID:        n.ID.Hex(),
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Priority:  n.Priority,
			IsRead:    n.IsRead,
			ReadAt:    n.ReadAt,
			Metadata:  n.Metadata,
			ActionURL: n.ActionURL,
			CreatedAt: n.CreatedAt,
		}
		if !n.SenderID.IsZero() {
			r.SenderID = n.SenderID.Hex()
		}
		out = append(out, r)
	}
	return out
}
