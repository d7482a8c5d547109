package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"GHXPortal/internal/auth"
	"GHXPortal/internal/auth/authtest"
	"GHXPortal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu    sync.Mutex
	items []*Notification
	err   error
}

func (s *memoryStore) InsertMany(_ context.Context, items []*Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, items...)
	return nil
}

func (s *memoryStore) ListForRecipient(_ context.Context, recipient primitive.ObjectID, unreadOnly bool, limit int64) ([]*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*Notification{}
	for i := len(s.items) - 1; i >= 0; i-- {
		n := s.items[i]
		if n.RecipientID != recipient || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (s *memoryStore) CountUnread(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, item := range s.items {
		if item.RecipientID == recipient && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) MarkRead(_ context.Context, id, recipient primitive.ObjectID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id && item.RecipientID == recipient {
			item.IsRead = true
			item.ReadAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) MarkAllRead(_ context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, item := range s.items {
		if item.RecipientID == recipient && !item.IsRead {
			item.IsRead = true
			item.ReadAt = &at
			n++
		}
	}
	return n, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []config.Email
	fail map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, e config.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[e.To] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, e)
	return nil
}

type recordingPublisher struct {
	channels []string
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, _ interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.channels = append(p.channels, channel)
	return nil
}

type dispatchFixture struct {
	users     *authtest.MemoryStore
	store     *memoryStore
	mailer    *recordingMailer
	publisher *recordingPublisher
	d         *Dispatcher
	startup   *auth.User
	investor  *auth.User
	inactive  *auth.User
	admin     *auth.User
}

func newDispatchFixture() *dispatchFixture {
	f := &dispatchFixture{
		startup:  &auth.User{Name: "Sam", Email: "sam@example.com", Role: auth.RoleStartup, IsActive: true},
		investor: &auth.User{Name: "Ivy", Email: "ivy@example.com", Role: auth.RoleInvestor, IsActive: true},
		inactive: &auth.User{Name: "Old", Email: "old@example.com", Role: auth.RoleStartup, IsActive: false},
		admin:    &auth.User{Name: "Root", Email: "root@example.com", Role: auth.RoleAdmin, IsActive: true},
	}
	f.users = authtest.NewMemoryStore(f.startup, f.investor, f.inactive, f.admin)
	f.store = &memoryStore{}
	f.mailer = &recordingMailer{fail: map[string]bool{}}
	f.publisher = &recordingPublisher{}
	f.d = NewDispatcher(f.users, f.store, f.mailer, f.publisher, zap.NewNop())
	return f
}

func TestDispatcher_InAppFanOut(t *testing.T) {
	f := newDispatchFixture()
	report, err := f.d.Send(context.Background(), SendRequest{
		Type:     TypeProgram,
		Priority: PriorityMedium,
		Title:    "New program",
		Message:  "hello",
		Channel:  ChannelInApp,
		Audience: Audience{Roles: auth.MemberRoles, UserIDs: []primitive.ObjectID{f.startup.ID}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Recipients)
	assert.Equal(t, 2, report.InApp)
	assert.Equal(t, 2, report.Pushed)
	assert.Zero(t, report.EmailsSent)
	assert.Empty(t, f.mailer.sent)

	require.Len(t, f.store.items, 2)
	for _, n := range f.store.items {
		assert.NotEqual(t, f.inactive.ID, n.RecipientID)
		assert.NotEqual(t, f.admin.ID, n.RecipientID)
		assert.False(t, n.IsRead)
		assert.NotNil(t, n.SentAt)
	}
	assert.ElementsMatch(t, []string{UserChannel(f.startup.ID.Hex()), UserChannel(f.investor.ID.Hex())}, f.publisher.channels)
}

func TestDispatcher_EmailPartialFailure(t *testing.T) {
	f := newDispatchFixture()
	f.mailer.fail["ivy@example.com"] = true

	report, err := f.d.Send(context.Background(), SendRequest{
		Title:    "Deadline",
		Message:  "closing soon",
		Channel:  ChannelEmail,
		Audience: Audience{Roles: []auth.Role{auth.RoleStartup, auth.RoleInvestor}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.EmailsSent)
	assert.Equal(t, 1, report.EmailsFailed)
	assert.Empty(t, f.store.items)
	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].HTML, "Hi Sam")
}

func TestDispatcher_AllEmailsFailing(t *testing.T) {
	f := newDispatchFixture()
	f.mailer.fail["sam@example.com"] = true

	report, err := f.d.Send(context.Background(), SendRequest{
		Title:    "Hi",
		Channel:  ChannelAll,
		Audience: Audience{UserIDs: []primitive.ObjectID{f.startup.ID}},
	})
	require.Error(t, err)
	assert.Equal(t, 1, report.InApp)
	assert.Equal(t, 1, report.EmailsFailed)
}

func TestDispatcher_StoreFailureAndPushFailure(t *testing.T) {
	f := newDispatchFixture()
	f.publisher.err = errors.New("pubnub unreachable")
	report, err := f.d.Send(context.Background(), SendRequest{
		Title:    "Hi",
		Audience: Audience{UserIDs: []primitive.ObjectID{f.startup.ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.InApp)
	assert.Zero(t, report.Pushed)

	f.store.err = errors.New("write concern")
	_, err = f.d.Send(context.Background(), SendRequest{
		Title:    "Hi",
		Audience: Audience{UserIDs: []primitive.ObjectID{f.startup.ID}},
	})
	assert.ErrorIs(t, err, f.store.err)
}

func TestDispatcher_UnknownRecipientIsSkipped(t *testing.T) {
	f := newDispatchFixture()
	report, err := f.d.Send(context.Background(), SendRequest{
		Title:    "Hi",
		Channel:  ChannelAll,
		Audience: Audience{UserIDs: []primitive.ObjectID{primitive.NewObjectID(), f.inactive.ID}},
	})
	require.NoError(t, err)
	assert.Zero(t, report.Recipients)
	assert.Empty(t, f.store.items)
	assert.Empty(t, f.mailer.sent)
}

func TestRenderEmailEscapes(t *testing.T) {
	body, err := renderEmail(emailData{Name: "<b>Sam</b>", Title: "T", Message: "M", ActionURL: "https://ghx.test/x"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<b>Sam</b>")
	assert.Contains(t, body, `href="https://ghx.test/x"`)
}
