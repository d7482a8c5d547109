package notification

import (
	"context"
	"errors"
	"testing"

	"GHXPortal/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func seedInbox(store *memoryStore, recipient primitive.ObjectID, n int) []*Notification {
	items := make([]*Notification, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, &Notification{ID: primitive.NewObjectID(), RecipientID: recipient, Title: "t"})
	}
	store.items = append(store.items, items...)
	return items
}

func TestInboxReadState(t *testing.T) {
	store := &memoryStore{}
	svc := NewNotificationService(store, zap.NewNop())
	me, other := primitive.NewObjectID(), primitive.NewObjectID()
	mine := seedInbox(store, me, 3)
	theirs := seedInbox(store, other, 1)
	ctx := context.Background()

	n, err := svc.UnreadCount(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, svc.MarkRead(ctx, me, mine[0].ID))
	err = svc.MarkRead(ctx, me, theirs[0].ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	unread, err := svc.ListMine(ctx, me, true, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	updated, err := svc.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	n, err = svc.UnreadCount(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "other inboxes are untouched")
}

func TestListMine_ClampsLimit(t *testing.T) {
	store := &memoryStore{}
	svc := NewNotificationService(store, zap.NewNop())
	me := primitive.NewObjectID()
	seedInbox(store, me, maxListLimit+5)

	items, err := svc.ListMine(context.Background(), me, false, 1000)
	require.NoError(t, err)
	assert.Len(t, items, maxListLimit)

	items, err = svc.ListMine(context.Background(), me, false, -1)
	require.NoError(t, err)
	assert.Len(t, items, defaultListLimit)
}

func TestListMine_StoreFailure(t *testing.T) {
	svc := NewNotificationService(failingStore{err: errors.New("cursor killed")}, zap.NewNop())
	_, err := svc.ListMine(context.Background(), primitive.NewObjectID(), false, 10)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Failed to fetch notifications: cursor killed", appErr.Message)
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) ListForRecipient(context.Context, primitive.ObjectID, bool, int64) ([]*Notification, error) {
	return nil, f.err
}
