package notification_test

import (
	"context"
	"errors"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/notification"
	emailsvc "github.com/SinghVishwajeet09/Student-Smart-Hub/services/email"
	inmemdb "github.com/SinghVishwajeet09/Student-Smart-Hub/storage/database/inmem"
)

// addressBook maps user ids to addresses; unknown ids fail resolution.
type addressBook map[string]mail.Address

func (b addressBook) GetUserAddress(_ context.Context, userID string) (mail.Address, error) {
	addr, ok := b[userID]
	if !ok {
		return mail.Address{}, errors.New("unknown user")
	}
	return addr, nil
}

var testBook = addressBook{
	"user-1": {Name: "User One", Address: "one@test.cd"},
	"user-2": {Name: "User Two", Address: "two@test.cd"},
}

func setup(t *testing.T) *notification.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	conf := &core.Config{AppName: "Student Smart Hub"}
	return notification.NewService(inmemdb.NewNotificationRepository(db), testBook, emailsvc.NewConsoleServiceMock(conf))
}

func TestService_Notify(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, "user-1", notification.KindSuccess, "Activity submitted"))
	require.NoError(t, svc.Notify(ctx, "user-1", "bogus-kind", "Falls back to info"))
	require.NoError(t, svc.Notify(ctx, "user-2", notification.KindError, "Activity rejected"))

	notifs, err := svc.QueryForUser(ctx, "user-1", false)
	require.NoError(t, err)
	require.Len(t, notifs, 2)
	for _, n := range notifs {
		assert.Equal(t, "user-1", n.UserID)
		assert.False(t, n.IsRead())
	}

	kinds := []string{notifs[0].Kind, notifs[1].Kind}
	assert.Contains(t, kinds, notification.KindSuccess)
	assert.Contains(t, kinds, notification.KindInfo) // unknown kind downgraded
}

func TestService_Notify_emailMirror(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	emailsvc.SentMessages = nil
	require.NoError(t, svc.Notify(ctx, "user-1", notification.KindSuccess, "Activity submitted"))

	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, []mail.Address{testBook["user-1"]}, msg.To)
	assert.Equal(t, "You have a new notification", msg.Subject)
	assert.Equal(t, "Activity submitted", msg.TextContent)

	t.Run("unresolvable address only skips the mirror", func(t *testing.T) {
		emailsvc.SentMessages = nil
		require.NoError(t, svc.Notify(ctx, "ghost", notification.KindInfo, "Hello"))

		assert.Empty(t, emailsvc.SentMessages)
		notifs, err := svc.QueryForUser(ctx, "ghost", false)
		require.NoError(t, err)
		assert.Len(t, notifs, 1)
	})
}

func TestService_MarkRead(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, "user-1", notification.KindInfo, "Hello"))
	notifs, err := svc.QueryForUser(ctx, "user-1", true)
	require.NoError(t, err)
	require.Len(t, notifs, 1)

	t.Run("marks and is idempotent", func(t *testing.T) {
		read, err := svc.MarkRead(ctx, "user-1", notifs[0].ID)
		require.NoError(t, err)
		assert.True(t, read.IsRead())
		firstReadAt := read.ReadAt.Time

		again, err := svc.MarkRead(ctx, "user-1", notifs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, firstReadAt, again.ReadAt.Time)

		unread, err := svc.QueryForUser(ctx, "user-1", true)
		require.NoError(t, err)
		assert.Empty(t, unread)
	})

	t.Run("someone else's notification is not found", func(t *testing.T) {
		_, err := svc.MarkRead(ctx, "user-2", notifs[0].ID)
		assert.Equal(t, notification.ErrNotFound, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.MarkRead(ctx, "user-1", "nope")
		assert.Equal(t, notification.ErrNotFound, err)
	})
}
