package activity_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
	inmemdb "github.com/SinghVishwajeet09/Student-Smart-Hub/storage/database/inmem"
)

type fakeNotifier struct {
	mu       sync.Mutex
	userIDs  []string
	kinds    []string
	messages []string
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, userID, kind, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userIDs = append(f.userIDs, userID)
	f.kinds = append(f.kinds, kind)
	f.messages = append(f.messages, message)
	return f.err
}

func setup(t *testing.T) (*activity.Service, *fakeNotifier) {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	notifier := &fakeNotifier{}
	return activity.NewService(inmemdb.NewActivityRepository(db), notifier), notifier
}

func validNewActivity() activity.NewActivity {
	return activity.NewActivity{
		Title:          "Hackathon 2026",
		ActivityType:   "competition",
		Description:    "Built a line-following robot with my team",
		StartDate:      "2026-01-10",
		EndDate:        "2026-01-12",
		DurationHours:  "8",
		Venue:          "Main auditorium",
		Organizer:      "IEEE Student Branch",
		RoleInActivity: "Team Lead",
	}
}

func TestService_Create(t *testing.T) {
	svc, notifier := setup(t)
	ctx := context.Background()

	files := []activity.Attachment{
		{Filename: "cert.pdf", Size: 8, ContentType: "application/pdf"},
	}
	act, err := svc.Create(ctx, "student-1", validNewActivity(), files...)
	require.NoError(t, err)

	assert.NotEmpty(t, act.ID)
	assert.Equal(t, "student-1", act.StudentID)
	assert.Equal(t, activity.StatusPending, act.Status)
	assert.Equal(t, "2026-01-10", act.StartDate.Format(activity.DateLayout))
	require.True(t, act.EndDate.Valid)
	assert.Equal(t, "2026-01-12", act.EndDate.Time.Format(activity.DateLayout))
	assert.Equal(t, float64(8), act.DurationHours)
	require.Len(t, act.Attachments, 1)
	assert.Equal(t, "cert.pdf", act.Attachments[0].Filename)
	assert.Equal(t, act.ID, act.Attachments[0].ActivityID)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "student-1", notifier.userIDs[0])
	assert.Equal(t, `Activity "Hackathon 2026" submitted for approval`, notifier.messages[0])
}

func TestService_Create_notifierFailureIsIgnored(t *testing.T) {
	svc, notifier := setup(t)
	notifier.err = assert.AnError

	act, err := svc.Create(context.Background(), "student-1", validNewActivity())
	require.NoError(t, err)
	assert.NotEmpty(t, act.ID)
}

func TestService_Query(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	na1 := validNewActivity()
	act1, err := svc.Create(ctx, "student-1", na1)
	require.NoError(t, err)

	na2 := validNewActivity()
	na2.Title = "Community Cleanup"
	na2.Organizer = "Rotary Club"
	_, err = svc.Create(ctx, "student-2", na2)
	require.NoError(t, err)

	t.Run("by student", func(t *testing.T) {
		acts, err := svc.Query(ctx, activity.QueryFilter{StudentID: "student-1"})
		require.NoError(t, err)
		require.Len(t, acts, 1)
		assert.Equal(t, act1.ID, acts[0].ID)
	})

	t.Run("by search", func(t *testing.T) {
		acts, err := svc.Query(ctx, activity.QueryFilter{Search: "cleanup"})
		require.NoError(t, err)
		require.Len(t, acts, 1)
		assert.Equal(t, "Community Cleanup", acts[0].Title)
	})

	t.Run("by status", func(t *testing.T) {
		acts, err := svc.Query(ctx, activity.QueryFilter{Status: activity.StatusApproved})
		require.NoError(t, err)
		assert.Empty(t, acts)
	})
}

func TestService_Update(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	act, err := svc.Create(ctx, "student-1", validNewActivity())
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, act.ID, activity.StatusApproved)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, act.ID, activity.UpdateActivity{
		Title:   "Hackathon 2026 (Regional)",
		EndDate: "2026-01-13",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hackathon 2026 (Regional)", updated.Title)
	assert.Equal(t, "2026-01-13", updated.EndDate.Time.Format(activity.DateLayout))
	// untouched fields survive
	assert.Equal(t, "competition", updated.ActivityType)
	// an edit goes back through approval
	assert.Equal(t, activity.StatusPending, updated.Status)
}

func TestService_SetStatus(t *testing.T) {
	svc, notifier := setup(t)
	ctx := context.Background()

	act, err := svc.Create(ctx, "student-1", validNewActivity())
	require.NoError(t, err)

	t.Run("invalid status", func(t *testing.T) {
		_, err := svc.SetStatus(ctx, act.ID, "archived")
		assert.Equal(t, activity.ErrInvalidStatus, err)
	})

	t.Run("approval notifies the owner", func(t *testing.T) {
		updated, err := svc.SetStatus(ctx, act.ID, activity.StatusApproved)
		require.NoError(t, err)
		assert.True(t, updated.IsApproved())

		last := len(notifier.messages) - 1
		assert.Equal(t, "student-1", notifier.userIDs[last])
		assert.Equal(t, "info", notifier.kinds[last])
		assert.Equal(t, `Your activity "Hackathon 2026" is now approved`, notifier.messages[last])
	})

	t.Run("rejection uses the error kind", func(t *testing.T) {
		_, err := svc.SetStatus(ctx, act.ID, activity.StatusRejected)
		require.NoError(t, err)

		last := len(notifier.kinds) - 1
		assert.Equal(t, "error", notifier.kinds[last])
	})
}

func TestService_Delete(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	act, err := svc.Create(ctx, "student-1", validNewActivity())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, act.ID))
	_, err = svc.GetByID(ctx, act.ID)
	assert.Equal(t, activity.ErrNotFound, err)
}
