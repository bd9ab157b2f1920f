package portfoliosvc_test

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/user"
	emailsvc "github.com/SinghVishwajeet09/Student-Smart-Hub/services/email"
	logsvc "github.com/SinghVishwajeet09/Student-Smart-Hub/services/logger"
	portfoliosvc "github.com/SinghVishwajeet09/Student-Smart-Hub/services/portfolio"
	inmemdb "github.com/SinghVishwajeet09/Student-Smart-Hub/storage/database/inmem"
)

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string, string) error { return nil }

type fixture struct {
	svc    *portfoliosvc.Service
	actSvc *activity.Service
	usrSvc *user.Service
}

func setup(t *testing.T, rendererURL string) *fixture {
	t.Helper()

	conf := &core.Config{
		AppName:         "Student Smart Hub",
		FrontendBaseURL: "http://localhost:3000",
		Portfolio:       core.PortfolioConfig{RendererURL: rendererURL, Timeout: 5 * time.Second},
	}
	db, err := inmemdb.Open()
	require.NoError(t, err)

	usrSvc := user.NewService(inmemdb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)
	actSvc := activity.NewService(inmemdb.NewActivityRepository(db), noopNotifier{})
	logger := logsvc.NewConsoleLogger(log.New(io.Discard, "", 0))

	return &fixture{
		svc:    portfoliosvc.NewService(actSvc, usrSvc, conf, logger),
		actSvc: actSvc,
		usrSvc: usrSvc,
	}
}

func createStudent(t *testing.T, f *fixture) user.User {
	t.Helper()
	usr, err := f.usrSvc.Create(context.Background(), user.NewUser{
		Name:            "Awe Kid",
		Username:        "awe",
		Email:           "awe@test.cd",
		Password:        "LordMuseveni",
		PasswordConfirm: "LordMuseveni",
	})
	require.NoError(t, err)
	return usr
}

func createApprovedActivity(t *testing.T, f *fixture, studentID string) activity.Activity {
	t.Helper()
	ctx := context.Background()
	act, err := f.actSvc.Create(ctx, studentID, activity.NewActivity{
		Title:          "Hackathon 2026",
		ActivityType:   "competition",
		Description:    "Built a line-following robot with my team",
		StartDate:      "2026-01-10",
		DurationHours:  "8",
		RoleInActivity: "Team Lead",
	})
	require.NoError(t, err)
	act, err = f.actSvc.SetStatus(ctx, act.ID, activity.StatusApproved)
	require.NoError(t, err)
	return act
}

func TestService_Generate(t *testing.T) {
	var gotHTML []byte
	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHTML, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer renderer.Close()

	f := setup(t, renderer.URL)
	usr := createStudent(t, f)
	createApprovedActivity(t, f, usr.ID)

	pdf, err := f.svc.Generate(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.Contains(t, string(gotHTML), "Hackathon 2026")
	assert.Contains(t, string(gotHTML), usr.Name)
}

func TestService_Generate_noApprovedActivities(t *testing.T) {
	f := setup(t, "http://renderer.invalid")
	usr := createStudent(t, f)

	_, err := f.svc.Generate(context.Background(), usr.ID)
	assert.Equal(t, portfoliosvc.ErrNoActivities, err)
}

func TestService_Generate_rendererFailure(t *testing.T) {
	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer renderer.Close()

	f := setup(t, renderer.URL)
	usr := createStudent(t, f)
	createApprovedActivity(t, f, usr.ID)

	_, err := f.svc.Generate(context.Background(), usr.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer returned status 500")
}

func TestService_Generate_singleInFlightPerUser(t *testing.T) {
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer renderer.Close()

	f := setup(t, renderer.URL)
	usr := createStudent(t, f)
	createApprovedActivity(t, f, usr.ID)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Generate(context.Background(), usr.ID)
		done <- err
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, time.Millisecond)

	_, err := f.svc.Generate(context.Background(), usr.ID)
	assert.Equal(t, portfoliosvc.ErrGenerationInProgress, err)

	close(release)
	require.NoError(t, <-done)

	// the guard lifts once the generation completes
	pdf, err := f.svc.Generate(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
}
