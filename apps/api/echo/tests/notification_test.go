package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/notification"
)

func Test_notificationApi(t *testing.T) {
	student := createUser(t, "pinged", nil, true)
	other := createUser(t, "nosy", nil, true)

	// a submission pushes a notification to its owner
	submitActivity(t, student)

	list := func(t *testing.T, token, path string) []notification.Notification {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var notifs []notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &notifs); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		return notifs
	}

	t.Run("requires a token", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/notifications")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("lists the caller's notifications", func(t *testing.T) {
		notifs := list(t, getToken(t, student), "/v1/notifications")
		if len(notifs) != 1 {
			t.Fatalf("got %d notifications; want 1", len(notifs))
		}
		if notifs[0].UserID != student.ID {
			t.Errorf("UserID = %s; want %s", notifs[0].UserID, student.ID)
		}
		if notifs[0].Kind != notification.KindSuccess {
			t.Errorf("Kind = %s; want %s", notifs[0].Kind, notification.KindSuccess)
		}
		if notifs[0].IsRead() {
			t.Error("expected an unread notification")
		}
	})

	t.Run("someone else sees nothing", func(t *testing.T) {
		notifs := list(t, getToken(t, other), "/v1/notifications")
		if len(notifs) != 0 {
			t.Errorf("got %d notifications; want 0", len(notifs))
		}
	})

	t.Run("mark read", func(t *testing.T) {
		notifs := list(t, getToken(t, student), "/v1/notifications?unread=true")
		if len(notifs) != 1 {
			t.Fatalf("got %d unread notifications; want 1", len(notifs))
		}
		id := notifs[0].ID

		t.Run("someone else's notification is not found", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/"+id+"/read", getToken(t, other))
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
		})

		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/"+id+"/read", getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var read notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &read); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !read.IsRead() {
			t.Error("expected the notification to be read")
		}

		if unread := list(t, getToken(t, student), "/v1/notifications?unread=true"); len(unread) != 0 {
			t.Errorf("got %d unread notifications; want 0", len(unread))
		}
	})
}
