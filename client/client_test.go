package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, srv.Client()), srv
}

func TestClient_Login(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/users/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["username"] != "awe" || creds["password"] != "s3cr3t" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication failed"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})
	defer srv.Close()

	t.Run("bad credentials surface the server's message", func(t *testing.T) {
		err := c.Login(context.Background(), "awe", "nope")
		require.Error(t, err)
		assert.Equal(t, "authentication failed", err.Error())
	})

	t.Run("token is stored for later calls", func(t *testing.T) {
		require.NoError(t, c.Login(context.Background(), "awe", "s3cr3t"))
		assert.Equal(t, "tok-123", c.token)
	})
}

func TestClient_SubmitActivity(t *testing.T) {
	form := activity.NewActivity{
		Title:          "Hackathon 2026",
		ActivityType:   "competition",
		Description:    "Built a line-following robot with my team",
		StartDate:      "2026-01-10",
		EndDate:        "2026-01-12",
		DurationHours:  "8",
		RoleInActivity: "Team Lead",
	}
	files := []activity.Attachment{
		{Filename: "cert.pdf", ContentType: "application/pdf"},
	}

	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/activities", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "Hackathon 2026", r.FormValue("title"))
		assert.Equal(t, "competition", r.FormValue("activityType"))
		assert.Equal(t, "2026-01-10", r.FormValue("startDate"))
		assert.Equal(t, "8", r.FormValue("durationHours"))
		assert.Equal(t, "Team Lead", r.FormValue("roleInActivity"))

		uploads := r.MultipartForm.File[activity.FilesField]
		require.Len(t, uploads, 1)
		assert.Equal(t, "cert.pdf", uploads[0].Filename)
		assert.Equal(t, "application/pdf", uploads[0].Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(activity.Activity{ID: "act-1"})
	})
	defer srv.Close()
	c.SetToken("tok-123")

	id, err := c.SubmitActivity(context.Background(), form, files)
	require.NoError(t, err)
	assert.Equal(t, "act-1", id)
}

func TestClient_SubmitActivity_validationErrors(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"title":   "Title must be at least 3 characters",
			"endDate": "End date must be after start date",
		})
	})
	defer srv.Close()

	_, err := c.SubmitActivity(context.Background(), activity.NewActivity{}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Title must be at least 3 characters", apiErr.Fields["title"])
	assert.Equal(t, "End date must be after start date", apiErr.Fields["endDate"])
	assert.Equal(t, "endDate: End date must be after start date; title: Title must be at least 3 characters", apiErr.Error())
}

func TestClient_GetActivity(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/activities/act-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(activity.Activity{ID: "act-1", Title: "Hackathon 2026"})
	})
	defer srv.Close()

	act, err := c.GetActivity(context.Background(), "act-1")
	require.NoError(t, err)
	assert.Equal(t, "Hackathon 2026", act.Title)
}

func TestClient_UpdateActivity(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/activities/act-1", r.URL.Path)

		var ua activity.UpdateActivity
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ua))
		assert.Equal(t, "New title", ua.Title)

		_ = json.NewEncoder(w).Encode(activity.Activity{ID: "act-1", Title: ua.Title})
	})
	defer srv.Close()

	act, err := c.UpdateActivity(context.Background(), "act-1", activity.UpdateActivity{Title: "New title"})
	require.NoError(t, err)
	assert.Equal(t, "New title", act.Title)
}

func TestClient_DeleteActivity(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/activities/act-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	defer srv.Close()

	assert.NoError(t, c.DeleteActivity(context.Background(), "act-1"))
}

func TestClient_GeneratePortfolio(t *testing.T) {
	t.Run("returns the PDF bytes", func(t *testing.T) {
		c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/activities/portfolio", r.URL.Path)
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		})
		defer srv.Close()

		pdf, err := c.GeneratePortfolio(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(pdf))
	})

	t.Run("conflict while a generation is outstanding", func(t *testing.T) {
		c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "portfolio generation already in progress"})
		})
		defer srv.Close()

		_, err := c.GeneratePortfolio(context.Background())
		require.Error(t, err)
		assert.Equal(t, "portfolio generation already in progress", err.Error())
	})
}

func TestParseError_nonJSONBody(t *testing.T) {
	apiErr := parseError(http.StatusBadGateway, []byte("<html>bad gateway</html>\n"))
	assert.Equal(t, "<html>bad gateway</html>", apiErr.Message)
}
