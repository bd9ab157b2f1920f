// Package client is a typed HTTP client for the Student Smart Hub API.
// It is the production Submitter of the activity wizard.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
)

// APIError carries the server's human-readable error; the message is surfaced
// to the user as-is.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for fld, msg := range e.Fields {
			msgs = append(msgs, fld+": "+msg)
		}
		sort.Strings(msgs)
		return strings.Join(msgs, "; ")
	}
	return http.StatusText(e.Status)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

var _ activity.Submitter = (*Client)(nil) // interface compliance check

func New(baseURL string, httpClient ...*http.Client) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	if len(httpClient) > 0 && httpClient[0] != nil {
		c.http = httpClient[0]
	}
	return c
}

// SetToken sets the bearer token used on authed endpoints.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling API")
	}
	defer func() { _ = res.Body.Close() }()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "reading API response")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return parseError(res.StatusCode, body)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return errors.Wrap(err, "decoding API response")
		}
	}
	return nil
}

// parseError decodes the two error shapes the API produces:
// {"error": "message"} and a {field: message} validation map.
func parseError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var data map[string]string
	if err := json.Unmarshal(body, &data); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	if msg, ok := data["error"]; ok && len(data) == 1 {
		apiErr.Message = msg
		return apiErr
	}
	apiErr.Fields = data
	return apiErr
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates and stores the session token on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return errors.Wrap(err, "encoding credentials")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/users/login", bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "building login request")
	}
	req.Header.Set("Content-Type", "application/json")

	var res loginResponse
	if err := c.do(req, &res); err != nil {
		return err
	}
	c.token = res.Token
	return nil
}

// SubmitActivity posts the multipart submission payload and returns the
// created activity's ID.
func (c *Client) SubmitActivity(ctx context.Context, form activity.NewActivity, files []activity.Attachment) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := activity.WritePayload(mw, form, files); err != nil {
		return "", errors.Wrap(err, "assembling payload")
	}
	if err := mw.Close(); err != nil {
		return "", errors.Wrap(err, "closing payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/activities", &body)
	if err != nil {
		return "", errors.Wrap(err, "building submit request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var act activity.Activity
	if err := c.do(req, &act); err != nil {
		return "", err
	}
	return act.ID, nil
}

// GetActivity fetches one activity; the edit flow uses it to pre-populate
// the wizard.
func (c *Client) GetActivity(ctx context.Context, id string) (activity.Activity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/activities/"+id, nil)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "building get request")
	}
	var act activity.Activity
	if err := c.do(req, &act); err != nil {
		return activity.Activity{}, err
	}
	return act, nil
}

// UpdateActivity re-submits an edited activity; the server re-applies the
// same validation rules as on create.
func (c *Client) UpdateActivity(ctx context.Context, id string, ua activity.UpdateActivity) (activity.Activity, error) {
	payload, err := json.Marshal(ua)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "encoding update")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/v1/activities/"+id, bytes.NewReader(payload))
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "building update request")
	}
	req.Header.Set("Content-Type", "application/json")

	var act activity.Activity
	if err := c.do(req, &act); err != nil {
		return activity.Activity{}, err
	}
	return act, nil
}

func (c *Client) DeleteActivity(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v1/activities/"+id, nil)
	if err != nil {
		return errors.Wrap(err, "building delete request")
	}
	return c.do(req, nil)
}

// GeneratePortfolio triggers a server-side portfolio build and returns the
// PDF bytes.
func (c *Client) GeneratePortfolio(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/activities/portfolio", nil)
	if err != nil {
		return nil, errors.Wrap(err, "building portfolio request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling API")
	}
	defer func() { _ = res.Body.Close() }()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading API response")
	}
	if res.StatusCode != http.StatusOK {
		return nil, parseError(res.StatusCode, body)
	}
	return body, nil
}
