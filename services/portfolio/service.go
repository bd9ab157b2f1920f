// Package portfoliosvc builds a student's activity portfolio: it renders the
// approved activities into an HTML document and delegates the PDF conversion
// to an external renderer over HTTP.
package portfoliosvc

import (
	"bytes"
	"context"
	"errors"
	htmltmpl "html/template"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/user"
	appfs "github.com/SinghVishwajeet09/Student-Smart-Hub/fs"
)

var (
	// ErrGenerationInProgress is returned while a user's previous generation
	// is still outstanding; the trigger is a no-op.
	ErrGenerationInProgress = errors.New("portfolio generation already in progress")
	// ErrNoActivities is returned when a user has no approved activities yet.
	ErrNoActivities = errors.New("no approved activities to include")

	tmpl     *htmltmpl.Template
	tmplInit sync.Once
)

type (
	// ContextData is what the portfolio template renders.
	ContextData struct {
		Student     user.User
		Activities  []activity.Activity
		GeneratedAt time.Time
	}

	Service struct {
		actSvc *activity.Service
		usrSvc *user.Service
		conf   *core.Config
		client *http.Client
		logger core.Logger

		mu       sync.Mutex
		inFlight map[string]bool // userID -> generation outstanding
	}
)

func NewService(actSvc *activity.Service, usrSvc *user.Service, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		actSvc:   actSvc,
		usrSvc:   usrSvc,
		conf:     conf,
		client:   &http.Client{Timeout: conf.Portfolio.Timeout},
		logger:   logger,
		inFlight: make(map[string]bool),
	}
}

// Generate renders and converts the user's portfolio, returning the PDF bytes.
// Only one generation per user may be in flight; a second trigger returns
// ErrGenerationInProgress without touching the renderer.
func (svc *Service) Generate(ctx context.Context, userID string) ([]byte, error) {
	svc.mu.Lock()
	if svc.inFlight[userID] {
		svc.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	svc.inFlight[userID] = true
	svc.mu.Unlock()

	defer func() {
		svc.mu.Lock()
		delete(svc.inFlight, userID)
		svc.mu.Unlock()
	}()

	usr, err := svc.usrSvc.GetByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "finding user")
	}
	acts, err := svc.actSvc.Query(ctx, activity.QueryFilter{
		StudentID: userID,
		Status:    activity.StatusApproved,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying approved activities")
	}
	if len(acts) == 0 {
		return nil, ErrNoActivities
	}

	html, err := svc.render(ContextData{Student: usr, Activities: acts, GeneratedAt: time.Now().UTC()})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "rendering portfolio")
	}
	return svc.convert(ctx, html)
}

func (svc *Service) render(data ContextData) ([]byte, error) {
	var initErr error
	tmplInit.Do(func() {
		tmpl, initErr = htmltmpl.ParseFS(appfs.FS, "templates/portfolio/portfolio.gohtml")
	})
	if initErr != nil {
		return nil, initErr
	}
	if tmpl == nil {
		return nil, errors.New("portfolio template unavailable")
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, data); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// convert posts the HTML to the external renderer and returns its PDF output.
func (svc *Service) convert(ctx context.Context, html []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.conf.Portfolio.RendererURL, bytes.NewReader(html))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "building renderer request")
	}
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	req.Header.Set("Accept", "application/pdf")

	res, err := svc.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "calling renderer")
	}
	defer func() { _ = res.Body.Close() }()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reading renderer response")
	}
	if res.StatusCode != http.StatusOK {
		svc.logger.Error("portfolio renderer failed", res.StatusCode, string(body))
		return nil, pkgerrors.Errorf("renderer returned status %d", res.StatusCode)
	}
	return body, nil
}
