package echoapi

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
	portfoliosvc "github.com/SinghVishwajeet09/Student-Smart-Hub/services/portfolio"
)

const contextActivityKey = "activity"

type activityApi struct {
	validate     *validator.Validate
	svc          *activity.Service
	portfolioSvc *portfoliosvc.Service
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := activityApi{
		validate:     s.opts.Validate,
		svc:          s.opts.ActivitySvc,
		portfolioSvc: s.opts.PortfolioSvc,
	}

	ag := g.Group("/activities", jwt)
	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.POST("/portfolio", api.portfolio)

	og := ag.Group("/:id", api.objectMiddleware)
	og.GET("", api.retrieve)
	og.PUT("", api.update)
	og.DELETE("", api.destroy)
	og.PUT("/status", api.setStatus, staffMiddleware())
}

// objectMiddleware loads the requested activity and enforces ownership:
// students only see their own activities, staff see everything.
func (api *activityApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}

		act, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == activity.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding activity")
		}
		if act.StudentID != claims.Subject && !(claims.IsTeacher || claims.IsAdmin) {
			return errHttpNotFound
		}

		ctx.Set(contextActivityKey, act)
		return next(ctx)
	}
}

func contextActivity(ctx echo.Context) (activity.Activity, error) {
	if act, ok := ctx.Get(contextActivityKey).(activity.Activity); ok {
		return act, nil
	}
	return activity.Activity{}, errHttpNotFound
}

// create accepts the wizard's multipart submission: the eleven form fields
// plus any number of file parts under the shared "attachments" field.
func (api *activityApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	data := new(activity.NewActivity)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding new activity")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	files, err := readUploads(ctx)
	if err != nil {
		return err
	}

	act, err := api.svc.Create(ctx.Request().Context(), claims.Subject, *data, files...)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, act)
}

// readUploads drains the file parts of a multipart submission.
func readUploads(ctx echo.Context) ([]activity.Attachment, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, errors.Wrap(err, "parsing multipart form")
	}

	var files []activity.Attachment
	for _, hdr := range form.File[activity.FilesField] {
		src, err := hdr.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening upload %q", hdr.Filename)
		}
		content := new(bytes.Buffer)
		_, err = io.Copy(content, src)
		_ = src.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "reading upload %q", hdr.Filename)
		}

		files = append(files, activity.Attachment{
			Filename:    hdr.Filename,
			Size:        hdr.Size,
			ContentType: hdr.Header.Get(echo.HeaderContentType),
			Content:     content,
		})
	}
	return files, nil
}

func (api *activityApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(activity.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding query filter")
	}
	filter.Clean()
	// students are scoped to their own activities
	if !(claims.IsTeacher || claims.IsAdmin) {
		filter.StudentID = claims.Subject
	}

	acts, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	return ctx.JSON(http.StatusOK, acts)
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	act, err := contextActivity(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *activityApi) update(ctx echo.Context) error {
	act, err := contextActivity(ctx)
	if err != nil {
		return err
	}

	data := new(activity.UpdateActivity)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding activity update")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	act, err = api.svc.Update(ctx.Request().Context(), act.ID, *data)
	if err != nil {
		return errors.Wrap(err, "updating activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *activityApi) destroy(ctx echo.Context) error {
	act, err := contextActivity(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), act.ID); err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// setStatus moves an activity through the approval flow; staff only.
func (api *activityApi) setStatus(ctx echo.Context) error {
	act, err := contextActivity(ctx)
	if err != nil {
		return err
	}

	data := new(statusRequest)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding status request")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	act, err = api.svc.SetStatus(ctx.Request().Context(), act.ID, data.Status)
	if err != nil {
		if errors.Cause(err) == activity.ErrInvalidStatus {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "setting activity status")
	}
	return ctx.JSON(http.StatusOK, act)
}

// portfolio builds the caller's activity portfolio and streams back the PDF.
func (api *activityApi) portfolio(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	pdf, err := api.portfolioSvc.Generate(ctx.Request().Context(), claims.Subject)
	if err != nil {
		switch errors.Cause(err) {
		case portfoliosvc.ErrGenerationInProgress:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case portfoliosvc.ErrNoActivities:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "generating portfolio")
	}
	return ctx.Blob(http.StatusOK, "application/pdf", pdf)
}
