package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrNotFound      = errors.New("activity not found")
	ErrInvalidStatus = errors.New("invalid activity status")
)

type (
	Repository interface {
		CreateActivity(ctx context.Context, act Activity) (Activity, error)
		GetActivityByID(ctx context.Context, id string) (Activity, error)
		// FilterActivities applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Activity.Title,
		// Activity.ActivityType or Activity.Organizer.
		FilterActivities(ctx context.Context, filter QueryFilter) ([]Activity, error)
		UpdateActivity(ctx context.Context, act Activity) (Activity, error)
		DeleteActivitiesByID(ctx context.Context, ids ...string) error
	}

	// Notifier pushes an in-app notification to a user; implemented by
	// notification.Service.
	Notifier interface {
		Notify(ctx context.Context, userID, kind, message string) error
	}

	Service struct {
		repo     Repository
		notifier Notifier
	}
)

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Create persists a validated submission for the given student; the activity
// starts out pending approval.
func (svc *Service) Create(ctx context.Context, studentID string, na NewActivity, files ...Attachment) (Activity, error) {
	start, err := parseDate(na.StartDate)
	if err != nil {
		return Activity{}, err
	}
	var end null.Time
	if na.EndDate != "" {
		e, err := parseDate(na.EndDate)
		if err != nil {
			return Activity{}, err
		}
		end = null.TimeFrom(e)
	}
	duration, err := parseDuration(na.DurationHours)
	if err != nil {
		return Activity{}, err
	}

	now := time.Now().UTC()
	act := Activity{
		ID:             uuid.New().String(),
		StudentID:      studentID,
		Title:          na.Title,
		ActivityType:   na.ActivityType,
		Description:    na.Description,
		StartDate:      start,
		EndDate:        end,
		DurationHours:  duration,
		Venue:          na.Venue,
		Organizer:      na.Organizer,
		RoleInActivity: na.RoleInActivity,
		Achievement:    na.Achievement,
		SkillsGained:   na.SkillsGained,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, file := range files {
		act.Attachments = append(act.Attachments, Attachment{
			ID:          uuid.New().String(),
			ActivityID:  act.ID,
			Filename:    file.Filename,
			Size:        file.Size,
			ContentType: file.ContentType,
		})
	}

	act, err = svc.repo.CreateActivity(ctx, act)
	if err != nil {
		return Activity{}, err
	}

	// notification failure must not fail the submission
	_ = svc.notifier.Notify(ctx, studentID, "success",
		fmt.Sprintf("Activity %q submitted for approval", act.Title))
	return act, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Activity, error) {
	return svc.repo.GetActivityByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Activity, error) {
	return svc.repo.FilterActivities(ctx, filter)
}

// Update applies the provided fields to an existing activity and sends it
// back to pending approval.
func (svc *Service) Update(ctx context.Context, id string, ua UpdateActivity) (Activity, error) {
	act, err := svc.repo.GetActivityByID(ctx, id)
	if err != nil {
		return Activity{}, err
	}

	if ua.Title != "" {
		act.Title = ua.Title
	}
	if ua.ActivityType != "" {
		act.ActivityType = ua.ActivityType
	}
	if ua.Description != "" {
		act.Description = ua.Description
	}
	if ua.StartDate != "" {
		if act.StartDate, err = parseDate(ua.StartDate); err != nil {
			return Activity{}, err
		}
	}
	if ua.EndDate != "" {
		e, err := parseDate(ua.EndDate)
		if err != nil {
			return Activity{}, err
		}
		act.EndDate = null.TimeFrom(e)
	}
	if ua.DurationHours != "" {
		if act.DurationHours, err = parseDuration(ua.DurationHours); err != nil {
			return Activity{}, err
		}
	}
	if ua.Venue != "" {
		act.Venue = ua.Venue
	}
	if ua.Organizer != "" {
		act.Organizer = ua.Organizer
	}
	if ua.RoleInActivity != "" {
		act.RoleInActivity = ua.RoleInActivity
	}
	if ua.Achievement != "" {
		act.Achievement = ua.Achievement
	}
	if ua.SkillsGained != "" {
		act.SkillsGained = ua.SkillsGained
	}

	act.Status = StatusPending
	act.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateActivity(ctx, act)
}

// SetStatus moves an activity through the approval flow and notifies its owner.
func (svc *Service) SetStatus(ctx context.Context, id, status string) (Activity, error) {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return Activity{}, ErrInvalidStatus
	}

	act, err := svc.repo.GetActivityByID(ctx, id)
	if err != nil {
		return Activity{}, err
	}
	act.Status = status
	act.UpdatedAt = time.Now().UTC()
	act, err = svc.repo.UpdateActivity(ctx, act)
	if err != nil {
		return Activity{}, err
	}

	kind := "info"
	if status == StatusRejected {
		kind = "error"
	}
	_ = svc.notifier.Notify(ctx, act.StudentID, kind,
		fmt.Sprintf("Your activity %q is now %s", act.Title, act.Status))
	return act, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteActivitiesByID(ctx, ids...)
}
