package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
)

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	const q = `
INSERT INTO activity (id, student_id, title, activity_type, description, start_date, end_date, duration_hours,
                      venue, organizer, role_in_activity, achievement, skills_gained, status, created_at, updated_at)
VALUES (:id, :student_id, :title, :activity_type, :description, :start_date, :end_date, :duration_hours,
        :venue, :organizer, :role_in_activity, :achievement, :skills_gained, :status, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, act); err != nil {
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}

	const aq = `
INSERT INTO activity_attachment (id, activity_id, filename, size, content_type)
VALUES (:id, :activity_id, :filename, :size, :content_type)`
	for _, att := range act.Attachments {
		if _, err := repo.db.NamedExecContext(ctx, aq, att); err != nil {
			return activity.Activity{}, errors.Wrap(err, "inserting attachment")
		}
	}
	return act, nil
}

func (repo *activityRepository) GetActivityByID(ctx context.Context, id string) (activity.Activity, error) {
	var act activity.Activity
	if err := repo.db.GetContext(ctx, &act, `SELECT * FROM activity WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return activity.Activity{}, activity.ErrNotFound
		}
		return activity.Activity{}, errors.Wrap(err, "getting activity")
	}
	if err := repo.loadAttachments(ctx, &act); err != nil {
		return activity.Activity{}, err
	}
	return act, nil
}

func (repo *activityRepository) loadAttachments(ctx context.Context, act *activity.Activity) error {
	const q = `SELECT * FROM activity_attachment WHERE activity_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &act.Attachments, q, act.ID); err != nil {
		return errors.Wrap(err, "getting attachments")
	}
	return nil
}

func (repo *activityRepository) FilterActivities(ctx context.Context, filter activity.QueryFilter) ([]activity.Activity, error) {
	q := `SELECT * FROM activity WHERE 1=1`
	args := make([]interface{}, 0, 5)

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		q += ` AND student_id = ?`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		q += ` AND status = ?`
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
		q += ` AND (title ILIKE ? OR activity_type ILIKE ? OR organizer ILIKE ?)`
	}
	if !filter.CreatedFrom.IsZero() {
		args = append(args, filter.CreatedFrom)
		q += ` AND created_at >= ?`
	}
	if !filter.CreatedTo.IsZero() {
		args = append(args, filter.CreatedTo)
		q += ` AND created_at <= ?`
	}
	q += ` ORDER BY created_at DESC`

	var acts []activity.Activity
	if err := repo.db.SelectContext(ctx, &acts, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering activities")
	}
	for i := range acts {
		if err := repo.loadAttachments(ctx, &acts[i]); err != nil {
			return nil, err
		}
	}
	return acts, nil
}

func (repo *activityRepository) UpdateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	const q = `
UPDATE activity
SET title            = :title,
    activity_type    = :activity_type,
    description      = :description,
    start_date       = :start_date,
    end_date         = :end_date,
    duration_hours   = :duration_hours,
    venue            = :venue,
    organizer        = :organizer,
    role_in_activity = :role_in_activity,
    achievement      = :achievement,
    skills_gained    = :skills_gained,
    status           = :status,
    updated_at       = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, act)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "updating activity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return activity.Activity{}, activity.ErrNotFound
	}
	return act, nil
}

func (repo *activityRepository) DeleteActivitiesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM activity WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting activities")
	}
	return nil
}
