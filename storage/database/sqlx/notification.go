package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	const q = `
INSERT INTO notification (id, user_id, kind, message, read_at, created_at)
VALUES (:id, :user_id, :kind, :message, :read_at, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, notif); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	var notif notification.Notification
	if err := repo.db.GetContext(ctx, &notif, `SELECT * FROM notification WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) QueryUserNotifications(ctx context.Context, userID string, unreadOnly bool) ([]notification.Notification, error) {
	q := `SELECT * FROM notification WHERE user_id = $1`
	if unreadOnly {
		q += ` AND read_at IS NULL`
	}
	q += ` ORDER BY created_at DESC`

	var notifs []notification.Notification
	if err := repo.db.SelectContext(ctx, &notifs, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return notifs, nil
}

func (repo *notificationRepository) UpdateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	const q = `UPDATE notification SET read_at = :read_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, notif)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return notif, nil
}
