package notification

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		QueryUserNotifications(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
		UpdateNotification(ctx context.Context, notif Notification) (Notification, error)
	}

	// AddressBook resolves a user id to an email address.
	AddressBook interface {
		GetUserAddress(ctx context.Context, userID string) (mail.Address, error)
	}

	Service struct {
		repo    Repository
		book    AddressBook
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, book AddressBook, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, book: book, mailSvc: mailSvc}
}

// Notify pushes an in-app notification to the given user and mirrors it to
// their email address. An unresolvable address only skips the mirror.
func (svc *Service) Notify(ctx context.Context, userID, kind, message string) error {
	switch kind {
	case KindSuccess, KindError, KindInfo:
	default:
		kind = KindInfo
	}
	notif, err := svc.repo.CreateNotification(ctx, Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if addr, aErr := svc.book.GetUserAddress(ctx, notif.UserID); aErr == nil {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{addr},
			Subject: "You have a new notification",
			BodyStr: notif.Message,
		})
	}
	return nil
}

func (svc *Service) QueryForUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	return svc.repo.QueryUserNotifications(ctx, userID, unreadOnly)
}

// MarkRead marks one of the user's notifications as read; marking twice is a
// no-op. Another user's notification reads as not found.
func (svc *Service) MarkRead(ctx context.Context, userID, id string) (Notification, error) {
	notif, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if notif.UserID != userID {
		return Notification{}, ErrNotFound
	}
	if notif.IsRead() {
		return notif, nil
	}
	notif.ReadAt.SetValid(time.Now().UTC())
	return svc.repo.UpdateNotification(ctx, notif)
}
