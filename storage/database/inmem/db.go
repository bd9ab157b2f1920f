// Package inmemdb provides mutex-guarded in-memory repositories.
// It backs local development and tests; nothing survives a restart.
package inmemdb

import (
	"sync"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/notification"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/user"
)

type (
	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	activityTable struct {
		sync.RWMutex
		table map[string]*activity.Activity
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}

	DB struct {
		user         *userTable
		activity     *activityTable
		notification *notificationTable
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		activity:     &activityTable{table: make(map[string]*activity.Activity)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}
