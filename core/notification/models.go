package notification

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Kinds match the toast styles the frontend renders.
const (
	KindSuccess = "success"
	KindError   = "error"
	KindInfo    = "info"
)

type Notification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Kind      string    `json:"kind" db:"kind"`
	Message   string    `json:"message" db:"message"`
	ReadAt    null.Time `json:"read_at" db:"read_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

func (n *Notification) IsRead() bool { return n.ReadAt.Valid }
