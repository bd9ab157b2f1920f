package activity

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
)

// DateLayout is the wire format of all activity dates.
const DateLayout = "2006-01-02"

// Statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Activity struct {
	ID             string    `json:"id" db:"id"`
	StudentID      string    `json:"student_id" db:"student_id"`
	Title          string    `json:"title" db:"title"`
	ActivityType   string    `json:"activity_type" db:"activity_type"`
	Description    string    `json:"description" db:"description"`
	StartDate      time.Time `json:"start_date" db:"start_date"`
	EndDate        null.Time `json:"end_date" db:"end_date"`
	DurationHours  float64   `json:"duration_hours" db:"duration_hours"`
	Venue          string    `json:"venue" db:"venue"`
	Organizer      string    `json:"organizer" db:"organizer"`
	RoleInActivity string    `json:"role_in_activity" db:"role_in_activity"`
	Achievement    string    `json:"achievement" db:"achievement"`
	SkillsGained   string    `json:"skills_gained" db:"skills_gained"`
	Status         string    `json:"status" db:"status"`

	Attachments []Attachment `json:"attachments" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (a *Activity) IsApproved() bool { return a.Status == StatusApproved }

// File kinds drive the attachment iconography on the frontend.
const (
	FileKindImage   = "image"
	FileKindPDF     = "pdf"
	FileKindWord    = "word"
	FileKindText    = "text"
	FileKindGeneric = "generic"
)

// Attachment describes a file attached to an Activity.
// Content is only set while a file is in transit; it is never persisted inline.
type Attachment struct {
	ID          string `json:"id,omitempty" db:"id"`
	ActivityID  string `json:"-" db:"activity_id"`
	Filename    string `json:"filename" db:"filename"`
	Size        int64  `json:"size" db:"size"`
	ContentType string `json:"content_type" db:"content_type"`

	Content *bytes.Buffer `json:"-" db:"-"`
}

// Kind maps the attachment's MIME type to an icon kind; first matching rule wins.
func (a Attachment) Kind() string {
	ct := strings.ToLower(a.ContentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return FileKindImage
	case strings.Contains(ct, "pdf"):
		return FileKindPDF
	case strings.Contains(ct, "word"):
		return FileKindWord
	case strings.HasPrefix(ct, "text/"):
		return FileKindText
	default:
		return FileKindGeneric
	}
}

// NewActivity is the submission payload of the activity wizard.
// All values are carried verbatim as entered; dates and duration stay strings
// until the service parses them.
type NewActivity struct {
	Title          string `json:"title" form:"title" validate:"required,titlemin"`
	ActivityType   string `json:"activityType" form:"activityType" validate:"required"`
	Description    string `json:"description" form:"description" validate:"required,descmin"`
	StartDate      string `json:"startDate" form:"startDate" validate:"required,isodate"`
	EndDate        string `json:"endDate" form:"endDate" validate:"omitempty,isodate"`
	DurationHours  string `json:"durationHours" form:"durationHours" validate:"required,posduration"`
	Venue          string `json:"venue" form:"venue"`
	Organizer      string `json:"organizer" form:"organizer"`
	RoleInActivity string `json:"roleInActivity" form:"roleInActivity" validate:"required"`
	Achievement    string `json:"achievement" form:"achievement"`
	SkillsGained   string `json:"skillsGained" form:"skillsGained"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.ActivityType = core.CleanString(na.ActivityType)
	na.Description = core.CleanString(na.Description)
	na.StartDate = core.CleanString(na.StartDate)
	na.EndDate = core.CleanString(na.EndDate)
	na.DurationHours = core.CleanString(na.DurationHours)
	na.Venue = core.CleanString(na.Venue)
	na.Organizer = core.CleanString(na.Organizer)
	na.RoleInActivity = core.CleanString(na.RoleInActivity)
	na.Achievement = core.CleanString(na.Achievement)
	na.SkillsGained = core.CleanString(na.SkillsGained)
	return validate.Struct(na)
}

// UpdateActivity defines what may be provided to modify an existing Activity.
// Re-submission goes through the same field rules as NewActivity.
type UpdateActivity struct {
	Title          string `json:"title" form:"title" validate:"omitempty,titlemin"`
	ActivityType   string `json:"activityType" form:"activityType"`
	Description    string `json:"description" form:"description" validate:"omitempty,descmin"`
	StartDate      string `json:"startDate" form:"startDate" validate:"omitempty,isodate"`
	EndDate        string `json:"endDate" form:"endDate" validate:"omitempty,isodate"`
	DurationHours  string `json:"durationHours" form:"durationHours" validate:"omitempty,posduration"`
	Venue          string `json:"venue" form:"venue"`
	Organizer      string `json:"organizer" form:"organizer"`
	RoleInActivity string `json:"roleInActivity" form:"roleInActivity"`
	Achievement    string `json:"achievement" form:"achievement"`
	SkillsGained   string `json:"skillsGained" form:"skillsGained"`
}

func (ua *UpdateActivity) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	ua.StartDate = core.CleanString(ua.StartDate)
	ua.EndDate = core.CleanString(ua.EndDate)
	ua.DurationHours = core.CleanString(ua.DurationHours)
	return validate.Struct(ua)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	StudentID   string    `query:"student_id"`
	Status      string    `query:"status"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.StudentID == "" && qf.Status == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

func parseDuration(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
