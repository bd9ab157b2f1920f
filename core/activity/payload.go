package activity

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/pkg/errors"
)

// FilesField is the shared multipart field name all attachments are sent under.
const FilesField = "attachments"

// WritePayload writes the multipart submission body: the fixed-name text
// fields in declaration order, then one file part per attachment under
// FilesField. Values are written verbatim; escaping is a render-time concern,
// never an assembly-time one.
func WritePayload(mw *multipart.Writer, form NewActivity, files []Attachment) error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", form.Title},
		{"activityType", form.ActivityType},
		{"description", form.Description},
		{"startDate", form.StartDate},
		{"endDate", form.EndDate},
		{"durationHours", form.DurationHours},
		{"venue", form.Venue},
		{"organizer", form.Organizer},
		{"roleInActivity", form.RoleInActivity},
		{"achievement", form.Achievement},
		{"skillsGained", form.SkillsGained},
	}
	for _, fld := range fields {
		if err := mw.WriteField(fld.name, fld.value); err != nil {
			return errors.Wrapf(err, "writing field %s", fld.name)
		}
	}

	for _, file := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, FilesField, file.Filename))
		if file.ContentType != "" {
			hdr.Set("Content-Type", file.ContentType)
		}
		part, err := mw.CreatePart(hdr)
		if err != nil {
			return errors.Wrapf(err, "creating part for %s", file.Filename)
		}
		if file.Content != nil {
			if _, err := io.Copy(part, bytes.NewReader(file.Content.Bytes())); err != nil {
				return errors.Wrapf(err, "writing content of %s", file.Filename)
			}
		}
	}
	return nil
}
