package activity

import (
	"context"
	"errors"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
)

// TotalSteps is the fixed number of wizard screens.
const TotalSteps = 3

var (
	// errors
	ErrFirstStep        = errors.New("wizard is already at the first step")
	ErrLastStep         = errors.New("wizard is already at the last step")
	ErrNotLastStep      = errors.New("submit is only allowed from the last step")
	ErrStepInvalid      = errors.New("current step has invalid fields")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrFileIndex        = errors.New("file index out of range")
)

// Submitter persists a completed submission; implemented by client.Client in
// production and by fakes in tests.
type Submitter interface {
	SubmitActivity(ctx context.Context, form NewActivity, files []Attachment) (string, error)
}

// wizardField maps a payload field to the step whose fieldset owns it.
type wizardField struct {
	name        string // json/form name, also the FieldErrors key
	structField string // NewActivity field, for partial validation
	step        int
}

var wizardFields = []wizardField{
	{"title", "Title", 1},
	{"activityType", "ActivityType", 1},
	{"description", "Description", 1},
	{"startDate", "StartDate", 2},
	{"endDate", "EndDate", 2},
	{"durationHours", "DurationHours", 2},
	{"venue", "Venue", 2},
	{"organizer", "Organizer", 3},
	{"roleInActivity", "RoleInActivity", 3},
	{"achievement", "Achievement", 3},
	{"skillsGained", "SkillsGained", 3},
}

// Wizard drives the fixed three-step activity submission form: it validates
// the current step's fieldset before allowing forward navigation, keeps the
// ordered attachment list in sync, and delegates the final submission to a
// Submitter. Backward navigation never validates.
//
// A Wizard starts at step 1 and resets to it after a successful submission;
// a failed submission leaves every entered value in place so the user can
// retry without re-entering data.
type Wizard struct {
	validate   *validator.Validate
	translator ut.Translator
	submitter  Submitter

	mu         sync.Mutex
	step       int
	values     map[string]string
	fldErrors  map[string]string
	files      []Attachment
	submitting bool
}

func NewWizard(validate *validator.Validate, translator ut.Translator, submitter Submitter) *Wizard {
	return &Wizard{
		validate:   validate,
		translator: translator,
		submitter:  submitter,
		step:       1,
		values:     make(map[string]string),
		fldErrors:  make(map[string]string),
	}
}

func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SetField records a field value; any previous error on the field is cleared.
func (w *Wizard) SetField(name, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.values[name] = value
	delete(w.fldErrors, name)
}

func (w *Wizard) Field(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values[name]
}

// FieldErrors returns a copy of the current per-field error messages.
func (w *Wizard) FieldErrors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := make(map[string]string, len(w.fldErrors))
	for fld, msg := range w.fldErrors {
		errs[fld] = msg
	}
	return errs
}

// ValidateStep validates step n's fieldset, replacing the step's field errors
// in place. Repeated calls with unchanged input yield the same error state.
func (w *Wizard) ValidateStep(n int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validateStep(n)
}

func (w *Wizard) validateStep(n int) bool {
	var structFields []string
	for _, fld := range wizardFields {
		if fld.step == n {
			structFields = append(structFields, fld.structField)
			delete(w.fldErrors, fld.name)
		}
	}
	if structFields == nil {
		return true
	}

	ok := true
	form := w.form(true /* trimmed */)
	if err := w.validate.StructPartial(form, structFields...); err != nil {
		if vErrs, isV := err.(validator.ValidationErrors); isV {
			for fld, msg := range core.TranslateValidationErrors(vErrs, w.translator) {
				if fieldStep(fld) != n {
					continue // struct-level rules may report outside the fieldset
				}
				w.fldErrors[fld] = msg
				ok = false
			}
		}
	}

	// the date-order constraint is cross-field and belongs to step 2
	if n == 2 {
		if start, err := parseDate(form.StartDate); err == nil {
			if end, err := parseDate(form.EndDate); err == nil && end.Before(start) {
				w.fldErrors["endDate"] = dateOrderText
				ok = false
			}
		}
	}
	return ok
}

// Advance moves to the next step; it is gated on the current step validating.
func (w *Wizard) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == TotalSteps {
		return ErrLastStep
	}
	if !w.validateStep(w.step) {
		return ErrStepInvalid
	}
	w.step++
	return nil
}

// Retreat moves to the previous step; it never validates.
func (w *Wizard) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == 1 {
		return ErrFirstStep
	}
	w.step--
	return nil
}

// AddFiles appends to the attachment list, preserving selection order.
// No size/type restriction is enforced here; the server decides.
func (w *Wizard) AddFiles(files ...Attachment) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = append(w.files, files...)
}

// RemoveFile removes the attachment at index i; the relative order of the
// remaining attachments is unchanged.
func (w *Wizard) RemoveFile(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.files) {
		return ErrFileIndex
	}
	w.files = append(w.files[:i], w.files[i+1:]...)
	return nil
}

func (w *Wizard) Files() []Attachment {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]Attachment, len(w.files))
	copy(files, w.files)
	return files
}

// Submit validates the last step and delegates to the Submitter. While one
// submission is outstanding any further Submit is a no-op returning
// ErrSubmitInProgress, so a double trigger makes exactly one network call.
// On success the wizard resets to its initial state; on failure it is left
// untouched and the error (with the server's message) is returned as-is.
func (w *Wizard) Submit(ctx context.Context) (string, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return "", ErrSubmitInProgress
	}
	if w.step != TotalSteps {
		w.mu.Unlock()
		return "", ErrNotLastStep
	}
	if !w.validateStep(TotalSteps) {
		w.mu.Unlock()
		return "", ErrStepInvalid
	}
	w.submitting = true
	form := w.form(false /* verbatim */)
	files := make([]Attachment, len(w.files))
	copy(files, w.files)
	w.mu.Unlock()

	id, err := w.submitter.SubmitActivity(ctx, form, files)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		return "", err
	}
	w.reset()
	return id, nil
}

// Reset restores the wizard to its initial state.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

func (w *Wizard) reset() {
	w.step = 1
	w.values = make(map[string]string)
	w.fldErrors = make(map[string]string)
	w.files = nil
}

// form assembles the submission payload from the field values.
// Validation works on trimmed values ("required" means non-empty after trim);
// the outgoing payload carries values verbatim.
func (w *Wizard) form(trimmed bool) NewActivity {
	get := func(name string) string {
		if trimmed {
			return core.CleanString(w.values[name])
		}
		return w.values[name]
	}
	return NewActivity{
		Title:          get("title"),
		ActivityType:   get("activityType"),
		Description:    get("description"),
		StartDate:      get("startDate"),
		EndDate:        get("endDate"),
		DurationHours:  get("durationHours"),
		Venue:          get("venue"),
		Organizer:      get("organizer"),
		RoleInActivity: get("roleInActivity"),
		Achievement:    get("achievement"),
		SkillsGained:   get("skillsGained"),
	}
}

func fieldStep(name string) int {
	for _, fld := range wizardFields {
		if fld.name == name {
			return fld.step
		}
	}
	return 0
}
