package activity

import (
	"strings"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
)

var (
	titleMinLen  = 3
	titleMinTag  = "titlemin"
	titleMinText = "Title must be at least 3 characters"

	descMinLen  = 10
	descMinTag  = "descmin"
	descMinText = "Description must be at least 10 characters"

	posDurationTag  = "posduration"
	posDurationText = "Duration must be a positive number"

	isoDateTag  = "isodate"
	isoDateText = "Invalid date"

	dateOrderTag  = "dateorder"
	dateOrderText = "End date must be after start date"
)

// RegisterValidators registers the activity field rules and their
// error messages on the given validator.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(titleMinTag, minRunesValidation(titleMinLen))
	core.RegisterCustomTranslation(validate, translator, titleMinTag, titleMinText)

	_ = validate.RegisterValidation(descMinTag, minRunesValidation(descMinLen))
	core.RegisterCustomTranslation(validate, translator, descMinTag, descMinText)

	_ = validate.RegisterValidation(posDurationTag, posDurationValidation)
	core.RegisterCustomTranslation(validate, translator, posDurationTag, posDurationText)

	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	core.RegisterCustomTranslation(validate, translator, isoDateTag, isoDateText)

	validate.RegisterStructValidation(dateOrderStructValidation, NewActivity{}, UpdateActivity{})
	core.RegisterCustomTranslation(validate, translator, dateOrderTag, dateOrderText)
}

// Custom Validators

func minRunesValidation(min int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= min
	}
}

// posDurationValidation requires a numeric value of at least 1.
func posDurationValidation(fl validator.FieldLevel) bool {
	v, err := parseDuration(fl.Field().String())
	return err == nil && v >= 1
}

func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := parseDate(fl.Field().String())
	return err == nil
}

// dateOrderStructValidation enforces endDate >= startDate when both are present.
// Equal dates pass: same-day activities are valid.
// The violation is reported on the later-dated field (endDate).
func dateOrderStructValidation(sl validator.StructLevel) {
	var startStr, endStr string
	switch act := sl.Current().Interface().(type) {
	case NewActivity:
		startStr, endStr = act.StartDate, act.EndDate
	case UpdateActivity:
		startStr, endStr = act.StartDate, act.EndDate
	}
	if startStr == "" || endStr == "" {
		return
	}

	start, err := parseDate(startStr)
	if err != nil {
		return // per-field isodate rule reports this
	}
	end, err := parseDate(endStr)
	if err != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(endStr, "endDate", "EndDate", dateOrderTag, "")
	}
}
