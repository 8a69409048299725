package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/tutorbook/internal/models"
	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
)

// phonePattern is a loose sanity check and must accept exactly this grammar.
var phonePattern = regexp.MustCompile(`^(\+\d|\d)?-?(\(\d+\))?-?[\d-]*\d$`)

// IsPhone reports whether raw passes the phone check used by both forms.
func IsPhone(raw string) bool {
	return phonePattern.MatchString(raw)
}

// NewValidator returns a validator with the form rules registered. Field
// names in errors come from the form tag so they match the HTML inputs.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	registerFormRules(v)
	return v
}

func registerFormRules(v *validator.Validate) {
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.IsWeekday(fl.Field().String())
	})
	v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("timebucket", func(fl validator.FieldLevel) bool {
		_, ok := models.TimeBucketText(fl.Field().String())
		return ok
	})
}

// FieldErrors maps form field names to a human readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return strings.Join(parts, "; ")
}

// FormErrors extracts field errors from a validation failure returned by the
// services, or nil when err carries none.
func FormErrors(err error) FieldErrors {
	var fields FieldErrors
	if errors.As(err, &fields) {
		return fields
	}
	return nil
}

func validateForm(v *validator.Validate, form interface{}, message string) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return invalidForm(fields, message)
}

func invalidForm(fields FieldErrors, message string) error {
	return appErrors.Wrap(fields, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "phone":
		return "Enter a phone number such as +7-916-1234567."
	case "weekday":
		return "Unknown weekday."
	case "timeofday":
		return "Enter a time of day such as 14:00."
	case "timebucket":
		return "Choose one of the offered options."
	case "number":
		return "Must be a non-negative whole number."
	case "max":
		return fmt.Sprintf("At most %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}
