package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients can map errors to form inputs.
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// timeafter=StartTime: an "HH:MM" clock time strictly later than the named sibling field.
	_ = val.RegisterValidation("timeafter", timeAfter)
	return val
}

const clockLayout = "15:04"

func timeAfter(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Pointer {
		parent = parent.Elem()
	}
	other := parent.FieldByName(fl.Param())
	if !other.IsValid() || other.Kind() != reflect.String {
		return false
	}
	end, err := time.Parse(clockLayout, fl.Field().String())
	if err != nil {
		// Malformed values are reported by the datetime tag.
		return true
	}
	start, err := time.Parse(clockLayout, other.String())
	if err != nil {
		return true
	}
	return end.After(start)
}

// Struct validates s against its `validate` tags and converts failures into
// an *apperror.ValidationError listing every violated field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate struct: %w", err)
	}

	out := &apperror.ValidationError{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return out
}

// fieldPath drops the root struct name: "CreateRequest.location.city" -> "location.city".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must match format " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "timeafter":
		p := fe.Param()
		return "must be after " + strings.ToLower(p[:1]) + p[1:]
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
