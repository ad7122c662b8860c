package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report the json tag name instead of the Go field name so error details
	// line up with the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Expo push tokens look like ExponentPushToken[xxxxxxxx].
	v.RegisterValidation("expotoken", func(fl validator.FieldLevel) bool {
		token := fl.Field().String()
		return strings.HasPrefix(token, "ExponentPushToken[") && strings.HasSuffix(token, "]")
	})

	return v
}

// ValidateStruct validates a struct and flattens the result into a single
// error message.
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		msgs := make([]string, 0, len(ve))
		for _, e := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s", e.Field(), e.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("validation failed: %w", err)
}

// FieldErrors validates a struct and returns per-field failure details, keyed
// by the payload field name. Returns nil when the struct is valid.
func FieldErrors(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	details := make(map[string]string)
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, e := range ve {
			if e.Param() != "" {
				details[e.Field()] = fmt.Sprintf("%s=%s", e.Tag(), e.Param())
			} else {
				details[e.Field()] = e.Tag()
			}
		}
	} else {
		details["_"] = err.Error()
	}
	return details
}
