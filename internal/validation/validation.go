// file: internal/validation/validation.go
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed rule on one field. Field carries the
// json name so errors can be echoed back against the request payload.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s violates %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s violates %s", e.Field, e.Rule)
}

// FieldErrors aggregates every failed rule of one validation pass.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct checks the struct's validate tags and returns the failed
// rules as FieldErrors. A nil input passes.
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		// validator reports non-struct inputs as InvalidValidationError
		return fmt.Errorf("validation: %w", err)
	}
	fieldErrs := make(FieldErrors, 0, len(ve))
	for _, fe := range ve {
		fieldErrs = append(fieldErrs, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return fieldErrs
}
