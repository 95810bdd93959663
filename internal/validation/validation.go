// Package validation checks user input against the field constraints of
// the blog data model before it reaches the store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

const (
	usernameRules = "required,max=50"
	emailRules    = "required,max=120,email"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s using its `validate` tags and returns an
// *errs.ValidationError naming each failing field by its json name.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &errs.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = message(fe)
		}
	}
	return out
}

// UserPatch validates the fields present in p.
func UserPatch(p models.UserPatch) error {
	fields := make(map[string]string)
	if p.Username != nil {
		if msg, ok := check(*p.Username, usernameRules); !ok {
			fields["username"] = msg
		}
	}
	if p.Email != nil {
		if msg, ok := check(*p.Email, emailRules); !ok {
			fields["email"] = msg
		}
	}
	if len(fields) > 0 {
		return &errs.ValidationError{Fields: fields}
	}
	return nil
}

func check(value any, rules string) (string, bool) {
	err := validate.Var(value, rules)
	if err == nil {
		return "", true
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return message(fieldErrs[0]), false
	}
	return "is invalid", false
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
