// Package validation checks request payloads before they reach the database.
//
// Request structs carry `validate` tags; Struct returns nil or a *Error that
// lists every failing field by its JSON name:
//
//	type createReviewRequest struct {
//	    Rating int `json:"rating" validate:"required,min=1,max=5"`
//	}
//
//	if verr := validation.Struct(&req); verr != nil {
//	    ctx.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/speeddate-dev/speeddate/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Error is the failure result of Struct.
type Error struct {
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}

	return strings.Join(messages, "; ")
}

// Get returns the shared validator with the domain enum rules registered.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		mustRegister("role", oneOf(models.AllowedRoles))
		mustRegister("gender", oneOf(models.AllowedGenders))
		mustRegister("interest", oneOf(models.AllowedInterests))
		mustRegister("contactstatus", oneOf([]string{
			models.ContactPending,
			models.ContactAccepted,
			models.ContactBlocked,
		}))
	})

	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

// Struct validates s and returns nil on success.
func Struct(s any) *Error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := &Error{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: translate(fe),
		})
	}

	return out
}

var messageTemplates = map[string]string{
	"required":      "%s is required",
	"email":         "%s must be a valid email address",
	"role":          "%s must be one of: organizer, participant",
	"gender":        "%s must be one of: man, woman",
	"interest":      "%s contains an unknown interest",
	"contactstatus": "%s must be one of: pending, accepted, blocked",
}

func translate(fe validator.FieldError) string {
	field := fe.Field()

	if tmpl, ok := messageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field)
	}

	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, fe.Param())
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
