package validator

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"

	"campaignhub/internal/domain"
)

var validate *validator.Validate

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["_"] = err.Error()
		return errors
	}
	for _, err := range verrs {
		errors[err.Field()] = err.Tag()
	}
	return errors
}

// Check runs Validate and folds the result into a *domain.ValidationError.
func Check(v interface{}) error {
	fields := Validate(v)
	if len(fields) == 0 {
		return nil
	}

	details := make([]string, 0, len(fields))
	for field, tag := range fields {
		details = append(details, fmt.Sprintf("%s: failed '%s'", field, tag))
	}
	sort.Strings(details)
	return &domain.ValidationError{Message: "invalid request", Details: details}
}
