package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"tasklist/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct tags and folds failures into apperr.ErrValidation
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", apperr.ErrValidation, strings.Join(msgs, ", "))
}

// optional trims s and maps an empty result to nil
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
