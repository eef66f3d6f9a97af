package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"diskmeta/internal/storage"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("collection", func(fl validator.FieldLevel) bool {
		return storage.ValidCollectionName(fl.Field().String())
	})
}

// Validate checks settings against their struct tags.
func Validate(s *Settings) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError reports the first failed field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("invalid settings: %s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
