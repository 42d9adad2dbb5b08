package auth

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"campushub/errors"
)

var validate = validator.New()

// ValidatePayload checks the struct tags of an inbound payload before it
// reaches a service. The validator error detail stays server-side; callers
// only ever see the validation sentinel.
func ValidatePayload(payload any) error {
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}
