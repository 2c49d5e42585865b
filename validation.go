package vcx

import (
	"github.com/go-playground/validator/v10"

	verrors "github.com/aviary-id/go-vcx/domain/errors"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = validator.New()

// validateConfig checks the binding configuration before any native state is
// touched, so a bad configuration never reaches the loader.
func validateConfig(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return verrors.NewInvalidConfiguration("invalid configuration: %v", err)
	}
	return nil
}
