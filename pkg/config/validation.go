package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Uses go-playground/validator for declarative validation via struct tags,
// with additional custom validation for rules that cannot be expressed in
// tags.
//
// Note: log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase levels.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// Admin identities must be unique; a duplicate is almost certainly a
	// config editing mistake.
	seen := make(map[string]bool)
	for i, admin := range cfg.Admins {
		if seen[admin] {
			return fmt.Errorf("admins[%d]: duplicate admin identity %q", i, admin)
		}
		seen[admin] = true
	}

	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst < cfg.Server.RateLimit {
		return fmt.Errorf("server: rate_burst (%d) must be at least rate_limit (%d)",
			cfg.Server.RateBurst, cfg.Server.RateLimit)
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
