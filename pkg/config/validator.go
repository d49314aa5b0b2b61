package config

import (
	"errors"
	"fmt"
	"net/url"
)

// ConfigValidator validates configuration with clear error messages
type ConfigValidator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration
func NewValidator(cfg *Config) *ConfigValidator {
	return &ConfigValidator{cfg: cfg}
}

// ValidateAll validates every section and reports all problems at once.
func (v *ConfigValidator) ValidateAll() error {
	return errors.Join(
		v.validateServer(),
		v.validateUpstream(),
		v.validateRelay(),
		v.validateAuth(),
	)
}

func validate(cfg *Config) error {
	return NewValidator(cfg).ValidateAll()
}

func (v *ConfigValidator) validateServer() error {
	s := v.cfg.Server
	var errs []error
	if s.HTTPPort == "" {
		errs = append(errs, NewValidationError("server", "http_port", ErrMissingRequiredField))
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, NewValidationError("server", "shutdown_timeout", fmt.Errorf("%w: must be positive", ErrInvalidValue)))
	}
	if s.AutomateRateLimit < 0 {
		errs = append(errs, NewValidationError("server", "automate_rate_limit", fmt.Errorf("%w: must not be negative", ErrInvalidValue)))
	}
	if s.AutomateRateLimit > 0 && s.AutomateRateBurst < 1 {
		errs = append(errs, NewValidationError("server", "automate_rate_burst", fmt.Errorf("%w: must be at least 1 when limiting", ErrInvalidValue)))
	}
	return errors.Join(errs...)
}

func (v *ConfigValidator) validateUpstream() error {
	u := v.cfg.Upstream
	if u.BaseURL == "" {
		return NewValidationError("upstream", "base_url", ErrMissingRequiredField)
	}
	parsed, err := url.Parse(u.BaseURL)
	if err != nil {
		return NewValidationError("upstream", "base_url", fmt.Errorf("%w: %v", ErrInvalidValue, err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return NewValidationError("upstream", "base_url", fmt.Errorf("%w: scheme %q not supported", ErrInvalidValue, parsed.Scheme))
	}
	if parsed.Host == "" {
		return NewValidationError("upstream", "base_url", fmt.Errorf("%w: host is empty", ErrInvalidValue))
	}
	if u.GeneratePath == "" || u.GeneratePath[0] != '/' {
		return NewValidationError("upstream", "generate_path", fmt.Errorf("%w: must start with /", ErrInvalidValue))
	}
	if u.ResponseHeaderTimeout < 0 {
		return NewValidationError("upstream", "response_header_timeout", fmt.Errorf("%w: must not be negative", ErrInvalidValue))
	}
	return nil
}

func (v *ConfigValidator) validateRelay() error {
	r := v.cfg.Relay
	if r.ReadBufferBytes <= 0 {
		return NewValidationError("relay", "read_buffer_bytes", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if r.MaxLineBytes >= 0 && r.MaxLineBytes < r.ReadBufferBytes {
		return NewValidationError("relay", "max_line_bytes", fmt.Errorf("%w: must be at least read_buffer_bytes (%d)", ErrInvalidValue, r.ReadBufferBytes))
	}
	return nil
}

func (v *ConfigValidator) validateAuth() error {
	if v.cfg.Auth.SecretEnv == "" {
		return NewValidationError("auth", "secret_env", ErrMissingRequiredField)
	}
	return nil
}
