package bedrock

import (
	"errors"
	"fmt"
)

// DefaultRegion is used by configuration loaders when no region is given.
const DefaultRegion = "us-east-1"

// Config holds the connection settings for the Bedrock runtime client.
type Config struct {
	// Region is the AWS region hosting the model (required).
	Region string

	// AccessKeyID and SecretAccessKey are static credentials. Both are
	// required unless UseDefaultCredentials is set.
	AccessKeyID     string
	SecretAccessKey string

	// SessionToken is optional and only used with static credentials.
	SessionToken string

	// UseDefaultCredentials resolves credentials through the AWS default
	// chain (environment, shared config, instance role) instead of the
	// static keys above.
	UseDefaultCredentials bool

	// Endpoint overrides the runtime endpoint URL, e.g. a VPC endpoint or a
	// local mock. Empty uses the regional default.
	Endpoint string
}

// Sentinel errors wrapped by ConfigError.
var (
	ErrMissingRegion      = errors.New("bedrock: region is required")
	ErrMissingCredentials = errors.New("bedrock: access key and secret key are required")
)

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field string
	Err   error
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("bedrock config %s: %v", e.Field, e.Err)
}

// Unwrap returns the wrapped sentinel for errors.Is.
func (e *ConfigError) Unwrap() error { return e.Err }

var _ error = (*ConfigError)(nil)

// Validate checks required fields. All problems are reported together.
func (c Config) Validate() error {
	var errs []error

	if c.Region == "" {
		errs = append(errs, &ConfigError{Field: "region", Err: ErrMissingRegion})
	}

	if !c.UseDefaultCredentials {
		if c.AccessKeyID == "" {
			errs = append(errs, &ConfigError{Field: "access_key_id", Err: ErrMissingCredentials})
		}
		if c.SecretAccessKey == "" {
			errs = append(errs, &ConfigError{Field: "secret_access_key", Err: ErrMissingCredentials})
		}
	}

	return errors.Join(errs...)
}
