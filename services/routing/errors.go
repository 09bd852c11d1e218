package routing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProviderAvailable is returned when no configured provider can
// handle the request.
var ErrNoProviderAvailable = errors.New("no provider available")

// ModelDecommissionedError is returned when a model was retired by its
// vendor and no fallback provider could take over.
type ModelDecommissionedError struct {
	// Model is the decommissioned model name.
	Model string

	// Replacement is the suggested replacement model.
	Replacement string

	// Cause is the vendor error that revealed the decommission.
	Cause error
}

// Error implements the error interface.
func (e *ModelDecommissionedError) Error() string {
	return fmt.Sprintf("model %q has been decommissioned: %s", e.Model, e.RemediationHint())
}

// Unwrap implements error unwrapping.
func (e *ModelDecommissionedError) Unwrap() error {
	return e.Cause
}

// RemediationHint returns a human-readable fix suggestion, also
// forwarded on the auto-repair dispatch.
func (e *ModelDecommissionedError) RemediationHint() string {
	return fmt.Sprintf("replace model %q with %q in the provider configuration", e.Model, e.Replacement)
}

// RateLimitExhaustedError is returned when every gear and provider in
// the fallback cascade was rate limited.
type RateLimitExhaustedError struct {
	// Exhausted names the gears/providers attempted, in order.
	Exhausted []string

	// Cause is the last rate-limit error observed.
	Cause error
}

// Error implements the error interface.
func (e *RateLimitExhaustedError) Error() string {
	return fmt.Sprintf("rate limit exhausted across %s", strings.Join(e.Exhausted, ", "))
}

// Unwrap implements error unwrapping.
func (e *RateLimitExhaustedError) Unwrap() error {
	return e.Cause
}
