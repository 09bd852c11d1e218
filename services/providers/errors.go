package providers

import "fmt"

// ProviderError wraps a vendor failure with routing context. The
// message keeps the vendor's original error text intact because
// downstream classification matches on it.
type ProviderError struct {
	// Provider that generated the error.
	Provider Identity

	// StatusCode is the HTTP status code, when applicable.
	StatusCode int

	// Message is the vendor's error text.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap implements error unwrapping.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error.
func NewProviderError(provider Identity, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}
