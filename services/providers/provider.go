package providers

import "context"

// Provider executes chat completions against one upstream vendor.
//
// Complete performs a blocking network round trip; callers that must
// not block offload it to a goroutine and select on their context.
type Provider interface {
	// Identity returns which modeled provider this is.
	Identity() Identity

	// Available reports whether the provider was configured with
	// credentials. Set once at construction, read-only afterwards.
	Available() bool

	// DefaultModel returns the model used when the caller does not
	// resolve one (the primary provider's model is resolved per gear
	// by the caller instead).
	DefaultModel() string

	// Complete performs a chat completion against the given model.
	Complete(ctx context.Context, req *Request, model string) (*Response, error)
}
