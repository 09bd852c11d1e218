package providers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Message represents a single message in a conversation.
type Message struct {
	// Role can be "system", "user", or "assistant".
	Role string `json:"role" validate:"required,oneof=system user assistant"`

	// Content is the message text.
	Content string `json:"content"`

	// ImageURL optionally attaches an image; only honored on
	// multimodal requests.
	ImageURL string `json:"image_url,omitempty"`
}

// ToolDeclaration describes a function the model may call.
type ToolDeclaration struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Request represents one chat completion request as seen by the
// gateway. Requests are values scoped to a single call; nothing in
// them is shared or persisted.
type Request struct {
	// ID correlates log lines and repair dispatches for this request.
	ID string `json:"id"`

	// Messages in the conversation, in order.
	Messages []Message `json:"messages" validate:"required,min=1,dive"`

	// Multimodal marks requests carrying non-text content; these can
	// only be served by the secondary provider.
	Multimodal bool `json:"multimodal,omitempty"`

	// ForcedProvider overrides automatic selection when that provider
	// is configured.
	ForcedProvider *Identity `json:"forced_provider,omitempty"`

	// Tools are optional function declarations.
	Tools []ToolDeclaration `json:"tools,omitempty" validate:"dive"`

	// FileContext is a caller-supplied conjecture about which source
	// file triggered this request; forwarded verbatim on critical
	// repair dispatches. May be empty.
	FileContext string `json:"file_context,omitempty"`
}

// NewRequest creates a request with a fresh correlation ID.
func NewRequest(messages []Message) *Request {
	return &Request{
		ID:       uuid.NewString(),
		Messages: messages,
	}
}

// Validate checks the request shape before routing.
func (r *Request) Validate() error {
	return validate.Struct(r)
}

// JoinedContent concatenates all message contents, in order. Token
// estimation operates on this string.
func (r *Request) JoinedContent() string {
	var b strings.Builder
	for _, m := range r.Messages {
		b.WriteString(m.Content)
	}
	return b.String()
}

// Usage represents token usage reported by the vendor.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response represents a completed request.
type Response struct {
	// ID is the vendor's completion identifier.
	ID string `json:"id"`

	// Provider that served the request.
	Provider Identity `json:"provider"`

	// Model that produced the completion.
	Model string `json:"model"`

	// Gear the primary provider was in for this attempt; empty for the
	// secondary provider.
	Gear string `json:"gear,omitempty"`

	// Content is the assistant message text.
	Content string `json:"content"`

	// Raw is the unparsed vendor response body.
	Raw json.RawMessage `json:"raw,omitempty"`

	// Usage statistics, when the vendor reports them.
	Usage Usage `json:"usage"`

	// Latency of the upstream round trip.
	Latency time.Duration `json:"latency"`

	// FallbackFrom is set when this response was served by a fallback
	// provider after the tagged provider failed.
	FallbackFrom *Identity `json:"fallback_from,omitempty"`
}
