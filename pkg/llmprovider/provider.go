package llmprovider

import "context"

// CompletionRequest carries everything the model needs to produce a
// single-shot completion. The model backend client never streams and never
// offers tools — the contract is strictly request in, text out.
type CompletionRequest struct {
	// Messages is the ordered conversation history: typically a system
	// message followed by one user message carrying the correction prompt.
	Messages []Message

	// Temperature controls output randomness in the range [0.0, 2.0].
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may
	// generate. Zero means use the provider default.
	MaxTokens int
}

// CompletionResponse is returned by Complete.
type CompletionResponse struct {
	// Content is the full text of the assistant's reply.
	Content string
}

// Provider is the abstraction over any LLM backend capable of a single-shot
// chat completion. Implementations must be safe for concurrent use and
// must propagate context cancellation promptly.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Capabilities returns static metadata describing the underlying model.
	Capabilities() ModelCapabilities
}
