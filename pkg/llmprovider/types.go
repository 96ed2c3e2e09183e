// Package llmprovider defines the Provider abstraction used by the model
// backend client to talk to a generative LLM, independent of which vendor
// SDK backs it.
package llmprovider

// Message is a single turn in an LLM conversation.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// ModelCapabilities describes what an LLM model supports. The pipeline
// does not currently branch on any of these fields, but they are surfaced
// for operators inspecting which backend is wired in.
type ModelCapabilities struct {
	// ContextWindow is the maximum token count for input + output.
	ContextWindow int

	// MaxOutputTokens is the maximum tokens the model can generate in one completion.
	MaxOutputTokens int
}
