// Package modelclient talks to the generative model backend — Stage 2 of
// the correction pipeline. It builds a prompt-driven request against an
// llmprovider.Provider, and decodes the model's JSON reply into corrected
// text, rewrite suggestions, and explanations.
//
// A malformed or unparseable response is not an error: Complete reports
// ok=false so the pipeline can fall through to the deterministic
// rule-based fallback, matching the graceful-degradation behaviour the
// correction stage must have.
package modelclient

import (
	"context"

	"github.com/1ordo/illiterate-go/internal/grammar"
	"github.com/1ordo/illiterate-go/pkg/llmprovider"
)

const defaultSystemPrompt = "You are a precise grammar correction assistant. You MUST respond with valid JSON only. Never include any text outside the JSON object."

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithTemperature overrides the sampling temperature sent with every request.
func WithTemperature(t float64) Option {
	return func(c *Client) {
		c.temperature = t
	}
}

// WithMaxTokens overrides the completion token cap sent with every request.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// Client wraps an llmprovider.Provider with the model backend's prompt and
// decoding contract.
type Client struct {
	provider    llmprovider.Provider
	temperature float64
	maxTokens   int
}

// New returns a [Client] backed by provider.
func New(provider llmprovider.Provider, opts ...Option) *Client {
	c := &Client{
		provider:    provider,
		temperature: 0.1,
		maxTokens:   2048,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Result is the decoded outcome of a model backend completion.
type Result struct {
	CorrectedText string
	Rewrites      []grammar.Rewrite
	Explanations  []grammar.Explanation
	// OK reports whether the response was successfully decoded. When false,
	// CorrectedText equals the original text and Rewrites/Explanations are
	// empty — callers should treat this as "no correction produced", not
	// as a failure of the request itself.
	OK bool
}

// Complete sends prompt to the model backend and decodes its reply.
//
// The returned error is non-nil only when the request itself failed
// (transport error, non-2xx status, or context cancellation) — it is
// always a *grammar.ModelBackendError. A response that arrives but cannot
// be decoded into the expected JSON shape is reported via Result.OK=false,
// with a nil error.
func (c *Client) Complete(ctx context.Context, prompt, originalText string) (Result, error) {
	req := llmprovider.CompletionRequest{
		Messages: []llmprovider.Message{
			{Role: "system", Content: defaultSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	resp, err := c.provider.Complete(ctx, req)
	if err != nil {
		return Result{}, &grammar.ModelBackendError{Op: "complete", Err: err}
	}

	corrected, rewrites, explanations, ok := decode(resp.Content, originalText)
	if !ok {
		return Result{CorrectedText: originalText, OK: false}, nil
	}

	return Result{
		CorrectedText: corrected,
		Rewrites:      rewrites,
		Explanations:  explanations,
		OK:            true,
	}, nil
}

// availabilityRequest is the minimal completion request used by Probe, kept
// deliberately tiny since it exists only to exercise the round trip.
var availabilityRequest = llmprovider.CompletionRequest{
	Messages:    []llmprovider.Message{{Role: "user", Content: "Say 'ok'."}},
	MaxTokens:   5,
	Temperature: 0,
}

// Probe reports whether the model backend is reachable by issuing a
// minimal completion request. It never returns an error.
func (c *Client) Probe(ctx context.Context) bool {
	_, err := c.provider.Complete(ctx, availabilityRequest)
	return err == nil
}
