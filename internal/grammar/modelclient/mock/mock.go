// Package mock provides a test double for the model backend client.
package mock

import (
	"context"

	"github.com/1ordo/illiterate-go/internal/grammar/modelclient"
)

// CompleteCall records the arguments of a single Complete invocation.
type CompleteCall struct {
	Prompt       string
	OriginalText string
}

// Client is a test double satisfying the method set that
// internal/grammar/pipeline expects from a model backend client.
type Client struct {
	CompleteCalls []CompleteCall
	CompleteFunc  func(ctx context.Context, prompt, originalText string) (modelclient.Result, error)

	ProbeCalls int
	ProbeFunc  func(ctx context.Context) bool
}

// Complete records the call and delegates to CompleteFunc, defaulting to
// reporting OK=false (no correction produced) when CompleteFunc is nil.
func (c *Client) Complete(ctx context.Context, prompt, originalText string) (modelclient.Result, error) {
	c.CompleteCalls = append(c.CompleteCalls, CompleteCall{Prompt: prompt, OriginalText: originalText})
	if c.CompleteFunc != nil {
		return c.CompleteFunc(ctx, prompt, originalText)
	}
	return modelclient.Result{CorrectedText: originalText, OK: false}, nil
}

// Probe records the call and delegates to ProbeFunc, defaulting to true.
func (c *Client) Probe(ctx context.Context) bool {
	c.ProbeCalls++
	if c.ProbeFunc != nil {
		return c.ProbeFunc(ctx)
	}
	return true
}

// Reset clears all recorded calls.
func (c *Client) Reset() {
	c.CompleteCalls = nil
	c.ProbeCalls = 0
}
