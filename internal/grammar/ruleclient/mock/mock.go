// Package mock provides a test double for the rule backend client.
package mock

import (
	"context"

	"github.com/1ordo/illiterate-go/internal/grammar"
)

// CheckCall records the arguments of a single Check invocation.
type CheckCall struct {
	Text     string
	Language string
}

// Client is a test double satisfying the method set that
// internal/grammar/pipeline expects from a rule backend client.
type Client struct {
	CheckCalls []CheckCall
	CheckFunc  func(ctx context.Context, text, language string) ([]grammar.Issue, error)

	ProbeCalls int
	ProbeFunc  func(ctx context.Context) bool
}

// Check records the call and delegates to CheckFunc, defaulting to
// returning no issues and no error when CheckFunc is nil.
func (c *Client) Check(ctx context.Context, text, language string) ([]grammar.Issue, error) {
	c.CheckCalls = append(c.CheckCalls, CheckCall{Text: text, Language: language})
	if c.CheckFunc != nil {
		return c.CheckFunc(ctx, text, language)
	}
	return nil, nil
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
	c.CheckCalls = nil
	c.ProbeCalls = 0
}
