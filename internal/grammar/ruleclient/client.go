// Package ruleclient talks to the rule-based grammar backend (a
// LanguageTool-compatible HTTP service). It is Stage 1 of the correction
// pipeline: a deterministic, low-latency pass that the rest of the
// pipeline can always fall back to.
package ruleclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/1ordo/illiterate-go/internal/grammar"
)

const (
	defaultTimeout     = 15 * time.Second
	probeTimeout       = 5 * time.Second
	maxSuggestions     = 5
	defaultRuleLang    = "en-US"
)

// languageCodes maps internal ISO language codes to the codes the rule
// backend expects. Languages absent from this table are sent as
// defaultRuleLang.
var languageCodes = map[string]string{
	"nl": "nl",
	"en": "en-US",
	"de": "de-DE",
	"fr": "fr",
	"es": "es",
}

var categoryMap = map[string]grammar.IssueCategory{
	"GRAMMAR":        grammar.CategoryGrammar,
	"TYPOS":          grammar.CategorySpelling,
	"SPELLING":       grammar.CategorySpelling,
	"PUNCTUATION":    grammar.CategoryPunctuation,
	"STYLE":          grammar.CategoryStyle,
	"TYPOGRAPHY":     grammar.CategoryTypography,
	"CASING":         grammar.CategoryTypography,
	"CONFUSED_WORDS": grammar.CategoryGrammar,
	"REDUNDANCY":     grammar.CategoryStyle,
	"MISC":           grammar.CategoryOther,
}

var severityMap = map[string]grammar.IssueSeverity{
	"misspelling":   grammar.SeverityError,
	"grammar":       grammar.SeverityError,
	"style":         grammar.SeverityStyle,
	"typographical": grammar.SeverityWarning,
	"hint":          grammar.SeverityHint,
}

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client. Useful in tests to
// inject a client pointed at an httptest.Server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithTimeout overrides the per-request timeout applied to Check.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client is an HTTP client for a LanguageTool-compatible rule backend.
type Client struct {
	baseURL string
	hc      *http.Client
	timeout time.Duration
}

// New creates a [Client] targeting baseURL (e.g. "http://localhost:8010/v2").
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("ruleclient: baseURL must not be empty")
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc:      &http.Client{},
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// matchResponse mirrors the rule backend's /check JSON response.
type matchResponse struct {
	Matches []match `json:"matches"`
}

type match struct {
	Offset       int          `json:"offset"`
	Length       int          `json:"length"`
	Message      string       `json:"message"`
	Replacements []replacement `json:"replacements"`
	Context      matchContext `json:"context"`
	Rule         rule         `json:"rule"`
	Type         matchType    `json:"type"`
}

type replacement struct {
	Value string `json:"value"`
}

type matchContext struct {
	Text string `json:"text"`
}

type rule struct {
	ID       string       `json:"id"`
	Category ruleCategory `json:"category"`
}

type ruleCategory struct {
	ID string `json:"id"`
}

type matchType struct {
	TypeName string `json:"typeName"`
}

// Check analyzes text and returns the issues the rule backend detects.
// The returned error is always a *grammar.RuleBackendError.
func (c *Client) Check(ctx context.Context, text, language string) ([]grammar.Issue, error) {
	form := url.Values{
		"text":        {text},
		"language":    {ruleLanguageCode(language)},
		"enabledOnly": {"false"},
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &grammar.RuleBackendError{Op: "check", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &grammar.RuleBackendError{Op: "check", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &grammar.RuleBackendError{Op: "check", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &grammar.RuleBackendError{Op: "check", Err: err}
	}

	return parseMatches(body.Matches, text), nil
}

// Probe reports whether the rule backend is reachable. It never returns an
// error — an unreachable backend and a non-200 response both report false.
func (c *Client) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/languages", nil)
	if err != nil {
		return false
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func ruleLanguageCode(language string) string {
	if code, ok := languageCodes[language]; ok {
		return code
	}
	return defaultRuleLang
}

func parseMatches(matches []match, text string) []grammar.Issue {
	runes := []rune(text)
	issues := make([]grammar.Issue, 0, len(matches))
	for _, m := range matches {
		var span string
		if m.Length > 0 && m.Offset >= 0 && m.Offset+m.Length <= len(runes) {
			span = string(runes[m.Offset : m.Offset+m.Length])
		}

		suggestions := make([]string, 0, min(len(m.Replacements), maxSuggestions))
		for i, r := range m.Replacements {
			if i >= maxSuggestions {
				break
			}
			suggestions = append(suggestions, r.Value)
		}

		ruleID := m.Rule.ID
		if ruleID == "" {
			ruleID = "UNKNOWN"
		}
		categoryID := m.Rule.Category.ID
		if categoryID == "" {
			categoryID = "MISC"
		}

		issues = append(issues, grammar.Issue{
			Offset:       m.Offset,
			Length:       m.Length,
			Message:      m.Message,
			RuleID:       ruleID,
			Category:     mapCategory(categoryID),
			Severity:     mapSeverity(m.Type.TypeName),
			OriginalText: span,
			Suggestions:  suggestions,
			Context:      m.Context.Text,
		})
	}
	return issues
}

func mapCategory(ltCategory string) grammar.IssueCategory {
	if cat, ok := categoryMap[strings.ToUpper(ltCategory)]; ok {
		return cat
	}
	return grammar.CategoryOther
}

func mapSeverity(ltType string) grammar.IssueSeverity {
	if sev, ok := severityMap[strings.ToLower(ltType)]; ok {
		return sev
	}
	return grammar.SeverityWarning
}
