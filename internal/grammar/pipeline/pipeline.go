// Package pipeline orchestrates the two-stage grammar correction flow: a
// rule-based check, an optional generative correction, and a validation
// loop that falls back to a deterministic rule-based fix whenever the
// generated correction cannot be trusted.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/1ordo/illiterate-go/internal/grammar"
	"github.com/1ordo/illiterate-go/internal/grammar/modelclient"
	"github.com/1ordo/illiterate-go/internal/grammar/prompt"
	"github.com/1ordo/illiterate-go/internal/grammar/validator"
	"github.com/1ordo/illiterate-go/internal/resilience"
)

// ruleChecker is the subset of internal/grammar/ruleclient.Client (and its
// mock) the orchestrator depends on.
type ruleChecker interface {
	Check(ctx context.Context, text, language string) ([]grammar.Issue, error)
	Probe(ctx context.Context) bool
}

// modelCompleter is the subset of internal/grammar/modelclient.Client (and
// its mock) the orchestrator depends on.
type modelCompleter interface {
	Complete(ctx context.Context, prompt, originalText string) (modelclient.Result, error)
	Probe(ctx context.Context) bool
}

// Orchestrator is the single entry point of the correction core: it
// sequences the rule backend, the model backend, and the validator, and
// assembles the final response.
type Orchestrator struct {
	rules      ruleChecker
	model      modelCompleter
	validate   *validator.Validator
	ruleBreak  *resilience.CircuitBreaker
	modelBreak *resilience.CircuitBreaker
}

// New returns an [Orchestrator] wiring rules and model through their own
// circuit breakers, so a backend that is already down fails fast instead
// of being hammered request after request.
func New(rules ruleChecker, model modelCompleter) *Orchestrator {
	return &Orchestrator{
		rules:    rules,
		model:    model,
		validate: validator.New(rules),
		ruleBreak: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "rule-backend",
		}),
		modelBreak: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "model-backend",
		}),
	}
}

// Process runs req through the full correction pipeline and returns the
// assembled response. It never returns an error: every backend failure is
// absorbed into a degraded-but-valid CheckResponse, per the orchestrator's
// degraded-output contract.
func (o *Orchestrator) Process(ctx context.Context, req grammar.CheckRequest) grammar.CheckResponse {
	text := req.Text
	language := req.Language

	issues, err := o.checkRules(ctx, text, language)
	if err != nil {
		slog.Error("rule backend failed", "error", err)
		return grammar.CheckResponse{
			OriginalText:     text,
			CorrectedText:    text,
			Issues:           []grammar.Issue{},
			ValidationPassed: false,
			FallbackUsed:     true,
			Language:         language,
		}
	}

	var resp grammar.CheckResponse
	if len(issues) == 0 {
		resp = o.processNoIssues(ctx, req)
	} else {
		resp = o.processCorrected(ctx, req, issues)
	}

	if !req.IncludeExplanations {
		resp.Explanations = nil
	}
	resp.IssueCount = len(resp.Issues)
	return resp
}

// processNoIssues handles the NoIssues state: the rule backend found
// nothing, so the model backend gets one chance to catch what it missed
// and propose rewrites.
func (o *Orchestrator) processNoIssues(ctx context.Context, req grammar.CheckRequest) grammar.CheckResponse {
	text := req.Text
	language := req.Language
	includeRewrites := req.Mode == grammar.ModeStyle

	base := grammar.CheckResponse{
		OriginalText:     text,
		CorrectedText:    text,
		Issues:           []grammar.Issue{},
		Rewrites:         []grammar.Rewrite{},
		Explanations:     []grammar.Explanation{},
		ValidationPassed: true,
		FallbackUsed:     false,
		Language:         language,
	}

	p := prompt.BuildStyleReviewPrompt(text, language, req.Tone)
	result, err := o.completeModel(ctx, p, text)
	if err != nil || !result.OK {
		if err != nil {
			slog.Warn("model backend failed during style review", "error", err)
		}
		return base
	}

	foundIssues := result.CorrectedText != text
	corrected := text
	if foundIssues {
		corrected = result.CorrectedText
		validation, vErr := o.validate.Validate(ctx, corrected, nil, language, !req.NonStrict)
		if vErr != nil || !validation.Valid {
			slog.Warn("model correction without prior issues failed validation, discarding")
			corrected = text
			foundIssues = false
		}
	}

	resp := base
	resp.CorrectedText = corrected
	if foundIssues {
		resp.Issues = explanationsToIssues(text, result.Explanations)
	}
	if includeRewrites {
		resp.Rewrites = result.Rewrites
	}
	resp.Explanations = result.Explanations
	return resp
}

// processCorrected handles the Corrected state: the rule backend found
// issues, so a deterministic fallback text is computed up front, the model
// backend attempts a semantic correction, and the validator decides which
// of the two survives.
func (o *Orchestrator) processCorrected(ctx context.Context, req grammar.CheckRequest, issues []grammar.Issue) grammar.CheckResponse {
	text := req.Text
	language := req.Language
	includeRewrites := req.Mode == grammar.ModeStyle

	fallbackText := applyRuleBasedFixes(text, issues)

	finalText := fallbackText
	usedFallback := true
	validationPassed := false
	var rewrites []grammar.Rewrite
	var explanations []grammar.Explanation

	p := prompt.BuildCorrectionPrompt(text, issues, language, req.Tone, includeRewrites)
	result, err := o.completeModel(ctx, p, text)
	switch {
	case err != nil:
		slog.Error("model backend failed, using rule-based fallback", "error", err)
		explanations = basicExplanations(issues)
	case !result.OK:
		slog.Warn("model backend returned an undecodable response, using rule-based fallback")
		explanations = basicExplanations(issues)
	default:
		chosen, fellBack, validation := o.validate.ValidateAndChoose(ctx, result.CorrectedText, fallbackText, issues, language, !req.NonStrict)
		finalText = chosen
		usedFallback = fellBack
		validationPassed = validation.Valid
		if !fellBack {
			if includeRewrites {
				rewrites = result.Rewrites
			}
			explanations = result.Explanations
		} else {
			slog.Warn("model correction failed validation, using rule-based fallback", "reason", validation.Reason, "new_issues", validation.NewCount)
			explanations = basicExplanations(issues)
		}
	}

	return grammar.CheckResponse{
		OriginalText:     text,
		CorrectedText:    finalText,
		Issues:           issues,
		Rewrites:         rewrites,
		Explanations:     explanations,
		ValidationPassed: validationPassed,
		FallbackUsed:     usedFallback,
		Language:         language,
	}
}

// CheckServices reports which backends are currently reachable.
// pipeline_ready mirrors the rule backend's availability: the model
// backend is optional since every correction path has a deterministic
// fallback.
func (o *Orchestrator) CheckServices(ctx context.Context) map[string]bool {
	ruleUp := o.rules.Probe(ctx)
	modelUp := o.model.Probe(ctx)
	return map[string]bool{
		"rule_backend":   ruleUp,
		"model_backend":  modelUp,
		"pipeline_ready": ruleUp,
	}
}

func (o *Orchestrator) checkRules(ctx context.Context, text, language string) ([]grammar.Issue, error) {
	var issues []grammar.Issue
	err := o.ruleBreak.Execute(func() error {
		var innerErr error
		issues, innerErr = o.rules.Check(ctx, text, language)
		return innerErr
	})
	return issues, err
}

func (o *Orchestrator) completeModel(ctx context.Context, p, originalText string) (modelclient.Result, error) {
	var result modelclient.Result
	err := o.modelBreak.Execute(func() error {
		var innerErr error
		result, innerErr = o.model.Complete(ctx, p, originalText)
		return innerErr
	})
	return result, err
}

// applyRuleBasedFixes replaces each issue span with its first suggestion.
// Edits apply in descending-offset order so an earlier replacement never
// invalidates the offsets of a later one; two issues sharing an offset
// apply the larger-length one first, and two issues sharing both apply in
// original input order. Issues with no suggestions are left untouched.
func applyRuleBasedFixes(text string, issues []grammar.Issue) string {
	type indexed struct {
		issue grammar.Issue
		index int
	}
	sorted := make([]indexed, len(issues))
	for i, issue := range issues {
		sorted[i] = indexed{issue: issue, index: i}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.issue.Offset != b.issue.Offset {
			return a.issue.Offset > b.issue.Offset
		}
		if a.issue.Length != b.issue.Length {
			return a.issue.Length > b.issue.Length
		}
		return a.index < b.index
	})

	runes := []rune(text)
	for _, item := range sorted {
		issue := item.issue
		if len(issue.Suggestions) == 0 {
			continue
		}
		start := issue.Offset
		end := issue.Offset + issue.Length
		if start < 0 || end > len(runes) || start > end {
			continue
		}
		replacement := []rune(issue.Suggestions[0])
		merged := make([]rune, 0, len(runes)-(end-start)+len(replacement))
		merged = append(merged, runes[:start]...)
		merged = append(merged, replacement...)
		merged = append(merged, runes[end:]...)
		runes = merged
	}
	return string(runes)
}

// basicExplanations synthesizes one explanation per issue that has a
// suggestion, used whenever the rule-based fallback text is chosen over a
// model-backend correction.
func basicExplanations(issues []grammar.Issue) []grammar.Explanation {
	explanations := make([]grammar.Explanation, 0, len(issues))
	for _, issue := range issues {
		if len(issue.Suggestions) == 0 {
			continue
		}
		explanations = append(explanations, grammar.Explanation{
			Span:      issue.OriginalText,
			Original:  issue.OriginalText,
			Corrected: issue.Suggestions[0],
			Reason:    issue.Message,
		})
	}
	return explanations
}

// explanationsToIssues converts model-produced explanations into Issues,
// used when the rule backend found nothing but the model backend did:
// each explanation's original span is located in text by first match.
func explanationsToIssues(text string, explanations []grammar.Explanation) []grammar.Issue {
	runes := []rune(text)
	issues := make([]grammar.Issue, 0, len(explanations))
	for _, exp := range explanations {
		if exp.Original == "" || exp.Corrected == "" || exp.Original == exp.Corrected {
			continue
		}
		offset := runeIndex(runes, exp.Original)
		if offset == -1 {
			offset = 0
		}
		length := len([]rune(exp.Original))
		reason := exp.Reason
		if reason == "" {
			reason = "model detected issue"
		}
		issues = append(issues, grammar.Issue{
			Offset:       offset,
			Length:       length,
			Message:      reason,
			RuleID:       "MODEL_DETECTED",
			Category:     grammar.CategoryGrammar,
			Severity:     grammar.SeverityWarning,
			OriginalText: exp.Original,
			Suggestions:  []string{exp.Corrected},
			Context:      runeContext(runes, offset, length),
		})
	}
	return issues
}

// runeIndex returns the rune offset of the first occurrence of substr in
// runes, or -1 if not found.
func runeIndex(runes []rune, substr string) int {
	sub := []rune(substr)
	if len(sub) == 0 || len(sub) > len(runes) {
		return -1
	}
	for i := 0; i+len(sub) <= len(runes); i++ {
		if string(runes[i:i+len(sub)]) == string(sub) {
			return i
		}
	}
	return -1
}

// runeContext returns up to 20 runes of surrounding context on either side
// of [offset, offset+length).
func runeContext(runes []rune, offset, length int) string {
	start := offset - 20
	if start < 0 {
		start = 0
	}
	end := offset + length + 20
	if end > len(runes) {
		end = len(runes)
	}
	if start > end || start > len(runes) {
		return ""
	}
	return strings.TrimSpace(string(runes[start:end]))
}
