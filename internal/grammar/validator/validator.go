// Package validator re-checks a candidate correction against the rule
// backend before it is allowed to reach a caller. This is the safety net
// that prevents a hallucinated model-backend rewrite from introducing new
// grammar errors: the pipeline orchestrator must never trust generated
// text without this pass.
package validator

import (
	"context"
	"strings"

	"github.com/1ordo/illiterate-go/internal/grammar"
)

// ignoreCategories holds the issue categories that a non-strict validation
// pass tolerates — minor style nitpicks the model backend may introduce as
// a side effect of an otherwise-good correction.
var ignoreCategories = map[grammar.IssueCategory]bool{
	grammar.CategoryStyle:      true,
	grammar.CategoryTypography: true,
}

// maxNewIssues is the number of genuinely new issues a correction may
// introduce and still be considered valid. Zero means strict: no new
// errors allowed.
const maxNewIssues = 0

// ruleChecker is the subset of the rule backend client the validator needs.
// internal/grammar/ruleclient.Client and internal/grammar/ruleclient/mock.Client
// both satisfy it.
type ruleChecker interface {
	Check(ctx context.Context, text, language string) ([]grammar.Issue, error)
}

// Validator re-validates candidate corrections against a rule backend.
type Validator struct {
	rules ruleChecker
}

// New returns a [Validator] backed by rules.
func New(rules ruleChecker) *Validator {
	return &Validator{rules: rules}
}

// Validate re-checks correctedText against the rule backend and decides
// whether it may replace the original text, given the issues the original
// text had.
//
// When the rule backend itself fails during re-validation, Validate
// returns a *grammar.ValidationInconclusiveError — the caller must treat
// this the same as an invalid result and fall back, since there is no way
// to confirm the candidate is safe.
func (v *Validator) Validate(ctx context.Context, correctedText string, originalIssues []grammar.Issue, language string, strict bool) (grammar.ValidationResult, error) {
	newIssues, err := v.rules.Check(ctx, correctedText, language)
	if err != nil {
		return grammar.ValidationResult{}, &grammar.ValidationInconclusiveError{Err: err}
	}

	trulyNew := make([]grammar.Issue, 0, len(newIssues))
	for _, issue := range newIssues {
		if isSimilarIssue(issue, originalIssues) {
			continue
		}
		if !strict && ignoreCategories[issue.Category] {
			continue
		}
		trulyNew = append(trulyNew, issue)
	}

	if len(trulyNew) > maxNewIssues {
		return grammar.ValidationResult{
			Valid:         false,
			OriginalCount: len(originalIssues),
			NewCount:      len(newIssues),
			NewIssues:     trulyNew,
			Reason:        "correction introduced new issues",
		}, nil
	}

	if len(newIssues) > len(originalIssues) {
		return grammar.ValidationResult{
			Valid:         false,
			OriginalCount: len(originalIssues),
			NewCount:      len(newIssues),
			NewIssues:     newIssues,
			Reason:        "correction did not reduce error count",
		}, nil
	}

	return grammar.ValidationResult{
		Valid:         true,
		OriginalCount: len(originalIssues),
		NewCount:      len(newIssues),
		NewIssues:     trulyNew,
		Reason:        "validation passed",
	}, nil
}

// ValidateAndChoose validates candidateText and, if it fails validation (or
// validation is inconclusive), falls back to fallbackText instead. It
// returns the chosen text, whether the fallback was used, and the
// validation result that drove the decision.
func (v *Validator) ValidateAndChoose(ctx context.Context, candidateText, fallbackText string, originalIssues []grammar.Issue, language string, strict bool) (chosenText string, usedFallback bool, result grammar.ValidationResult) {
	result, err := v.Validate(ctx, candidateText, originalIssues, language, strict)
	if err != nil || !result.Valid {
		return fallbackText, true, result
	}
	return candidateText, false, result
}

// isSimilarIssue reports whether issue is the same underlying problem as
// one of originalIssues. Offsets are deliberately ignored: a correction
// shifts every subsequent offset, so matching is done on rule identity and
// text content instead.
func isSimilarIssue(issue grammar.Issue, originalIssues []grammar.Issue) bool {
	for _, orig := range originalIssues {
		if issue.RuleID == orig.RuleID && strings.EqualFold(issue.OriginalText, orig.OriginalText) {
			return true
		}
		if issue.OriginalText == orig.OriginalText {
			return true
		}
	}
	return false
}
