package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/1ordo/illiterate-go/internal/grammar"
	"github.com/1ordo/illiterate-go/internal/grammar/modelclient"
	modelmock "github.com/1ordo/illiterate-go/internal/grammar/modelclient/mock"
	rulemock "github.com/1ordo/illiterate-go/internal/grammar/ruleclient/mock"
)

var errConnRefused = errors.New("connection refused")

func deIssue() grammar.Issue {
	return grammar.Issue{
		Offset: 7, Length: 2, OriginalText: "de", RuleID: "DE_HET",
		Category: grammar.CategoryGrammar, Severity: grammar.SeverityError,
		Suggestions: []string{"het"}, Message: "wrong article",
	}
}

// Scenario 1: model succeeds and validates cleanly.
func TestProcessModelCorrectionAccepted(t *testing.T) {
	t.Parallel()

	rules := &rulemock.Client{}
	calls := 0
	rules.CheckFunc = func(ctx context.Context, text, language string) ([]grammar.Issue, error) {
		calls++
		if calls == 1 {
			return []grammar.Issue{deIssue()}, nil
		}
		return nil, nil // re-check after correction: clean
	}

	model := &modelmock.Client{
		CompleteFunc: func(ctx context.Context, prompt, original string) (modelclient.Result, error) {
			return modelclient.Result{
				CorrectedText: "Ik heb het boek gelezen.",
				Explanations:  []grammar.Explanation{{Span: "de", Original: "de", Corrected: "het", Reason: "wrong article"}},
				OK:            true,
			}, nil
		},
	}

	o := New(rules, model)
	resp := o.Process(context.Background(), grammar.CheckRequest{
		Text: "Ik heb de boek gelezen.", Language: "nl", Mode: grammar.ModeStrict, IncludeExplanations: true,
	})

	if resp.CorrectedText != "Ik heb het boek gelezen." {
		t.Errorf("CorrectedText = %q", resp.CorrectedText)
	}
	if resp.FallbackUsed {
		t.Error("expected FallbackUsed=false")
	}
	if !resp.ValidationPassed {
		t.Error("expected ValidationPassed=true")
	}
	if len(resp.Rewrites) != 0 {
		t.Error("expected no rewrites in strict mode")
	}
}

// Scenario 2: model fails (times out) -> deterministic fallback used.
func TestProcessModelFailureFallsBack(t *testing.T) {
	t.Parallel()

	rules := &rulemock.Client{
		CheckFunc: func(ctx context.Context, text, language string) ([]grammar.Issue, error) {
			return []grammar.Issue{deIssue()}, nil
		},
	}
	model := &modelmock.Client{
		CompleteFunc: func(ctx context.Context, prompt, original string) (modelclient.Result, error) {
			return modelclient.Result{}, context.DeadlineExceeded
		},
	}

	o := New(rules, model)
	resp := o.Process(context.Background(), grammar.CheckRequest{
		Text: "Ik heb de boek gelezen.", Language: "nl", Mode: grammar.ModeStrict,
	})

	if resp.CorrectedText != "Ik heb het boek gelezen." {
		t.Errorf("CorrectedText = %q, want rule-based fallback", resp.CorrectedText)
	}
	if !resp.FallbackUsed {
		t.Error("expected FallbackUsed=true")
	}
	if resp.ValidationPassed {
		t.Error("expected ValidationPassed=false")
	}
}

// Scenario 3: model introduces an unrelated new error -> validator rejects,
// fallback text used instead.
func TestProcessModelIntroducesNewIssueFallsBack(t *testing.T) {
	t.Parallel()

	issues := []grammar.Issue{
		{Offset: 4, Length: 4, OriginalText: "loop", RuleID: "VERB_FORM", Suggestions: []string{"loopt"}, Message: "verb agreement"},
		{Offset: 14, Length: 2, OriginalText: "de", RuleID: "DE_HET", Suggestions: []string{"het"}, Message: "wrong article"},
	}

	rules := &rulemock.Client{}
	calls := 0
	rules.CheckFunc = func(ctx context.Context, text, language string) ([]grammar.Issue, error) {
		calls++
		if calls == 1 {
			return issues, nil
		}
		return []grammar.Issue{{RuleID: "SPELLING_X", OriginalText: "wrk", Category: grammar.CategorySpelling}}, nil
	}

	model := &modelmock.Client{
		CompleteFunc: func(ctx context.Context, prompt, original string) (modelclient.Result, error) {
			return modelclient.Result{CorrectedText: "Hij loopt naar het wrk.", OK: true}, nil
		},
	}

	o := New(rules, model)
	resp := o.Process(context.Background(), grammar.CheckRequest{
		Text: "Hij loop naar de werk.", Language: "nl", Mode: grammar.ModeStrict,
	})

	if resp.CorrectedText != "Hij loopt naar het werk." {
		t.Errorf("CorrectedText = %q, want fallback text", resp.CorrectedText)
	}
	if !resp.FallbackUsed {
		t.Error("expected FallbackUsed=true")
	}
}

// Scenario 4: no rule issues, style mode, model proposes rewrites but no change.
func TestProcessNoIssuesStyleModeReturnsRewrites(t *testing.T) {
	t.Parallel()

	rules := &rulemock.Client{
		CheckFunc: func(ctx context.Context, text, language string) ([]grammar.Issue, error) {
			return nil, nil
		},
	}
	model := &modelmock.Client{
		CompleteFunc: func(ctx context.Context, prompt, original string) (modelclient.Result, error) {
			return modelclient.Result{
				CorrectedText: original,
				Rewrites: []grammar.Rewrite{
					{Text: "This is a correct sentence.", Tone: "formal", Score: 8},
					{Text: "Yep, that sentence's fine.", Tone: "casual", Score: 6},
				},
				OK: true,
			}, nil
		},
	}

	o := New(rules, model)
	resp := o.Process(context.Background(), grammar.CheckRequest{
		Text: "Dit is een correcte zin.", Language: "nl", Mode: grammar.ModeStyle,
	})

	if resp.CorrectedText != "Dit is een correcte zin." {
		t.Errorf("CorrectedText = %q", resp.CorrectedText)
	}
	if resp.FallbackUsed {
		t.Error("expected FallbackUsed=false")
	}
	if !resp.ValidationPassed {
		t.Error("expected ValidationPassed=true")
	}
	if len(resp.Rewrites) != 2 {
		t.Errorf("expected 2 rewrites, got %d", len(resp.Rewrites))
	}
}

// Scenario 5: no rule issues but the model finds one anyway -> converted to
// an Issue and validated with an empty original-issue set.
func TestProcessNoIssuesModelFindsOne(t *testing.T) {
	t.Parallel()

	rules := &rulemock.Client{}
	calls := 0
	rules.CheckFunc = func(ctx context.Context, text, language string) ([]grammar.Issue, error) {
		calls++
		if calls == 1 {
			return nil, nil
		}
		return nil, nil // re-check of the model's correction: clean
	}

	model := &modelmock.Client{
		CompleteFunc: func(ctx context.Context, prompt, original string) (modelclient.Result, error) {
			return modelclient.Result{
				CorrectedText: "I have been working here.",
				Explanations: []grammar.Explanation{
					{Span: "has", Original: "has", Corrected: "have", Reason: "subject-verb agreement"},
				},
				Rewrites: []grammar.Rewrite{
					{Text: "I have been employed here.", Tone: "formal", Score: 7},
					{Text: "Been working here a while.", Tone: "casual", Score: 6},
				},
				OK: true,
			}, nil
		},
	}

	o := New(rules, model)
	resp := o.Process(context.Background(), grammar.CheckRequest{
		Text: "I has been working here.", Language: "en", Mode: grammar.ModeStyle,
	})

	if resp.CorrectedText != "I have been working here." {
		t.Errorf("CorrectedText = %q", resp.CorrectedText)
	}
	if resp.FallbackUsed {
		t.Error("expected FallbackUsed=false")
	}
	if len(resp.Issues) == 0 {
		t.Error("expected the model-detected issue to be surfaced")
	}
	if len(resp.Rewrites) != 2 {
		t.Errorf("expected 2 rewrites, got %d", len(resp.Rewrites))
	}
}

func TestProcessRuleBackendFailureDegrades(t *testing.T) {
	t.Parallel()

	rules := &rulemock.Client{
		CheckFunc: func(ctx context.Context, text, language string) ([]grammar.Issue, error) {
			return nil, errConnRefused
		},
	}
	model := &modelmock.Client{}

	o := New(rules, model)
	resp := o.Process(context.Background(), grammar.CheckRequest{Text: "hello", Language: "en"})

	if resp.CorrectedText != "hello" || resp.OriginalText != "hello" {
		t.Errorf("expected text unchanged, got %q", resp.CorrectedText)
	}
	if !resp.FallbackUsed || resp.ValidationPassed {
		t.Error("expected FallbackUsed=true, ValidationPassed=false")
	}
	if len(model.CompleteCalls) != 0 {
		t.Error("did not expect the model backend to be called when the rule backend fails")
	}
}

func TestProcessIssueCountAlwaysMatchesIssues(t *testing.T) {
	t.Parallel()

	rules := &rulemock.Client{
		CheckFunc: func(ctx context.Context, text, language string) ([]grammar.Issue, error) {
			return []grammar.Issue{deIssue()}, nil
		},
	}
	model := &modelmock.Client{}

	o := New(rules, model)
	resp := o.Process(context.Background(), grammar.CheckRequest{Text: "Ik heb de boek gelezen.", Language: "nl"})

	if resp.IssueCount != len(resp.Issues) {
		t.Errorf("IssueCount=%d, len(Issues)=%d", resp.IssueCount, len(resp.Issues))
	}
}

func TestProcessExplanationsGatedByIncludeExplanations(t *testing.T) {
	t.Parallel()

	rules := &rulemock.Client{
		CheckFunc: func(ctx context.Context, text, language string) ([]grammar.Issue, error) {
			return []grammar.Issue{deIssue()}, nil
		},
	}
	model := &modelmock.Client{}

	o := New(rules, model)
	resp := o.Process(context.Background(), grammar.CheckRequest{
		Text: "Ik heb de boek gelezen.", Language: "nl", IncludeExplanations: false,
	})

	if len(resp.Explanations) != 0 {
		t.Error("expected explanations to be suppressed")
	}
}

func TestApplyRuleBasedFixesDescendingOffsetOrder(t *testing.T) {
	t.Parallel()

	issues := []grammar.Issue{
		{Offset: 4, Length: 4, OriginalText: "loop", Suggestions: []string{"loopt"}},
		{Offset: 14, Length: 2, OriginalText: "de", Suggestions: []string{"het"}},
	}
	got := applyRuleBasedFixes("Hij loop naar de werk.", issues)
	want := "Hij loopt naar het werk."
	if got != want {
		t.Errorf("applyRuleBasedFixes = %q, want %q", got, want)
	}
}

func TestApplyRuleBasedFixesSameOffsetLargerLengthFirst(t *testing.T) {
	t.Parallel()

	// Both issues start at offset 2; the longer one (length 4) must be
	// applied before the shorter one (length 2), so the shorter edit's
	// replacement survives in the final text while the longer edit's
	// replacement gets partially overwritten.
	issues := []grammar.Issue{
		{Offset: 2, Length: 2, Suggestions: []string{"YY"}},
		{Offset: 2, Length: 4, Suggestions: []string{"XXXX"}},
	}
	got := applyRuleBasedFixes("abcdefghij", issues)
	want := "abYYXXghij"
	if got != want {
		t.Errorf("applyRuleBasedFixes = %q, want %q (longer edit applied first)", got, want)
	}
}

func TestApplyRuleBasedFixesSameOffsetAndLengthUsesInputOrder(t *testing.T) {
	t.Parallel()

	// Equal offset and length: the first issue in input order must be
	// applied first, so its replacement is the one overwritten by the
	// second.
	issues := []grammar.Issue{
		{Offset: 0, Length: 2, Suggestions: []string{"AA"}},
		{Offset: 0, Length: 2, Suggestions: []string{"BB"}},
	}
	got := applyRuleBasedFixes("xy", issues)
	want := "BB"
	if got != want {
		t.Errorf("applyRuleBasedFixes = %q, want %q (second input issue applied last, wins)", got, want)
	}
}

func TestApplyRuleBasedFixesLeavesNoSuggestionIssueUnchanged(t *testing.T) {
	t.Parallel()

	issues := []grammar.Issue{
		{Offset: 0, Length: 3, OriginalText: "Hij"},
	}
	got := applyRuleBasedFixes("Hij loopt.", issues)
	if got != "Hij loopt." {
		t.Errorf("applyRuleBasedFixes = %q, want unchanged", got)
	}
}

func TestCheckServicesAggregatesAvailability(t *testing.T) {
	t.Parallel()

	rules := &rulemock.Client{ProbeFunc: func(ctx context.Context) bool { return true }}
	model := &modelmock.Client{ProbeFunc: func(ctx context.Context) bool { return false }}

	o := New(rules, model)
	status := o.CheckServices(context.Background())

	if !status["rule_backend"] {
		t.Error("expected rule_backend=true")
	}
	if status["model_backend"] {
		t.Error("expected model_backend=false")
	}
	if !status["pipeline_ready"] {
		t.Error("expected pipeline_ready to follow rule backend availability")
	}
}
