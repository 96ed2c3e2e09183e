// Package grammar defines the shared data model for the grammar correction
// core: the issues a rule checker reports, the rewrites and explanations a
// model backend produces, and the request/response envelope the pipeline
// orchestrator consumes and returns.
package grammar

// IssueSeverity classifies how serious a detected issue is.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
	SeverityStyle   IssueSeverity = "style"
	SeverityHint    IssueSeverity = "hint"
)

// IssueCategory classifies the kind of problem a rule matched.
type IssueCategory string

const (
	CategoryGrammar     IssueCategory = "grammar"
	CategorySpelling    IssueCategory = "spelling"
	CategoryPunctuation IssueCategory = "punctuation"
	CategoryStyle       IssueCategory = "style"
	CategoryTypography  IssueCategory = "typography"
	CategoryWordOrder   IssueCategory = "word_order"
	CategoryAgreement   IssueCategory = "agreement"
	CategoryOther       IssueCategory = "other"
)

// Issue is a single problem reported by the rule backend, expressed as a
// span of the input text plus human-readable context.
//
// Offset and Length are measured in runes over the text the issue was
// detected against — never bytes, since the service is multilingual.
type Issue struct {
	Offset       int
	Length       int
	Message      string
	RuleID       string
	Category     IssueCategory
	Severity     IssueSeverity
	OriginalText string
	Suggestions  []string
	Context      string
}

// Rewrite is one alternative full-text rewrite produced in style-review
// mode, scored for quality.
type Rewrite struct {
	Text           string
	Tone           string
	Score          float64
	ChangesSummary string
}

// Explanation documents why a specific span was changed.
type Explanation struct {
	Span      string
	Original  string
	Corrected string
	Reason    string
}

// Mode selects whether the pipeline performs grammar correction or a
// style-review rewrite pass.
type Mode string

const (
	ModeStrict Mode = "strict"
	ModeStyle  Mode = "style"
)

// CheckRequest is the input to the pipeline orchestrator.
type CheckRequest struct {
	Text     string
	Language string
	Mode     Mode
	// Tone is the rewrite register requested when Mode is ModeStyle;
	// ignored otherwise.
	Tone string
	// NonStrict relaxes the validator's tolerance: when true, a new
	// style/typography issue no longer rejects a candidate correction.
	// The zero value is strict — the only mode the original service's
	// validator was ever called with — so an omitted field defaults
	// correctly instead of silently disabling validation.
	NonStrict bool
	// IncludeExplanations controls whether the response carries
	// per-issue explanations; it never affects issues or the correction
	// itself.
	IncludeExplanations bool
}

// CheckResponse is the pipeline orchestrator's output. IssueCount is always
// len(Issues) — callers should not set it directly; use [NewCheckResponse]
// or construct via the pipeline, which keeps the two in sync the way the
// teacher's observability types keep derived counters in sync with their
// source slices.
type CheckResponse struct {
	OriginalText     string
	CorrectedText    string
	Issues           []Issue
	Rewrites         []Rewrite
	Explanations     []Explanation
	ValidationPassed bool
	FallbackUsed     bool
	Language         string
	IssueCount       int
}

// NewCheckResponse builds a [CheckResponse] with IssueCount derived from
// issues, mirroring the original service's auto-computed issue_count field.
func NewCheckResponse(original, corrected, language string, issues []Issue) CheckResponse {
	return CheckResponse{
		OriginalText:     original,
		CorrectedText:    corrected,
		Issues:           issues,
		ValidationPassed: true,
		Language:         language,
		IssueCount:       len(issues),
	}
}

// ValidationResult is the outcome of revalidating a candidate correction
// against the rule backend.
type ValidationResult struct {
	Valid         bool
	OriginalCount int
	NewCount      int
	NewIssues     []Issue
	Reason        string
}
