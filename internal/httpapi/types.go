package httpapi

import "github.com/1ordo/illiterate-go/internal/grammar"

// checkRequest is the wire shape of POST /v1/check.
//
// Strict is a pointer so an omitted field can be told apart from an
// explicit false: the validator defaults to strict, the only mode the
// original service's validator was ever driven with.
type checkRequest struct {
	Text                string `json:"text"`
	Language            string `json:"language"`
	Mode                string `json:"mode"`
	Tone                string `json:"tone,omitempty"`
	Strict              *bool  `json:"strict,omitempty"`
	IncludeExplanations bool   `json:"include_explanations"`
}

// issueDTO is the wire shape of a grammar.Issue.
type issueDTO struct {
	Offset       int      `json:"offset"`
	Length       int      `json:"length"`
	Message      string   `json:"message"`
	RuleID       string   `json:"rule_id"`
	Category     string   `json:"category"`
	Severity     string   `json:"severity"`
	OriginalText string   `json:"original_text"`
	Suggestions  []string `json:"suggestions"`
	Context      string   `json:"context,omitempty"`
}

// rewriteDTO is the wire shape of a grammar.Rewrite.
type rewriteDTO struct {
	Text           string  `json:"text"`
	Tone           string  `json:"tone,omitempty"`
	Score          float64 `json:"score"`
	ChangesSummary string  `json:"changes_summary,omitempty"`
}

// explanationDTO is the wire shape of a grammar.Explanation.
type explanationDTO struct {
	Span      string `json:"span,omitempty"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason"`
}

// checkResponse is the wire shape of POST /v1/check's response.
type checkResponse struct {
	OriginalText     string           `json:"original_text"`
	CorrectedText    string           `json:"corrected_text"`
	Issues           []issueDTO       `json:"issues"`
	Rewrites         []rewriteDTO     `json:"rewrites,omitempty"`
	Explanations     []explanationDTO `json:"explanations,omitempty"`
	ValidationPassed bool             `json:"validation_passed"`
	FallbackUsed     bool             `json:"fallback_used"`
	Language         string           `json:"language"`
	IssueCount       int              `json:"issue_count"`
}

// languageDTO is the wire shape of one entry in GET /v1/languages.
type languageDTO struct {
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	NativeName      string   `json:"native_name"`
	RuleBackendCode string   `json:"rule_backend_code"`
	Examples        []string `json:"examples"`
}

// errorResponse is the wire shape of any non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func toCheckRequest(dto checkRequest) grammar.CheckRequest {
	mode := grammar.Mode(dto.Mode)
	if mode == "" {
		mode = grammar.ModeStrict
	}
	return grammar.CheckRequest{
		Text:                dto.Text,
		Language:            dto.Language,
		Mode:                mode,
		Tone:                dto.Tone,
		NonStrict:           dto.Strict != nil && !*dto.Strict,
		IncludeExplanations: dto.IncludeExplanations,
	}
}

func fromCheckResponse(resp grammar.CheckResponse) checkResponse {
	issues := make([]issueDTO, len(resp.Issues))
	for i, iss := range resp.Issues {
		issues[i] = issueDTO{
			Offset:       iss.Offset,
			Length:       iss.Length,
			Message:      iss.Message,
			RuleID:       iss.RuleID,
			Category:     string(iss.Category),
			Severity:     string(iss.Severity),
			OriginalText: iss.OriginalText,
			Suggestions:  iss.Suggestions,
			Context:      iss.Context,
		}
	}

	var rewrites []rewriteDTO
	if len(resp.Rewrites) > 0 {
		rewrites = make([]rewriteDTO, len(resp.Rewrites))
		for i, rw := range resp.Rewrites {
			rewrites[i] = rewriteDTO{
				Text:           rw.Text,
				Tone:           rw.Tone,
				Score:          rw.Score,
				ChangesSummary: rw.ChangesSummary,
			}
		}
	}

	var explanations []explanationDTO
	if len(resp.Explanations) > 0 {
		explanations = make([]explanationDTO, len(resp.Explanations))
		for i, ex := range resp.Explanations {
			explanations[i] = explanationDTO{
				Span:      ex.Span,
				Original:  ex.Original,
				Corrected: ex.Corrected,
				Reason:    ex.Reason,
			}
		}
	}

	return checkResponse{
		OriginalText:     resp.OriginalText,
		CorrectedText:    resp.CorrectedText,
		Issues:           issues,
		Rewrites:         rewrites,
		Explanations:     explanations,
		ValidationPassed: resp.ValidationPassed,
		FallbackUsed:     resp.FallbackUsed,
		Language:         resp.Language,
		IssueCount:       resp.IssueCount,
	}
}
