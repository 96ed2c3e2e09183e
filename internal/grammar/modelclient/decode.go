package modelclient

import (
	"encoding/json"
	"strings"

	"github.com/1ordo/illiterate-go/internal/grammar"
)

// wireResponse is the JSON shape the model backend is instructed to reply
// with — see internal/grammar/prompt's output-format instructions.
//
// Rewrites and Explanations are decoded as raw entries first so a single
// malformed nested entry (e.g. a non-numeric score) can be dropped on its
// own instead of failing the whole response.
type wireResponse struct {
	CorrectedText string            `json:"corrected_text"`
	Rewrites      []json.RawMessage `json:"rewrites"`
	Explanations  []json.RawMessage `json:"explanations"`
}

type wireRewrite struct {
	Text           string      `json:"text"`
	Tone           string      `json:"tone"`
	Score          json.Number `json:"score"`
	ChangesSummary string      `json:"changes_summary"`
}

type wireExplanation struct {
	Span      string `json:"span"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason"`
}

// decode extracts and parses the model backend's JSON reply. It tolerates
// markdown code fences and leading/trailing prose around the JSON object,
// and drops individual rewrite/explanation entries that fail to parse
// rather than rejecting the whole response — matching the tolerance of the
// reference LLM client's field-by-field parsing.
//
// ok is false when no JSON object could be located or the outer object
// itself is malformed; callers must then treat the response as "no
// correction produced". A malformed entry within rewrites or explanations
// never causes ok to become false — it is simply dropped.
func decode(content, originalText string) (corrected string, rewrites []grammar.Rewrite, explanations []grammar.Explanation, ok bool) {
	jsonStr, found := extractJSONObject(content)
	if !found {
		return "", nil, nil, false
	}

	var resp wireResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return "", nil, nil, false
	}

	corrected = resp.CorrectedText
	if corrected == "" {
		corrected = originalText
	}

	for _, raw := range resp.Rewrites {
		var rw wireRewrite
		if err := json.Unmarshal(raw, &rw); err != nil {
			continue
		}
		if rw.Text == "" {
			continue
		}

		score, err := rw.Score.Float64()
		if err != nil {
			score = 5
		}
		score = clamp(score, 0, 10)

		tone := rw.Tone
		if tone == "" {
			tone = "neutral"
		}

		rewrites = append(rewrites, grammar.Rewrite{
			Text:           rw.Text,
			Tone:           tone,
			Score:          score,
			ChangesSummary: rw.ChangesSummary,
		})
	}

	for _, raw := range resp.Explanations {
		var exp wireExplanation
		if err := json.Unmarshal(raw, &exp); err != nil {
			continue
		}

		original := exp.Original
		if original == "" {
			original = exp.Span
		}
		explanations = append(explanations, grammar.Explanation{
			Span:      exp.Span,
			Original:  original,
			Corrected: exp.Corrected,
			Reason:    exp.Reason,
		})
	}

	return corrected, rewrites, explanations, true
}

// extractJSONObject returns the span of s from the first '{' to the last
// '}', after stripping any markdown code fences. Braces are not checked for
// balance. Returns found=false if no opening brace is present or the last
// closing brace comes before it.
func extractJSONObject(s string) (string, bool) {
	s = stripMarkdownFences(s)

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, '}')
	if end < start {
		return "", false
	}
	return s[start : end+1], true
}

// stripMarkdownFences removes optional ```json ... ``` or ``` ... ``` fences
// that some models wrap their JSON output in.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
