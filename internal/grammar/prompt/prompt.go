// Package prompt builds the text sent to the model backend. Every function
// here is pure: given the same arguments it returns the same string, with
// no config or network dependency, so the pipeline can unit test prompt
// construction in isolation from the model backend itself.
package prompt

import (
	"fmt"
	"strings"

	"github.com/1ordo/illiterate-go/internal/grammar"
)

// BuildCorrectionPrompt builds the Stage 2 prompt that asks the model to
// apply exactly the issues the rule backend found, optionally with
// alternative tone rewrites.
func BuildCorrectionPrompt(text string, issues []grammar.Issue, language, tone string, includeRewrites bool) string {
	languageName := LanguageName(language)
	toneDesc := toneDescription(tone)
	issuesFormatted := formatIssues(issues)

	var rewriteInstruction string
	if includeRewrites {
		rewriteInstruction = fmt.Sprintf(`
Additionally, provide 2 alternative rewrites:
1. FIRST rewrite MUST be in %q tone (%s) - this is the user's selected tone
2. SECOND rewrite can be in a contrasting tone for comparison
Each rewrite should preserve the original meaning while improving clarity or style.
`, tone, toneDesc)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a precise grammar correction assistant for %s.\n\n", languageName)
	fmt.Fprintf(&sb, "ORIGINAL TEXT:\n%q\n\n", text)
	sb.WriteString("DETECTED ISSUES (from the rule backend - treat as ground truth):\n")
	sb.WriteString(issuesFormatted)
	sb.WriteString("\n\nYOUR TASK:\n")
	sb.WriteString("1. Create a corrected version by applying ONLY the fixes for the detected issues above\n")
	sb.WriteString("2. For each fix, provide a brief explanation\n")
	sb.WriteString(rewriteInstruction)
	sb.WriteString(`
CRITICAL RULES:
- ONLY fix the issues listed above
- NEVER invent new errors or make unnecessary changes
- Preserve the original meaning exactly
- Maintain the original text structure and formatting
- Use the suggested corrections when appropriate
- Respond in valid JSON only

OUTPUT FORMAT (strict JSON):
{
  "corrected_text": "The text with ONLY the listed issues fixed",
  "rewrites": [
    {
      "text": "Alternative version of the corrected text",
      "tone": "neutral|formal|casual|academic",
      "score": 8,
      "changes_summary": "Brief description of style changes"
    }
  ],
  "explanations": [
    {
      "span": "the problematic word or phrase",
      "original": "original text",
      "corrected": "corrected text",
      "reason": "Brief explanation"
    }
  ]
}
`)
	fmt.Fprintf(&sb, "\nIMPORTANT:\n- The \"corrected_text\" must contain ONLY fixes for the %d detected issues\n", len(issues))
	fmt.Fprintf(&sb, "- Explanations should be in %s\n", languageName)
	sb.WriteString("- If no rewrites requested, return empty array for rewrites\n")
	sb.WriteString("- Score should reflect how natural and well-written the rewrite is (0-10)\n\n")
	sb.WriteString("Respond with JSON only, no additional text.")

	return sb.String()
}

// BuildStyleReviewPrompt builds the prompt used when the rule backend found
// no issues but the caller still wants a style pass: the model both
// double-checks for anything the rule backend missed and proposes tone
// rewrites.
func BuildStyleReviewPrompt(text, language, tone string) string {
	languageName := LanguageName(language)
	toneDesc := toneDescription(tone)

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert %s language assistant and editor.\n\n", languageName)
	fmt.Fprintf(&sb, "ORIGINAL TEXT:\n%q\n\n", text)
	sb.WriteString("A grammar checker found no issues in this text. However, you should:\n\n")
	sb.WriteString(`1. CAREFULLY CHECK for any issues the grammar checker might have missed:
   - Subtle grammar errors
   - Word choice problems
   - Awkward phrasing
   - Contextual errors
   - Style inconsistencies

`)
	fmt.Fprintf(&sb, "2. GENERATE 2 rewrite suggestions:\n   - FIRST rewrite MUST be in %q tone (%s) - this is the user's selected tone\n", tone, toneDesc)
	sb.WriteString("   - SECOND rewrite can be in a contrasting tone for comparison\n   - Each should improve clarity or readability\n\n")
	sb.WriteString(`IMPORTANT RULES:
- Be thorough but don't invent problems that don't exist
- If the text is genuinely perfect, say so in corrected_text (keep it identical)
- Provide helpful explanations for any issues you find
- Rewrites should preserve the original meaning
- Respond in valid JSON only

OUTPUT FORMAT (strict JSON):
{
  "corrected_text": "Your corrected version (or identical if no issues found)",
  "rewrites": [
    {
      "text": "Alternative version with different style",
      "tone": "neutral|formal|casual|academic",
      "score": 8,
      "changes_summary": "Brief description of style improvements"
    }
  ],
  "explanations": [
    {
      "span": "the problematic word or phrase (if any)",
      "original": "original text",
      "corrected": "corrected text",
      "reason": "Explanation"
    }
  ]
}

NOTES:
- If no issues found, "explanations" can be empty array
- "rewrites" should have exactly 2 suggestions (first in selected tone, second in contrasting tone)
- Score (0-10) reflects how natural and improved the rewrite is

Respond with JSON only, no additional text.`)

	return sb.String()
}

// formatIssues renders issues as a numbered list, clipping suggestions to
// the first 3 per issue to keep the prompt compact.
func formatIssues(issues []grammar.Issue) string {
	lines := make([]string, 0, len(issues))
	for i, issue := range issues {
		suggestions := issue.Suggestions
		if len(suggestions) > 3 {
			suggestions = suggestions[:3]
		}
		quoted := make([]string, len(suggestions))
		for j, s := range suggestions {
			quoted[j] = fmt.Sprintf("%q", s)
		}
		lines = append(lines, fmt.Sprintf(
			"%d. Position %d-%d: %q → Suggestions: [%s] | Rule: %s | Issue: %s",
			i+1, issue.Offset, issue.Offset+issue.Length, issue.OriginalText,
			strings.Join(quoted, ", "), issue.RuleID, issue.Message,
		))
	}
	return strings.Join(lines, "\n")
}
