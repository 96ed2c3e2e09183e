// Package chunker splits long documents into smaller pieces the pipeline
// orchestrator can process independently, and re-merges the results.
//
// Splitting tries paragraphs first (text separated by a blank line); a
// paragraph that still exceeds the configured size is split further by
// sentence. Every [Chunk] carries its rune offset into the original
// document so issues found in a chunk can be translated back to
// document-relative offsets with [AdjustOffsets].
package chunker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/1ordo/illiterate-go/internal/grammar"
)

// Chunk is a piece of a larger document, with its rune offset range in
// the original text.
type Chunk struct {
	Text           string
	StartOffset    int
	EndOffset      int
	ParagraphIndex int
}

// Chunker splits text into chunks no larger than maxSize runes where
// possible.
type Chunker struct {
	maxSize int
}

// New returns a [Chunker] that targets chunks of at most maxSize runes.
func New(maxSize int) *Chunker {
	return &Chunker{maxSize: maxSize}
}

// Split divides text into chunks. If text already fits within maxSize it
// is returned as a single chunk spanning the whole document.
func (c *Chunker) Split(text string) []Chunk {
	runeLen := len([]rune(text))
	if runeLen <= c.maxSize {
		return []Chunk{{Text: text, StartOffset: 0, EndOffset: runeLen, ParagraphIndex: 0}}
	}

	paragraphs := splitParagraphs(text)
	var chunks []Chunk
	offset := 0

	for paraIdx, paragraph := range paragraphs {
		paraLen := len([]rune(paragraph))
		if paraLen <= c.maxSize {
			chunks = append(chunks, Chunk{
				Text:           paragraph,
				StartOffset:    offset,
				EndOffset:      offset + paraLen,
				ParagraphIndex: paraIdx,
			})
		} else {
			chunks = append(chunks, c.splitBySentences(paragraph, offset, paraIdx)...)
		}

		offset += paraLen
		if paraIdx < len(paragraphs)-1 {
			offset += 2 // accounts for the "\n\n" paragraph separator
		}
	}

	return chunks
}

// splitParagraphs splits text on blank lines, dropping paragraphs that
// are empty once trimmed.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitBySentences splits a too-long paragraph into sentence-aggregated
// chunks no larger than c.maxSize runes, offset from baseOffset.
func (c *Chunker) splitBySentences(text string, baseOffset, paraIdx int) []Chunk {
	sentences := splitSentences(text)

	var chunks []Chunk
	var current []rune
	chunkStart := baseOffset

	flush := func() {
		trimmed := strings.TrimSpace(string(current))
		if trimmed == "" {
			return
		}
		trimmedLen := len([]rune(trimmed))
		chunks = append(chunks, Chunk{
			Text:           trimmed,
			StartOffset:    chunkStart,
			EndOffset:      chunkStart + trimmedLen,
			ParagraphIndex: paraIdx,
		})
	}

	for _, sentence := range sentences {
		sr := []rune(sentence)
		if len(current)+len(sr) <= c.maxSize {
			current = append(current, sr...)
			current = append(current, ' ')
			continue
		}

		if len(current) > 0 {
			flush()
			chunkStart += len(current)
		}
		current = append(append([]rune{}, sr...), ' ')
	}
	flush()

	return chunks
}

// splitSentences splits text at a sentence boundary: a '.', '!' or '?'
// followed by whitespace and an uppercase letter. Go's regexp package is
// RE2-based and has no lookaround support, so the boundary is found with
// a manual scan instead of the lookaround pattern a backtracking engine
// would use for this.
func splitSentences(text string) []string {
	runes := []rune(text)
	n := len(runes)
	var sentences []string
	segStart := 0

	i := 0
	for i < n {
		r := runes[i]
		if r == '.' || r == '!' || r == '?' {
			j := i + 1
			for j < n && unicode.IsSpace(runes[j]) {
				j++
			}
			if j > i+1 && j < n && unicode.IsUpper(runes[j]) {
				sentences = append(sentences, string(runes[segStart:i+1]))
				segStart = j
				i = j
				continue
			}
		}
		i++
	}
	sentences = append(sentences, string(runes[segStart:]))
	return sentences
}

// Merge reassembles chunks into a single document, ordered by
// StartOffset. Chunks sharing a ParagraphIndex are joined with a single
// space; a change of paragraph is joined with a blank line.
func Merge(chunks []Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartOffset < sorted[j].StartOffset
	})

	var b strings.Builder
	prevPara := -1
	for _, ch := range sorted {
		switch {
		case prevPara >= 0 && ch.ParagraphIndex != prevPara:
			b.WriteString("\n\n")
		case b.Len() > 0:
			b.WriteString(" ")
		}
		b.WriteString(ch.Text)
		prevPara = ch.ParagraphIndex
	}
	return b.String()
}

// AdjustOffsets translates issues with offsets relative to chunk into
// offsets relative to the original document.
func AdjustOffsets(issues []grammar.Issue, chunk Chunk) []grammar.Issue {
	adjusted := make([]grammar.Issue, len(issues))
	for i, issue := range issues {
		issue.Offset += chunk.StartOffset
		adjusted[i] = issue
	}
	return adjusted
}

// ProcessFunc processes a single chunk and returns the pipeline response
// for it.
type ProcessFunc func(ctx context.Context, chunk Chunk) (grammar.CheckResponse, error)

// ProcessConcurrently runs fn over every chunk, at most maxConcurrency at
// a time, and returns the per-chunk responses in chunk order. If any call
// to fn fails, the first error is returned and the remaining in-flight
// calls are cancelled through ctx.
func ProcessConcurrently(ctx context.Context, chunks []Chunk, maxConcurrency int, fn ProcessFunc) ([]grammar.CheckResponse, error) {
	results := make([]grammar.CheckResponse, len(chunks))

	eg, egCtx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		eg.SetLimit(maxConcurrency)
	}

	for i, chunk := range chunks {
		i, chunk := i, chunk
		eg.Go(func() error {
			res, err := fn(egCtx, chunk)
			if err != nil {
				return fmt.Errorf("chunker: process chunk %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
