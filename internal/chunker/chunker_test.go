package chunker_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1ordo/illiterate-go/internal/chunker"
	"github.com/1ordo/illiterate-go/internal/grammar"
)

func TestSplitShortTextReturnsSingleChunk(t *testing.T) {
	t.Parallel()

	c := chunker.New(100)
	chunks := c.Split("A short sentence.")
	if len(chunks) != 1 {
		t.Fatalf("Split: got %d chunks, want 1", len(chunks))
	}
	if chunks[0].StartOffset != 0 || chunks[0].Text != "A short sentence." {
		t.Errorf("Split: got %+v", chunks[0])
	}
}

func TestSplitByParagraphs(t *testing.T) {
	t.Parallel()

	text := "First paragraph.\n\nSecond paragraph."
	c := chunker.New(20)
	chunks := c.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("Split: got %d chunks, want 2", len(chunks))
	}
	if chunks[0].ParagraphIndex != 0 || chunks[1].ParagraphIndex != 1 {
		t.Errorf("Split: paragraph indices = %d, %d", chunks[0].ParagraphIndex, chunks[1].ParagraphIndex)
	}
	if chunks[1].StartOffset != len([]rune("First paragraph."))+2 {
		t.Errorf("Split: second chunk start offset = %d, want %d", chunks[1].StartOffset, len([]rune("First paragraph."))+2)
	}
}

func TestSplitByParagraphsSkipsBlankParagraphs(t *testing.T) {
	t.Parallel()

	text := "One.\n\n\n\nTwo."
	c := chunker.New(5)
	chunks := c.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("Split: got %d chunks, want 2", len(chunks))
	}
}

func TestSplitLongParagraphBySentences(t *testing.T) {
	t.Parallel()

	text := "Sentence one is short. Sentence two is also short. Sentence three follows."
	c := chunker.New(30)
	chunks := c.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("Split: got %d chunks, want more than 1", len(chunks))
	}
	for _, ch := range chunks {
		if len([]rune(ch.Text)) > 30+1 { // a single oversized sentence may slightly exceed maxSize
			t.Errorf("Split: chunk %q exceeds max size", ch.Text)
		}
	}
}

func TestMergeRoundTripsParagraphs(t *testing.T) {
	t.Parallel()

	text := "First paragraph.\n\nSecond paragraph."
	c := chunker.New(20)
	chunks := c.Split(text)

	merged := chunker.Merge(chunks)
	if merged != text {
		t.Errorf("Merge: got %q, want %q", merged, text)
	}
}

func TestMergeEmptyReturnsEmptyString(t *testing.T) {
	t.Parallel()
	if got := chunker.Merge(nil); got != "" {
		t.Errorf("Merge(nil) = %q, want empty", got)
	}
}

func TestAdjustOffsets(t *testing.T) {
	t.Parallel()

	chunk := chunker.Chunk{StartOffset: 10}
	issues := []grammar.Issue{{Offset: 5, Length: 3}, {Offset: 0, Length: 1}}

	adjusted := chunker.AdjustOffsets(issues, chunk)
	if adjusted[0].Offset != 15 || adjusted[1].Offset != 10 {
		t.Errorf("AdjustOffsets: got %+v", adjusted)
	}
	// Original slice must be untouched.
	if issues[0].Offset != 5 {
		t.Error("AdjustOffsets: mutated the input slice")
	}
}

func TestProcessConcurrentlyPreservesOrder(t *testing.T) {
	t.Parallel()

	chunks := []chunker.Chunk{
		{Text: "a", StartOffset: 0},
		{Text: "b", StartOffset: 1},
		{Text: "c", StartOffset: 2},
	}

	results, err := chunker.ProcessConcurrently(context.Background(), chunks, 2,
		func(_ context.Context, ch chunker.Chunk) (grammar.CheckResponse, error) {
			return grammar.NewCheckResponse(ch.Text, strings.ToUpper(ch.Text), "en", nil), nil
		},
	)
	if err != nil {
		t.Fatalf("ProcessConcurrently: unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("ProcessConcurrently: got %d results, want 3", len(results))
	}
	for i, want := range []string{"A", "B", "C"} {
		if results[i].CorrectedText != want {
			t.Errorf("results[%d].CorrectedText = %q, want %q", i, results[i].CorrectedText, want)
		}
	}
}

func TestProcessConcurrentlyPropagatesError(t *testing.T) {
	t.Parallel()

	chunks := []chunker.Chunk{{Text: "ok"}, {Text: "bad"}}
	wantErr := errors.New("boom")

	_, err := chunker.ProcessConcurrently(context.Background(), chunks, 2,
		func(_ context.Context, ch chunker.Chunk) (grammar.CheckResponse, error) {
			if ch.Text == "bad" {
				return grammar.CheckResponse{}, wantErr
			}
			return grammar.NewCheckResponse(ch.Text, ch.Text, "en", nil), nil
		},
	)
	if !errors.Is(err, wantErr) {
		t.Fatalf("ProcessConcurrently: error = %v, want wrapping %v", err, wantErr)
	}
}
