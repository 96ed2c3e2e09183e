package ruleclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/check" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"matches": [
				{
					"offset": 4,
					"length": 4,
					"message": "Possible spelling mistake found.",
					"replacements": [{"value": "teh"}, {"value": "the"}],
					"context": {"text": "This deos not look right."},
					"rule": {"id": "MORFOLOGIK_RULE_EN_US", "category": {"id": "TYPOS"}},
					"type": {"typeName": "misspelling"}
				}
			]
		}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	issues, err := c.Check(context.Background(), "This deos not look right.", "en")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	issue := issues[0]
	if issue.RuleID != "MORFOLOGIK_RULE_EN_US" {
		t.Errorf("RuleID = %q", issue.RuleID)
	}
	if issue.Category != "spelling" {
		t.Errorf("Category = %q", issue.Category)
	}
	if issue.Severity != "error" {
		t.Errorf("Severity = %q", issue.Severity)
	}
	if len(issue.Suggestions) != 2 || issue.Suggestions[0] != "teh" {
		t.Errorf("Suggestions = %v", issue.Suggestions)
	}
}

func TestClientCheckSuggestionsClippedToFive(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matches": [{"offset": 0, "length": 1, "replacements": [
			{"value": "a"}, {"value": "b"}, {"value": "c"}, {"value": "d"}, {"value": "e"}, {"value": "f"}
		], "rule": {"id": "X", "category": {"id": "MISC"}}, "type": {"typeName": "other"}}]}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	issues, err := c.Check(context.Background(), "x", "en")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(issues[0].Suggestions) != 5 {
		t.Fatalf("expected 5 suggestions, got %d", len(issues[0].Suggestions))
	}
}

func TestClientCheckHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	_, err := c.Check(context.Background(), "x", "en")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "rule backend") {
		t.Errorf("error = %v", err)
	}
}

func TestClientProbe(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/languages" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	if !c.Probe(context.Background()) {
		t.Fatal("expected Probe to report available")
	}
}

func TestClientProbeUnreachable(t *testing.T) {
	t.Parallel()

	c, _ := New("http://127.0.0.1:1")
	if c.Probe(context.Background()) {
		t.Fatal("expected Probe to report unavailable")
	}
}
