package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/1ordo/illiterate-go/internal/config"
	"github.com/1ordo/illiterate-go/internal/grammar"
	"github.com/1ordo/illiterate-go/internal/httpapi"
	"github.com/1ordo/illiterate-go/internal/observe"
)

// mockPipeline is a hand-written test double for the orchestrator
// interface httpapi.Server depends on.
type mockPipeline struct {
	ProcessCalls []grammar.CheckRequest
	ProcessFunc  func(ctx context.Context, req grammar.CheckRequest) grammar.CheckResponse

	ServiceStatuses map[string]bool
}

func (m *mockPipeline) Process(ctx context.Context, req grammar.CheckRequest) grammar.CheckResponse {
	m.ProcessCalls = append(m.ProcessCalls, req)
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, req)
	}
	return grammar.NewCheckResponse(req.Text, req.Text, req.Language, nil)
}

func (m *mockPipeline) CheckServices(context.Context) map[string]bool {
	if m.ServiceStatuses != nil {
		return m.ServiceStatuses
	}
	return map[string]bool{"rule_backend": true, "model_backend": true, "pipeline_ready": true}
}

func newTestServer(t *testing.T, p *mockPipeline, cfg *config.Config) *httptest.Server {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	s := httpapi.New(p, cfg, metrics)
	mux := http.NewServeMux()
	s.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleCheckReturnsCorrectedText(t *testing.T) {
	p := &mockPipeline{
		ProcessFunc: func(_ context.Context, req grammar.CheckRequest) grammar.CheckResponse {
			return grammar.NewCheckResponse(req.Text, "Fixed text.", req.Language, nil)
		},
	}
	srv := newTestServer(t, p, nil)

	body, _ := json.Marshal(map[string]any{
		"text":     "fixed text",
		"language": "en",
		"mode":     "strict",
	})
	resp, err := http.Post(srv.URL+"/v1/check", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/check: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["corrected_text"] != "Fixed text." {
		t.Errorf("corrected_text = %v, want %q", got["corrected_text"], "Fixed text.")
	}
}

func TestHandleCheckRejectsUnsupportedLanguage(t *testing.T) {
	srv := newTestServer(t, &mockPipeline{}, nil)

	body, _ := json.Marshal(map[string]any{"text": "hi", "language": "xx", "mode": "strict"})
	resp, err := http.Post(srv.URL+"/v1/check", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/check: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleCheckRejectsOversizedText(t *testing.T) {
	cfg := config.Default()
	cfg.Processing.MaxTextLength = 5
	srv := newTestServer(t, &mockPipeline{}, cfg)

	body, _ := json.Marshal(map[string]any{"text": "this is too long", "language": "en", "mode": "strict"})
	resp, err := http.Post(srv.URL+"/v1/check", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/check: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleCheckCachesIdenticalRequests(t *testing.T) {
	p := &mockPipeline{}
	srv := newTestServer(t, p, nil)

	body, _ := json.Marshal(map[string]any{"text": "repeat me", "language": "en", "mode": "strict"})
	for i := 0; i < 2; i++ {
		resp, err := http.Post(srv.URL+"/v1/check", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST /v1/check: %v", err)
		}
		resp.Body.Close()
	}

	if len(p.ProcessCalls) != 1 {
		t.Errorf("pipeline Process called %d times, want 1 (second request should hit cache)", len(p.ProcessCalls))
	}
}

func TestHandleCheckRequiresAPIKeyWhenConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Server.APIKey = "secret"
	srv := newTestServer(t, &mockPipeline{}, cfg)

	body, _ := json.Marshal(map[string]any{"text": "hi", "language": "en", "mode": "strict"})
	resp, err := http.Post(srv.URL+"/v1/check", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without key = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/check", bytes.NewReader(body))
	req.Header.Set("X-API-Key", "secret")
	req.Header.Set("Content-Type", "application/json")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /v1/check with key: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("status with key = %d, want 200", resp2.StatusCode)
	}
}

func TestHandleLanguagesListsSupportedLanguages(t *testing.T) {
	srv := newTestServer(t, &mockPipeline{}, nil)

	resp, err := http.Get(srv.URL + "/v1/languages")
	if err != nil {
		t.Fatalf("GET /v1/languages: %v", err)
	}
	defer resp.Body.Close()

	var langs []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(langs) != len(config.SupportedLanguages) {
		t.Errorf("got %d languages, want %d", len(langs), len(config.SupportedLanguages))
	}
}

func TestHealthzAlwaysOK(t *testing.T) {
	srv := newTestServer(t, &mockPipeline{}, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestReadyzReflectsBackendStatus(t *testing.T) {
	p := &mockPipeline{ServiceStatuses: map[string]bool{"rule_backend": false, "model_backend": true}}
	srv := newTestServer(t, p, nil)

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestOptionsRequestAnsweredByCORS(t *testing.T) {
	srv := newTestServer(t, &mockPipeline{}, nil)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/v1/check", nil)
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS /v1/check: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
