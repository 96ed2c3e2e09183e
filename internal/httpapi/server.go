// Package httpapi is the external HTTP boundary for the grammar
// correction service: request decoding, size/language validation,
// response caching, long-document chunking, and the health/readiness/
// metrics endpoints, all wired around the core
// [github.com/1ordo/illiterate-go/internal/grammar/pipeline.Orchestrator].
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/1ordo/illiterate-go/internal/cache"
	"github.com/1ordo/illiterate-go/internal/chunker"
	"github.com/1ordo/illiterate-go/internal/config"
	"github.com/1ordo/illiterate-go/internal/grammar"
	"github.com/1ordo/illiterate-go/internal/health"
	"github.com/1ordo/illiterate-go/internal/observe"
)

// orchestrator is the subset of pipeline.Orchestrator the server depends
// on.
type orchestrator interface {
	Process(ctx context.Context, req grammar.CheckRequest) grammar.CheckResponse
	CheckServices(ctx context.Context) map[string]bool
}

// Server wires the correction pipeline, the response cache, and the
// document chunker into a complete HTTP API.
type Server struct {
	pipeline orchestrator
	cache    *cache.Cache
	chunker  *chunker.Chunker
	cfg      *config.Config
	metrics  *observe.Metrics
}

// New returns a [Server] ready to have its routes registered with
// [Server.Register].
func New(pipeline orchestrator, cfg *config.Config, metrics *observe.Metrics) *Server {
	return &Server{
		pipeline: pipeline,
		cache:    cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries),
		chunker:  chunker.New(cfg.Processing.ChunkSize),
		cfg:      cfg,
		metrics:  metrics,
	}
}

// Register mounts every route onto mux. The /v1 routes are wrapped with the
// CORS and API-key middleware; no observability middleware is added here.
func (s *Server) Register(mux *http.ServeMux) {
	hc := health.New(
		health.Checker{Name: "rule_backend", Check: s.checkRuleBackend},
		health.Checker{Name: "model_backend", Check: s.checkModelBackend},
	)
	hc.Register(mux)

	mux.Handle("GET /metrics", promHandler())

	authed := func(h http.HandlerFunc) http.Handler {
		return CORS(s.cfg.CORS)(RequireAPIKey(s.cfg.Server.APIKey)(h))
	}

	mux.Handle("POST /v1/check", authed(s.handleCheck))
	mux.Handle("GET /v1/languages", authed(s.handleLanguages))
}

func (s *Server) checkRuleBackend(ctx context.Context) error {
	return s.checkService(ctx, "rule_backend")
}

func (s *Server) checkModelBackend(ctx context.Context) error {
	return s.checkService(ctx, "model_backend")
}

func (s *Server) checkService(ctx context.Context, name string) error {
	statuses := s.pipeline.CheckServices(ctx)
	if !statuses[name] {
		return errUnavailable(name)
	}
	return nil
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := uuid.NewString()
	logger := observe.Logger(ctx).With(slog.String("request_id", requestID))

	var dto checkRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if dto.Text == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	if len([]rune(dto.Text)) > s.cfg.Processing.MaxTextLength {
		writeError(w, http.StatusBadRequest, "text exceeds the maximum allowed length")
		return
	}
	if !config.IsSupportedLanguage(dto.Language) {
		writeError(w, http.StatusBadRequest, "unsupported language: "+dto.Language)
		return
	}

	req := toCheckRequest(dto)

	key := cache.Key(req.Text, req.Language, req.Mode)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheOutcome(ctx, "hit")
		writeJSON(w, http.StatusOK, fromCheckResponse(cached))
		return
	}
	s.metrics.RecordCacheOutcome(ctx, "miss")

	resp := s.process(ctx, req)
	s.cache.Set(key, resp)

	logger.Info("check completed",
		"language", resp.Language,
		"issue_count", resp.IssueCount,
		"fallback_used", resp.FallbackUsed,
	)

	writeJSON(w, http.StatusOK, fromCheckResponse(resp))
}

// process runs req through the pipeline, transparently splitting it into
// chunks first when it exceeds the configured chunk size.
func (s *Server) process(ctx context.Context, req grammar.CheckRequest) grammar.CheckResponse {
	if len([]rune(req.Text)) <= s.cfg.Processing.ChunkSize {
		return s.pipeline.Process(ctx, req)
	}

	chunks := s.chunker.Split(req.Text)
	results, err := chunker.ProcessConcurrently(ctx, chunks, 4, func(ctx context.Context, ch chunker.Chunk) (grammar.CheckResponse, error) {
		chunkReq := req
		chunkReq.Text = ch.Text
		resp := s.pipeline.Process(ctx, chunkReq)
		resp.Issues = chunker.AdjustOffsets(resp.Issues, ch)
		return resp, nil
	})
	if err != nil {
		// Chunk processing never returns an error from pipeline.Process
		// itself (it degrades instead); this path exists for symmetry
		// with ProcessConcurrently's general contract.
		slog.Error("chunk processing failed", "error", err)
		return grammar.CheckResponse{OriginalText: req.Text, CorrectedText: req.Text, Issues: []grammar.Issue{}, Language: req.Language}
	}

	merged := mergeChunkResults(req, chunks, results)
	return merged
}

func mergeChunkResults(req grammar.CheckRequest, chunks []chunker.Chunk, results []grammar.CheckResponse) grammar.CheckResponse {
	correctedChunks := make([]chunker.Chunk, len(chunks))
	var issues []grammar.Issue
	var rewrites []grammar.Rewrite
	var explanations []grammar.Explanation
	validationPassed := true
	fallbackUsed := false

	for i, r := range results {
		correctedChunks[i] = chunker.Chunk{
			Text:           r.CorrectedText,
			StartOffset:    chunks[i].StartOffset,
			ParagraphIndex: chunks[i].ParagraphIndex,
		}
		issues = append(issues, r.Issues...)
		rewrites = append(rewrites, r.Rewrites...)
		explanations = append(explanations, r.Explanations...)
		validationPassed = validationPassed && r.ValidationPassed
		fallbackUsed = fallbackUsed || r.FallbackUsed
	}

	return grammar.CheckResponse{
		OriginalText:     req.Text,
		CorrectedText:    chunker.Merge(correctedChunks),
		Issues:           issues,
		Rewrites:         rewrites,
		Explanations:     explanations,
		ValidationPassed: validationPassed,
		FallbackUsed:     fallbackUsed,
		Language:         req.Language,
		IssueCount:       len(issues),
	}
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	langs := make([]languageDTO, 0, len(config.SupportedLanguages))
	for _, l := range config.SupportedLanguages {
		langs = append(langs, languageDTO{
			Code:            l.Code,
			Name:            l.Name,
			NativeName:      l.NativeName,
			RuleBackendCode: l.RuleBackendCode,
			Examples:        l.Examples,
		})
	}
	writeJSON(w, http.StatusOK, langs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
