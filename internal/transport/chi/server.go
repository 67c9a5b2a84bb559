// Package chi exposes the HTTP API: recommendation, health, and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Rachel0619/VanTrails/internal/domain"
	healthuc "github.com/Rachel0619/VanTrails/internal/usecase/health"
	retrievaluc "github.com/Rachel0619/VanTrails/internal/usecase/retrieval"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest           = "bad_request"
	codeValidationFailed     = "validation_failed"
	codeRetrievalUnavailable = "retrieval_unavailable"
	codeGenerationFailed     = "generation_failed"
	codeInternalError        = "internal_error"
)

// Retriever runs the retrieval pass for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) (retrievaluc.Retrieval, error)
}

// Recommender renders recommendations from retrieved candidates.
type Recommender interface {
	Render(ctx context.Context, query string, results []domain.RankedResult) (string, error)
	RenderStream(ctx context.Context, query string, results []domain.RankedResult) (<-chan domain.StreamChunk, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server implements the HTTP API handlers.
type Server struct {
	retrieval Retriever
	recommend Recommender
	health    HealthChecker
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(retrieval Retriever, recommend Recommender, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		retrieval: retrieval,
		recommend: recommend,
		health:    health,
		logger:    logger,
	}
}

// Routes mounts the API handlers on a fresh chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/api/recommend", s.Recommend)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// recommendRequest is the POST /api/recommend body.
type recommendRequest struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit,omitempty"`
	Stream bool   `json:"stream,omitempty"`
}

// recommendResponse is the non-streaming POST /api/recommend response.
type recommendResponse struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
	Recommendation string `json:"recommendation"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Recommend handles POST /api/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	conversationID := uuid.NewString()
	logger := s.logger.With(zap.String("conversation_id", conversationID))

	ret, err := s.retrieval.Retrieve(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	logger.Info("Handling recommendation request",
		zap.String("predicate", ret.Predicate.String()),
		zap.Int("candidates", len(ret.Results)),
		zap.Bool("stream", req.Stream))

	if req.Stream {
		s.streamRecommendation(w, r, conversationID, req.Query, ret.Results, logger)
		return
	}

	text, err := s.recommend.Render(r.Context(), req.Query, ret.Results)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		ConversationID: conversationID,
		Query:          req.Query,
		Recommendation: text,
	})
}

// streamRecommendation writes the recommendation as Server-Sent Events:
// a "meta" event with the conversation id, "delta" events carrying text
// fragments, and a final "done" event.
func (s *Server) streamRecommendation(
	w http.ResponseWriter, r *http.Request,
	conversationID, query string, results []domain.RankedResult,
	logger *zap.Logger,
) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeInternalError, "streaming unsupported")
		return
	}

	ch, err := s.recommend.RenderStream(r.Context(), query, results)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeSSE(w, "meta", map[string]string{"conversation_id": conversationID, "query": query})
	flusher.Flush()

	for chunk := range ch {
		if chunk.Err != nil {
			logger.Warn("Recommendation stream failed mid-flight", zap.Error(chunk.Err))
			writeSSE(w, "error", errorResponse{Code: codeGenerationFailed, Message: "generation failed"})
			flusher.Flush()
			return
		}
		writeSSE(w, "delta", map[string]string{"text": chunk.Content})
		flusher.Flush()
	}

	writeSSE(w, "done", map[string]string{"conversation_id": conversationID})
	flusher.Flush()
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))

	switch {
	case errors.Is(err, domain.ErrRetrievalUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeRetrievalUnavailable, domain.ErrRetrievalUnavailable.Error())
	case errors.Is(err, domain.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, codeGenerationFailed, domain.ErrGenerationFailed.Error())
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, codeGenerationFailed, domain.ErrEmbeddingProviderError.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
