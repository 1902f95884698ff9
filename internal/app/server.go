package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/newsflash/internal/config"
	"github.com/deusflow/newsflash/internal/logger"
	"github.com/deusflow/newsflash/internal/metrics"
	"github.com/deusflow/newsflash/internal/news"
	"github.com/deusflow/newsflash/internal/newsapi"
	"github.com/deusflow/newsflash/internal/ratelimit"
	"github.com/deusflow/newsflash/internal/storage"
	"github.com/deusflow/newsflash/internal/summary"
)

const maxBodyBytes = 1 << 20

// Server exposes the news service as a JSON API.
type Server struct {
	svc     *news.Service
	store   storage.Store
	limiter *ratelimit.AIRateLimiter
	siteURL string
	log     *slog.Logger
}

// NewServer creates the API. store and limiter are optional and only feed /metrics.
func NewServer(svc *news.Service, store storage.Store, limiter *ratelimit.AIRateLimiter, siteURL string) *Server {
	return &Server{
		svc:     svc,
		store:   store,
		limiter: limiter,
		siteURL: strings.TrimRight(siteURL, "/"),
		log:     logger.With("http"),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/headlines", s.handleHeadlines)
	mux.HandleFunc("GET /api/categories/{category}", s.handleCategory)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/sources/{source}", s.handleSource)
	mux.HandleFunc("POST /api/related", s.handleRelated)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /feed.xml", s.handleFeed)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	return s.logRequests(mux)
}

type articlesResponse struct {
	Status string `json:"status"`
	*news.Result
}

type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type summaryResponse struct {
	Status       string          `json:"status"`
	Topic        string          `json:"topic"`
	Summary      summary.Summary `json:"summary"`
	TotalResults int             `json:"totalResults"`
}

type catalogResponse struct {
	Status string `json:"status"`
	*config.Catalog
}

type relatedRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
	URL     string  `json:"url"`
}

func (s *Server) handleHeadlines(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.svc.Headlines(r.Context(), q.Get("country"), news.ParsePage(q.Get("page")))
	s.writeResult(w, res, err)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Category(r.Context(), r.PathValue("category"), news.ParsePage(r.URL.Query().Get("page")))
	s.writeResult(w, res, err)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.svc.Search(r.Context(), q.Get("q"), news.ParsePage(q.Get("page")))
	s.writeResult(w, res, err)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Source(r.Context(), r.PathValue("source"), news.ParsePage(r.URL.Query().Get("page")))
	s.writeResult(w, res, err)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	var req relatedRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Code: "invalidBody", Message: "request body must be a JSON object"})
		return
	}
	content := ""
	if req.Content != nil {
		content = *req.Content
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(content) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Code: "missingArticle", Message: "title or content is required"})
		return
	}
	res, err := s.svc.Related(r.Context(), req.Title, content, req.URL)
	s.writeResult(w, res, err)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	topic := strings.TrimSpace(q.Get("topic"))

	var res *news.Result
	var err error
	if category := q.Get("category"); category != "" {
		res, err = s.svc.Category(r.Context(), category, 1)
		if topic == "" {
			topic = category
		}
	} else {
		res, err = s.svc.Headlines(r.Context(), q.Get("country"), 1)
		if topic == "" {
			topic = "top headlines"
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Status:       "ok",
		Topic:        topic,
		Summary:      s.svc.TopicSummary(r.Context(), topic, res.Articles),
		TotalResults: res.TotalResults,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{Status: "ok", Catalog: s.svc.Catalog()})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Headlines(r.Context(), r.URL.Query().Get("country"), 1)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := PublishXML("NewsFlash: Top Headlines", s.siteURL, "Latest top headlines", res.Articles)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if !metrics.Global.Healthy() {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":       status,
		"last_success": stats["last_success_time"],
		"last_error":   stats["last_error"],
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()
	if s.store != nil {
		stats["ai_store"] = s.store.Stats()
	}
	if s.limiter != nil {
		stats["ai_quota"] = s.limiter.GetStats()
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) writeResult(w http.ResponseWriter, res *news.Result, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articlesResponse{Status: "ok", Result: res})
}

// writeError maps service failures onto the error envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var apiErr *newsapi.APIError
	switch {
	case errors.Is(err, news.ErrUnknownCategory):
		writeJSON(w, http.StatusNotFound, errorResponse{Status: "error", Code: "unknownCategory", Message: err.Error()})
	case errors.Is(err, news.ErrUnknownSource):
		writeJSON(w, http.StatusNotFound, errorResponse{Status: "error", Code: "unknownSource", Message: err.Error()})
	case errors.Is(err, news.ErrUnknownCountry):
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Code: "unknownCountry", Message: err.Error()})
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Status: "error", Code: apiErr.Code, Message: apiErr.Message})
	default:
		s.log.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Code: "internalError", Message: "An unexpected error occurred"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
