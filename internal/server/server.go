// Package server exposes the audit service over HTTP and WebSocket.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/pagegrade/pagegrade/docs" // swagger spec registration
	"github.com/pagegrade/pagegrade/internal/audit"
	"github.com/pagegrade/pagegrade/internal/diffing"
	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/report"
	"github.com/pagegrade/pagegrade/internal/store"
)

// Server is the HTTP + WebSocket API surface.
type Server struct {
	cfg      Config
	service  *audit.Service
	store    store.Store
	hub      *Hub
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer wires the API over an already constructed service and store.
func NewServer(cfg Config, service *audit.Service, st store.Store, hub *Hub, logger logging.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		service:  service,
		store:    st,
		hub:      hub,
		router:   chi.NewRouter(),
		upgrader: newUpgrader(),
		logger:   logger.With(logging.Field{Key: "component", Value: "server"}),
	}
	if hub != nil && service != nil {
		hub.BindSubmitter(service.Submit)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/audits", s.optionsHandler("GET, POST, DELETE"))
	r.Options("/api/audits/{auditID}", s.optionsHandler("GET, DELETE"))
	r.Options("/api/audits/{auditID}/report", s.optionsHandler("GET"))
	r.Options("/api/audits/{auditID}/compare/{otherID}", s.optionsHandler("GET"))
	r.Options("/api/health", s.optionsHandler("GET"))
	r.Options("/ws/audits", s.optionsHandler("GET"))

	r.Post("/api/audits", s.handleCreateAudit)
	r.Get("/api/audits", s.handleListAudits)
	r.Delete("/api/audits", s.handleDeleteAllAudits)
	r.Get("/api/audits/{auditID}", s.handleGetAudit)
	r.Delete("/api/audits/{auditID}", s.handleDeleteAudit)
	r.Get("/api/audits/{auditID}/report", s.handleGetReport)
	r.Get("/api/audits/{auditID}/compare/{otherID}", s.handleCompareAudits)

	r.Get("/api/health", s.handleHealth)

	r.Get("/ws/audits", s.handleAuditsWS)

	r.Get("/swagger/*", httpSwagger.Handler())
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow long-running sync audits and websockets
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

// handleCreateAudit starts an audit.
//
//	@Summary	Start an audit
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateAuditRequest	true	"audit request"
//	@Success	200		{object}	model.AuditResult	"completed audit (wait=true)"
//	@Success	202		{object}	model.AuditResult	"running audit (wait=false)"
//	@Failure	400		{object}	ErrorResponse
//	@Router		/api/audits [post]
func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var body CreateAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	websiteType := model.WebsiteType(body.WebsiteType)

	if body.Wait {
		result, err := s.service.Run(r.Context(), body.URL, websiteType)
		if err != nil {
			s.auditStartError(w, body.URL, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	result, err := s.service.Submit(body.URL, websiteType)
	if err != nil {
		s.auditStartError(w, body.URL, err)
		return
	}
	s.logger.Info("audit submitted",
		logging.Field{Key: "audit_id", Value: result.ID},
		logging.Field{Key: "url", Value: body.URL})
	writeJSON(w, http.StatusAccepted, result)
}

func (s *Server) auditStartError(w http.ResponseWriter, url string, err error) {
	s.logger.Warn("starting audit",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "error", Value: err.Error()})
	if errors.Is(err, audit.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// handleListAudits lists stored audits, newest first.
//
//	@Summary	List audits
//	@Produce	json
//	@Param		limit	query		int	false	"page size"
//	@Param		offset	query		int	false	"page offset"
//	@Success	200		{object}	ListAuditsResponse
//	@Router		/api/audits [get]
func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	limit, offset := 0, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	audits, err := s.store.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Warn("listing audits", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ListAuditsResponse{Total: total, Audits: audits})
}

// handleGetAudit returns one audit by id.
//
//	@Summary	Get audit
//	@Produce	json
//	@Param		auditID	path		string	true	"audit id"
//	@Success	200		{object}	model.AuditResult
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/audits/{auditID} [get]
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")
	result, err := s.store.Get(r.Context(), auditID)
	if err != nil {
		s.storeError(w, auditID, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDeleteAudit removes one audit.
//
//	@Summary	Delete audit
//	@Param		auditID	path	string	true	"audit id"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/audits/{auditID} [delete]
func (s *Server) handleDeleteAudit(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")
	if err := s.store.Delete(r.Context(), auditID); err != nil {
		s.storeError(w, auditID, err)
		return
	}
	s.logger.Info("deleted audit", logging.Field{Key: "audit_id", Value: auditID})
	writeJSON(w, http.StatusNoContent, nil)
}

// handleDeleteAllAudits clears the audit history.
//
//	@Summary	Delete all audits
//	@Success	204
//	@Router		/api/audits [delete]
func (s *Server) handleDeleteAllAudits(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAll(r.Context()); err != nil {
		s.logger.Warn("deleting all audits", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("deleted all audits")
	writeJSON(w, http.StatusNoContent, nil)
}

// handleGetReport renders the executive report for an audit.
//
//	@Summary	Get audit report
//	@Produce	json
//	@Param		auditID	path		string	true	"audit id"
//	@Success	200		{object}	report.Report
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/audits/{auditID}/report [get]
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")
	result, err := s.store.Get(r.Context(), auditID)
	if err != nil {
		s.storeError(w, auditID, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Build(result))
}

// handleCompareAudits diffs two audits, including their HTML snapshots when
// both are stored.
//
//	@Summary	Compare two audits
//	@Produce	json
//	@Param		auditID	path		string	true	"base audit id"
//	@Param		otherID	path		string	true	"head audit id"
//	@Success	200		{object}	diffing.Comparison
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/audits/{auditID}/compare/{otherID} [get]
func (s *Server) handleCompareAudits(w http.ResponseWriter, r *http.Request) {
	baseID := chi.URLParam(r, "auditID")
	headID := chi.URLParam(r, "otherID")

	base, err := s.store.Get(r.Context(), baseID)
	if err != nil {
		s.storeError(w, baseID, err)
		return
	}
	head, err := s.store.Get(r.Context(), headID)
	if err != nil {
		s.storeError(w, headID, err)
		return
	}

	// Missing snapshots degrade to a score/issue-only comparison.
	baseHTML, _ := s.store.GetHTML(r.Context(), baseID)
	headHTML, _ := s.store.GetHTML(r.Context(), headID)

	writeJSON(w, http.StatusOK, diffing.Compare(base, head, baseHTML, headHTML))
}

// handleHealth reports liveness.
//
//	@Summary	Health check
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/api/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Audits: n})
}

// handleAuditsWS subscribes the client to audit lifecycle events.
func (s *Server) handleAuditsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	s.hub.Serve(conn)
}

func (s *Server) storeError(w http.ResponseWriter, auditID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}
	s.logger.Warn("store access failed",
		logging.Field{Key: "audit_id", Value: auditID},
		logging.Field{Key: "error", Value: err.Error()})
	writeError(w, http.StatusInternalServerError, err.Error())
}
