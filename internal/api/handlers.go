package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"salesight/internal/analysis"
	"salesight/internal/config"
	"salesight/internal/dataset"
	"salesight/internal/models"
	"salesight/internal/source"
	"salesight/internal/state"
)

const defaultPreviewLimit = 100

type Handler struct {
	Store    *state.Store
	Source   source.DataSource
	Analysis *analysis.Service
	Cfg      *config.Config
}

func NewHandler(store *state.Store, src source.DataSource, svc *analysis.Service, cfg *config.Config) *Handler {
	return &Handler{
		Store:    store,
		Source:   src,
		Analysis: svc,
		Cfg:      cfg,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Post("/api/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)
		r.Post("/api/logout", h.Logout)
		r.Post("/api/sync", h.Sync)
		r.Post("/api/analyze", h.Analyze)
		r.Get("/api/status", h.GetStatus)
		r.Get("/api/dataset", h.GetDataset)
	})
}

// ============================================================================
// Auth
// ============================================================================

type ctxKey int

const sessionKey ctxKey = 0

// RequireSession resolves the bearer token into a session; everything past
// the login gate is inert without one.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			http.Error(w, "Missing session token", http.StatusUnauthorized)
			return
		}
		sess, ok := h.Store.Get(token)
		if !ok {
			http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) *state.Session {
	return r.Context().Value(sessionKey).(*state.Session)
}

// Login checks the fixed credential pair and opens a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Username != h.Cfg.AuthUser || req.Password != h.Cfg.AuthPassword {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	sess := h.Store.Create()
	writeJSON(w, models.LoginResponse{Token: sess.Token})
}

// Logout drops the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Store.Delete(sessionFrom(r).Token)
	writeJSON(w, map[string]string{"status": "logged_out"})
}

// ============================================================================
// Sync
// ============================================================================

// Sync fetches raw records from the upstream source and replaces the
// session's dataset wholesale. A failed fetch leaves the previous snapshot
// (or its absence) untouched.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	records, err := h.Source.Fetch(r.Context())
	if err != nil {
		if errors.Is(err, source.ErrUpstreamStatus) {
			http.Error(w, fmt.Sprintf("Error connecting to upstream source: %v", err), http.StatusBadGateway)
		} else {
			http.Error(w, fmt.Sprintf("Sync failed: %v", err), http.StatusBadGateway)
		}
		return
	}

	ds := dataset.FromRecords(records)
	sess.SetDataset(ds)

	writeJSON(w, models.SyncResponse{
		Message:     "Dataset synchronized",
		Rows:        ds.NumRows(),
		Columns:     ds.NumColumns(),
		ColumnNames: ds.ColumnNames(),
	})
}

// ============================================================================
// Analyze
// ============================================================================

// Analyze runs one question through the pipeline. Computation errors come
// back as a 200 payload carrying the error state, so the UI can switch the
// headline panel and expose the failing program.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "Question must not be empty", http.StatusBadRequest)
		return
	}

	ds := sess.Dataset()
	if ds == nil {
		http.Error(w, "No dataset synchronized yet", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.Analysis.Analyze(r.Context(), ds, req.Question))
}

// ============================================================================
// Status / dataset panel
// ============================================================================

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := models.StatusResponse{}
	if ds := sessionFrom(r).Dataset(); ds != nil {
		resp.Synced = true
		resp.Rows = ds.NumRows()
		resp.Columns = ds.NumColumns()
	}
	writeJSON(w, resp)
}

// GetDataset returns a row preview for the synchronized-database panel.
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds := sessionFrom(r).Dataset()
	if ds == nil {
		http.Error(w, "No dataset synchronized yet", http.StatusBadRequest)
		return
	}

	limit := defaultPreviewLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > ds.NumRows() {
		limit = ds.NumRows()
	}

	schema := ds.Schema()
	rows := make([][]string, 0, limit)
	for _, row := range ds.Rows[:limit] {
		out := make([]string, len(ds.Columns))
		for c := range ds.Columns {
			out[c] = ds.Display(row, c)
		}
		rows = append(rows, out)
	}

	writeJSON(w, models.DatasetPreview{
		Columns:   schema.Columns,
		Types:     schema.Types,
		Rows:      rows,
		TotalRows: ds.NumRows(),
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
