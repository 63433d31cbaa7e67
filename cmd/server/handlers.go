package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/brunobiangulo/graphnav"
	"github.com/brunobiangulo/graphnav/rdf"
)

type handler struct {
	nav graphnav.Navigator
}

func newHandler(n graphnav.Navigator) *handler {
	return &handler{nav: n}
}

// POST /ingest
// Accepts multipart file upload or JSON with file path.
func (h *handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	// Try multipart upload first
	if err := r.ParseMultipartForm(100 << 20); err == nil { // 100MB max
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()

			// Sanitise filename to prevent path traversal.
			safeName := filepath.Base(header.Filename)

			tmpPath := filepath.Join(os.TempDir(), safeName)
			dst, err := os.Create(tmpPath)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to process file")
				slog.Error("creating temp file", "error", err)
				return
			}
			if _, err := io.Copy(dst, file); err != nil {
				dst.Close()
				writeError(w, http.StatusInternalServerError, "failed to save file")
				slog.Error("saving uploaded file", "error", err)
				return
			}
			dst.Close()
			defer os.Remove(tmpPath)

			rep, err := h.nav.Ingest(ctx, tmpPath)
			if err != nil {
				h.writeNavError(w, "ingestion failed", err)
				return
			}
			rep.Path = safeName
			writeJSON(w, http.StatusOK, rep)
			return
		}
	}

	// Try JSON body with path
	var req struct {
		Path   string `json:"path"`
		Format string `json:"format,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart file or JSON with 'path'")
		return
	}

	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	// Validate that path is a real file (prevents directory traversal probing).
	absPath, err := filepath.Abs(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "path must be an existing file")
		return
	}

	var opts []graphnav.IngestOption
	if req.Format != "" {
		opts = append(opts, graphnav.WithFormat(req.Format))
	}

	rep, err := h.nav.Ingest(ctx, absPath, opts...)
	if err != nil {
		h.writeNavError(w, "ingestion failed", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// POST /resolve
// Resolves free-form input or a record short code to an identifier.
func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input   string `json:"input"`
		ShortID bool   `json:"short_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	var iri string
	var err error
	if req.ShortID {
		iri, err = h.nav.ResolveShortID(r.Context(), req.Input)
	} else {
		iri, err = h.nav.Resolve(r.Context(), req.Input)
	}
	if err != nil {
		h.writeNavError(w, "resolution failed", err)
		return
	}

	description, err := h.nav.Describe(r.Context(), iri)
	if err != nil {
		h.writeNavError(w, "resolution failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"input":       req.Input,
		"iri":         iri,
		"short":       h.nav.Shorten(iri),
		"description": description,
	})
}

// POST /connections
func (h *handler) handleConnections(w http.ResponseWriter, r *http.Request) {
	var req struct {
		A string `json:"a"`
		B string `json:"b"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.A == "" || req.B == "" {
		writeError(w, http.StatusBadRequest, "both endpoints are required")
		return
	}

	a, err := h.nav.Resolve(r.Context(), req.A)
	if err != nil {
		h.writeNavError(w, "resolving first endpoint", err)
		return
	}
	b, err := h.nav.Resolve(r.Context(), req.B)
	if err != nil {
		h.writeNavError(w, "resolving second endpoint", err)
		return
	}

	conns, err := h.nav.Connections(r.Context(), a, b)
	if err != nil {
		h.writeNavError(w, "finding connections", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"a":           a,
		"b":           b,
		"connections": conns,
	})
}

// POST /query
// Ad-hoc SELECT passthrough; remote backend only.
func (h *handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	bindings, err := h.nav.Query(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, graphnav.ErrQueryUnsupported) {
			writeError(w, http.StatusNotImplemented, err.Error())
			return
		}
		h.writeNavError(w, "query failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bindings": bindings})
}

// GET /describe?node=...
func (h *handler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	node := r.URL.Query().Get("node")
	if node == "" {
		writeError(w, http.StatusBadRequest, "node is required")
		return
	}
	description, err := h.nav.Describe(r.Context(), node)
	if err != nil {
		h.writeNavError(w, "describe failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"node":        node,
		"description": description,
	})
}

// GET /triples?node=...
func (h *handler) handleTriples(w http.ResponseWriter, r *http.Request) {
	node := r.URL.Query().Get("node")
	if node == "" {
		writeError(w, http.StatusBadRequest, "node is required")
		return
	}
	triples, err := h.nav.Triples(r.Context(), node)
	if err != nil {
		h.writeNavError(w, "reading triples", err)
		return
	}

	type statement struct {
		Subject   string `json:"subject"`
		Predicate string `json:"predicate"`
		Object    string `json:"object"`
		Kind      string `json:"kind"`
	}
	out := make([]statement, len(triples))
	for i, t := range triples {
		out[i] = statement{
			Subject:   h.nav.Shorten(t.Subject),
			Predicate: h.nav.Shorten(t.Predicate),
			Object:    h.nav.Shorten(t.Object.Value),
			Kind:      t.Object.Kind.String(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node":    node,
		"triples": out,
	})
}

// GET /resources
func (h *handler) handleResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.nav.Resources(r.Context())
	if err != nil {
		h.writeNavError(w, "listing resources", err)
		return
	}
	short := make([]string, len(resources))
	for i, iri := range resources {
		short[i] = h.nav.Shorten(iri)
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": short})
}

// GET /stats
func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.nav.Stats(r.Context())
	if err != nil {
		h.writeNavError(w, "reading stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /export
func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/turtle")
	if err := h.nav.Export(r.Context(), w); err != nil {
		slog.Error("export error", "error", err)
	}
}

// POST /load
// Accepts a graph-text body.
func (h *handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	count, err := h.nav.LoadTurtle(r.Context(), r.Body)
	if err != nil {
		h.writeNavError(w, "loading graph text", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"triples": count})
}

// POST /clear
func (h *handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.nav.Clear(r.Context()); err != nil {
		h.writeNavError(w, "clearing graph", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// GET /reports/customer-status?customer=...
func (h *handler) handleCustomerStatus(w http.ResponseWriter, r *http.Request) {
	customer := r.URL.Query().Get("customer")
	if customer == "" {
		writeError(w, http.StatusBadRequest, "customer is required")
		return
	}
	items, err := h.nav.CustomerStatus(r.Context(), customer)
	if err != nil {
		h.writeNavError(w, "customer status report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customer": customer,
		"items":    items,
	})
}

// GET /reports/similar-requests?filter=...
func (h *handler) handleSimilarRequests(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		writeError(w, http.StatusBadRequest, "filter is required")
		return
	}
	items, err := h.nav.SimilarRequests(r.Context(), filter)
	if err != nil {
		h.writeNavError(w, "similar requests report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filter": filter,
		"items":  items,
	})
}

// GET /reports/high-priority
func (h *handler) handleHighPriority(w http.ResponseWriter, r *http.Request) {
	items, err := h.nav.HighPriorityIncidents(r.Context())
	if err != nil {
		h.writeNavError(w, "high priority report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"incidents": items})
}

// GET /reports/module-risk
func (h *handler) handleModuleRisk(w http.ResponseWriter, r *http.Request) {
	items, err := h.nav.ModuleRiskAssessment(r.Context())
	if err != nil {
		h.writeNavError(w, "module risk report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"modules": items})
}

// GET /reports/severity-by-domain
func (h *handler) handleSeverityByDomain(w http.ResponseWriter, r *http.Request) {
	rows, err := h.nav.SeverityByDomain(r.Context())
	if err != nil {
		h.writeNavError(w, "severity by domain report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// GET /reports/product-performance
func (h *handler) handleProductPerformance(w http.ResponseWriter, r *http.Request) {
	products, err := h.nav.ProductPerformance(r.Context())
	if err != nil {
		h.writeNavError(w, "product performance report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// writeNavError maps domain errors to HTTP statuses. Store failures
// keep their original message so the caller sees what the endpoint
// actually said.
func (h *handler) writeNavError(w http.ResponseWriter, action string, err error) {
	var qerr *rdf.QueryError
	switch {
	case errors.Is(err, graphnav.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, graphnav.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &qerr):
		writeError(w, http.StatusBadGateway, qerr.Error())
		slog.Error(action, "status", qerr.Status, "error", qerr.Message)
	default:
		writeError(w, http.StatusInternalServerError, action)
		slog.Error(action, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
