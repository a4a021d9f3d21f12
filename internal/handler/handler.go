// Package handler exposes the generation pipeline over HTTP as JSON
// endpoints.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matthewbaird/formforge/internal/dbc"
	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/er"
	"github.com/matthewbaird/formforge/internal/fmb"
	"github.com/matthewbaird/formforge/internal/pipeline"
	"github.com/matthewbaird/formforge/internal/presentation"
	"github.com/matthewbaird/formforge/internal/project"
)

// DefaultLayoutTimeout bounds one diagram layout.
const DefaultLayoutTimeout = 5 * time.Second

// Options configures a Handler.
type Options struct {
	Pipeline      pipeline.Options
	FMB           fmb.Options
	LayoutTimeout time.Duration
	// Layouter defaults to er.Sugiyama.
	Layouter er.Layouter
}

// Handler serves the generation endpoints.
type Handler struct {
	opts Options
}

// New returns a Handler.
func New(opts Options) *Handler {
	if opts.LayoutTimeout <= 0 {
		opts.LayoutTimeout = DefaultLayoutTimeout
	}
	if opts.Layouter == nil {
		opts.Layouter = er.Sugiyama{}
	}
	return &Handler{opts: opts}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Generate renders every artifact of a JSON project.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "MALFORMED_JSON", "request body is not valid JSON")
		return
	}
	p, err := project.Parse(body, project.FormatJSON, "request")
	if err != nil {
		generationErrorToHTTP(w, r, err)
		return
	}
	art, err := pipeline.FromProject(p, h.opts.Pipeline)
	if err != nil {
		generationErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// ParseFMB returns the parsed module of a legacy form body.
func (h *Handler) ParseFMB(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fmb.Parse(string(body), h.opts.FMB))
}

// SpecResponse is the body of a spec extraction.
type SpecResponse struct {
	Records     []fmb.SpecRecord       `json:"records"`
	Diagnostics diagnostic.Diagnostics `json:"diagnostics"`
}

// FMBSpec returns the flattened spec records of a legacy form body.
func (h *Handler) FMBSpec(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	m := fmb.Parse(string(body), h.opts.FMB)
	writeJSON(w, http.StatusOK, SpecResponse{Records: fmb.ExtractSpec(m), Diagnostics: m.Diagnostics})
}

// FieldsResponse is the body of a field conversion. Project can be posted
// to the generate endpoint as is.
type FieldsResponse struct {
	Project     project.Project        `json:"project"`
	Diagnostics diagnostic.Diagnostics `json:"diagnostics"`
}

// FMBFields converts a legacy form body into a project.
func (h *Handler) FMBFields(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	in := pipeline.FromFMB(string(body), h.opts.FMB)
	writeJSON(w, http.StatusOK, FieldsResponse{
		Project:     project.Project{Metadata: in.Metadata, Fields: in.Fields},
		Diagnostics: in.Diagnostics,
	})
}

// Diagram lays out the entity-relationship graph of a legacy form body.
// The external query parameter shows lookup entities.
func (h *Handler) Diagram(w http.ResponseWriter, r *http.Request) {
	showExternal := false
	if v := r.URL.Query().Get("external"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PARAM", "external must be a boolean")
			return
		}
		showExternal = b
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.LayoutTimeout)
	defer cancel()
	d, err := pipeline.Diagram(ctx, string(body), h.opts.FMB, showExternal, h.opts.Layouter)
	if err != nil {
		if ctx.Err() != nil {
			writeError(w, http.StatusServiceUnavailable, "LAYOUT_TIMEOUT", err.Error())
			return
		}
		generationErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CoverageRequest compares bindings against a resource script.
type CoverageRequest struct {
	Bindings []presentation.Binding `json:"bindings"`
	Script   string                 `json:"script"`
}

// Coverage checks that every custom persistent binding is defined by the
// script. Gaps are reported in the body, not as an error status.
func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req CoverageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "MALFORMED_JSON", "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Script) == "" {
		writeError(w, http.StatusUnprocessableEntity, "MISSING_SCRIPT", "script is required")
		return
	}
	cov, err := dbc.CheckCoverage(req.Bindings, req.Script)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_SCRIPT", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cov)
}
