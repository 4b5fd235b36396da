package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/0x6d61/scandash/internal/dashboard"
	"github.com/0x6d61/scandash/internal/report"
	"github.com/0x6d61/scandash/internal/scan"
	"github.com/0x6d61/scandash/internal/simulator"
	"github.com/0x6d61/scandash/internal/stats"
)

// Error codes returned in the "code" field.
const (
	CodeEmptyInput    = "empty_input"
	CodeInvalidFormat = "invalid_format"
	CodeBusy          = "busy"
	CodeRateLimited   = "rate_limited"
	CodeNotFound      = "not_found"
	CodeBadRequest    = "bad_request"
	CodeInternal      = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg, Code: code})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	s.fail(w, r, http.StatusInternalServerError, CodeInternal, "internal error")
}

// ---------------------------------------------------------------------------
// Scans
// ---------------------------------------------------------------------------

func (s *Server) listScans(w http.ResponseWriter, r *http.Request) {
	scans, err := s.dash.ListScans(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if scans == nil {
		scans = []*scan.Scan{}
	}
	render.JSON(w, r, scans)
}

// getScan returns one record and opens it in the detail view.
func (s *Server) getScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.dash.Select(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if rec == nil {
		s.fail(w, r, http.StatusNotFound, CodeNotFound, fmt.Sprintf("scan %q not found", id))
		return
	}
	render.JSON(w, r, rec)
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	rec, err := s.dash.Selected(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]*scan.Scan{"scan": rec})
}

func (s *Server) clearSelection(w http.ResponseWriter, r *http.Request) {
	s.dash.ClearSelection()
	render.NoContent(w, r)
}

type statsResponse struct {
	stats.Dashboard
	ByRisk map[scan.Risk]int `json:"byRisk"`
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	scans, err := s.dash.ListScans(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	render.JSON(w, r, statsResponse{
		Dashboard: stats.Compute(scans),
		ByRisk:    stats.ByRisk(scans),
	})
}

func (s *Server) scanReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}
	rep, err := report.New(format)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	rec, err := s.dash.Scan(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if rec == nil {
		s.fail(w, r, http.StatusNotFound, CodeNotFound, fmt.Sprintf("scan %q not found", id))
		return
	}

	var buf bytes.Buffer
	if err := rep.Generate(r.Context(), rec, &buf); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", rep.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(rec, rep)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ---------------------------------------------------------------------------
// Deletion flow
// ---------------------------------------------------------------------------

type pendingResponse struct {
	Pending string `json:"pending"`
}

func (s *Server) requestDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.dash.RequestDelete(id); err != nil {
		s.fail(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	render.JSON(w, r, pendingResponse{Pending: id})
}

func (s *Server) pendingDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := s.dash.PendingDelete()
	render.JSON(w, r, pendingResponse{Pending: id})
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	out, err := s.dash.ConfirmDelete(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	render.JSON(w, r, out)
}

func (s *Server) cancelDelete(w http.ResponseWriter, r *http.Request) {
	s.dash.CancelDelete()
	render.NoContent(w, r)
}

// ---------------------------------------------------------------------------
// Simulations
// ---------------------------------------------------------------------------

type startRequest struct {
	Target string `json:"target"`
}

func (s *Server) startSimulation(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		s.fail(w, r, http.StatusTooManyRequests, CodeRateLimited, "too many scan requests")
		return
	}

	var req startRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, CodeBadRequest, "invalid json")
		return
	}

	sess, err := s.dash.StartScan(req.Target)
	switch {
	case err == nil:
		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, sess.View())
	case errors.Is(err, simulator.ErrEmptyInput):
		s.fail(w, r, http.StatusBadRequest, CodeEmptyInput, simulator.UserMessage(err))
	case errors.Is(err, simulator.ErrInvalidFormat):
		s.fail(w, r, http.StatusBadRequest, CodeInvalidFormat, simulator.UserMessage(err))
	case errors.Is(err, simulator.ErrBusy):
		s.fail(w, r, http.StatusConflict, CodeBusy, simulator.UserMessage(err))
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) getSimulation(w http.ResponseWriter, r *http.Request) {
	v, err := s.dash.Session(chi.URLParam(r, "id"))
	if errors.Is(err, dashboard.ErrSessionNotFound) {
		s.fail(w, r, http.StatusNotFound, CodeNotFound, "simulation not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	render.JSON(w, r, v)
}

func (s *Server) abandonSimulation(w http.ResponseWriter, r *http.Request) {
	err := s.dash.AbandonScan(chi.URLParam(r, "id"))
	if errors.Is(err, dashboard.ErrSessionNotFound) {
		s.fail(w, r, http.StatusNotFound, CodeNotFound, "simulation not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	ok, err := s.refresher.Refresh(r.Context(), false)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Debug("refresh cancelled", "error", err)
		ok, err = false, nil
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"refreshed": ok})
}
