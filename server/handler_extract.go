package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tsawler/drawsnap"
	"github.com/tsawler/drawsnap/batch"
	"github.com/tsawler/drawsnap/export"
	"github.com/tsawler/drawsnap/matching"
	"github.com/tsawler/drawsnap/quality"
	"github.com/tsawler/drawsnap/templates"
	"github.com/tsawler/drawsnap/tokens"
)

type extractRequest struct {
	Source string `json:"source,omitempty"`

	// Tokens is a token array or a {"tokens": [...]} document
	Tokens json.RawMessage `json:"tokens"`

	// Template overrides Vendor; with neither the vendor is detected
	Vendor   string          `json:"vendor,omitempty"`
	Template json.RawMessage `json:"template,omitempty"`

	Page int `json:"page,omitempty"`
}

type extractResponse struct {
	RunID string `json:"run_id,omitempty"`

	Source string          `json:"source"`
	Page   int             `json:"page"`
	Vendor string          `json:"vendor,omitempty"`
	Match  *matching.Match `json:"match,omitempty"`

	Header []string        `json:"header,omitempty"`
	Rows   [][]string      `json:"rows"`
	Report *quality.Report `json:"report"`

	Threshold float64 `json:"threshold"`
	Adaptive  bool    `json:"adaptive"`

	Error string `json:"error,omitempty"`
}

// handleExtract runs the pipeline over posted tokens. The response always
// carries a grid and report; resolution failures also set the status code
// and the error field. With ?format=csv|tsv|md|xlsx the grid is returned in that
// format instead of JSON.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if len(req.Tokens) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("tokens are required"))
		return
	}

	toks, err := tokens.ReadJSON(bytes.NewReader(req.Tokens))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var format export.Format
	if val := r.URL.Query().Get("format"); val != "" {
		if format, err = export.ParseFormat(val); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	ext := drawsnap.FromTokens(toks).
		Templates(s.opts.Repository.Snapshot()).
		Keywords(s.opts.Keywords).
		SampleTokens(s.opts.SampleTokens).
		SlicerConfig(s.opts.Slicer).
		QualityConfig(s.opts.Quality).
		MatchingConfig(s.opts.Matching)

	if s.opts.MinConfidence > 0 {
		ext = ext.MinConfidence(s.opts.MinConfidence)
	}
	if req.Page > 0 {
		ext = ext.Pages(req.Page)
	}

	switch {
	case len(req.Template) > 0:
		tmpl, err := templates.Decode(req.Template, req.Vendor)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ext = ext.Template(tmpl)
	case req.Vendor != "":
		ext = ext.Vendor(req.Vendor)
	}

	started := time.Now()
	res, extractErr := ext.Extract()

	source := req.Source
	if source == "" {
		source = res.Source
	}
	res.Source = source

	header, warning := s.opts.Headers.Lookup(res.Vendor, res.Grid.Columns)
	if warning != "" {
		res.Report.AddWarning(warning)
	}

	resp := extractResponse{
		RunID:     s.recordRun(res, started),
		Source:    source,
		Page:      res.Page,
		Vendor:    res.Vendor,
		Match:     res.Match,
		Header:    header,
		Rows:      res.Grid.Rows,
		Report:    res.Report,
		Threshold: res.Threshold,
		Adaptive:  res.Adaptive,
	}

	code := http.StatusOK
	if extractErr != nil {
		resp.Error = extractErr.Error()
		code = statusFor(extractErr)
	}

	s.logger.Info("extracted",
		"source", source,
		"vendor", res.Vendor,
		"score", res.Report.Score,
		"acceptable", res.Report.IsAcceptable(),
		"status", code,
	)

	if format != "" && extractErr == nil {
		w.Header().Set("Content-Type", contentType(format))
		w.Header().Set("X-Quality-Score", fmt.Sprintf("%.2f", res.Report.Score))
		w.WriteHeader(code)
		if err := export.Write(w, res.Grid, format, header); err != nil {
			s.logger.Warn("writing export failed", "error", err)
		}
		return
	}

	writeJson(w, code, resp)
}

func (s *Server) recordRun(res *drawsnap.Result, started time.Time) string {
	if s.opts.RunLog == nil {
		return ""
	}

	rec := batch.RunRecord(res, "")
	rec.Started = started
	id, err := s.opts.RunLog.Add(rec)
	if err != nil {
		s.logger.Warn("recording run failed", "error", err)
		return ""
	}
	return id
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, drawsnap.ErrNoTemplate):
		return http.StatusNotFound
	case errors.Is(err, drawsnap.ErrNoMatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, drawsnap.ErrTokenSource):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func contentType(f export.Format) string {
	switch f {
	case export.CSV:
		return "text/csv; charset=utf-8"
	case export.TSV:
		return "text/tab-separated-values; charset=utf-8"
	case export.XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/markdown; charset=utf-8"
	}
}
