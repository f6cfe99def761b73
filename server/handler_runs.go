package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tsawler/drawsnap/runlog"
)

var errNoRunLog = errors.New("run log is not enabled")

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.opts.RunLog == nil {
		writeError(w, http.StatusNotFound, errNoRunLog)
		return
	}

	limit := 20
	if val := r.URL.Query().Get("limit"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", val))
			return
		}
		limit = n
	}

	runs, err := s.opts.RunLog.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []runlog.Record{}
	}

	writeJson(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.opts.RunLog == nil {
		writeError(w, http.StatusNotFound, errNoRunLog)
		return
	}

	rec, err := s.opts.RunLog.Get(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, runlog.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJson(w, http.StatusOK, rec)
}
