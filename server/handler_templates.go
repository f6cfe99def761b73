package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tsawler/drawsnap/templates"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list := []json.RawMessage{}

	for _, tmpl := range s.opts.Repository.Snapshot().Templates() {
		data, err := templates.Encode(tmpl)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		list = append(list, data)
	}

	writeJson(w, http.StatusOK, list)
}

func (s *Server) handleTemplateStats(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, s.opts.Repository.Stats())
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.opts.Repository.Get(chi.URLParam(r, "vendor"))
	if err != nil {
		writeTemplateError(w, err)
		return
	}

	data, err := templates.Encode(tmpl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJson(w, http.StatusOK, json.RawMessage(data))
}

// handlePutTemplate stores the posted record under the vendor in the path.
func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	vendor := chi.URLParam(r, "vendor")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
		return
	}

	tmpl, err := templates.Decode(body, vendor)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stored, err := s.opts.Repository.Put(tmpl)
	if err != nil {
		writeTemplateError(w, err)
		return
	}

	data, err := templates.Encode(stored)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJson(w, http.StatusOK, json.RawMessage(data))
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Repository.Remove(chi.URLParam(r, "vendor")); err != nil {
		writeTemplateError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeTemplateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, templates.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, templates.ErrInvalidTemplate):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
