package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"propstack/catalog/internal/domain"
)

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	record, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if err := s.catalog.Add(r.Context(), path, record); err != nil {
		s.catalogError(w, err)
		return
	}
	s.companiesResponse(w, r, path, http.StatusCreated)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	index, ok := s.parseIndex(w, r)
	if !ok {
		return
	}
	patch, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if err := s.catalog.Update(r.Context(), path, index, patch); err != nil {
		s.catalogError(w, err)
		return
	}
	s.companiesResponse(w, r, path, http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	index, ok := s.parseIndex(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if err := s.catalog.Delete(r.Context(), path, index); err != nil {
		s.catalogError(w, err)
		return
	}
	s.companiesResponse(w, r, path, http.StatusOK)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Reset(r.Context()); err != nil {
		s.catalogError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "reset"})
}

// companiesResponse replies with the list at path after a mutation
func (s *Server) companiesResponse(w http.ResponseWriter, r *http.Request, path string, status int) {
	companies, err := s.catalog.Companies(r.Context(), path)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	s.jsonResponse(w, status, companies)
}

func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (domain.CompanyRecord, bool) {
	var record domain.CompanyRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company JSON")
		return record, false
	}
	return record, true
}

func (s *Server) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company index")
		return 0, false
	}
	return index, true
}
