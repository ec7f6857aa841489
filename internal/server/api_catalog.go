package server

import (
	"errors"
	"net/http"

	"propstack/catalog/internal/domain"
)

type gridResponse struct {
	domain.Grid
	Breadcrumb string `json:"breadcrumb"`
}

// handleStaticCompanies serves the seed document, or the node at ?path=
func (s *Server) handleStaticCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.jsonResponse(w, http.StatusOK, map[string]string{"message": staticMessage})
		return
	}

	node, err := domain.Resolve(s.catalog.Original(), r.URL.Query().Get("path"))
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, "Category not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, node)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.catalogError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, categories)
}

func (s *Server) handleCompanyLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.catalog.CompanyLists(r.Context())
	if err != nil {
		s.catalogError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, lists)
}

// handleGrid renders an unknown or non-list path as an empty grid
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	grid, err := s.catalog.Grid(r.Context(), path)
	if errors.Is(err, domain.ErrPathNotFound) || errors.Is(err, domain.ErrNotAList) {
		grid, err = domain.BuildGrid(path, nil), nil
	}
	if err != nil {
		s.catalogError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, gridResponse{Grid: grid, Breadcrumb: domain.FormatPath(path)})
}

func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	match, err := s.catalog.FindCompany(r.Context(), r.PathValue("name"))
	if err != nil {
		s.catalogError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, match)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	featured, err := s.catalog.Featured(r.Context())
	if err != nil {
		s.catalogError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, featured)
}
