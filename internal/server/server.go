package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"propstack/catalog/internal/config"
	"propstack/catalog/internal/domain"
	"propstack/catalog/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const staticMessage = "Data management is handled by the admin API. This endpoint only provides the initial data."

// Server exposes the catalog over HTTP
type Server struct {
	config   config.ServerConfig
	catalog  *service.Catalog
	gatherer prometheus.Gatherer
	srv      *http.Server
}

func NewServer(cfg config.ServerConfig, catalog *service.Catalog, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		config:   cfg,
		catalog:  catalog,
		gatherer: gatherer,
	}
	s.srv = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the routed handler without starting a listener
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Initial data, never touched by mutations
	mux.HandleFunc("/api/companies", s.handleStaticCompanies)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/lists", s.handleCompanyLists)
	mux.HandleFunc("GET /api/grid", s.handleGrid)
	mux.HandleFunc("GET /api/company/{name}", s.handleCompany)
	mux.HandleFunc("GET /api/featured", s.handleFeatured)

	mux.HandleFunc("POST /api/admin/companies", s.handleAdd)
	mux.HandleFunc("PUT /api/admin/companies/{index}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/admin/companies/{index}", s.handleDelete)
	mux.HandleFunc("POST /api/admin/reset", s.handleReset)

	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.Infof("🚀 PropStack catalog running at http://%s", s.config.Addr())
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warnf("⚠️ Failed to write response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// catalogError maps a catalog error to its HTTP status
func (s *Server) catalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPathNotFound), errors.Is(err, domain.ErrCompanyNotFound):
		s.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotAList):
		s.errorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrIndexOutOfBounds), errors.Is(err, domain.ErrValidation):
		s.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("❌ Catalog request failed: %v", err)
		s.errorResponse(w, http.StatusServiceUnavailable, "Catalog storage unavailable")
	}
}
