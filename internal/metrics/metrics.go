package metrics

import (
	"errors"

	"propstack/catalog/internal/domain"
	"propstack/catalog/internal/store"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts catalog operations by outcome
type Recorder interface {
	Mutation(op string, err error)
	Logo(result string)
}

type prometheusRecorder struct {
	mutations *prometheus.CounterVec
	logos     *prometheus.CounterVec
}

func NewPrometheusRecorder(reg prometheus.Registerer) Recorder {
	r := &prometheusRecorder{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propstack",
			Name:      "catalog_mutations_total",
			Help:      "Catalog mutations by operation and result.",
		}, []string{"op", "result"}),
		logos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propstack",
			Name:      "logo_enrichments_total",
			Help:      "Logo enrichment attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(r.mutations, r.logos)
	return r
}

func (r *prometheusRecorder) Mutation(op string, err error) {
	r.mutations.WithLabelValues(op, Result(err)).Inc()
}

func (r *prometheusRecorder) Logo(result string) {
	r.logos.WithLabelValues(result).Inc()
}

// Result maps an operation error to a metric label
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrPathNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotAList):
		return "not_a_list"
	case errors.Is(err, domain.ErrIndexOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrCompanyNotFound):
		return "company_not_found"
	case errors.Is(err, store.ErrPersistenceUnavailable):
		return "persistence"
	default:
		return "error"
	}
}

type noop struct{}

// Noop discards everything
func Noop() Recorder {
	return noop{}
}

func (noop) Mutation(string, error) {}
func (noop) Logo(string)            {}
