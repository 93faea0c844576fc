package service

import "github.com/prometheus/client_golang/prometheus"

var (
	borrowTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "library_book_borrow_total", Help: "Borrow attempts by outcome"},
		[]string{"outcome"},
	)
	returnTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "library_book_return_total", Help: "Return attempts by outcome"},
		[]string{"outcome"},
	)
)

func init() { prometheus.MustRegister(borrowTotal, returnTotal) }

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isNotFound(err):
		return "not_found"
	case isNotAvailable(err):
		return "not_available"
	default:
		return "error"
	}
}
