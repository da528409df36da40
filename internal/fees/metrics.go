package fees

import (
	"strings"

	"marketplace-backend/internal/apperr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fee_operations_total",
			Help: "Fee service operations by outcome",
		},
		[]string{"operation", "result"},
	)

	cacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fee_cache_requests_total",
			Help: "Fee read cache lookups",
		},
		[]string{"result"},
	)
)

func (s *Service) succeeded(op string) {
	operationsTotal.WithLabelValues(op, "ok").Inc()
}

func recordFailure(op string, err error) {
	operationsTotal.WithLabelValues(op, strings.ToLower(string(apperr.KindOf(err)))).Inc()
}
