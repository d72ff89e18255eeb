package library

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quiz_widget",
		Subsystem: "library",
		Name:      "operation_seconds",
		Help:      "Library service operation latency by outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op", "outcome"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_widget",
		Subsystem: "library",
		Name:      "page_cache_lookups_total",
		Help:      "List page cache lookups by result.",
	}, []string{"result"})
)

func observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrInvalidQuiz):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	}
	operations.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}
