// Package metrics holds the Prometheus collectors shared by repositories,
// the catalog client and workers. HTTP metrics live in middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreConflicts counts optimistic transactions replayed after a concurrent write.
	StoreConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_optimistic_conflicts_total",
			Help: "Optimistic store transactions retried because of a concurrent write",
		},
		[]string{"store", "entity"},
	)

	// CatalogRequests counts catalog lookups by outcome: hit, miss or error.
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Anime catalog lookups by endpoint and outcome",
		},
		[]string{"endpoint", "result"},
	)

	// NotificationsSent counts recommendation notifications by outcome.
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_notifications_total",
			Help: "Recommendation notifications processed by the stream worker",
		},
		[]string{"result"},
	)
)
