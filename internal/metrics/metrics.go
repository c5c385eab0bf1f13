// Package metrics declares the Prometheus collectors exported by the
// service. Collectors are registered on the default registry; the router
// serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LayoutSavesTotal counts layout save requests by outcome: "saved"
	// when a new revision was written, "synced" when the canonical form
	// matched the stored blob, "rejected" on validation failure.
	LayoutSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corkboard",
			Name:      "layout_saves_total",
			Help:      "Layout save requests by outcome.",
		},
		[]string{"outcome"},
	)

	// ElementsDroppedTotal counts elements removed during sanitization by
	// reason (unknown_type, missing_field, duplicate_id, instance_cap,
	// canvas_cap).
	ElementsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corkboard",
			Name:      "sanitize_elements_dropped_total",
			Help:      "Elements dropped during layout sanitization by reason.",
		},
		[]string{"reason"},
	)

	// GuestbookPostsTotal counts guestbook posts by outcome ("accepted",
	// "rate_limited", "rejected").
	GuestbookPostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corkboard",
			Name:      "guestbook_posts_total",
			Help:      "Guestbook post attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// RequestDuration observes HTTP handler latency by route and method.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corkboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)
