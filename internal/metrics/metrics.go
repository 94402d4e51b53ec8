package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the prometheus registry and the application counters.
type Metrics struct {
	registry *prometheus.Registry

	// StoriesServed counts full story documents handed to clients.
	StoriesServed prometheus.Counter

	// PlaysTracked counts tracked play sessions by terminal status.
	PlaysTracked *prometheus.CounterVec

	// RatingsCast counts rating mutations by kind (like, dislike, removed).
	RatingsCast *prometheus.CounterVec
}

// New creates a registry with Go/process collectors plus the app counters.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		StoriesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nightpaths_stories_served_total",
			Help: "Total number of full story documents served.",
		}),
		PlaysTracked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nightpaths_plays_tracked_total",
			Help: "Total number of tracked play sessions by status.",
		}, []string{"status"}),
		RatingsCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nightpaths_ratings_cast_total",
			Help: "Total number of rating mutations by kind.",
		}, []string{"kind"}),
	}

	registry.MustRegister(m.StoriesServed, m.PlaysTracked, m.RatingsCast)
	return m
}

// Handler exposes the registry for a /metrics route.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
