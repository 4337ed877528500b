package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "searchkit_searches_started_total",
		Help: "Search jobs accepted, by algorithm.",
	}, []string{"algorithm"})

	searchesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "searchkit_searches_finished_total",
		Help: "Search jobs finished, by algorithm and terminal status.",
	}, []string{"algorithm", "status"})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "searchkit_search_duration_seconds",
		Help:    "Wall-clock duration of completed search jobs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"algorithm"})
)
