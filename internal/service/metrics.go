package service

import "github.com/prometheus/client_golang/prometheus"

var transitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "bookmark_transitions_total", Help: "Bookmark state transitions"},
	[]string{"transition"}, // favorite / unfavorite / archive / unarchive
)

var tagsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{Name: "tags_created_total", Help: "Tags created by the normalizer or directly"},
)

func init() { prometheus.MustRegister(transitions, tagsCreated) }
