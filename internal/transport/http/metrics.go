package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sdg_quest",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "code", "method"})

	scoreSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sdg_quest",
		Name:      "score_submissions_total",
		Help:      "Score submissions by outcome.",
	}, []string{"result"})

	feedConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sdg_quest",
		Name:      "score_feed_connections",
		Help:      "Open websocket score feed connections.",
	})
)

// instrument counts requests served by h under the given route label.
func instrument(route string, h http.HandlerFunc) http.Handler {
	return promhttp.InstrumentHandlerCounter(
		httpRequests.MustCurryWith(prometheus.Labels{"route": route}), h)
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
