package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sonachala", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sonachala", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sonachala", Name: "external_requests_total", Help: "Outbound requests to the hotel API."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sonachala", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sonachala", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"},
	)
	FallbackActivations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sonachala", Name: "fallback_activations_total", Help: "Times fixed fallback data replaced an upstream fetch."},
		[]string{"dataset"}, // rooms|hotel
	)
	CatalogRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sonachala", Name: "catalog_refreshes_total", Help: "Catalog refreshes by trigger."},
		[]string{"trigger"}, // explicit|timer|event
	)
	Bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sonachala", Name: "bookings_total", Help: "Booking submissions by outcome."},
		[]string{"outcome"}, // confirmed|validation|connectivity|server
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency,
		CacheEvents, FallbackActivations, CatalogRefreshes, Bookings)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveFallback(dataset string) {
	FallbackActivations.WithLabelValues(dataset).Inc()
}

func ObserveRefresh(trigger string) {
	CatalogRefreshes.WithLabelValues(trigger).Inc()
}

func ObserveBooking(outcome string) {
	Bookings.WithLabelValues(outcome).Inc()
}
