package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// live feed.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	feedSubscribers prometheus.Gauge
	feedPublished   prometheus.Counter
	feedDropped     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	feedSubscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_subscribers",
		Help: "Currently connected live feed viewers",
	})

	feedPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_published_total",
		Help: "Reports published to the live feed",
	})

	feedDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_dropped_total",
		Help: "Feed events dropped for lagging subscribers",
	})

	registry.MustRegister(requestDuration, requestTotal, feedSubscribers, feedPublished, feedDropped)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		feedSubscribers: feedSubscribers,
		feedPublished:   feedPublished,
		feedDropped:     feedDropped,
	}
}

// Handler exposes the scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// SetFeedSubscribers records the current viewer count.
func (s *MetricsService) SetFeedSubscribers(n int) {
	s.feedSubscribers.Set(float64(n))
}

// IncFeedPublished counts one published report.
func (s *MetricsService) IncFeedPublished() {
	s.feedPublished.Inc()
}

// IncFeedDropped counts one dropped delivery.
func (s *MetricsService) IncFeedDropped() {
	s.feedDropped.Inc()
}
