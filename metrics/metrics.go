package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dosada05/championship-draw/draw"
)

const namespace = "championship"

// Recorder owns the service's collectors on a private registry. It observes
// the draw presenter, the broadcast hub and the HTTP layer.
type Recorder struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	eventsPublished *prometheus.CounterVec
	publishErrors   *prometheus.CounterVec
	phaseChanges    *prometheus.CounterVec
	viewers         *prometheus.GaugeVec
	slowDrops       *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_events_published_total",
			Help:      "Draw events handed to the broadcast channel.",
		}, []string{"type"}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_publish_errors_total",
			Help:      "Draw events the broadcast channel failed to deliver.",
		}, []string{"type"}),
		phaseChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_phase_transitions_total",
			Help:      "Presenter phase transitions.",
		}, []string{"from", "to"}),
		viewers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "draw_viewers",
			Help:      "Connected websocket viewers per draw room.",
		}, []string{"room"}),
		slowDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_slow_viewers_dropped_total",
			Help:      "Viewers disconnected because their send buffer was full.",
		}, []string{"room"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests,
		r.requestLatency,
		r.eventsPublished,
		r.publishErrors,
		r.phaseChanges,
		r.viewers,
		r.slowDrops,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.requestLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (r *Recorder) EventPublished(ev draw.EventType, err error) {
	if r == nil {
		return
	}
	r.eventsPublished.WithLabelValues(string(ev)).Inc()
	if err != nil {
		r.publishErrors.WithLabelValues(string(ev)).Inc()
	}
}

func (r *Recorder) PhaseChanged(from, to draw.Phase) {
	if r == nil {
		return
	}
	r.phaseChanges.WithLabelValues(string(from), string(to)).Inc()
}

func (r *Recorder) ClientsChanged(room string, delta int) {
	if r == nil {
		return
	}
	r.viewers.WithLabelValues(room).Add(float64(delta))
}

func (r *Recorder) SlowClientDropped(room string) {
	if r == nil {
		return
	}
	r.slowDrops.WithLabelValues(room).Inc()
}
