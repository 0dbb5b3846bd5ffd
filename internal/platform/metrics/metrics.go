package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the client runtime.
type Metrics struct {
	Requests           *prometheus.CounterVec
	RequestRetries     prometheus.Counter
	RequestDurationMs  prometheus.Histogram
	RefreshAttempts    prometheus.Counter
	RefreshFailures    prometheus.Counter
	SessionsExpired    prometheus.Counter
	ContextResolutions *prometheus.CounterVec
	UploadsProcessed   prometheus.Counter
	UploadFailures     prometheus.Counter
	RedirectsPlanned   *prometheus.CounterVec
}

// New registers and returns client runtime metrics collectors.
// Call at most once per process; promauto panics on duplicate registration.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers collectors against a caller-supplied registerer.
// Tests pass a fresh registry to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cockpit_requests_total",
			Help: "Total API requests by outcome code",
		}, []string{"code"}),
		RequestRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "cockpit_request_retries_total",
			Help: "Total retry attempts across all requests",
		}),
		RequestDurationMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cockpit_request_duration_ms",
			Help:    "API request duration in milliseconds, including retries",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}),
		RefreshAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "cockpit_refresh_total",
			Help: "Total session refresh calls actually issued",
		}),
		RefreshFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cockpit_refresh_failures_total",
			Help: "Total failed session refresh calls",
		}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "cockpit_session_expired_total",
			Help: "Total terminal session expirations",
		}),
		ContextResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cockpit_context_resolutions_total",
			Help: "Total tenant context resolutions by outcome",
		}, []string{"outcome"}),
		UploadsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "cockpit_uploads_total",
			Help: "Total files uploaded",
		}),
		UploadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cockpit_upload_failures_total",
			Help: "Total failed file uploads",
		}),
		RedirectsPlanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cockpit_redirects_planned_total",
			Help: "Total tenant-switch redirects by kind (preserved or home)",
		}, []string{"kind"}),
	}
}
