package definitions

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Image resolution outcomes.
const (
	imageResultFound            = "found"
	imageResultNoImage          = "no_image"
	imageResultNotFound         = "not_found"
	imageResultConsistencyFault = "consistency_fault"
	imageResultError            = "error"
)

// Metrics provides observability for outcome definition reads.
type Metrics struct {
	GetDuration      prometheus.Histogram
	ImageResolutions *prometheus.CounterVec
	ImageBytes       prometheus.Histogram
	DeprecatedCalls  *prometheus.CounterVec
}

// NewMetrics creates the definition metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GetDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "outcome_definition_get_duration_seconds",
			Help:    "Duration of outcome definition Get operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ImageResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "outcome_definition_image_resolutions_total",
			Help: "Outcome definition image lookups by result",
		}, []string{"result"}),
		ImageBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "outcome_definition_image_bytes",
			Help:    "Size of resolved outcome definition images",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		DeprecatedCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "outcome_definition_deprecated_calls_total",
			Help: "Calls to deprecated outcome type operations",
		}, []string{"operation"}),
	}
}

// ObserveGet records the duration of a Get operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveGet(start time.Time) {
	m.GetDuration.Observe(time.Since(start).Seconds())
}

// IncrementImageResolution records the result of one GetImage call.
func (m *Metrics) IncrementImageResolution(result string) {
	m.ImageResolutions.WithLabelValues(result).Inc()
}

// ObserveImageBytes records the size of a resolved image.
func (m *Metrics) ObserveImageBytes(n int) {
	m.ImageBytes.Observe(float64(n))
}

// IncrementDeprecatedCall records a call to a deprecated operation.
func (m *Metrics) IncrementDeprecatedCall(operation string) {
	m.DeprecatedCalls.WithLabelValues(operation).Inc()
}
