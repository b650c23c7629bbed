package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adcslab/sunvector/pkg/sunsensor"
)

var (
	samplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sunvector_samples_total",
			Help: "Total number of sun sensor poll cycles.",
		},
	)

	channelReadFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunvector_channel_read_failures_total",
			Help: "Total failed photoresistor channel reads.",
		},
		[]string{"channel"},
	)

	publishErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunvector_publish_errors_total",
			Help: "Total output publish failures.",
		},
		[]string{"output"},
	)

	lightVector = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sunvector_light_vector",
			Help: "Latest light vector component in body coordinates.",
		},
		[]string{"axis"},
	)

	confidence = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sunvector_confidence",
			Help: "Confidence of the latest light vector estimate.",
		},
	)
)

func init() {
	prometheus.MustRegister(samplesTotal)
	prometheus.MustRegister(channelReadFailures)
	prometheus.MustRegister(publishErrors)
	prometheus.MustRegister(lightVector)
	prometheus.MustRegister(confidence)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSample updates the gauges and counters for one poll cycle.
func RecordSample(vec sunsensor.LightVector, readings []sunsensor.Reading) {
	samplesTotal.Inc()
	lightVector.WithLabelValues("x").Set(vec.X)
	lightVector.WithLabelValues("y").Set(vec.Y)
	lightVector.WithLabelValues("z").Set(vec.Z)
	confidence.Set(vec.Confidence)
	for _, r := range readings {
		if !r.OK {
			channelReadFailures.WithLabelValues(strconv.Itoa(r.Channel)).Inc()
		}
	}
}

// RecordPublishError counts a failed publish for the named output.
func RecordPublishError(output string) {
	publishErrors.WithLabelValues(output).Inc()
}
