package tracker

import "github.com/prometheus/client_golang/prometheus"

var (
	eventCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "presence",
		Subsystem: "tracker",
		Name:      "events_total",
		Help:      "Number of provider events handled, by kind.",
	}, []string{"kind"})

	storeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "presence",
		Subsystem: "tracker",
		Name:      "store_errors_total",
		Help:      "Number of repository failures, by operation.",
	}, []string{"op"})

	droppedSampleCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "presence",
		Subsystem: "tracker",
		Name:      "samples_dropped_total",
		Help:      "Number of buffered samples discarded after a failed flush.",
	})

	bufferedSampleGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "presence",
		Subsystem: "tracker",
		Name:      "samples_buffered",
		Help:      "Samples currently held in the in-memory buffer.",
	})
)

func init() {
	prometheus.MustRegister(eventCounter, storeErrorCounter, droppedSampleCounter, bufferedSampleGauge)
}

func recordEvent(kind string) {
	eventCounter.WithLabelValues(kind).Inc()
}

func recordStoreError(op string) {
	storeErrorCounter.WithLabelValues(op).Inc()
}

func recordDroppedSamples(n int) {
	droppedSampleCounter.Add(float64(n))
}

func recordBufferedSamples(n int) {
	bufferedSampleGauge.Set(float64(n))
}
