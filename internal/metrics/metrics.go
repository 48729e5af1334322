package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CreatePledgeDuration tracks the latency of pledge requests, including persistence
	CreatePledgeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "crowdfund_pledge_duration_seconds",
			Help: "Duration of pledge requests in seconds",
			Buckets: []float64{
				0.0005, // 0.5ms
				0.001,  // 1ms
				0.005,  // 5ms
				0.01,   // 10ms
				0.025,  // 25ms
				0.05,   // 50ms
				0.1,    // 100ms
				0.25,   // 250ms
				0.5,    // 500ms
				1.0,    // 1s
			},
		},
		[]string{"outcome"}, // success, rejected or error
	)

	// PledgesTotal counts recorded pledges by outcome
	PledgesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdfund_pledges_total",
			Help: "Number of pledges recorded, by outcome",
		},
		[]string{"outcome"},
	)

	// MalformedFieldsTotal counts fields that were defaulted or padded while loading
	MalformedFieldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdfund_load_malformed_fields_total",
			Help: "Number of malformed fields tolerated while loading storage files",
		},
		[]string{"file"},
	)
)

// RecordCreatePledgeDuration records the duration of a pledge request
func RecordCreatePledgeDuration(outcome string, duration float64) {
	CreatePledgeDuration.WithLabelValues(outcome).Observe(duration)
}

// RecordPledge counts one recorded pledge
func RecordPledge(outcome string) {
	PledgesTotal.WithLabelValues(outcome).Inc()
}

// RecordMalformedFields counts n tolerated fields in file
func RecordMalformedFields(file string, n int) {
	if n <= 0 {
		return
	}
	MalformedFieldsTotal.WithLabelValues(file).Add(float64(n))
}
