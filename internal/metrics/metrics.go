package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "alohomora"

var (
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_submissions_total",
		Help:      "Form submissions handled, by form and outcome status.",
	}, []string{"form", "status"})

	apiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Latency of calls to the loan API, by operation and HTTP status (0 on transport failure).",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})

	directorySize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "borrower_directory_size",
		Help:      "Borrowers in the last fetched directory.",
	})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Submission events handed to the publisher, by result.",
	}, []string{"result"})
)

// ObserveSubmission counts a controller outcome.
func ObserveSubmission(form, status string) {
	submissions.WithLabelValues(form, status).Inc()
}

// ObserveAPICall records the latency of an API call.
func ObserveAPICall(operation string, status int, took time.Duration) {
	apiDuration.WithLabelValues(operation, strconv.Itoa(status)).Observe(took.Seconds())
}

// SetDirectorySize reports the size of the borrower directory.
func SetDirectorySize(n int) {
	directorySize.Set(float64(n))
}

// ObserveEvent counts a publish attempt.
func ObserveEvent(err error) {
	if err != nil {
		eventsPublished.WithLabelValues("error").Inc()
		return
	}
	eventsPublished.WithLabelValues("ok").Inc()
}

// Submissions exposes the submissions counter for tests.
func Submissions() *prometheus.CounterVec {
	return submissions
}
