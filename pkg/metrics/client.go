package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records calls made to the video API. A nil *ClientMetrics is
// valid and records nothing.
type ClientMetrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	uploadBytes prometheus.Counter
	uploads     *prometheus.CounterVec
}

func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return nil
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jutjub_api_requests_total",
		Help: "Requests sent to the video API by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jutjub_api_request_duration_seconds",
		Help:    "Latency of video API requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	uploadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jutjub_upload_bytes_total",
		Help: "Bytes streamed to the upload endpoint.",
	})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jutjub_uploads_total",
		Help: "Upload submissions by terminal status.",
	}, []string{"status"})
	reg.MustRegister(requests, duration, uploadBytes, uploads)
	return &ClientMetrics{
		requests:    requests,
		duration:    duration,
		uploadBytes: uploadBytes,
		uploads:     uploads,
	}
}

func (m *ClientMetrics) ObserveRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	m.requests.WithLabelValues(endpoint, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *ClientMetrics) AddUploadBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.uploadBytes.Add(float64(n))
}

func (m *ClientMetrics) IncUpload(status string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return "unknown"
	}
	return v
}
