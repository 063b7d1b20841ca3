package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification outcome labels.
const (
	OutcomeApproved    = "approved"
	OutcomePending     = "pending"
	OutcomeDuplicate   = "duplicate"
	OutcomeUnavailable = "unavailable"
)

var (
	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportx_document_verifications_total",
		Help: "Document verification attempts by outcome.",
	}, []string{"outcome"})

	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportx_text_extraction_duration_seconds",
		Help:    "Wall time of the OCR/text-extraction step.",
		Buckets: prometheus.DefBuckets,
	})
)
