package ocr

import "github.com/prometheus/client_golang/prometheus"

// Message outcomes recorded by the reconciler.
const (
	OutcomeLabelCompleted      = "completed"
	OutcomeLabelOCRError       = "ocr_error"
	OutcomeLabelOutputNotFound = "output_not_found"
	OutcomeLabelDownloadError  = "output_download_error"
	OutcomeLabelDeadLetter     = "dead_letter"
	OutcomeLabelStale          = "stale"
	OutcomeLabelRetry          = "retry"
)

// Metrics holds the OCR pipeline counters.
type Metrics struct {
	pollCycles *prometheus.CounterVec
	messages   *prometheus.CounterVec
	enqueues   *prometheus.CounterVec
}

// NewMetrics registers the OCR counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		pollCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_poll_cycles_total",
				Help: "Output queue poll cycles, by result.",
			},
			[]string{"result"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_messages_total",
				Help: "OCR result messages handled, by outcome.",
			},
			[]string{"outcome"},
		),
		enqueues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_enqueues_total",
				Help: "OCR job submissions, by result.",
			},
			[]string{"result"},
		),
	}
	for _, c := range []prometheus.Collector{m.pollCycles, m.messages, m.enqueues} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// A nil *Metrics is valid and records nothing.

func (m *Metrics) pollCycle(result string) {
	if m != nil {
		m.pollCycles.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) message(outcome string) {
	if m != nil {
		m.messages.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) enqueue(result string) {
	if m != nil {
		m.enqueues.WithLabelValues(result).Inc()
	}
}
