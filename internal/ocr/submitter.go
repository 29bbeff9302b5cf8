package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"casedocs/internal/model"
	"casedocs/internal/queue"
)

// SubmitterConfig controls what goes into a job and how hard Submit tries.
type SubmitterConfig struct {
	StorageType string
	FormVersion string
	// Retries is the number of extra attempts after the first failed send.
	Retries    int
	RetryDelay time.Duration
}

// Submitter places OCR jobs on the input queue.
type Submitter struct {
	queue   queue.Sender
	cfg     SubmitterConfig
	metrics *Metrics
	log     zerolog.Logger
	sleep   func(context.Context, time.Duration) error
}

func NewSubmitter(q queue.Sender, cfg SubmitterConfig, metrics *Metrics, log zerolog.Logger) *Submitter {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Submitter{
		queue:   q,
		cfg:     cfg,
		metrics: metrics,
		log:     log.With().Str("component", "ocr_submitter").Logger(),
		sleep:   sleepCtx,
	}
}

// Submit sends one job for a stored document. It must only be called once the record and
// the file both exist.
func (s *Submitter) Submit(ctx context.Context, doc model.Document, subject model.Subject) error {
	job := NewJobDescriptor(doc, subject, s.cfg.StorageType, s.cfg.FormVersion)
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode ocr job: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
				break
			}
		}
		id, err := s.queue.Send(ctx, body)
		if err == nil {
			s.metrics.enqueue("ok")
			s.log.Info().
				Str("event", "ocr_job_enqueued").
				Str("document_id", doc.ID).
				Str("message_id", id).
				Int("attempt", attempt+1).
				Send()
			return nil
		}
		lastErr = err
		s.log.Warn().
			Str("event", "ocr_enqueue_attempt_failed").
			Str("document_id", doc.ID).
			Int("attempt", attempt+1).
			Err(err).
			Send()
	}

	s.metrics.enqueue("error")
	return fmt.Errorf("enqueue ocr job for %s: %w", doc.ID, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
