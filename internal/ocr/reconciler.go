package ocr

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"casedocs/internal/model"
	"casedocs/internal/queue"
	"casedocs/internal/repository"
	"casedocs/internal/storage"
)

var tracer = otel.Tracer("casedocs/ocr")

// ReconcilerConfig bounds the work done for one message.
type ReconcilerConfig struct {
	// MaxDequeueCount moves messages delivered more often than this to the dead letter queue.
	// Zero disables the check.
	MaxDequeueCount int64
	// ResultTimeout bounds fetching the output file of one message.
	ResultTimeout time.Duration
	// MaxResultBytes caps the size of a downloaded output file. Zero disables the cap.
	MaxResultBytes int64
}

// Reconciler applies OCR result messages to the document records.
type Reconciler struct {
	docs       repository.DocumentRepository
	store      storage.Storage
	output     queue.Queue
	deadLetter queue.Sender
	cfg        ReconcilerConfig
	metrics    *Metrics
	log        zerolog.Logger
}

func NewReconciler(
	docs repository.DocumentRepository,
	store storage.Storage,
	output queue.Queue,
	deadLetter queue.Sender,
	cfg ReconcilerConfig,
	metrics *Metrics,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		docs:       docs,
		store:      store,
		output:     output,
		deadLetter: deadLetter,
		cfg:        cfg,
		metrics:    metrics,
		log:        log.With().Str("component", "ocr_reconciler").Logger(),
	}
}

// Handle processes one message. A nil return means the message was deleted from the queue;
// an error means it was left for redelivery.
func (r *Reconciler) Handle(ctx context.Context, msg queue.Message) error {
	ctx, span := tracer.Start(ctx, "ocr.reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("queue.message_id", msg.ID),
		attribute.Int64("queue.dequeue_count", msg.DequeueCount),
	)

	err := r.handle(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.metrics.message(OutcomeLabelRetry)
	}
	return err
}

func (r *Reconciler) handle(ctx context.Context, msg queue.Message) error {
	log := r.log.With().Str("message_id", msg.ID).Int64("dequeue_count", msg.DequeueCount).Logger()

	if r.cfg.MaxDequeueCount > 0 && msg.DequeueCount > r.cfg.MaxDequeueCount {
		return r.deadLetterMessage(ctx, msg, log)
	}

	res, err := DecodeResult(msg.Body)
	if err != nil {
		log.Error().Str("event", "ocr_message_malformed").Err(err).Send()
		return err
	}
	log = log.With().Str("document_id", res.DocumentID).Logger()

	status, raw, outcome, err := r.resolve(ctx, res)
	if err != nil {
		log.Error().Str("event", "ocr_output_check_failed").Err(err).Send()
		return err
	}

	if err := r.docs.UpdateStatus(ctx, res.DocumentID, status, raw); err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusLocked):
			log.Info().Str("event", "ocr_result_ignored").Str("reason", "validated").Send()
			outcome = OutcomeLabelStale
		case errors.Is(err, sql.ErrNoRows):
			log.Warn().Str("event", "ocr_result_ignored").Str("reason", "unknown_document").Send()
			outcome = OutcomeLabelStale
		default:
			log.Error().Str("event", "ocr_status_update_failed").Err(err).Send()
			return err
		}
	}

	if err := r.output.Delete(ctx, msg); err != nil {
		log.Error().Str("event", "ocr_message_delete_failed").Err(err).Send()
		return err
	}

	r.metrics.message(outcome)
	log.Info().
		Str("event", "ocr_message_processed").
		Str("status", status.String()).
		Str("outcome", outcome).
		Send()
	return nil
}

// resolve maps a decoded result to the status and raw data to record.
func (r *Reconciler) resolve(ctx context.Context, res Result) (model.DocumentStatus, *string, string, error) {
	if res.Outcome == OutcomeFailure {
		b, err := json.Marshal(res.Errors)
		if err != nil {
			return 0, nil, "", fmt.Errorf("encode ocr errors: %w", err)
		}
		raw := string(b)
		return model.StatusOCRError, &raw, OutcomeLabelOCRError, nil
	}

	key := res.OutputKey()
	if key == "" {
		return model.StatusOCROutputNotFound, nil, OutcomeLabelOutputNotFound, nil
	}

	if r.cfg.ResultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ResultTimeout)
		defer cancel()
	}

	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return 0, nil, "", fmt.Errorf("check ocr output %s: %w", key, err)
	}
	if !ok {
		return model.StatusOCROutputNotFound, nil, OutcomeLabelOutputNotFound, nil
	}

	rc, _, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.StatusOCROutputNotFound, nil, OutcomeLabelOutputNotFound, nil
		}
		return model.StatusOCROutputDownloadError, nil, OutcomeLabelDownloadError, nil
	}
	defer rc.Close()

	var body io.Reader = rc
	if r.cfg.MaxResultBytes > 0 {
		body = io.LimitReader(rc, r.cfg.MaxResultBytes+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return model.StatusOCROutputDownloadError, nil, OutcomeLabelDownloadError, nil
	}
	if r.cfg.MaxResultBytes > 0 && int64(len(b)) > r.cfg.MaxResultBytes {
		return model.StatusOCROutputDownloadError, nil, OutcomeLabelDownloadError, nil
	}
	raw := string(b)
	return model.StatusOCRCompleted, &raw, OutcomeLabelCompleted, nil
}

func (r *Reconciler) deadLetterMessage(ctx context.Context, msg queue.Message, log zerolog.Logger) error {
	if _, err := r.deadLetter.Send(ctx, msg.Body); err != nil {
		log.Error().Str("event", "ocr_dead_letter_failed").Err(err).Send()
		return fmt.Errorf("forward %s to dead letter queue: %w", msg.ID, err)
	}

	if id := PeekDocumentID(msg.Body); id != "" {
		if err := r.docs.UpdateStatus(ctx, id, model.StatusOCRDeadLetter, nil); err != nil {
			log.Warn().Str("event", "ocr_dead_letter_status_failed").Str("document_id", id).Err(err).Send()
		}
	}

	if err := r.output.Delete(ctx, msg); err != nil {
		log.Error().Str("event", "ocr_message_delete_failed").Err(err).Send()
		return err
	}

	r.metrics.message(OutcomeLabelDeadLetter)
	log.Warn().Str("event", "ocr_message_dead_lettered").Send()
	return nil
}
