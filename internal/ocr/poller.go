package ocr

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"casedocs/internal/queue"
)

// Handler processes a single received message.
type Handler interface {
	Handle(ctx context.Context, msg queue.Message) error
}

// PollerConfig sets the poll schedule.
type PollerConfig struct {
	// Interval is the pause between the end of one cycle and the start of the next.
	Interval  time.Duration
	BatchSize int
}

// Poller drains the OCR output queue on a fixed delay. One goroutine, one message at a time.
type Poller struct {
	queue   queue.Queue
	handler Handler
	cfg     PollerConfig
	metrics *Metrics
	log     zerolog.Logger
	after   func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller builds a poller. Nothing runs until Start.
func NewPoller(q queue.Queue, h Handler, cfg PollerConfig, metrics *Metrics, log zerolog.Logger) *Poller {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	return &Poller{
		queue:   q,
		handler: h,
		cfg:     cfg,
		metrics: metrics,
		log:     log.With().Str("component", "ocr_poller").Logger(),
		after:   time.After,
	}
}

// Start runs a cycle immediately and then keeps polling in the background until Stop is
// called or ctx is done. Calling Start on a running poller does nothing. A poller whose
// ctx ended can be started again.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	p.log.Info().
		Str("event", "ocr_poller_started").
		Dur("interval", p.cfg.Interval).
		Int("batch_size", p.cfg.BatchSize).
		Send()

	go p.loop(ctx, done)
}

// Stop cancels the pending wake-up and waits for an in-flight cycle to finish.
// Stop on a stopped poller returns immediately.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.log.Info().Str("event", "ocr_poller_stopped").Send()
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer p.release(done)
	for {
		// in-flight work is allowed to finish after Stop
		p.RunOnce(context.WithoutCancel(ctx))

		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-p.after(p.cfg.Interval):
		}
	}
}

// release clears the run handle if it still belongs to the loop that owns done.
func (p *Poller) release(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != done {
		return
	}
	p.cancel()
	p.cancel, p.done = nil, nil
}

// RunOnce receives one batch and hands each message to the handler in order.
// It reports how many messages were received.
func (p *Poller) RunOnce(ctx context.Context) int {
	msgs, err := p.queue.Receive(ctx, p.cfg.BatchSize)
	if err != nil {
		p.metrics.pollCycle("error")
		p.log.Error().Str("event", "ocr_queue_receive_failed").Err(err).Send()
		return 0
	}
	p.metrics.pollCycle("ok")
	if len(msgs) == 0 {
		p.log.Debug().Str("event", "ocr_queue_empty").Send()
		return 0
	}

	failed := 0
	for _, m := range msgs {
		if err := p.handler.Handle(ctx, m); err != nil {
			failed++
		}
	}
	p.log.Info().
		Str("event", "ocr_poll_cycle").
		Int("received", len(msgs)).
		Int("failed", failed).
		Send()
	return len(msgs)
}
