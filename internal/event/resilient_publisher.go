package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

var errPublisherClosed = errors.New("publisher is shut down")

type retryItem struct {
	event   Event
	attempt int
	lastErr error
}

// ResilientPublisher wraps a Bus with exponential-backoff retries and a
// dead-letter file for events that never make it.
type ResilientPublisher struct {
	bus        Bus
	maxRetries int
	baseDelay  time.Duration
	deadLetter *DeadLetterWriter

	queue chan retryItem
	quit  chan struct{}
	done  chan struct{}

	mu      sync.Mutex
	closed  bool
	nextKey uint64
	timers  map[uint64]*pendingRetry
}

type pendingRetry struct {
	timer *time.Timer
	item  retryItem
}

// NewResilientPublisher creates a publisher and starts its retry worker
func NewResilientPublisher(bus Bus, maxRetries int, baseDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dlw, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}
	rp := &ResilientPublisher{
		bus:        bus,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		deadLetter: dlw,
		queue:      make(chan retryItem, RetryQueueBufferSize),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		timers:     make(map[uint64]*pendingRetry),
	}
	go rp.worker()
	return rp, nil
}

// PublishWithRetry publishes synchronously once and hands failures to the retry worker.
// It never blocks on retries and never returns an error to gameplay code.
func (rp *ResilientPublisher) PublishWithRetry(ctx context.Context, evt Event) {
	err := rp.bus.Publish(ctx, evt)
	if err == nil {
		return
	}
	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed, "event_type", evt.Type, "error", err)
	rp.schedule(retryItem{event: evt, attempt: 1, lastErr: err})
}

// schedule arms a backoff timer that enqueues the item when it fires
func (rp *ResilientPublisher) schedule(item retryItem) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.closed {
		rp.writeDeadLetter(item, errPublisherClosed)
		return
	}
	rp.nextKey++
	key := rp.nextKey
	delay := CalculateRetryDelay(rp.baseDelay, item.attempt)
	rp.timers[key] = &pendingRetry{item: item, timer: time.AfterFunc(delay, func() { rp.fire(key) })}
}

func (rp *ResilientPublisher) fire(key uint64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	pending, ok := rp.timers[key]
	delete(rp.timers, key)
	if !ok || rp.closed {
		return
	}

	// non-blocking so the lock is never held across a wait
	select {
	case rp.queue <- pending.item:
	default:
		logger.Warn(LogMsgRetryQueueFull, "event_type", pending.item.event.Type)
		rp.writeDeadLetter(pending.item, pending.item.lastErr)
	}
}

func (rp *ResilientPublisher) worker() {
	defer close(rp.done)
	for {
		select {
		case <-rp.quit:
			rp.drain()
			return
		case item := <-rp.queue:
			rp.retry(item)
		}
	}
}

func (rp *ResilientPublisher) retry(item retryItem) {
	err := rp.bus.Publish(context.Background(), item.event)
	if err == nil {
		logger.Info(LogMsgEventRetrySucceeded, "event_type", item.event.Type, "attempt", item.attempt)
		return
	}
	item.lastErr = err
	if item.attempt >= rp.maxRetries {
		logger.Warn(LogMsgEventRetryExhausted, "event_type", item.event.Type, "attempts", item.attempt)
		rp.writeDeadLetter(item, err)
		return
	}
	item.attempt++
	logger.Debug(LogMsgEventRetryFailed, "event_type", item.event.Type, "next_attempt", item.attempt)
	rp.schedule(item)
}

func (rp *ResilientPublisher) drain() {
	for {
		select {
		case item := <-rp.queue:
			rp.writeDeadLetter(item, errPublisherClosed)
		default:
			return
		}
	}
}

func (rp *ResilientPublisher) writeDeadLetter(item retryItem, err error) {
	if werr := rp.deadLetter.Write(item.event, item.attempt, err); werr != nil {
		logger.Error(LogMsgDeadLetterWriteFailed, "event_type", item.event.Type, "error", werr)
	}
}

// Shutdown stops pending retries, dead-letters everything still queued and
// closes the dead-letter file.
func (rp *ResilientPublisher) Shutdown(ctx context.Context) error {
	rp.mu.Lock()
	if rp.closed {
		rp.mu.Unlock()
		return nil
	}
	rp.closed = true
	for key, pending := range rp.timers {
		if pending.timer.Stop() {
			rp.writeDeadLetter(pending.item, errPublisherClosed)
		}
		delete(rp.timers, key)
	}
	rp.mu.Unlock()

	close(rp.quit)
	select {
	case <-rp.done:
		logger.Info(LogMsgQueueDrainedShutdown)
	case <-ctx.Done():
		logger.Warn(LogMsgShutdownTimeout)
		return ctx.Err()
	}
	return rp.deadLetter.Close()
}
