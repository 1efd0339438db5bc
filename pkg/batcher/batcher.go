package batcher

import (
	"context"
	"strings"
	"sync"
	"time"

	"certpipe/pkg/metrics"

	log "github.com/sirupsen/logrus"
)

// separator ends every accumulated alert
const separator = "\n\n"

// drainTimeout bounds the last delivery made on shutdown
const drainTimeout = 10 * time.Second

// Notifier delivers a batch of alerts
type Notifier interface {
	Name() string
	Notify(ctx context.Context, text string) error
}

// Batcher groups alert texts and sends them to its notifiers every interval
type Batcher struct {
	mu        sync.Mutex
	buffer    strings.Builder
	interval  time.Duration
	notifiers []Notifier
	log       *log.Logger
}

// New returns a Batcher flushing to notifiers every interval
func New(interval time.Duration, logger *log.Logger, notifiers ...Notifier) *Batcher {
	return &Batcher{
		interval:  interval,
		notifiers: notifiers,
		log:       logger,
	}
}

// Enabled reports whether any notifier is registered
func (b *Batcher) Enabled() bool {
	return len(b.notifiers) > 0
}

// Accumulate appends text to the pending batch
func (b *Batcher) Accumulate(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer.WriteString(text)
	b.buffer.WriteString(separator)
}

// Flush empties the pending batch and returns it, "" if there was nothing to send
func (b *Batcher) Flush() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := b.buffer.String()
	b.buffer.Reset()
	return msg
}

// Run flushes every interval until ctx is done, then delivers what is left
func (b *Batcher) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			b.send(drainCtx)
			cancel()
			return
		case <-ticker.C:
			b.send(ctx)
		}
	}
}

// send flushes and hands the batch to every notifier, outside of the lock
func (b *Batcher) send(ctx context.Context) {
	msg := b.Flush()
	if msg == "" {
		return
	}
	metrics.FlushesTotal.Inc()
	for _, n := range b.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			metrics.SinkErrorsTotal.WithLabelValues(n.Name()).Inc()
			b.log.Errorf("Message failed to post to %s: %v", n.Name(), err)
			continue
		}
		b.log.Debugf("Message posted to %s", n.Name())
	}
	b.log.Infof("The following alert message was sent:\n\n%s", msg)
}
