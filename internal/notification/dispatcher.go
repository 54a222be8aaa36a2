package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultQueueSize = 64

// Dispatcher decouples notification delivery from the ledger commit path.
// Messages are enqueued after commit and delivered by a single background
// worker; delivery failures are logged and never propagate to the caller.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
	queue    chan Message

	closeOnce sync.Once
	done      chan struct{}
}

// NewDispatcher starts the delivery worker.
func NewDispatcher(notifier Notifier, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan Message, defaultQueueSize),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue hands a message to the worker without blocking. A full queue drops
// the message; notifications are best-effort.
func (d *Dispatcher) Enqueue(message Message) {
	select {
	case d.queue <- message:
	default:
		d.logger.Warn("notification queue full, dropping message",
			"kind", message.Kind, "destination", message.Destination)
	}
}

// Close stops accepting messages and drains what is already queued.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for message := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.notifier.Send(ctx, message); err != nil {
			d.logger.Warn("notification delivery failed",
				"kind", message.Kind, "destination", message.Destination, "error", err)
		}
		cancel()
	}
}
