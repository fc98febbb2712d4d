package events

import (
	"time"

	"fluxcrm/metamorph/internal/logging"
)

// Dispatcher buffers events on a channel and fans them out to the
// configured emitters from a single worker goroutine. When the buffer is
// full the event is dropped with a warning; the engine never blocks on
// audit delivery.
type Dispatcher struct {
	queue    chan Event
	emitters []Emitter
	done     chan struct{}
}

// Emitter delivers one event to a concrete backend. Errors are logged by
// the dispatcher, not returned to producers.
type Emitter interface {
	Deliver(event Event) error
}

// Ensure Dispatcher implements Sink
var _ Sink = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher with the given buffer size and emitters.
func NewDispatcher(bufferSize int, emitters ...Emitter) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Dispatcher{
		queue:    make(chan Event, bufferSize),
		emitters: emitters,
		done:     make(chan struct{}),
	}
}

// Emit enqueues an event without blocking.
func (d *Dispatcher) Emit(event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	select {
	case d.queue <- event:
	default:
		logging.Warn("Event queue full, dropping event",
			"type", event.Type,
			"tenant_id", event.TenantID,
		)
	}
}

// Run drains the queue until Stop is called. Intended to run in its own
// goroutine.
func (d *Dispatcher) Run() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.done:
			// Drain whatever is left before exiting.
			for {
				select {
				case event := <-d.queue:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

// Stop signals the worker to drain and exit.
func (d *Dispatcher) Stop() {
	close(d.done)
}

func (d *Dispatcher) deliver(event Event) {
	for _, e := range d.emitters {
		if err := e.Deliver(event); err != nil {
			logging.Warn("Event delivery failed",
				"type", event.Type,
				"tenant_id", event.TenantID,
				"error", err.Error(),
			)
		}
	}
}
