package watcher

import (
	"context"
	"time"

	"github.com/ritzau/knowledge-graph/pkg/logging"
)

// Debouncer batches rapid file system events so a burst of saves causes a
// single reload
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// run flushes after quietPeriod without events, or maxWait after the first
// event of a burst, whichever comes first
func (d *Debouncer) run(ctx context.Context) {
	quiet := time.NewTimer(d.quietPeriod)
	stopTimer(quiet)
	deadline := time.NewTimer(d.maxWait)
	stopTimer(deadline)

	accumulated := make(map[ChangeType][]string)
	eventCount := 0

	flush := func() {
		stopTimer(quiet)
		stopTimer(deadline)
		if eventCount == 0 {
			return
		}
		logging.Debug("flushing accumulated events", "count", eventCount)

		// A removal that is followed by a write in the same burst is an
		// atomic save, so writes win
		switch {
		case len(accumulated[ChangeTypeWritten]) > 0:
			d.output <- ChangeEvent{Type: ChangeTypeWritten, Paths: accumulated[ChangeTypeWritten], Timestamp: time.Now()}
		case len(accumulated[ChangeTypeRemoved]) > 0:
			d.output <- ChangeEvent{Type: ChangeTypeRemoved, Paths: accumulated[ChangeTypeRemoved], Timestamp: time.Now()}
		}

		accumulated = make(map[ChangeType][]string)
		eventCount = 0
	}

	defer close(d.output)

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			if eventCount == 0 {
				deadline.Reset(d.maxWait)
			}
			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			stopTimer(quiet)
			quiet.Reset(d.quietPeriod)

		case <-quiet.C:
			flush()

		case <-deadline.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
