package view

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ritzau/knowledge-graph/pkg/logging"
	"github.com/ritzau/knowledge-graph/pkg/render"
)

// DefaultFPS is the frame rate used when none is configured
const DefaultFPS = 60

const rateLogInterval = 3 * time.Second

type request struct {
	fn    func(v *View, now time.Time) error
	reply chan error
}

// Loop owns a View on a single goroutine and drives it once per frame.
// Everything else reaches the view through Do.
type Loop struct {
	view     *View
	clock    clockwork.Clock
	interval time.Duration
	canvas   render.Canvas

	mailbox chan request
	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	lastLog time.Time
}

// NewLoop creates a loop for v. A nil clock uses the real clock.
func NewLoop(v *View, clock clockwork.Clock, fps int) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{
		view:     v,
		clock:    clock,
		interval: time.Second / time.Duration(fps),
		mailbox:  make(chan request),
		done:     make(chan struct{}),
	}
}

// SetCanvas sets the surface painted every frame. It must be called before
// Start; without a canvas frames only simulate.
func (l *Loop) SetCanvas(c render.Canvas) {
	l.canvas = c
}

// Start launches the frame goroutine. A loop can be started once.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return errors.New("render loop already started")
	}
	l.started = true
	ctx, l.cancel = context.WithCancel(ctx)
	ticker := l.clock.NewTicker(l.interval)
	l.lastLog = l.clock.Now()
	go l.run(ctx, ticker)
	logging.Debug("render loop started", "interval", l.interval)
	return nil
}

// Stop cancels the frame timer and waits for the goroutine to exit. A pending
// suggested focus is abandoned.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-l.done
}

func (l *Loop) isStarted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// Run starts the loop and blocks until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Start(ctx); err != nil {
		return err
	}
	<-l.done
	return nil
}

// Done is closed once the loop has stopped
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run(ctx context.Context, ticker clockwork.Ticker) {
	defer close(l.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.view.CancelFocus()
			logging.Debug("render loop stopped")
			return
		case req := <-l.mailbox:
			req.reply <- req.fn(l.view, l.clock.Now())
		case now := <-ticker.Chan():
			l.view.Frame(now, l.canvas)
			l.logRate(now)
		}
	}
}

func (l *Loop) logRate(now time.Time) {
	elapsed := now.Sub(l.lastLog)
	if elapsed < rateLogInterval {
		return
	}
	s := l.view.takeStats()
	logging.Debug("frame rate",
		"fps", math.Round(float64(s.frames)/elapsed.Seconds()),
		"nodePaints", s.nodePaints,
		"edgePaints", s.edgePaints,
	)
	l.lastLog = now
}

// Do runs fn on the loop goroutine between frames and returns its error
func (l *Loop) Do(ctx context.Context, fn func(v *View, now time.Time) error) error {
	if !l.isStarted() {
		return ErrLoopStopped
	}
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case l.mailbox <- req:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
