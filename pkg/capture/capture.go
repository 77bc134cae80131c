// Package capture drives the multi-shot photo session: acquire the
// camera, count down, grab, filter, settle, repeat. The sequencer owns
// the device lifecycle; whatever path a session takes, the camera is
// released exactly once.
package capture

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lumabooth/luma/pkg/filter"
)

// Session states.
type State int

const (
	Idle State = iota
	RequestingDevice
	Live
	CountingDown
	Shuttering
	Captured
	Finished
	Failed
	Canceled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RequestingDevice:
		return "requesting-device"
	case Live:
		return "live"
	case CountingDown:
		return "counting-down"
	case Shuttering:
		return "shuttering"
	case Captured:
		return "captured"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Resolution is the capture hint passed to the device.
type Resolution struct {
	Width  int
	Height int
}

// DefaultResolution matches the original getUserMedia constraints.
var DefaultResolution = Resolution{Width: 1280, Height: 720}

// FrameSource abstracts the camera. Acquire may prompt for permission;
// a denial surfaces as an error and is never retried. Grab returns the
// current frame. Release frees the device.
type FrameSource interface {
	Acquire(ctx context.Context, hint Resolution) error
	Grab() (*filter.Buffer, error)
	Release() error
}

// Clock abstracts timer waits so tests never sleep.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock is the wall-clock implementation.
var RealClock Clock = realClock{}

// Event kinds published for decorative observers.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventCountdownTick
	EventShutter
	EventShotCaptured
	EventReleased
)

// Event is one observable moment in a session. Shot is 1-based; Tick
// counts down toward the shutter.
type Event struct {
	Kind  EventKind
	State State
	Shot  int
	Tick  int
}

// Shot is one captured, filtered frame.
type Shot struct {
	Index int // 1-based
	Frame *filter.Buffer
}

// Options tunes a session. Zero values fall back to the booth defaults.
type Options struct {
	Shots          int           // default 4
	CountdownTicks int           // default 3
	TickInterval   time.Duration // default 1s
	SettleDelay    time.Duration // default 500ms
	ShotGap        time.Duration // default 1s
	Filter         filter.Name   // empty means no grading
	Hint           Resolution    // default 1280x720
	Rng            *rand.Rand    // grain noise source, nil for shared
}

func (o *Options) fillDefaults() {
	if o.Shots <= 0 {
		o.Shots = 4
	}
	if o.CountdownTicks <= 0 {
		o.CountdownTicks = 3
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 500 * time.Millisecond
	}
	if o.ShotGap <= 0 {
		o.ShotGap = time.Second
	}
	if o.Hint.Width <= 0 || o.Hint.Height <= 0 {
		o.Hint = DefaultResolution
	}
}

// ErrCanceled reports a session torn down before it finished.
var ErrCanceled = errors.New("capture: session canceled")

// Sequencer runs capture sessions. One session at a time.
type Sequencer struct {
	source FrameSource
	clock  Clock
	log    *zap.Logger

	mu    sync.Mutex
	state State

	events chan Event
}

// NewSequencer wires a sequencer to a frame source. A nil clock gets
// the wall clock; a nil logger is silenced.
func NewSequencer(source FrameSource, clock Clock, log *zap.Logger) *Sequencer {
	if clock == nil {
		clock = RealClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sequencer{
		source: source,
		clock:  clock,
		log:    log,
		state:  Idle,
		events: make(chan Event, 64),
	}
}

// Events exposes the observer stream. Sends never block the session;
// a slow observer loses events rather than stalling a countdown.
func (s *Sequencer) Events() <-chan Event { return s.events }

// State returns the current session state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.emit(Event{Kind: EventStateChanged, State: st})
}

func (s *Sequencer) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// Run executes one full session and returns the captured shots.
// Cancellation via ctx returns the shots taken so far with ErrCanceled.
// The device is released exactly once on every path out of this method.
func (s *Sequencer) Run(ctx context.Context, opts Options) ([]Shot, error) {
	opts.fillDefaults()

	s.setState(RequestingDevice)
	if err := s.source.Acquire(ctx, opts.Hint); err != nil {
		s.setState(Failed)
		s.log.Warn("device acquisition failed", zap.Error(err))
		return nil, fmt.Errorf("acquiring device: %w", err)
	}

	var releaseOnce sync.Once
	release := func() {
		releaseOnce.Do(func() {
			if err := s.source.Release(); err != nil {
				s.log.Warn("device release failed", zap.Error(err))
			}
			s.emit(Event{Kind: EventReleased})
		})
	}
	defer release()

	s.setState(Live)
	s.log.Info("session started",
		zap.Int("shots", opts.Shots),
		zap.String("filter", string(opts.Filter)))

	var shots []Shot
	for n := 1; n <= opts.Shots; n++ {
		s.setState(CountingDown)
		for tick := opts.CountdownTicks; tick >= 1; tick-- {
			if err := s.wait(ctx, opts.TickInterval); err != nil {
				s.setState(Canceled)
				return shots, err
			}
			s.emit(Event{Kind: EventCountdownTick, State: CountingDown, Shot: n, Tick: tick})
		}

		s.setState(Shuttering)
		s.emit(Event{Kind: EventShutter, State: Shuttering, Shot: n})

		frame, err := s.source.Grab()
		if err != nil {
			s.setState(Failed)
			return shots, fmt.Errorf("grabbing shot %d: %w", n, err)
		}
		if opts.Filter != "" {
			filter.ApplyWithRand(frame, opts.Filter, opts.Rng)
		}
		shots = append(shots, Shot{Index: n, Frame: frame})

		s.setState(Captured)
		s.emit(Event{Kind: EventShotCaptured, State: Captured, Shot: n})

		if err := s.wait(ctx, opts.SettleDelay); err != nil {
			s.setState(Canceled)
			return shots, err
		}
		if n < opts.Shots {
			if err := s.wait(ctx, opts.ShotGap); err != nil {
				s.setState(Canceled)
				return shots, err
			}
		}
	}

	release()
	s.setState(Finished)
	s.log.Info("session finished", zap.Int("captured", len(shots)))
	return shots, nil
}

func (s *Sequencer) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
	case <-s.clock.After(d):
		return nil
	}
}
