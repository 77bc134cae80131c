package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lumabooth/luma/pkg/filter"
)

// fakeSource hands out solid white frames and counts lifecycle calls.
type fakeSource struct {
	mu         sync.Mutex
	acquires   int
	releases   int
	grabs      int
	acquireErr error
	grabErr    error
}

func (f *fakeSource) Acquire(ctx context.Context, hint Resolution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	return f.acquireErr
}

func (f *fakeSource) Grab() (*filter.Buffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grabErr != nil {
		return nil, f.grabErr
	}
	f.grabs++
	b := filter.NewBuffer(4, 4)
	for i := range b.Pix {
		b.Pix[i] = 255
	}
	return b, nil
}

func (f *fakeSource) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
	return nil
}

func (f *fakeSource) counts() (acquires, releases, grabs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acquires, f.releases, f.grabs
}

// instantClock fires every wait immediately and records the schedule.
type instantClock struct {
	mu        sync.Mutex
	durations []time.Duration
	cancelAt  int // 1-based wait index to cancel at, 0 = never
	cancel    context.CancelFunc
}

func (c *instantClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.durations = append(c.durations, d)
	n := len(c.durations)
	c.mu.Unlock()

	if c.cancelAt > 0 && n == c.cancelAt {
		c.cancel()
		return make(chan time.Time) // never fires; ctx.Done wins the select
	}
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func (c *instantClock) schedule() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.durations))
	copy(out, c.durations)
	return out
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestFullSessionCapturesFourShots(t *testing.T) {
	src := &fakeSource{}
	clk := &instantClock{}
	seq := NewSequencer(src, clk, nil)

	shots, err := seq.Run(context.Background(), Options{Filter: filter.GoldenHour})
	if err != nil {
		t.Fatal(err)
	}
	if len(shots) != 4 {
		t.Fatalf("want 4 shots, got %d", len(shots))
	}
	for i, shot := range shots {
		if shot.Index != i+1 {
			t.Errorf("shot %d has index %d", i, shot.Index)
		}
		// white frame through golden-hour: blue channel drops to 191
		if shot.Frame.Pix[2] != 191 {
			t.Errorf("shot %d not filtered: blue=%d", i, shot.Frame.Pix[2])
		}
	}
	if seq.State() != Finished {
		t.Errorf("want Finished, got %v", seq.State())
	}

	acquires, releases, grabs := src.counts()
	if acquires != 1 || releases != 1 || grabs != 4 {
		t.Errorf("lifecycle: acquires=%d releases=%d grabs=%d", acquires, releases, grabs)
	}
}

func TestSessionSchedule(t *testing.T) {
	src := &fakeSource{}
	clk := &instantClock{}
	seq := NewSequencer(src, clk, nil)

	if _, err := seq.Run(context.Background(), Options{Shots: 2}); err != nil {
		t.Fatal(err)
	}

	// per shot: 3 countdown ticks at 1s, then 500ms settle;
	// a 1s gap between shots only.
	want := []time.Duration{
		time.Second, time.Second, time.Second, 500 * time.Millisecond, time.Second,
		time.Second, time.Second, time.Second, 500 * time.Millisecond,
	}
	got := clk.schedule()
	if len(got) != len(want) {
		t.Fatalf("want %d waits, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("wait %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestCancelAfterSecondShot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{}
	// waits 1-5 cover shot 1, waits 6-8 the countdown of shot 2,
	// wait 9 is shot 2's settle: cancel there.
	clk := &instantClock{cancelAt: 9, cancel: cancel}
	seq := NewSequencer(src, clk, nil)

	shots, err := seq.Run(ctx, Options{})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("want ErrCanceled, got %v", err)
	}
	if len(shots) != 2 {
		t.Fatalf("want 2 shots before cancel, got %d", len(shots))
	}
	if seq.State() != Canceled {
		t.Errorf("want Canceled, got %v", seq.State())
	}

	_, releases, grabs := src.counts()
	if releases != 1 {
		t.Errorf("device released %d times, want exactly 1", releases)
	}
	if grabs != 2 {
		t.Errorf("want 2 grabs, got %d", grabs)
	}

	released, thirdCountdown := 0, 0
	for _, ev := range drain(seq.Events()) {
		if ev.Kind == EventReleased {
			released++
		}
		if ev.Kind == EventCountdownTick && ev.Shot == 3 {
			thirdCountdown++
		}
	}
	if released != 1 {
		t.Errorf("want exactly 1 release event, got %d", released)
	}
	if thirdCountdown != 0 {
		t.Errorf("third countdown ran %d ticks after cancel", thirdCountdown)
	}
}

func TestAcquireDenied(t *testing.T) {
	src := &fakeSource{acquireErr: errors.New("permission denied")}
	seq := NewSequencer(src, &instantClock{}, nil)

	_, err := seq.Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("want acquisition error")
	}
	if seq.State() != Failed {
		t.Errorf("want Failed, got %v", seq.State())
	}

	acquires, releases, _ := src.counts()
	if acquires != 1 {
		t.Errorf("acquire retried: %d attempts", acquires)
	}
	if releases != 0 {
		t.Errorf("released a device that was never acquired")
	}
}

func TestGrabFailureReleasesDevice(t *testing.T) {
	src := &fakeSource{grabErr: errors.New("device wedged")}
	seq := NewSequencer(src, &instantClock{}, nil)

	_, err := seq.Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("want grab error")
	}
	if seq.State() != Failed {
		t.Errorf("want Failed, got %v", seq.State())
	}

	_, releases, _ := src.counts()
	if releases != 1 {
		t.Errorf("device released %d times, want exactly 1", releases)
	}
}

func TestCountdownEvents(t *testing.T) {
	src := &fakeSource{}
	seq := NewSequencer(src, &instantClock{}, nil)

	if _, err := seq.Run(context.Background(), Options{Shots: 1}); err != nil {
		t.Fatal(err)
	}

	var ticks []int
	shutters := 0
	for _, ev := range drain(seq.Events()) {
		switch ev.Kind {
		case EventCountdownTick:
			ticks = append(ticks, ev.Tick)
		case EventShutter:
			shutters++
		}
	}
	want := []int{3, 2, 1}
	if len(ticks) != len(want) {
		t.Fatalf("want ticks %v, got %v", want, ticks)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Fatalf("want ticks %v, got %v", want, ticks)
		}
	}
	if shutters != 1 {
		t.Errorf("want 1 shutter cue, got %d", shutters)
	}
}
