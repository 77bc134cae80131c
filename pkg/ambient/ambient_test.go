package ambient

import (
	"math/rand"
	"testing"
)

func TestPublishFansOut(t *testing.T) {
	bus := NewBus(nil)
	got := 0
	bus.Subscribe(TopicShutter, func(ev Event) { got++ })
	bus.Subscribe(TopicShutter, func(ev Event) { got++ })
	bus.Subscribe(TopicSaved, func(ev Event) { t.Error("wrong topic delivered") })

	bus.Publish(Event{Topic: TopicShutter, Payload: 3})

	if got != 2 {
		t.Errorf("want 2 deliveries, got %d", got)
	}
}

func TestPanickingObserverIsSwallowed(t *testing.T) {
	bus := NewBus(nil)
	reached := false
	bus.Subscribe(TopicSaved, func(ev Event) { panic("confetti jam") })
	bus.Subscribe(TopicSaved, func(ev Event) { reached = true })

	bus.Publish(Event{Topic: TopicSaved})

	if !reached {
		t.Error("panic in one observer starved the next")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	bus.Publish(Event{Topic: TopicCountdown}) // must not panic
}

func TestFieldStep(t *testing.T) {
	f := NewField(800, 800, 20, rand.New(rand.NewSource(3)))
	before := f.Particles()

	f.Step(1)

	after := f.Particles()
	if len(after) != 20 {
		t.Fatalf("particle count changed: %d", len(after))
	}
	moved := false
	for i := range after {
		if after[i].X != before[i].X || after[i].Y != before[i].Y {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("no particle moved")
	}
}

func TestFieldSpeedZeroFreezes(t *testing.T) {
	f := NewField(800, 800, 10, rand.New(rand.NewSource(3)))
	before := f.Particles()

	f.Step(0)

	after := f.Particles()
	for i := range after {
		if after[i] != before[i] {
			t.Fatal("speed 0 should freeze the field")
		}
	}
}

func TestFieldRespawnStaysBounded(t *testing.T) {
	f := NewField(100, 100, 15, rand.New(rand.NewSource(9)))
	for i := 0; i < 10000; i++ {
		f.Step(2)
	}
	for _, p := range f.particles {
		if p.Life <= 0 {
			t.Error("dead particle left in the field")
		}
		if p.X < -p.Size-2 || p.X > 100+p.Size+2 {
			t.Errorf("particle escaped horizontally: %v", p.X)
		}
	}
}
