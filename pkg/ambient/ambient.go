// Package ambient hosts the decorative layer: an event bus the core
// publishes into and a particle field stepper. Everything here is
// strictly downstream; a broken or panicking observer never reaches the
// capture or save paths.
package ambient

import (
	"sync"

	"go.uber.org/zap"
)

// Topic names the booth moments observers can react to.
type Topic string

const (
	TopicSaved        Topic = "memory.saved"
	TopicDeleted      Topic = "memory.deleted"
	TopicShutter      Topic = "capture.shutter"
	TopicCountdown    Topic = "capture.countdown"
	TopicStickerAdded Topic = "collage.sticker"
)

// Event is an opaque notification. Payload contents are by-topic
// convention; observers must tolerate anything.
type Event struct {
	Topic   Topic
	Payload any
}

// Handler consumes one event. Handlers run synchronously on the
// publisher's goroutine and must be quick.
type Handler func(Event)

// Bus fans events out to subscribers. Publish never fails and never
// propagates observer panics.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]Handler
	log  *zap.Logger
}

// NewBus returns an empty bus. A nil logger is silenced.
func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{subs: make(map[Topic][]Handler), log: log}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic Topic, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], h)
}

// Publish delivers the event to every subscriber of its topic.
// Panicking handlers are recovered and logged at debug.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	handlers := b.subs[ev.Topic]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(h, ev)
	}
}

func (b *Bus) deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Debug("ambient observer panicked",
				zap.String("topic", string(ev.Topic)),
				zap.Any("panic", r))
		}
	}()
	h(ev)
}
