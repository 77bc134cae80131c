// Package booth orchestrates the photo booth pipeline: capture runs
// through filtering into the collage scene or straight into the store,
// and every state change flows confirm-then-update: callers only adjust
// their view after the store reports success.
package booth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumabooth/luma/internal/config"
	"github.com/lumabooth/luma/internal/store"
	"github.com/lumabooth/luma/pkg/ambient"
	"github.com/lumabooth/luma/pkg/capture"
	"github.com/lumabooth/luma/pkg/compose"
	"github.com/lumabooth/luma/pkg/filter"
	"github.com/lumabooth/luma/pkg/gallery"
	"github.com/lumabooth/luma/pkg/insight"
	"github.com/lumabooth/luma/pkg/signature"
)

// Service is the application core behind both the wasm bridge and the
// native CLI.
type Service struct {
	store  store.Storer
	bus    *ambient.Bus
	tagger *insight.Tagger
	cfg    *config.Config
	log    *zap.Logger

	scene *compose.Scene
	clock capture.Clock // nil means wall clock; tests inject a fake
}

// NewService wires the pipeline. A nil bus gets a private one; a nil
// logger is silenced.
func NewService(st store.Storer, bus *ambient.Bus, cfg *config.Config, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if bus == nil {
		bus = ambient.NewBus(log)
	}
	tagger, err := insight.NewTagger()
	if err != nil {
		return nil, fmt.Errorf("booth: %w", err)
	}
	scene := compose.NewScene(nil)
	if cfg != nil && cfg.Canvas.Width > 0 && cfg.Canvas.Height > 0 {
		scene.Width = cfg.Canvas.Width
		scene.Height = cfg.Canvas.Height
	}
	return &Service{
		store:  st,
		bus:    bus,
		tagger: tagger,
		cfg:    cfg,
		log:    log,
		scene:  scene,
	}, nil
}

// NewID generates a memory id: epoch millis plus a random suffix, so
// ids sort roughly by creation time while staying unique within the
// same millisecond.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// =============================================================================
// Memories
// =============================================================================

// SaveFrame encodes a captured frame and persists it as a new memory.
// The color signature is computed and stored in the same call; a
// signature failure only logs, the memory itself is already durable.
func (s *Service) SaveFrame(frame *filter.Buffer, caption string, mood store.Mood) (*store.Memory, error) {
	payload, err := EncodePNGDataURI(frame)
	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	m := &store.Memory{
		ID:      NewID(),
		Image:   payload,
		Caption: caption,
		Mood:    mood,
	}
	if err := s.store.SaveAll([]*store.Memory{m}); err != nil {
		return nil, fmt.Errorf("saving memory: %w", err)
	}

	if sig, err := signature.FromBuffer(frame); err != nil {
		s.log.Warn("signature skipped", zap.String("id", m.ID), zap.Error(err))
	} else if err := s.store.PutEmbedding(m.ID, sig); err != nil {
		s.log.Warn("signature not stored", zap.String("id", m.ID), zap.Error(err))
	}

	s.bus.Publish(ambient.Event{Topic: ambient.TopicSaved, Payload: m.ID})
	s.log.Info("memory saved", zap.String("id", m.ID))
	return m, nil
}

// SavePayload persists an already-encoded image (a data-URI from the
// JS client). The signature is computed from the decoded payload when
// it decodes; foreign payloads without one just skip similarity.
func (s *Service) SavePayload(payload, caption string, mood store.Mood) (*store.Memory, error) {
	m := &store.Memory{
		ID:      NewID(),
		Image:   payload,
		Caption: caption,
		Mood:    mood,
	}
	if err := s.store.SaveAll([]*store.Memory{m}); err != nil {
		return nil, fmt.Errorf("saving memory: %w", err)
	}

	if buf, err := DecodeDataURI(payload); err == nil {
		if sig, err := signature.FromBuffer(buf); err == nil {
			if err := s.store.PutEmbedding(m.ID, sig); err != nil {
				s.log.Warn("signature not stored", zap.String("id", m.ID), zap.Error(err))
			}
		}
	}

	s.bus.Publish(ambient.Event{Topic: ambient.TopicSaved, Payload: m.ID})
	return m, nil
}

// List returns all memories newest-first.
func (s *Service) List() ([]*store.Memory, error) {
	return s.store.LoadAll()
}

// Get returns one memory, or nil when absent.
func (s *Service) Get(id string) (*store.Memory, error) {
	return s.store.Get(id)
}

// Journal returns memories carrying a reflection, newest-first.
func (s *Service) Journal() ([]*store.Memory, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	return gallery.Journal(all), nil
}

// Delete removes a memory. Missing ids are a tolerated no-op.
func (s *Service) Delete(id string) error {
	if err := s.store.DeleteOne(id); err != nil {
		return err
	}
	s.bus.Publish(ambient.Event{Topic: ambient.TopicDeleted, Payload: id})
	return nil
}

// Update patches the mutable fields of a memory. When the patch writes
// a reflection without choosing a mood, the tagger fills in a
// suggestion.
func (s *Service) Update(id string, update store.MemoryUpdate) error {
	if update.Reflection != nil && update.Mood == nil {
		if mood, ok := s.tagger.SuggestMood(*update.Reflection); ok {
			update.Mood = &mood
		}
	}
	return s.store.UpdateFields(id, update)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Service) ToggleFavorite(id string) (bool, error) {
	m, err := s.store.Get(id)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, fmt.Errorf("toggle favorite %s: %w", id, store.ErrNotFound)
	}
	next := !m.IsFavorite
	if err := s.store.UpdateFields(id, store.MemoryUpdate{IsFavorite: &next}); err != nil {
		return false, err
	}
	return next, nil
}

// Similar returns up to k ids of memories with nearby color signatures.
func (s *Service) Similar(id string, k int) ([]string, error) {
	return s.store.SimilarMemories(id, k)
}

// SuggestMood proposes a mood for free-form reflection text.
func (s *Service) SuggestMood(reflection string) (store.Mood, bool) {
	return s.tagger.SuggestMood(reflection)
}

// Keywords extracts display keywords from a reflection for the journal.
func (s *Service) Keywords(reflection string, limit int) []string {
	return s.tagger.Keywords(reflection, limit)
}

// =============================================================================
// Capture
// =============================================================================

// Capture runs one full session against the given frame source,
// forwarding countdown and shutter moments to the ambient bus.
func (s *Service) Capture(ctx context.Context, src capture.FrameSource, name filter.Name) ([]capture.Shot, error) {
	seq := capture.NewSequencer(src, s.clock, s.log)

	done := make(chan struct{})
	go s.forwardEvents(seq.Events(), done)

	shots, err := seq.Run(ctx, capture.Options{
		Shots:          s.cfg.Capture.Shots,
		CountdownTicks: s.cfg.Capture.CountdownSeconds,
		SettleDelay:    s.cfg.Capture.SettleDelay,
		ShotGap:        s.cfg.Capture.ShotGap,
		Filter:         name,
		Hint: capture.Resolution{
			Width:  s.cfg.Capture.FrameWidth,
			Height: s.cfg.Capture.FrameHeight,
		},
	})
	close(done)
	return shots, err
}

func (s *Service) forwardEvents(events <-chan capture.Event, done <-chan struct{}) {
	publish := func(ev capture.Event) {
		switch ev.Kind {
		case capture.EventCountdownTick:
			s.bus.Publish(ambient.Event{Topic: ambient.TopicCountdown, Payload: ev.Tick})
		case capture.EventShutter:
			s.bus.Publish(ambient.Event{Topic: ambient.TopicShutter, Payload: ev.Shot})
		}
	}
	for {
		select {
		case ev := <-events:
			publish(ev)
		case <-done:
			for {
				select {
				case ev := <-events:
					publish(ev)
				default:
					return
				}
			}
		}
	}
}

// =============================================================================
// Collage
// =============================================================================

// Scene exposes the collage under construction.
func (s *Service) Scene() *compose.Scene {
	return s.scene
}

// AddSticker drops a glyph on the collage and notifies observers.
func (s *Service) AddSticker(glyph string) {
	s.scene.AddSticker(glyph)
	s.bus.Publish(ambient.Event{Topic: ambient.TopicStickerAdded, Payload: glyph})
}

// FlattenAndSave renders the collage at the configured export
// multiplier and saves it as a memory. An empty caption falls back to
// the store default.
func (s *Service) FlattenAndSave(caption string) (*store.Memory, error) {
	flat, err := s.scene.Flatten(s.cfg.Export.Multiplier)
	if err != nil {
		return nil, fmt.Errorf("flattening collage: %w", err)
	}
	m, err := s.SaveFrame(flat, strings.TrimSpace(caption), "")
	if err != nil {
		return nil, err
	}
	s.scene.Clear()
	return m, nil
}

// SaveStrip renders a session's shots into one decorated keepsake strip
// and persists it as a single memory.
func (s *Service) SaveStrip(photos []compose.StripPhoto, theme compose.StripTheme, caption string) (*store.Memory, error) {
	flat, err := compose.RenderStrip(photos, theme, s.cfg.Export.Multiplier)
	if err != nil {
		return nil, fmt.Errorf("rendering strip: %w", err)
	}
	return s.SaveFrame(flat, strings.TrimSpace(caption), "")
}
