package booth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumabooth/luma/internal/config"
	"github.com/lumabooth/luma/internal/store"
	"github.com/lumabooth/luma/pkg/ambient"
	"github.com/lumabooth/luma/pkg/capture"
	"github.com/lumabooth/luma/pkg/compose"
	"github.com/lumabooth/luma/pkg/filter"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func newTestService(t *testing.T) (*Service, *ambient.Bus) {
	t.Helper()
	st, err := store.NewSQLiteStore()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	bus := ambient.NewBus(nil)
	svc, err := NewService(st, bus, defaultConfig(t), nil)
	require.NoError(t, err)
	return svc, bus
}

func solidFrame(r, g, b uint8) *filter.Buffer {
	buf := filter.NewBuffer(8, 8)
	for i := 0; i+3 < len(buf.Pix); i += 4 {
		buf.Pix[i] = r
		buf.Pix[i+1] = g
		buf.Pix[i+2] = b
		buf.Pix[i+3] = 255
	}
	return buf
}

func TestSaveFrameAndList(t *testing.T) {
	svc, _ := newTestService(t)

	m, err := svc.SaveFrame(solidFrame(200, 100, 50), "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m.Image, "data:image/png;base64,"))
	assert.NotEmpty(t, m.ID)

	all, err := svc.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, store.DefaultCaption, all[0].Caption)
	assert.NotZero(t, all[0].Timestamp)
}

func TestNewIDShape(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	parts := strings.SplitN(a, "-", 2)
	require.Len(t, parts, 2)
	assert.GreaterOrEqual(t, len(parts[0]), 13, "epoch millis prefix")
}

func TestSimilarAcrossSaves(t *testing.T) {
	svc, _ := newTestService(t)

	red1, err := svc.SaveFrame(solidFrame(250, 10, 10), "red one", "")
	require.NoError(t, err)
	red2, err := svc.SaveFrame(solidFrame(240, 20, 15), "red two", "")
	require.NoError(t, err)
	_, err = svc.SaveFrame(solidFrame(10, 10, 250), "blue", "")
	require.NoError(t, err)

	ids, err := svc.Similar(red1.ID, 1)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, red2.ID, ids[0])
}

func TestUpdateSuggestsMood(t *testing.T) {
	svc, _ := newTestService(t)
	m, err := svc.SaveFrame(solidFrame(1, 2, 3), "", "")
	require.NoError(t, err)

	reflection := "we could not stop laughing, what a fun afternoon"
	require.NoError(t, svc.Update(m.ID, store.MemoryUpdate{Reflection: &reflection}))

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, store.MoodJoyful, got.Mood)
	assert.Equal(t, reflection, got.Reflection)
}

func TestUpdateKeepsExplicitMood(t *testing.T) {
	svc, _ := newTestService(t)
	m, err := svc.SaveFrame(solidFrame(1, 2, 3), "", "")
	require.NoError(t, err)

	reflection := "so much joy"
	mood := store.MoodCalm
	require.NoError(t, svc.Update(m.ID, store.MemoryUpdate{Reflection: &reflection, Mood: &mood}))

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, store.MoodCalm, got.Mood, "explicit mood must win over the suggestion")
}

func TestToggleFavorite(t *testing.T) {
	svc, _ := newTestService(t)
	m, err := svc.SaveFrame(solidFrame(1, 2, 3), "", "")
	require.NoError(t, err)

	on, err := svc.ToggleFavorite(m.ID)
	require.NoError(t, err)
	assert.True(t, on)

	off, err := svc.ToggleFavorite(m.ID)
	require.NoError(t, err)
	assert.False(t, off)

	_, err = svc.ToggleFavorite("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeletePublishes(t *testing.T) {
	svc, bus := newTestService(t)
	m, err := svc.SaveFrame(solidFrame(1, 2, 3), "", "")
	require.NoError(t, err)

	var mu sync.Mutex
	var deleted []any
	bus.Subscribe(ambient.TopicDeleted, func(ev ambient.Event) {
		mu.Lock()
		deleted = append(deleted, ev.Payload)
		mu.Unlock()
	})

	require.NoError(t, svc.Delete(m.ID))
	require.NoError(t, svc.Delete(m.ID)) // tolerant repeat

	all, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, all)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []any{m.ID, m.ID}, deleted)
}

// instantClock fires every wait immediately.
type instantClock struct{}

func (instantClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

type stubSource struct {
	mu       sync.Mutex
	grabs    int
	releases int
}

func (s *stubSource) Acquire(ctx context.Context, hint capture.Resolution) error { return nil }

func (s *stubSource) Grab() (*filter.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grabs++
	return solidFrame(255, 255, 255), nil
}

func (s *stubSource) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
	return nil
}

func TestCaptureForwardsAmbientEvents(t *testing.T) {
	svc, bus := newTestService(t)
	svc.clock = instantClock{}

	var mu sync.Mutex
	ticks, shutters := 0, 0
	bus.Subscribe(ambient.TopicCountdown, func(ev ambient.Event) {
		mu.Lock()
		ticks++
		mu.Unlock()
	})
	bus.Subscribe(ambient.TopicShutter, func(ev ambient.Event) {
		mu.Lock()
		shutters++
		mu.Unlock()
	})

	src := &stubSource{}
	shots, err := svc.Capture(context.Background(), src, filter.GoldenHour)
	require.NoError(t, err)
	assert.Len(t, shots, 4)
	assert.Equal(t, 1, src.releases)

	// the forwarder drains asynchronously; give it a moment
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		tk, sh := ticks, shutters
		mu.Unlock()
		if (tk == 12 && sh == 4) || time.Now().After(deadline) {
			assert.Equal(t, 12, tk, "4 shots x 3 countdown ticks")
			assert.Equal(t, 4, sh)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFlattenAndSaveClearsScene(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Scene().AddImage(solidFrame(9, 9, 9))
	svc.AddSticker("✿")
	require.Equal(t, 2, svc.Scene().Len())

	m, err := svc.FlattenAndSave("our picnic")
	require.NoError(t, err)
	assert.Equal(t, "our picnic", m.Caption)
	assert.Equal(t, 0, svc.Scene().Len())

	all, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := solidFrame(12, 200, 99)
	payload, err := EncodePNGDataURI(src)
	require.NoError(t, err)

	back, err := DecodeDataURI(payload)
	require.NoError(t, err)
	assert.Equal(t, src.Width, back.Width)
	assert.Equal(t, src.Pix, back.Pix)
}

func TestSceneUsesConfiguredCanvas(t *testing.T) {
	st, err := store.NewSQLiteStore()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := defaultConfig(t)
	cfg.Canvas.Width = 400
	cfg.Canvas.Height = 600

	svc, err := NewService(st, nil, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 400, svc.Scene().Width)
	assert.Equal(t, 600, svc.Scene().Height)
}

func TestSaveStripPersistsOneMemory(t *testing.T) {
	svc, _ := newTestService(t)

	photos := []compose.StripPhoto{
		{Image: solidFrame(255, 0, 0), Caption: "shot one"},
		{Image: solidFrame(0, 0, 255), Caption: "shot two"},
	}
	m, err := svc.SaveStrip(photos, compose.VintageRose, "beach day")
	require.NoError(t, err)
	assert.Equal(t, "beach day", m.Caption)
	assert.True(t, strings.HasPrefix(m.Image, "data:image/png;base64,"))

	all, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.SaveStrip(nil, compose.VintageRose, "")
	require.Error(t, err)
}
