// Package response provides optimized JSON response builders
// that only serialize fields actually used by the JS client
package response

import (
	"encoding/json"

	"github.com/lumabooth/luma/internal/store"
)

// SlimMemory is a gallery listing entry. The image payload is omitted;
// the client fetches it per id when a tile scrolls into view.
type SlimMemory struct {
	ID         string `json:"id"`
	Caption    string `json:"caption"`
	Mood       string `json:"mood,omitempty"`
	IsFavorite bool   `json:"isFavorite"`
	Timestamp  int64  `json:"timestamp"`
	HasImage   bool   `json:"hasImage"`
	Reflection string `json:"reflection,omitempty"`
}

// SlimListResponse is the minimal listing response for JS
type SlimListResponse struct {
	Memories []SlimMemory `json:"memories"`
	Total    int          `json:"total"`
	TimingUS int64        `json:"timing_us"`
}

// FromMemory converts a full record to its listing shape
func FromMemory(m *store.Memory) SlimMemory {
	return SlimMemory{
		ID:         m.ID,
		Caption:    m.Caption,
		Mood:       string(m.Mood),
		IsFavorite: m.IsFavorite,
		Timestamp:  m.Timestamp,
		HasImage:   m.Image != "",
		Reflection: m.Reflection,
	}
}

// MarshalSlimList creates a minimal JSON listing response
func MarshalSlimList(memories []*store.Memory, timingUS int64) ([]byte, error) {
	resp := SlimListResponse{
		Memories: make([]SlimMemory, 0, len(memories)),
		Total:    len(memories),
		TimingUS: timingUS,
	}
	for _, m := range memories {
		resp.Memories = append(resp.Memories, FromMemory(m))
	}
	return json.Marshal(resp)
}
