package client

import (
	"strings"

	"injaaz-backend/models"
)

// Item is one pending report line held client-side until submission. Photos
// are already normalized when the item enters the store; an item is
// immutable once added (remove and re-add is the only edit path).
type Item struct {
	Asset       string
	System      string
	Description string
	Quantity    int
	Brand       string
	Comments    string
	Photos      []NormalizedFile
}

// NormalizeOptions bounds photo normalization at item-add time.
type NormalizeOptions struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
}

// DefaultNormalizeOptions matches the form's upload bounds.
var DefaultNormalizeOptions = NormalizeOptions{
	MaxWidth:  1280,
	MaxHeight: 1280,
	Quality:   0.7,
}

// PendingStore is the ordered list of report items awaiting submission. All
// access is UI-thread driven; the store notifies its Renderer after every
// mutation so the view never shows an intermediate state.
type PendingStore struct {
	items    []Item
	renderer Renderer
}

func NewPendingStore(r Renderer) *PendingStore {
	if r == nil {
		r = NopRenderer{}
	}
	return &PendingStore{renderer: r}
}

// Add validates the item, normalizes its photos, and appends it. The photo
// count limit is enforced before any normalization work happens.
func (s *PendingStore) Add(item Item, photos []File, opts NormalizeOptions) error {
	if strings.TrimSpace(item.Asset) == "" ||
		strings.TrimSpace(item.System) == "" ||
		strings.TrimSpace(item.Description) == "" {
		return validationErrorf("asset, system and description are required")
	}
	if len(photos) > models.MaxPhotosPerItem {
		return validationErrorf("an item may carry at most %d photos, got %d",
			models.MaxPhotosPerItem, len(photos))
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	item.Photos = make([]NormalizedFile, 0, len(photos))
	for _, f := range photos {
		item.Photos = append(item.Photos, Normalize(f, opts.MaxWidth, opts.MaxHeight, opts.Quality))
	}

	s.items = append(s.items, item)
	s.renderer.Render(s.Items())
	return nil
}

// RemoveAt deletes the item at index. Positions of later items shift down by
// one; callers must not hold stale indices across a removal.
func (s *PendingStore) RemoveAt(index int) error {
	if index < 0 || index >= len(s.items) {
		return validationErrorf("no pending item at position %d", index)
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	s.renderer.Render(s.Items())
	return nil
}

// Items returns a copy of the current list in order.
func (s *PendingStore) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of pending items.
func (s *PendingStore) Len() int {
	return len(s.items)
}

// Clear empties the store.
func (s *PendingStore) Clear() {
	s.items = nil
	s.renderer.Render(s.Items())
}
