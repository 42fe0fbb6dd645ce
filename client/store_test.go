package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	calls [][]Item
}

func (r *recordingRenderer) Render(items []Item) {
	r.calls = append(r.calls, items)
}

func textPhoto(name string) File {
	return File{Name: name, MIME: "text/plain", Data: []byte("x")}
}

func validItem(desc string) Item {
	return Item{Asset: "HVAC", System: "Chiller", Description: desc, Quantity: 1}
}

func TestStoreAddAppendsAndNotifies(t *testing.T) {
	renderer := &recordingRenderer{}
	store := NewPendingStore(renderer)

	require.NoError(t, store.Add(validItem("first"), nil, DefaultNormalizeOptions))
	require.NoError(t, store.Add(validItem("second"), nil, DefaultNormalizeOptions))

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Description)
	assert.Equal(t, "second", items[1].Description)
	assert.Len(t, renderer.calls, 2)
	assert.Len(t, renderer.calls[1], 2)
}

func TestStoreAddRejectsMissingSelections(t *testing.T) {
	store := NewPendingStore(nil)

	err := store.Add(Item{Asset: "HVAC"}, nil, DefaultNormalizeOptions)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, store.Len())
}

func TestStoreAddRejectsTooManyPhotosBeforeNormalization(t *testing.T) {
	store := NewPendingStore(nil)

	// 11 photos of undecodable bytes: if normalization ran, each would fall
	// back to passthrough, but the over-limit check must fire first.
	photos := make([]File, 11)
	for i := range photos {
		photos[i] = File{Name: "p.png", MIME: "image/png", Data: []byte("junk")}
	}

	err := store.Add(validItem("x"), photos, DefaultNormalizeOptions)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, store.Len())
}

func TestStoreAddDefaultsQuantity(t *testing.T) {
	store := NewPendingStore(nil)

	item := validItem("x")
	item.Quantity = 0
	require.NoError(t, store.Add(item, nil, DefaultNormalizeOptions))

	assert.Equal(t, 1, store.Items()[0].Quantity)
}

func TestStoreRemoveAtPreservesOrder(t *testing.T) {
	store := NewPendingStore(nil)
	for _, desc := range []string{"a", "b", "c"} {
		require.NoError(t, store.Add(validItem(desc), nil, DefaultNormalizeOptions))
	}

	require.NoError(t, store.RemoveAt(1))

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Description)
	assert.Equal(t, "c", items[1].Description)
}

func TestStoreRemoveAtOutOfRange(t *testing.T) {
	store := NewPendingStore(nil)
	require.NoError(t, store.Add(validItem("a"), nil, DefaultNormalizeOptions))

	assert.Error(t, store.RemoveAt(-1))
	assert.Error(t, store.RemoveAt(1))
	assert.Equal(t, 1, store.Len())
}

func TestStoreClear(t *testing.T) {
	renderer := &recordingRenderer{}
	store := NewPendingStore(renderer)
	require.NoError(t, store.Add(validItem("a"), []File{textPhoto("p")}, DefaultNormalizeOptions))

	store.Clear()

	assert.Zero(t, store.Len())
	assert.Empty(t, renderer.calls[len(renderer.calls)-1])
}

func TestStoreItemsReturnsCopy(t *testing.T) {
	store := NewPendingStore(nil)
	require.NoError(t, store.Add(validItem("a"), nil, DefaultNormalizeOptions))

	items := store.Items()
	items[0].Description = "mutated"

	assert.Equal(t, "a", store.Items()[0].Description)
}
