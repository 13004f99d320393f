package storage

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveStreamRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ref, err := store.SaveStream("evidence/photo.png", strings.NewReader("fake bytes"))
	require.NoError(t, err)
	assert.Equal(t, "evidence/photo.png", ref)

	file, err := store.Open("evidence/photo.png")
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "fake bytes", string(data))
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Delete("never-saved.png"))
}

func TestUniqueNameKeepsExtension(t *testing.T) {
	name := UniqueName("my report photo.PNG")
	assert.True(t, strings.HasPrefix(name, "evidence-"))
	assert.True(t, strings.HasSuffix(name, ".PNG"))

	other := UniqueName("my report photo.PNG")
	assert.NotEqual(t, name, other)
}

func TestNormalizeRefUsesForwardSlashes(t *testing.T) {
	ref := filepath.Join("uploads", "evidence", "photo.png")
	assert.Equal(t, "uploads/evidence/photo.png", NormalizeRef(ref))
	assert.Equal(t, "uploads/photo.png", NormalizeRef("uploads/photo.png"))
}
