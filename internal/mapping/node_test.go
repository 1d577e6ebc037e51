package mapping

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeIcon writes a solid w x h PNG and returns its path.
func writeIcon(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestIconLoader_Resolve(t *testing.T) {
	iconDir := t.TempDir()
	otherDir := t.TempDir()
	writeIcon(t, iconDir, "router.png", 4, 4)
	elsewhere := writeIcon(t, otherDir, "switch.png", 4, 4)

	loader := &IconLoader{Dir: iconDir}

	got, err := loader.Resolve("router.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(iconDir, "router.png"), got)

	got, err = loader.Resolve(elsewhere)
	require.NoError(t, err)
	assert.Equal(t, elsewhere, got)

	_, err = loader.Resolve("missing.png")
	assert.ErrorIs(t, err, ErrMissingIcon)

	_, err = loader.Resolve(otherDir)
	assert.ErrorIs(t, err, ErrMissingIcon)
}

func TestIconLoader_LoadInvalidImage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0644))

	_, err := (&IconLoader{Dir: dir}).Load("broken.png")
	assert.ErrorIs(t, err, ErrMissingIcon)
}

func TestNewNode(t *testing.T) {
	dir := t.TempDir()
	writeIcon(t, dir, "router.png", 20, 10)
	writeIcon(t, dir, "odd.png", 21, 11)
	loader := &IconLoader{Dir: dir}

	t.Run("icon centered on position", func(t *testing.T) {
		n, err := NewNode(NodeSpec{Name: "a", X: 100, Y: 50, Icon: "router.png", Label: "host-A"}, loader)
		require.NoError(t, err)
		require.NotNil(t, n.Icon)
		assert.Equal(t, Point{90, 45}, n.IconAnchor)
		require.NotNil(t, n.Label)
		assert.Equal(t, "host-A", n.Label.Text)
	})

	t.Run("odd icon size truncates", func(t *testing.T) {
		n, err := NewNode(NodeSpec{Name: "b", X: 100, Y: 50, Icon: "odd.png"}, loader)
		require.NoError(t, err)
		assert.Equal(t, Point{89, 44}, n.IconAnchor)
		assert.Nil(t, n.Label)
	})

	t.Run("no icon", func(t *testing.T) {
		n, err := NewNode(NodeSpec{Name: "c", X: 1, Y: 2}, nil)
		require.NoError(t, err)
		assert.Nil(t, n.Icon)
		assert.Equal(t, Point{1, 2}, n.Position)
	})

	t.Run("missing icon is fatal", func(t *testing.T) {
		_, err := NewNode(NodeSpec{Name: "d", Icon: "nope.png"}, loader)
		assert.ErrorIs(t, err, ErrMissingIcon)
		assert.ErrorContains(t, err, "node d")
	})

	t.Run("disabled icons", func(t *testing.T) {
		n, err := NewNode(NodeSpec{Name: "e", Icon: "nope.png"}, &IconLoader{Disabled: true})
		require.NoError(t, err)
		assert.Nil(t, n.Icon)
	})
}
