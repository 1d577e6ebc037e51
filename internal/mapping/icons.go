package mapping

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// IconLoader resolves node icon references to decoded images.
//
// A reference is first looked up inside Dir; when no such file exists the
// reference itself is treated as a path.
type IconLoader struct {
	Dir      string
	Disabled bool // nodes are drawn without icons
}

// Resolve returns the file an icon reference points to.
func (l *IconLoader) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty icon reference", ErrMissingIcon)
	}

	if l != nil && l.Dir != "" {
		candidate := filepath.Join(l.Dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}

	info, err := os.Stat(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingIcon, name)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a file", ErrMissingIcon, name)
	}
	return name, nil
}

// Load decodes the icon named by ref. A disabled loader returns a nil image.
func (l *IconLoader) Load(ref string) (image.Image, error) {
	if l != nil && l.Disabled {
		return nil, nil
	}

	path, err := l.Resolve(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingIcon, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrMissingIcon, path, err)
	}
	return img, nil
}
