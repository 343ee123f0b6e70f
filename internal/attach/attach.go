// Package attach turns image files into the data URLs the backend stores.
package attach

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxSize bounds attachments read from disk.
const MaxSize = 10 << 20

var (
	// ErrNotImage is returned for files whose content is not an image.
	ErrNotImage = errors.New("not an image file")
	// ErrTooLarge is returned for files over MaxSize.
	ErrTooLarge = errors.New("image too large")
)

// Image is a loaded attachment.
type Image struct {
	Name    string
	MIME    string
	Size    int
	DataURL string
}

// Load reads path and encodes it. The type is sniffed from content, not
// from the extension.
func Load(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attach %s: %w", path, ErrNotImage)
	}
	if info.Size() > MaxSize {
		return nil, fmt.Errorf("attach %s: %w", path, ErrTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	return Encode(filepath.Base(path), data)
}

// Encode wraps data as a base64 data URL.
func Encode(name string, data []byte) (*Image, error) {
	if len(data) > MaxSize {
		return nil, fmt.Errorf("attach %s: %w", name, ErrTooLarge)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("attach %s (%s): %w", name, mt.String(), ErrNotImage)
	}
	return &Image{
		Name:    name,
		MIME:    mt.String(),
		Size:    len(data),
		DataURL: "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
