package attach

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.bin")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatal(err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", img.MIME)
	}
	if img.Name != "cat.bin" || img.Size != len(pngHeader) {
		t.Errorf("image = %+v", img)
	}
	if !strings.HasPrefix(img.DataURL, "data:image/png;base64,") {
		t.Errorf("DataURL prefix = %q", img.DataURL[:30])
	}
}

func TestRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(path, []byte("just some text, despite the name"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrNotImage) {
		t.Errorf("Load error = %v, want ErrNotImage", err)
	}
}

func TestRejectsDirectoryAndMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); !errors.Is(err, ErrNotImage) {
		t.Errorf("Load(dir) error = %v, want ErrNotImage", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want not exist", err)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	big := make([]byte, MaxSize+1)
	copy(big, pngHeader)
	if _, err := Encode("big.png", big); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Encode error = %v, want ErrTooLarge", err)
	}
}
