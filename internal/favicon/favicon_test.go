package favicon_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wardenproxy/warden/internal/favicon"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode PNG: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write PNG: %v", err)
	}
}

func TestLoadValid64x64(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icon.png")
	writePNG(t, path, 64, 64)

	uri := favicon.Load(path)
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("Load = %q, want data URI prefix", uri)
	}
}

func TestLoadRejectsWrongDimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icon.png")
	writePNG(t, path, 32, 32)

	if got := favicon.Load(path); got != "" {
		t.Fatalf("Load = %q, want empty string for wrong dimensions", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if got := favicon.Load(filepath.Join(t.TempDir(), "absent.png")); got != "" {
		t.Fatalf("Load = %q, want empty string for missing file", got)
	}
}
