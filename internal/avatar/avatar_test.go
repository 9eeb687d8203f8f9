package avatar

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestIngestor(t *testing.T) (*Ingestor, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewDiskStorage(dir, "/static/profile_pics")
	if err != nil {
		t.Fatalf("disk storage: %v", err)
	}
	return NewIngestor(storage), dir
}

func storedBounds(t *testing.T, dir, name string) image.Rectangle {
	t.Helper()
	img, err := imaging.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("open stored avatar: %v", err)
	}
	return img.Bounds()
}

var namePattern = regexp.MustCompile(`^[0-9a-f]{16}\.png$`)

func TestIngestDownscales(t *testing.T) {
	in, dir := newTestIngestor(t)
	name, err := in.Ingest(context.Background(), "Me.PNG", bytes.NewReader(pngBytes(t, 500, 500)))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !namePattern.MatchString(name) {
		t.Fatalf("unexpected stored name %q", name)
	}
	b := storedBounds(t, dir, name)
	if b.Dx() > ThumbnailSize || b.Dy() > ThumbnailSize {
		t.Fatalf("stored avatar is %dx%d, want <= %d", b.Dx(), b.Dy(), ThumbnailSize)
	}
}

func TestIngestKeepsAspectRatio(t *testing.T) {
	in, dir := newTestIngestor(t)
	name, err := in.Ingest(context.Background(), "wide.png", bytes.NewReader(pngBytes(t, 500, 250)))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	b := storedBounds(t, dir, name)
	if b.Dx() != ThumbnailSize || b.Dy() < 37 || b.Dy() > 38 {
		t.Fatalf("stored avatar is %dx%d, want 75x37..38", b.Dx(), b.Dy())
	}
}

func TestIngestNeverUpscales(t *testing.T) {
	in, dir := newTestIngestor(t)
	name, err := in.Ingest(context.Background(), "small.png", bytes.NewReader(pngBytes(t, 40, 20)))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if b := storedBounds(t, dir, name); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("small avatar resized to %dx%d", b.Dx(), b.Dy())
	}
}

func TestIngestRejectsNonImage(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"garbage bytes", "me.png", []byte("definitely not an image")},
		{"bad extension", "me.txt", pngBytes(t, 10, 10)},
		{"no extension", "me", pngBytes(t, 10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, dir := newTestIngestor(t)
			_, err := in.Ingest(context.Background(), tt.filename, bytes.NewReader(tt.data))
			if !errors.Is(err, ErrUnsupportedImage) {
				t.Fatalf("expected ErrUnsupportedImage, got %v", err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("no file may be written on failure, found %d", len(entries))
			}
		})
	}
}

// hugeGIF returns a tiny GIF whose screen descriptor claims w x h pixels.
func hugeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), palette.Plan9)
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	data := buf.Bytes()
	// logical screen width and height, little endian, follow the 6-byte signature
	data[6], data[7] = byte(w), byte(w>>8)
	data[8], data[9] = byte(h), byte(h>>8)
	return data
}

func TestIngestRejectsOversizedImage(t *testing.T) {
	in, dir := newTestIngestor(t)
	_, err := in.Ingest(context.Background(), "bomb.gif", bytes.NewReader(hugeGIF(t, 10000, 10000)))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("no file may be written for an oversized image, found %d", len(entries))
	}

	if _, err := in.Ingest(context.Background(), "ok.gif", bytes.NewReader(hugeGIF(t, 4, 4))); err != nil {
		t.Fatalf("small gif rejected: %v", err)
	}
}

func TestSupported(t *testing.T) {
	for name, want := range map[string]bool{"a.jpg": true, "a.JPEG": true, "a.png": true, "a.gif": true, "a.bmp": false, "a": false} {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestEnsurePlaceholderAndServe(t *testing.T) {
	in, dir := newTestIngestor(t)
	ctx := context.Background()
	if err := in.EnsurePlaceholder(ctx); err != nil {
		t.Fatalf("ensure placeholder: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "default.jpg")); err != nil {
		t.Fatalf("placeholder missing: %v", err)
	}
	if url := in.URL("default.jpg"); url != "/static/profile_pics/default.jpg" {
		t.Fatalf("url = %q", url)
	}

	pattern, h := in.Storage().(*DiskStorage).Route()
	if !strings.HasPrefix(pattern, "GET /static/profile_pics/") {
		t.Fatalf("pattern = %q", pattern)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/profile_pics/default.jpg", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("serve placeholder code %d", w.Code)
	}
}
