// Package avatar turns uploaded profile pictures into small stored thumbnails.
package avatar

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
)

// ThumbnailSize bounds both dimensions of a stored avatar.
const ThumbnailSize = 75

// MaxSourceDimension bounds the width and height of an upload before it is
// decoded, so a small compressed file cannot expand into a huge bitmap.
const MaxSourceDimension = 4096

var ErrUnsupportedImage = errors.New("unsupported image")

var formats = map[string]imaging.Format{
	".jpg":  imaging.JPEG,
	".jpeg": imaging.JPEG,
	".png":  imaging.PNG,
	".gif":  imaging.GIF,
}

// Extensions lists the accepted upload extensions without the dot.
var Extensions = []string{"jpg", "jpeg", "png", "gif"}

// Storage persists encoded avatars under a flat namespace.
type Storage interface {
	Save(ctx context.Context, name string, data []byte) error
	Exists(ctx context.Context, name string) (bool, error)
	URL(name string) string
}

type Ingestor struct {
	storage Storage
	size    int
	random  io.Reader
}

func NewIngestor(storage Storage) *Ingestor {
	return &Ingestor{storage: storage, size: ThumbnailSize, random: rand.Reader}
}

func (in *Ingestor) Storage() Storage {
	return in.storage
}

// URL returns the public address of a stored avatar.
func (in *Ingestor) URL(name string) string {
	return in.storage.URL(name)
}

// Supported reports whether filename carries an accepted image extension.
func Supported(filename string) bool {
	_, ok := formats[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Ingest decodes the upload, shrinks it to fit ThumbnailSize, and stores it
// under a random name that keeps the original extension. Nothing is stored
// unless every step succeeds.
func (in *Ingestor) Ingest(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := formats[ext]
	if !ok {
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedImage, ext)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width > MaxSourceDimension || cfg.Height > MaxSourceDimension {
		return "", fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height, MaxSourceDimension, MaxSourceDimension)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Thumbnail(img, in.size), format); err != nil {
		return "", fmt.Errorf("encode avatar: %w", err)
	}
	name, err := in.randomName(ext)
	if err != nil {
		return "", err
	}
	if err := in.storage.Save(ctx, name, buf.Bytes()); err != nil {
		return "", fmt.Errorf("save avatar %s: %w", name, err)
	}
	return name, nil
}

// EnsurePlaceholder stores the default avatar if the storage lacks one.
func (in *Ingestor) EnsurePlaceholder(ctx context.Context) error {
	ok, err := in.storage.Exists(ctx, models.DefaultImageFile)
	if err != nil || ok {
		return err
	}
	img := imaging.New(in.size, in.size, color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return err
	}
	return in.storage.Save(ctx, models.DefaultImageFile, buf.Bytes())
}

// Thumbnail fits img inside a max×max box preserving aspect ratio.
// Images already inside the box are returned unchanged.
func Thumbnail(img image.Image, max int) image.Image {
	b := img.Bounds()
	if b.Dx() <= max && b.Dy() <= max {
		return img
	}
	return imaging.Fit(img, max, max, imaging.Lanczos)
}

func (in *Ingestor) randomName(ext string) (string, error) {
	token := make([]byte, 8)
	if _, err := io.ReadFull(in.random, token); err != nil {
		return "", fmt.Errorf("avatar name: %w", err)
	}
	return hex.EncodeToString(token) + ext, nil
}
