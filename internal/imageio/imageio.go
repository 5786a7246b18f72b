package imageio

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vehicle-damage-analyzer/internal/damage"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDownloadTimeout is the default timeout for image downloads
	DefaultDownloadTimeout = 30 * time.Second
	// DefaultMaxImageSize is the default maximum image size (10MB)
	DefaultMaxImageSize = 10 * 1024 * 1024
)

// Resolve turns a CLI argument into an image: http(s) URLs are downloaded,
// anything else is treated as a local file path.
func Resolve(ctx context.Context, arg string) (damage.Image, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return Download(ctx, arg)
	}
	return Load(arg)
}

// Load reads an image from disk and sniffs its MIME type.
func Load(path string) (damage.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return damage.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > DefaultMaxImageSize {
		return damage.Image{}, fmt.Errorf("image %s exceeds maximum size of %d bytes", path, DefaultMaxImageSize)
	}

	mimeType := detectMIMEType(data, path)
	if !strings.HasPrefix(mimeType, "image/") {
		return damage.Image{}, fmt.Errorf("%s does not look like an image (detected %s)", path, mimeType)
	}

	return damage.Image{
		Name:     filepath.Base(path),
		Data:     data,
		MIMEType: mimeType,
	}, nil
}

// Download fetches an image over HTTP. It enforces the size limit and
// requires an image/* content type.
func Download(ctx context.Context, imageURL string) (damage.Image, error) {
	client := resty.New().SetTimeout(DefaultDownloadTimeout)

	resp, err := client.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return damage.Image{}, fmt.Errorf("failed to download image: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return damage.Image{}, fmt.Errorf("download failed: status %d", resp.StatusCode())
	}

	data := resp.Body()
	if int64(len(data)) > DefaultMaxImageSize {
		return damage.Image{}, fmt.Errorf("image exceeds maximum size of %d bytes", DefaultMaxImageSize)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = detectMIMEType(data, imageURL)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return damage.Image{}, fmt.Errorf("invalid content type: expected image/*, got %s", contentType)
	}

	log.Debug().Str("url", imageURL).Int("bytes", len(data)).Msg("downloaded image")

	return damage.Image{
		Name:     filepath.Base(imageURL),
		Data:     data,
		MIMEType: contentType,
	}, nil
}

// detectMIMEType sniffs the payload and falls back to the file extension for
// formats DetectContentType does not know.
func detectMIMEType(data []byte, name string) string {
	mimeType := http.DetectContentType(data)
	if mimeType != "application/octet-stream" {
		return mimeType
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return mimeType
	}
}
