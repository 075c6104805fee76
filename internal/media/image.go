// Package media resizes uploaded images and stores them on Cloudinary.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decoder
)

const (
	KindAvatar = "user-avatar"
	KindBanner = "event-banner"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Preset is the target box and storage folder for one kind of upload.
type Preset struct {
	Width  int
	Height int
	Folder string
}

// RootFolder holds every asset this service uploads.
const RootFolder = "event-management"

var presets = map[string]Preset{
	KindAvatar: {Width: 200, Height: 200, Folder: RootFolder + "/avatars"},
	KindBanner: {Width: 800, Height: 400, Folder: RootFolder + "/events"},
}

// PresetFor returns the preset for kind; anything that is not an avatar is treated as a banner.
func PresetFor(kind string) Preset {
	if p, ok := presets[kind]; ok {
		return p
	}
	return presets[KindBanner]
}

// Processed is an image re-encoded at its preset size.
type Processed struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
}

// Process decodes data (JPEG, PNG or WebP), applies EXIF orientation and
// crops it to fill the preset box from the centre.
func Process(data []byte, preset Preset) (*Processed, error) {
	format := DetectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var resized image.Image = imaging.Fill(img, preset.Width, preset.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	contentType := "image/jpeg"
	if format == "png" {
		// keep transparency
		contentType = "image/png"
		err = imaging.Encode(&buf, resized, imaging.PNG)
	} else {
		// WebP has no pure Go encoder, so it is re-encoded as JPEG
		err = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(90))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := resized.Bounds()
	return &Processed{
		Data:        buf.Bytes(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ContentType: contentType,
	}, nil
}

// DetectFormat sniffs the image format from raw bytes. Only jpeg, png and webp are accepted.
func DetectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
