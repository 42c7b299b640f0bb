package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/image/draw"

	"github.com/nichehunt/nichehunt-server/internal/errors"
)

// jpegQuality is the re-encode quality for mirrored avatars.
const jpegQuality = 85

// maxAvatarDim caps the stored avatar edge length. Upstream originals can
// be arbitrarily large; cards never render above ~256px.
const maxAvatarDim = 512

// MirrorResult describes a completed avatar mirror operation.
type MirrorResult struct {
	BlurHash string // Placeholder hash for progressive rendering
	Width    int    // Decoded image width
	Height   int    // Decoded image height
	Size     int64  // Stored file size in bytes
}

// Mirror fetches remote avatar images and stores local copies.
// Remote URLs (e.g. OAuth provider avatars) go stale and leak the
// viewer's IP to third parties, so the server keeps its own copy and
// serves it from /users/{id}/avatar.
type Mirror struct {
	httpClient *http.Client
	storage    *Storage
	maxBytes   int64
	logger     *slog.Logger
}

// NewMirror creates an avatar mirror backed by the given storage.
// maxBytes caps the remote download size, fetchTimeout bounds the whole fetch.
func NewMirror(storage *Storage, maxBytes int64, fetchTimeout time.Duration, logger *slog.Logger) *Mirror {
	return &Mirror{
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// MirrorAvatar downloads the image at rawURL, re-encodes it as JPEG, and
// stores it under ownerID. Returns the blurhash and dimensions of the
// stored copy.
//
// Error codes: validation for a malformed or non-http(s) URL, upstream
// for network failures, non-200 responses, and bodies that don't decode
// as an image.
func (m *Mirror) MirrorAvatar(ctx context.Context, ownerID, rawURL string) (*MirrorResult, error) {
	if rawURL == "" {
		return nil, errors.Validation("avatar URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Validation("invalid avatar URL").WithCause(err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.Validationf("unsupported avatar URL scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.Validation("avatar URL missing host")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Validation("invalid avatar URL").WithCause(err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, errors.Upstream("avatar fetch failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Upstream(fmt.Sprintf("avatar fetch failed: status %d", resp.StatusCode))
	}

	// Read with size limit. One extra byte so we can tell "exactly at
	// the cap" apart from "over the cap".
	data, err := io.ReadAll(io.LimitReader(resp.Body, m.maxBytes+1))
	if err != nil {
		return nil, errors.Upstream("avatar read failed").WithCause(err)
	}
	if int64(len(data)) > m.maxBytes {
		return nil, errors.Upstream(fmt.Sprintf("avatar exceeds %d byte limit", m.maxBytes))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Upstream("avatar is not a decodable image").WithCause(err)
	}

	img = downscale(img)

	// Normalize everything to JPEG so storage and serving stay uniform.
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.Internal("avatar re-encode failed").WithCause(err)
	}

	if err := m.storage.Save(ownerID, buf.Bytes()); err != nil {
		return nil, errors.Internal("avatar store failed").WithCause(err)
	}

	hash, err := ComputeBlurHashFromImage(img)
	if err != nil {
		// A missing placeholder is cosmetic, keep the avatar.
		m.logger.Warn("failed to compute avatar blurhash",
			"owner_id", ownerID,
			"error", err,
		)
		hash = ""
	}

	bounds := img.Bounds()
	result := &MirrorResult{
		BlurHash: hash,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     int64(buf.Len()),
	}

	m.logger.Info("mirrored avatar",
		"owner_id", ownerID,
		"source_format", format,
		"size", result.Size,
		"width", result.Width,
		"height", result.Height,
	)

	return result, nil
}

// downscale resizes img so its longest edge is at most maxAvatarDim,
// preserving aspect ratio. Small images pass through untouched.
func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxAvatarDim && h <= maxAvatarDim {
		return img
	}

	var dw, dh int
	if w > h {
		dw = maxAvatarDim
		dh = h * maxAvatarDim / w
	} else {
		dh = maxAvatarDim
		dw = w * maxAvatarDim / h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
