package embedding

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	// transformWidth is the width requested from sources that support
	// on-the-fly transforms.
	transformWidth = 512

	// maxPayloadBytes is the size above which fetched images are
	// downscaled locally before being sent to a backend.
	maxPayloadBytes = 2 << 20

	// resizeMaxDim bounds the longer edge after a local downscale.
	resizeMaxDim = 768
)

// Transformer rewrites an asset URL to a pre-shrunk variant when the
// hosting source supports it. URLs the source does not own pass through
// unchanged.
type Transformer interface {
	TransformURL(rawURL string, maxWidth int) string
}

// Fetcher downloads submission and reference images, bounding payload size
// through source-side transforms where available and a local downscale
// otherwise.
type Fetcher struct {
	client      *http.Client
	transformer Transformer
}

// NewFetcher creates a fetcher. The transformer is optional.
func NewFetcher(transformer Transformer) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		transformer: transformer,
	}
}

// Fetch downloads an image. Oversized payloads are re-encoded down to
// resizeMaxDim so one in-flight image buffer stays small.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	fetchURL := rawURL
	if f.transformer != nil {
		fetchURL = f.transformer.TransformURL(rawURL, transformWidth)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if len(data) > maxPayloadBytes {
		resized, err := ResizeImage(data, resizeMaxDim)
		if err != nil {
			// Not all payloads decode locally; fall back to the original bytes.
			return data, nil
		}
		return resized, nil
	}
	return data, nil
}

// ResizeImage resizes an image to fit within maxSize (width or height) while keeping aspect ratio.
func ResizeImage(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Check if resizing is needed.
	if width <= maxSize && height <= maxSize {
		// Re-encode as JPEG to ensure consistent format.
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		return buf.Bytes(), nil
	}

	// Calculate new dimensions.
	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = int(float64(height) * float64(maxSize) / float64(width))
	} else {
		newHeight = maxSize
		newWidth = int(float64(width) * float64(maxSize) / float64(height))
	}

	// Create resized image.
	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	// Encode as JPEG.
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}
