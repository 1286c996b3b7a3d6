package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/talentloop/lookscreen/internal/vecmath"
)

const (
	defaultInferenceURL = "https://api-inference.huggingface.co"
	defaultModel        = "openai/clip-vit-base-patch32"

	maxAttempts    = 3
	backoffPerTry  = 400 * time.Millisecond
	requestTimeout = 60 * time.Second
)

// backendError carries the HTTP status so the retry loop can distinguish
// transient server failures from permanent ones.
type backendError struct {
	status int
	body   string
}

func (e *backendError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.status, e.body)
}

// transient reports whether the failure is a server-side error worth retrying.
func (e *backendError) transient() bool {
	return e.status >= 500
}

// InferenceBackend posts raw image bytes to a hosted feature-extraction
// route and parses the result as either a flat vector or a token matrix.
type InferenceBackend struct {
	name   string
	url    string
	token  string
	client *http.Client
}

// NewInferenceBackend creates a backend for one model route.
func NewInferenceBackend(name, routeURL, token string) *InferenceBackend {
	return &InferenceBackend{
		name:   name,
		url:    routeURL,
		token:  token,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Backends builds the ordered candidate backends for a model. The direct
// model route is preferred; the pipeline route is the fallback for models
// the router does not expose directly.
func Backends(baseURL, model, token string) []Backend {
	if baseURL == "" {
		baseURL = defaultInferenceURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if model == "" {
		model = defaultModel
	}
	return []Backend{
		NewInferenceBackend("models/"+model, baseURL+"/models/"+model, token),
		NewInferenceBackend("pipeline/"+model, baseURL+"/pipeline/feature-extraction/"+model, token),
	}
}

// Name returns the backend's route name.
func (b *InferenceBackend) Name() string {
	return b.name
}

// Embed posts the image and returns its embedding. Transient server errors
// are retried with increasing backoff; any other failure aborts this backend
// so the provider can move on to the next one.
func (b *InferenceBackend) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		vector, err := b.post(ctx, imageData)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		var be *backendError
		if !errors.As(err, &be) || !be.transient() {
			return nil, err
		}

		if attempt < maxAttempts {
			select {
			case <-time.After(backoffPerTry * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

func (b *InferenceBackend) post(ctx context.Context, imageData []byte) ([]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", detectMIMEType(imageData))
	req.Header.Set("X-Wait-For-Model", "true")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &backendError{status: resp.StatusCode, body: string(body)}
	}

	return parseVector(body)
}

// parseVector accepts either a flat vector or a token-by-token matrix.
// Matrices are averaged across tokens into a single fixed-length vector.
func parseVector(body []byte) ([]float32, error) {
	var vector []float32
	if err := json.Unmarshal(body, &vector); err == nil {
		if len(vector) == 0 {
			return nil, errors.New("empty embedding returned")
		}
		return vector, nil
	}

	var matrix [][]float32
	if err := json.Unmarshal(body, &matrix); err == nil {
		if len(matrix) == 0 || len(matrix[0]) == 0 {
			return nil, errors.New("empty embedding matrix returned")
		}
		return vecmath.Mean(matrix), nil
	}

	return nil, fmt.Errorf("failed to parse embedding response: %s", truncate(string(body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
