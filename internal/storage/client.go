// Package storage is a client for the asset storage service hosting the
// reference look groups. Groups are top-level folders; each folder holds
// the member images of one reference look.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrMissingCredentials indicates the storage credential pair was not
// configured. Cache building cannot proceed without it.
var ErrMissingCredentials = errors.New("storage credentials not configured")

// Client represents a client for the storage service API
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
}

// NewClient creates an authenticated storage client by exchanging the
// credential pair for a session token.
func NewClient(ctx context.Context, rawURL, username, password string) (*Client, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	parsed, err := url.Parse(rawURL + "/api/v1")
	if err != nil {
		return nil, fmt.Errorf("invalid storage URL: %w", err)
	}

	c := &Client{baseURL: parsed, httpClient: http.DefaultClient}
	if err := c.auth(ctx, username, password); err != nil {
		return nil, fmt.Errorf("could not authenticate: %w", err)
	}
	return c, nil
}

// resolveURL builds a full URL from the base API URL and the given endpoint.
// An endpoint containing a query string (e.g. "folders?count=10") is split so
// JoinPath only receives the path portion.
func (c *Client) resolveURL(endpoint string) string {
	if pathPart, query, ok := strings.Cut(endpoint, "?"); ok {
		result := c.baseURL.JoinPath(pathPart)
		result.RawQuery = query
		return result.String()
	}
	return c.baseURL.JoinPath(endpoint).String()
}

func (c *Client) auth(ctx context.Context, username, password string) error {
	inputBody, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("could not marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL("sessions"), bytes.NewReader(inputBody))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("session request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("could not unmarshal response: %w", err)
	}
	if result.AccessToken == "" {
		return errors.New("session response missing access token")
	}

	c.token = result.AccessToken
	return nil
}

// doGetJSON performs a GET request and unmarshals the JSON response into the
// result type. The endpoint is the path after the base API URL.
func doGetJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolveURL(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// ListGroups retrieves all top-level folders from the storage service.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	result, err := doGetJSON[[]Group](ctx, c, "folders?depth=1")
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// ListGroupImages retrieves the image URLs of a folder, bounded to max
// results. Listing order is the service's stable default order.
func (c *Client) ListGroupImages(ctx context.Context, groupName string, max int) ([]string, error) {
	endpoint := fmt.Sprintf("folders/%s/files?count=%d", url.PathEscape(groupName), max)
	result, err := doGetJSON[[]File](ctx, c, endpoint)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(*result))
	for _, f := range *result {
		urls = append(urls, f.URL)
	}
	return urls, nil
}

// TransformURL rewrites an asset URL to request a pre-shrunk variant via the
// service's on-the-fly transform parameters. URLs outside the storage host
// are returned unchanged; the original bytes are used in that case.
func (c *Client) TransformURL(rawURL string, maxWidth int) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host != c.baseURL.Host {
		return rawURL
	}
	q := parsed.Query()
	q.Set("w", fmt.Sprintf("%d", maxWidth))
	q.Set("q", "80")
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// readErrorBody reads the response body for error messages.
// Returns empty string if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
