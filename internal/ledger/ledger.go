// Package ledger is the HTTP client for the attendance server. The server
// owns the student roster, the reference images, and the durable attendance
// records; it is the sole arbiter of the one-record-per-student-per-day rule.
package ledger

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client represents a client for the attendance server API.
type Client struct {
	baseURL   string
	parsedURL *url.URL
	http      *http.Client
}

// New creates a new attendance server client. The timeout bounds every
// request; a submission that exceeds it is treated as failed, never left
// pending.
func New(rawURL string, timeout time.Duration) (*Client, error) {
	rawURL = strings.TrimSuffix(rawURL, "/")
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   rawURL,
		parsedURL: parsed,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// resolveURL builds a full URL from the base URL and the given path segments.
// If the last segment contains a query string, it is split so JoinPath only
// receives the path portion and the query is appended.
func (c *Client) resolveURL(pathSegments ...string) string {
	if len(pathSegments) == 0 {
		return c.parsedURL.String()
	}
	last := pathSegments[len(pathSegments)-1]
	if pathPart, query, ok := strings.Cut(last, "?"); ok {
		pathSegments[len(pathSegments)-1] = pathPart
		result := c.parsedURL.JoinPath(pathSegments...)
		result.RawQuery = query
		return result.String()
	}
	return c.parsedURL.JoinPath(pathSegments...).String()
}

// resolveImageURL resolves an image URL from the roster against the server
// base URL. The roster may carry absolute URLs pointing at a different host
// (e.g. an internal hostname); only the path is kept so downloads always go
// through the configured server.
func (c *Client) resolveImageURL(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", imageURL, err)
	}
	return c.baseURL + parsed.Path, nil
}

// readErrorBody reads the response body for error messages.
// Returns a placeholder if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
