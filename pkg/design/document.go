package design

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a document file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf guesses the format from a file name or URL path.
// Anything that does not end in .yaml or .yml is treated as JSON.
func FormatOf(name string) Format {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load reads and parses a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.FileName == "" {
		doc.FileName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Parse decodes a document. The payload is one of:
//
//	{"fileName": "...", "pageName": "...", "shapes": [...]}
//	[ shape, shape, ... ]
//	shape
//
// where each shape is a loosely typed object accepted by Normalize.
// The "selection" and "nodes" keys are accepted as aliases of "shapes".
func Parse(data []byte, format Format) (*Document, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	}
	return FromValue(raw)
}

// FromValue builds a document from an already decoded value, as produced by
// encoding/json or yaml.v3.
func FromValue(raw any) (*Document, error) {
	doc := &Document{}
	switch v := raw.(type) {
	case []any:
		doc.Shapes = normalizeAll(v)
	default:
		m := obj(v)
		if m == nil {
			return nil, fmt.Errorf("document: expected object or array, got %T", raw)
		}
		shapes, ok := first(m, "shapes", "selection", "nodes").([]any)
		if !ok {
			// A bare shape.
			if s := Normalize(m); s != nil {
				doc.Shapes = []*Shape{s}
			}
			return doc, nil
		}
		doc.FileName = str(first(m, "fileName", "file"))
		doc.PageName = str(first(m, "pageName", "page"))
		doc.Shapes = normalizeAll(shapes)
	}
	return doc, nil
}

func normalizeAll(list []any) []*Shape {
	shapes := make([]*Shape, 0, len(list))
	for _, item := range list {
		if s := Normalize(obj(item)); s != nil {
			shapes = append(shapes, s)
		}
	}
	return shapes
}

// Client downloads documents exported by a design tool over HTTP.
type Client struct {
	token      string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// NewClient returns a Client. When token is not empty it is sent as a
// bearer token on every request.
func NewClient(token string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
	}
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: transport,
		},
		maxRetries: 3,
		backoff:    2 * time.Second,
	}
}

// Fetch downloads and parses the document at url. It retries up to three
// times, backing off linearly, on network errors, 429 and 5xx responses.
func (c *Client) Fetch(ctx context.Context, url string) (*Document, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(body, FormatOf(url))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("attempt %d failed to execute request: %w", attempt, err)
			if attempt < c.maxRetries && c.wait(ctx, attempt) {
				continue
			}
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
			retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
			if retryable && attempt < c.maxRetries && c.wait(ctx, attempt) {
				continue
			}
			return nil, lastErr
		}
		if err != nil {
			lastErr = fmt.Errorf("attempt %d failed to read response body: %w", attempt, err)
			if attempt < c.maxRetries && c.wait(ctx, attempt) {
				continue
			}
			return nil, lastErr
		}
		return body, nil
	}
	return nil, lastErr
}

// wait sleeps before the next attempt. It returns false if ctx is done.
func (c *Client) wait(ctx context.Context, attempt int) bool {
	t := time.NewTimer(time.Duration(attempt) * c.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
