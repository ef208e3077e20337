package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage writes objects to a directory that the HTTP server exposes under publicURL.
type LocalStorage struct {
	dir       string
	publicURL string
}

// NewLocalStorage creates the directory if needed.
func NewLocalStorage(dir, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir is the directory objects are written to.
func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if key != filepath.Base(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	path := filepath.Join(s.dir, key)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, body); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return s.publicURL + "/" + key, nil
}

// Remove deletes a stored object. Removing a missing object is not an error.
func (s *LocalStorage) Remove(_ context.Context, key string) error {
	if key != filepath.Base(key) {
		return fmt.Errorf("invalid object key %q", key)
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// HTTPStorage forwards objects to an external upload service. The service receives a
// multipart "file" field and answers {"url": "..."}.
type HTTPStorage struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPStorage creates a client for the upload service at endpoint.
func NewHTTPStorage(endpoint, apiKey string) *HTTPStorage {
	return &HTTPStorage{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

func (s *HTTPStorage) Put(ctx context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreatePart(map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename=%q`, key)},
		"Content-Type":        {contentType},
	})
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload service: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("upload service: decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload service: status %d: %s", resp.StatusCode, out.Error)
	}
	if out.URL == "" {
		return "", errors.New("upload service returned no url")
	}
	return out.URL, nil
}
