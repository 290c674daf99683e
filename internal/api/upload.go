package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"ragdesk/internal/logging"
)

// UploadFile is a single file queued for upload.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// OpenUploadFile reads path into memory and wraps it for Upload. Documents
// at this service's scale are small enough to buffer.
func OpenUploadFile(path string) (UploadFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return UploadFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return UploadFile{Name: filepath.Base(path), Content: bytes.NewReader(data)}, nil
}

// Upload sends each file as one part of a multipart form under the shared
// "files" field. This bypasses the JSON path: the multipart writer owns
// Content-Type (the boundary lives in it), so only Authorization is
// attached here. Failures follow the same taxonomy as Do.
func (c *Client) Upload(ctx context.Context, files []UploadFile) (map[string]any, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathUpload, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if tok := c.creds.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	logging.APIDebug("POST %s (%d files)", pathUpload, len(files))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.APIWarn("POST %s -> %d", pathUpload, resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: pathUpload, Body: string(text)}
	}

	result := map[string]any{}
	if len(text) > 0 {
		if err := json.Unmarshal(text, &result); err != nil {
			return map[string]any{}, nil
		}
	}
	return result, nil
}
