package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"ragdesk/internal/logging"
)

// DownloadedFile is a document fetched back from the corpus.
type DownloadedFile struct {
	Name string // filename from Content-Disposition, "" when absent
	Data []byte
}

// Download fetches one uploaded document by ID. Like Upload it bypasses the
// JSON path: the response is the raw file, with the original filename
// carried in Content-Disposition. Failures follow the same taxonomy as Do.
func (c *Client) Download(ctx context.Context, docID int64) (DownloadedFile, error) {
	path := fmt.Sprintf("%s/download/%d", pathFiles, docID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return DownloadedFile{}, err
	}
	if tok := c.creds.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	logging.APIDebug("GET %s", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DownloadedFile{}, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.APIWarn("GET %s -> %d", path, resp.StatusCode)
		return DownloadedFile{}, &StatusError{StatusCode: resp.StatusCode, Path: path, Body: string(data)}
	}

	f := DownloadedFile{Data: data}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			f.Name = params["filename"]
		}
	}
	return f, nil
}
