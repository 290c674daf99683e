package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Paths of the service's HTTP surface.
const (
	pathRegister = "/api/auth/register"
	pathLogin    = "/api/auth/login"
	pathFiles    = "/api/files"
	pathUpload   = "/api/files/upload"
	pathBuild    = "/api/rag/build"
	pathAssess   = "/api/rag/assess"
)

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FileRecord is one uploaded document as reported by the service.
type FileRecord struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	Path      string `json:"path,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Assessment is the graded result for a piece of text.
type Assessment struct {
	Grade       float64
	Explanation string
}

// Register creates an account. It has no side effect on the session: the
// caller decides whether to log in afterwards.
func (c *Client) Register(ctx context.Context, email, password string) (map[string]any, error) {
	return c.Request(ctx, pathRegister, &Options{
		Method: http.MethodPost,
		Body:   credentialsBody{Email: email, Password: password},
	})
}

// Login authenticates and persists the session: a non-empty access_token in
// the response is stored, and the email argument becomes the stored display
// email (an empty argument clears it). Returns the full response object.
func (c *Client) Login(ctx context.Context, email, password string) (map[string]any, error) {
	resp, err := c.Request(ctx, pathLogin, &Options{
		Method: http.MethodPost,
		Body:   credentialsBody{Email: email, Password: password},
	})
	if err != nil {
		return nil, err
	}

	if tok, _ := resp["access_token"].(string); tok != "" {
		if err := c.creds.SetToken(tok); err != nil {
			return nil, err
		}
	}
	if err := c.creds.SetEmail(email); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListFiles returns the caller's uploaded documents. The array body gets the
// same lenient treatment as Request: an empty or unparsable success body
// yields an empty slice.
func (c *Client) ListFiles(ctx context.Context) ([]FileRecord, error) {
	text, err := c.Do(ctx, pathFiles, nil)
	if err != nil {
		return nil, err
	}
	if len(text) == 0 {
		return []FileRecord{}, nil
	}
	var files []FileRecord
	if err := json.Unmarshal(text, &files); err != nil {
		return []FileRecord{}, nil
	}
	return files, nil
}

// BuildIndex asks the service to rebuild the caller's RAG index. The
// response may carry a files_indexed count.
func (c *Client) BuildIndex(ctx context.Context) (map[string]any, error) {
	return c.Request(ctx, pathBuild, &Options{Method: http.MethodPost})
}

// Assess grades text against the caller's index.
func (c *Client) Assess(ctx context.Context, text string) (Assessment, error) {
	resp, err := c.Request(ctx, pathAssess, &Options{
		Method: http.MethodPost,
		Body:   map[string]string{"text": text},
	})
	if err != nil {
		return Assessment{}, err
	}

	var a Assessment
	if g, ok := resp["grade"].(float64); ok {
		a.Grade = g
	}
	if e, ok := resp["explanation"].(string); ok {
		a.Explanation = e
	}
	return a, nil
}
