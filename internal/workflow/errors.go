package workflow

import (
	"errors"

	"ragdesk/internal/api"
)

// Fallback messages for failures that carry no usable message of their own.
const (
	FallbackLogin    = "Failed to log in"
	FallbackSignup   = "Failed to sign up"
	FallbackUpload   = "Upload failed"
	FallbackBuild    = "Failed to build RAG"
	FallbackList     = "Failed to list files"
	FallbackAssess   = "Failed to assess text"
	FallbackDownload = "Failed to download file"
)

// Message classifies err for display. Gateway errors get special treatment:
// status summary plus the raw response body. Any other error with a message
// is shown verbatim. An absent or empty message falls back to the
// operation-specific default. Errors are never retried; this is the end of
// the line for them.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var se *api.StatusError
	if errors.As(err, &se) {
		if se.Body == "" {
			return se.Error()
		}
		return se.Error() + ": " + se.Body
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
