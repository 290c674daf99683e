package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ragdesk/internal/session"

	"github.com/google/go-cmp/cmp"
)

// newTestClient wires a client to an httptest server with a fresh credential
// store backed by a temp dir.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds, err := session.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open credential store: %v", err)
	}
	return New(srv.URL, creds), creds
}

func TestRequest_SuccessParsesJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","count":2}`))
	})

	got, err := client.Request(context.Background(), "/api/rag/build", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	want := map[string]any{"message": "ok", "count": float64(2)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestRequest_EmptyBodyYieldsEmptyMap(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	got, err := client.Request(context.Background(), "/x", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestRequest_NonJSONSuccessYieldsEmptyMap(t *testing.T) {
	// A successful response whose body is plain text must yield an empty
	// result, not an error and not the raw text.
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("all good, thanks"))
	})

	got, err := client.Request(context.Background(), "/x", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty map for non-JSON success body, got %v", got)
	}
}

func TestDo_NonSuccessRaisesStatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not found"))
	})

	_, err := client.Do(context.Background(), "/api/files", nil)
	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if se.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", se.StatusCode)
	}
	if se.Path != "/api/files" {
		t.Errorf("Path = %q, want /api/files", se.Path)
	}
	if se.Body != "Not found" {
		t.Errorf("Body = %q, want \"Not found\"", se.Body)
	}
	if se.Error() != "Request failed (404)" {
		t.Errorf("Error() = %q, want \"Request failed (404)\"", se.Error())
	}
}

func TestDo_FailureWithEmptyBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Do(context.Background(), "/x", nil)
	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if se.Body != "" {
		t.Errorf("Body = %q, want empty string", se.Body)
	}
}

func TestDo_AuthorizationIffTokenStored(t *testing.T) {
	var gotAuth string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}

	client, creds := newTestClient(t, handler)

	// No token stored: no Authorization header at all
	if _, err := client.Do(context.Background(), "/x", nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}

	// Token stored: header appears
	if err := creds.SetToken("tok-1"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if _, err := client.Do(context.Background(), "/x", nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want \"Bearer tok-1\"", gotAuth)
	}
}

func TestDo_CallerCannotOverrideAuthorization(t *testing.T) {
	var gotAuth string
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	})
	if err := creds.SetToken("real"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	_, err := client.Do(context.Background(), "/x", &Options{
		Headers: map[string]string{"Authorization": "Bearer forged"},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotAuth != "Bearer real" {
		t.Errorf("Authorization = %q, the stored token must win", gotAuth)
	}
}

func TestDo_CallerOverridesContentType(t *testing.T) {
	var gotCT string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
	})

	// Default is JSON
	if _, err := client.Do(context.Background(), "/x", nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotCT != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotCT)
	}

	// Caller-supplied value wins
	_, err := client.Do(context.Background(), "/x", &Options{
		Headers: map[string]string{"Content-Type": "text/plain"},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotCT != "text/plain" {
		t.Errorf("Content-Type = %q, caller header must win", gotCT)
	}
}

func TestDo_MethodAndBody(t *testing.T) {
	var gotMethod, gotBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
	})

	_, err := client.Do(context.Background(), "/x", &Options{
		Method: http.MethodPost,
		Body:   map[string]string{"k": "v"},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotBody != `{"k":"v"}` {
		t.Errorf("body = %q, want {\"k\":\"v\"}", gotBody)
	}
}
