package api

import (
	"context"
	"net/http"
	"testing"
)

func TestDownload_ReturnsBytesAndFilename(t *testing.T) {
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/files/download/7" {
			t.Errorf("path = %s, want /api/files/download/7", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-dl" {
			t.Errorf("Authorization = %q, want Bearer tok-dl", got)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="notes.txt"`)
		w.Write([]byte("file body"))
	})
	if err := creds.SetToken("tok-dl"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	f, err := client.Download(context.Background(), 7)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(f.Data) != "file body" {
		t.Errorf("data = %q, want %q", f.Data, "file body")
	}
	if f.Name != "notes.txt" {
		t.Errorf("name = %q, want notes.txt", f.Name)
	}
}

func TestDownload_NoContentDispositionLeavesNameEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("anonymous bytes"))
	})

	f, err := client.Download(context.Background(), 1)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if f.Name != "" {
		t.Errorf("name = %q, want empty", f.Name)
	}
	if string(f.Data) != "anonymous bytes" {
		t.Errorf("data = %q", f.Data)
	}
}

func TestDownload_FailureMirrorsGatewayTaxonomy(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"File not found"}`))
	})

	_, err := client.Download(context.Background(), 99)
	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if se.StatusCode != 404 || se.Path != "/api/files/download/99" {
		t.Errorf("got %+v", se)
	}
	if se.Body != `{"detail":"File not found"}` {
		t.Errorf("body = %q", se.Body)
	}
}

func TestDownload_NoTokenSendsNoAuthorization(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, present := r.Header["Authorization"]; present {
			t.Error("Authorization header should be absent without a token")
		}
		w.Write([]byte("ok"))
	})

	if _, err := client.Download(context.Background(), 2); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
}
