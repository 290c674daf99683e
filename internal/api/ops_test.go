package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLogin_StoresTokenAndEmail(t *testing.T) {
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"access_token":"T","user":{"id":1}}`))
	})

	resp, err := client.Login(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if got := creds.Token(); got != "T" {
		t.Errorf("stored token = %q, want T", got)
	}
	if got := creds.Email(); got != "a@b.com" {
		t.Errorf("stored email = %q, want a@b.com", got)
	}

	// Returned value equals the full response object
	want := map[string]any{"access_token": "T", "user": map[string]any{"id": float64(1)}}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestLogin_EmptyEmailClearsStoredEmail(t *testing.T) {
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"T2"}`))
	})
	if err := creds.SetEmail("old@b.com"); err != nil {
		t.Fatalf("SetEmail failed: %v", err)
	}

	if _, err := client.Login(context.Background(), "", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if got := creds.Token(); got != "T2" {
		t.Errorf("stored token = %q, want T2", got)
	}
	if got := creds.Email(); got != "" {
		t.Errorf("stored email = %q, want cleared", got)
	}
}

func TestLogin_NoTokenInResponseLeavesStoreAlone(t *testing.T) {
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detail":"ok but no token"}`))
	})
	if err := creds.SetToken("existing"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	if _, err := client.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got := creds.Token(); got != "existing" {
		t.Errorf("token = %q, an absent access_token must not clear it", got)
	}
}

func TestRegister_SendsCredentials(t *testing.T) {
	var gotBody string
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{"id":1,"email":"a@b.com"}`))
	})

	if _, err := client.Register(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if gotBody != `{"email":"a@b.com","password":"pw"}` {
		t.Errorf("body = %s", gotBody)
	}
	// Register never touches the session
	if creds.Token() != "" || creds.Email() != "" {
		t.Errorf("register must not write credentials, got token=%q email=%q", creds.Token(), creds.Email())
	}
}

func TestListFiles_ParsesArray(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Write([]byte(`[{"id":3,"filename":"notes.txt","path":"/d/3/notes.txt","created_at":"2026-01-02T03:04:05"}]`))
	})

	files, err := client.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	f := files[0]
	if f.ID != 3 || f.Filename != "notes.txt" || f.CreatedAt != "2026-01-02T03:04:05" {
		t.Errorf("unexpected record: %+v", f)
	}
}

func TestListFiles_FailurePropagatesStatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not found"))
	})

	_, err := client.ListFiles(context.Background())
	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if se.StatusCode != 404 || se.Path != "/api/files" || se.Body != "Not found" {
		t.Errorf("got %+v", se)
	}
}

func TestListFiles_NonArraySuccessYieldsEmptySlice(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	files, err := client.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected empty slice, got %v", files)
	}
}

func TestUpload_MultipartParts(t *testing.T) {
	var fileNames, contents []string
	var gotAuth, gotCT string

	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
			return
		}
		for _, fh := range r.MultipartForm.File["files"] {
			fileNames = append(fileNames, fh.Filename)
			f, _ := fh.Open()
			data, _ := io.ReadAll(f)
			f.Close()
			contents = append(contents, string(data))
		}
		w.Write([]byte(`{"saved":["a.txt","b.txt"]}`))
	})
	if err := creds.SetToken("up-tok"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	resp, err := client.Upload(context.Background(), []UploadFile{
		{Name: "a.txt", Content: strings.NewReader("alpha")},
		{Name: "b.txt", Content: strings.NewReader("beta")},
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if len(fileNames) != 2 || fileNames[0] != "a.txt" || fileNames[1] != "b.txt" {
		t.Fatalf("filenames = %v", fileNames)
	}
	if contents[0] != "alpha" || contents[1] != "beta" {
		t.Errorf("contents = %v", contents)
	}
	if gotAuth != "Bearer up-tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	// The transport owns the boundary; no JSON content type here
	if !strings.HasPrefix(gotCT, "multipart/form-data; boundary=") {
		t.Errorf("Content-Type = %q, want multipart with boundary", gotCT)
	}

	saved, _ := resp["saved"].([]any)
	if len(saved) != 2 {
		t.Errorf("resp = %v", resp)
	}
}

func TestUpload_FailureMirrorsGatewayTaxonomy(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Not authenticated"}`))
	})

	_, err := client.Upload(context.Background(), []UploadFile{
		{Name: "a.txt", Content: strings.NewReader("x")},
	})
	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if se.StatusCode != 401 || se.Path != "/api/files/upload" {
		t.Errorf("got %+v", se)
	}
	if se.Body != `{"detail":"Not authenticated"}` {
		t.Errorf("Body = %q", se.Body)
	}
}

func TestBuildIndex_PostsWithoutBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/rag/build" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"message":"RAG index built","files_indexed":4}`))
	})

	resp, err := client.BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}
	if n, _ := resp["files_indexed"].(float64); n != 4 {
		t.Errorf("files_indexed = %v", resp["files_indexed"])
	}
}

func TestAssess_SendsTextAndParsesResult(t *testing.T) {
	var gotBody map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"grade":0,"explanation":"no text, no marks"}`))
	})

	// Empty text is a legal submission and must be sent as {"text":""}
	a, err := client.Assess(context.Background(), "")
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if gotBody["text"] != "" {
		t.Errorf("sent text = %q, want empty string", gotBody["text"])
	}
	if _, present := gotBody["text"]; !present {
		t.Error("text field missing from request body")
	}
	if a.Grade != 0 || a.Explanation != "no text, no marks" {
		t.Errorf("got %+v", a)
	}
}

func TestAssess_MissingFieldsYieldZeroValue(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	a, err := client.Assess(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if a.Grade != 0 || a.Explanation != "" {
		t.Errorf("got %+v, want zero value", a)
	}
}
