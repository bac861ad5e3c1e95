package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"tracker-api/domain"
)

func TestJSONBinFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/b/bin-1/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Master-Key") != "secret" {
			t.Errorf("missing master key header")
		}
		if r.Header.Get("X-Bin-Meta") != "false" {
			t.Errorf("missing X-Bin-Meta header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"schema_version":1,"tasks":[{"id":2,"title":"Leetcode","status":"in_progress","notes":"daily"}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewJSONBin(srv.URL, "bin-1", "secret", time.Second)
	doc, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.SchemaVersion != 1 || len(doc.Tasks) != 1 {
		t.Fatalf("unexpected document: %#v", doc)
	}
	got := doc.Tasks[0]
	if got.ID != 2 || got.Title != "Leetcode" || got.Status != domain.StatusInProgress || got.Notes != "daily" {
		t.Fatalf("unexpected task: %#v", got)
	}
}

func TestJSONBinFetchEmptyTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"schema_version":1,"tasks":[]}`))
	}))
	t.Cleanup(srv.Close)

	doc, err := NewJSONBin(srv.URL, "bin-1", "secret", time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.Tasks == nil || len(doc.Tasks) != 0 {
		t.Fatalf("expected empty non-nil tasks, got %#v", doc.Tasks)
	}
}

func TestJSONBinFetchRejectsMalformedDocument(t *testing.T) {
	bodies := map[string]string{
		"tasks_not_array": `{"schema_version":1,"tasks":{"id":1}}`,
		"bad_status":      `{"tasks":[{"id":1,"title":"a","status":"soon"}]}`,
		"not_json":        `{"tasks":`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			t.Cleanup(srv.Close)

			_, err := NewJSONBin(srv.URL, "bin-1", "secret", time.Second).Fetch(context.Background())
			var terr *TransportError
			if !errors.As(err, &terr) {
				t.Fatalf("expected TransportError, got %v", err)
			}
		})
	}
}

func TestJSONBinFetchUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bin not found: "+strings.Repeat("x", 300), http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewJSONBin(srv.URL, "bin-1", "secret", time.Second).Fetch(context.Background())
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Status != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", terr.Status)
	}
	if len(terr.Body) > bodySnippetLen {
		t.Fatalf("body snippet too long: %d bytes", len(terr.Body))
	}
}

func TestJSONBinPush(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/b/bin-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		gotBody = body
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	doc := domain.NewDocument()
	task, err := domain.NewTask(1, "Learn Go", domain.StatusTodo)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	doc.Tasks = append(doc.Tasks, task)

	if err := NewJSONBin(srv.URL, "bin-1", "secret", time.Second).Push(context.Background(), doc); err != nil {
		t.Fatalf("push: %v", err)
	}

	var sent domain.Document
	if err := sonic.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("decode pushed body: %v", err)
	}
	if sent.SchemaVersion != 1 || len(sent.Tasks) != 1 || sent.Tasks[0].Title != "Learn Go" {
		t.Fatalf("unexpected pushed document: %#v", sent)
	}
}

func TestJSONBinPushUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	err := NewJSONBin(srv.URL, "bin-1", "secret", time.Second).Push(context.Background(), domain.NewDocument())
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Status != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", terr.Status)
	}
}

func TestJSONBinNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewJSONBin(srv.URL, "bin-1", "secret", time.Second).Fetch(context.Background())
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Err == nil {
		t.Fatal("expected wrapped network error")
	}
}
