package sinks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestHTTPSinkPostsOneEventPerRecord(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %s", got)
		}
		var evt Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		mu.Lock()
		received = append(received, evt.SourceID)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := newHTTPSink(context.Background(), SinkConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPSink: %v", err)
	}

	if err := sink.Write(context.Background(), sampleResultSet()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 || received[0] != "golang" || received[1] != "rust" {
		t.Fatalf("unexpected events %v", received)
	}
}

func TestHTTPSinkErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	sink, err := newHTTPSink(context.Background(), SinkConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			TimeoutSeconds: 1,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPSink: %v", err)
	}

	if err := sink.Write(context.Background(), sampleResultSet()); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}
