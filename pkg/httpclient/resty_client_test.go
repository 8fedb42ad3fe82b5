package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientSendsUserAgentAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "DigestBot/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("Accept-Language"); got != "en" {
			t.Errorf("Accept-Language = %q", got)
		}
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer srv.Close()

	client := NewRestyClient(2*time.Second, "DigestBot/1.0")
	resp, err := client.Get(context.Background(), srv.URL, map[string]string{"Accept-Language": "en"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusTeapot {
		t.Fatalf("StatusCode = %d", resp.StatusCode())
	}
	if string(resp.Body()) != "short and stout" {
		t.Fatalf("Body = %q", resp.Body())
	}
}

func TestRestyClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewRestyClient(20*time.Millisecond, "")
	if _, err := client.Get(context.Background(), srv.URL, nil); err == nil {
		t.Fatalf("expected timeout error")
	}
}
