package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_History(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>history</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "test-agent")
	body, err := c.History(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(body) != "<html>history</html>" {
		t.Errorf("unexpected body %q", body)
	}
	if gotPath != "/symbol/aapl/historical" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotUA != "test-agent" {
		t.Errorf("unexpected user agent %q", gotUA)
	}
}

func TestClient_Trades(t *testing.T) {
	var gotPath, gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPage = r.URL.Query().Get("page")
		_, _ = w.Write([]byte("<html>trades</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/", "")
	if _, err := c.Trades(context.Background(), "MSFT", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/symbol/msft/insider-trades" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotPage != "3" {
		t.Errorf("expected page=3, got %q", gotPage)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "")
	_, err := c.History(context.Background(), "AAPL")
	if !IsStatusError(err) {
		t.Fatalf("expected StatusError, got %v", err)
	}

	se := err.(*StatusError)
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", se.StatusCode)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(NewHTTPClient(time.Second), url, "")
	_, err := c.History(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if IsStatusError(err) {
		t.Errorf("transport failure must not be a StatusError: %v", err)
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.Client(), srv.URL, "")
	if _, err := c.Trades(ctx, "AAPL", 1); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
