package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/costadelinmigrante/news-importer/internal/domain"
)

func testEvent() Event {
	return NewEvent(domain.NewsDraft{
		Title:     "Playa Renovada",
		Slug:      "playa-renovada-123",
		Category:  "local",
		SourceURL: "https://diario.example.com/n/1",
	})
}

func TestHTTPPublisherDeliversEvent(t *testing.T) {
	var received Event
	var gotAuth, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:            srv.URL,
			Method:         "POST",
			Headers:        map[string]string{"Authorization": "Bearer token"},
			TimeoutSeconds: 5,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	if err := pub.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if received.Draft.Slug != "playa-renovada-123" {
		t.Errorf("payload draft = %+v", received.Draft)
	}
	if received.SourceURL != "https://diario.example.com/n/1" {
		t.Errorf("payload source url = %q", received.SourceURL)
	}
	if gotAuth != "Bearer token" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
}

func TestHTTPPublisherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL, Method: "POST", TimeoutSeconds: 5},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := pub.Publish(context.Background(), testEvent()); err == nil {
		t.Fatal("expected error for 503")
	}
}

func TestHTTPPublisherRequiresConfig(t *testing.T) {
	if _, err := newHTTPPublisher(context.Background(), PublisherConfig{ID: "x", Type: TypeHTTP}, nil); err == nil {
		t.Fatal("expected error for missing http config")
	}
}
