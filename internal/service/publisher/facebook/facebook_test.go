package facebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/tidecast/tidecast/internal/service/publisher"
)

func newTestPublisher(handler http.HandlerFunc) (*Publisher, *httptest.Server) {
	srv := httptest.NewServer(handler)
	p := New(zap.NewNop())
	p.graphURL = srv.URL
	return p, srv
}

func TestPublishTextToFeed(t *testing.T) {
	var gotPath, gotMessage, gotToken string

	p, srv := newTestPublisher(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotMessage = r.FormValue("message")
		gotToken = r.FormValue("access_token")
		w.Write([]byte(`{"id":"556_001"}`))
	})
	defer srv.Close()

	creds := publisher.Credentials{
		AccessToken: "tok",
		Extra:       map[string]string{"page_id": "556"},
	}
	result, err := p.Publish(context.Background(), creds, publisher.Payload{
		Text:     "Hello page",
		Hashtags: []string{"#demo"},
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if !result.OK || result.Message != "posted:556_001" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotPath != "/556/feed" {
		t.Fatalf("path = %q, want the page feed endpoint", gotPath)
	}
	if gotMessage != "Hello page\n\n#demo" {
		t.Fatalf("message = %q, want caption with hashtags", gotMessage)
	}
	if gotToken != "tok" {
		t.Fatalf("access_token = %q", gotToken)
	}
}

func TestPublishImageToPhotos(t *testing.T) {
	var gotPath, gotURL, gotCaption string

	p, srv := newTestPublisher(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotURL = r.FormValue("url")
		gotCaption = r.FormValue("caption")
		w.Write([]byte(`{"id":"img_1","post_id":"556_002"}`))
	})
	defer srv.Close()

	creds := publisher.Credentials{
		AccessToken: "tok",
		Extra:       map[string]string{"page_id": "556"},
	}
	result, err := p.Publish(context.Background(), creds, publisher.Payload{
		Text:     "Look at this",
		ImageURL: "https://img.example.com/a.png",
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if !result.OK || result.Message != "posted:556_002" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotPath != "/556/photos" {
		t.Fatalf("path = %q, want the photos endpoint", gotPath)
	}
	if gotURL != "https://img.example.com/a.png" || gotCaption != "Look at this" {
		t.Fatalf("photo form = url:%q caption:%q", gotURL, gotCaption)
	}
}

func TestPublishRequiresPageID(t *testing.T) {
	p := New(zap.NewNop())

	_, err := p.Publish(context.Background(), publisher.Credentials{AccessToken: "tok"}, publisher.Payload{Text: "hi"})
	if err == nil {
		t.Fatalf("expected a fatal error for missing page_id metadata")
	}
}

func TestPublishAPIError(t *testing.T) {
	p, srv := newTestPublisher(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	})
	defer srv.Close()

	creds := publisher.Credentials{
		AccessToken: "expired",
		Extra:       map[string]string{"page_id": "556"},
	}
	result, err := p.Publish(context.Background(), creds, publisher.Payload{Text: "hi"})
	if err != nil {
		t.Fatalf("remote failure must not be a fatal error: %v", err)
	}
	if result.OK {
		t.Fatalf("expected a failed result")
	}
}
