package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tidecast/tidecast/internal/service/publisher"
)

func newTestPublisher(handler http.HandlerFunc) (*Publisher, *httptest.Server) {
	srv := httptest.NewServer(handler)
	p := New(zap.NewNop())
	p.apiURL = srv.URL
	return p, srv
}

func TestPublishSuccess(t *testing.T) {
	var gotAuth string
	var gotBody createTweetRequest

	p, srv := newTestPublisher(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"123","text":"Hello world"}}`))
	})
	defer srv.Close()

	result, err := p.Publish(context.Background(), publisher.Credentials{AccessToken: "tok"}, publisher.Payload{
		Text:     "Hello world",
		Hashtags: []string{"#demo"},
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if !result.OK || result.Message != "posted:123" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotBody.Text != "Hello world\n\n#demo" {
		t.Fatalf("tweet text = %q, want caption with hashtags", gotBody.Text)
	}
}

func TestPublishTruncatesLongText(t *testing.T) {
	var gotBody createTweetRequest

	p, srv := newTestPublisher(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1"}}`))
	})
	defer srv.Close()

	long := strings.Repeat("a", 500)
	result, err := p.Publish(context.Background(), publisher.Credentials{AccessToken: "tok"}, publisher.Payload{Text: long})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !result.OK {
		t.Fatalf("unexpected result: %+v", result)
	}
	if n := utf8.RuneCountInString(gotBody.Text); n != maxTweetRunes {
		t.Fatalf("tweet length = %d runes, want %d", n, maxTweetRunes)
	}
	if !strings.HasSuffix(gotBody.Text, "…") {
		t.Fatalf("truncated tweet should end with an ellipsis")
	}
}

func TestPublishAPIError(t *testing.T) {
	p, srv := newTestPublisher(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"title":"Too Many Requests"}`))
	})
	defer srv.Close()

	result, err := p.Publish(context.Background(), publisher.Credentials{AccessToken: "tok"}, publisher.Payload{Text: "hi"})
	if err != nil {
		t.Fatalf("remote failure must not be a fatal error: %v", err)
	}
	if result.OK {
		t.Fatalf("expected a failed result")
	}
	if !strings.Contains(result.Message, "429") {
		t.Fatalf("message %q does not carry the status code", result.Message)
	}
}

func TestPublishRequiresAccessToken(t *testing.T) {
	p := New(zap.NewNop())

	_, err := p.Publish(context.Background(), publisher.Credentials{}, publisher.Payload{Text: "hi"})
	if err == nil {
		t.Fatalf("expected a fatal error for missing credentials")
	}
}
