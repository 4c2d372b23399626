package publisher

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

type stubPublisher struct {
	name string
}

func (s *stubPublisher) Name() string { return s.name }

func (s *stubPublisher) Publish(context.Context, Credentials, Payload) (Result, error) {
	return Result{OK: true}, nil
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	pub := &stubPublisher{name: "twitter"}
	if err := r.Register(pub); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := r.Resolve("twitter")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != Publisher(pub) {
		t.Fatalf("Resolve returned a different publisher")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	if err := r.Register(&stubPublisher{name: "twitter"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&stubPublisher{name: "twitter"}); err == nil {
		t.Fatalf("expected an error registering the same platform twice")
	}
}

func TestResolveUnsupported(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	_, err := r.Resolve("mastodon")
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("expected ErrUnsupportedPlatform, got %v", err)
	}
}

func TestPlatformsSorted(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	for _, name := range []string{"twitter", "facebook", "linkedin", "instagram"} {
		if err := r.Register(&stubPublisher{name: name}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	want := []string{"facebook", "instagram", "linkedin", "twitter"}
	if got := r.Platforms(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Platforms() = %v, want %v", got, want)
	}
}
