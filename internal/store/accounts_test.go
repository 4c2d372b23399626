package store

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAccountValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name string
		spec AccountSpec
	}{
		{"empty platform", AccountSpec{AccountName: "a", AccessToken: "t"}},
		{"empty name", AccountSpec{Platform: "twitter", AccessToken: "t"}},
		{"empty token", AccountSpec{Platform: "twitter", AccountName: "a"}},
	}

	for _, tc := range cases {
		_, err := st.CreateAccount(ctx, tc.spec)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestAccountMetadataRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	account, err := st.CreateAccount(ctx, AccountSpec{
		Platform:    "facebook",
		AccountName: "Page",
		AccessToken: "tok",
		Metadata:    map[string]string{"page_id": "998877"},
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	got, err := st.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}

	meta := got.MetadataMap()
	if meta["page_id"] != "998877" {
		t.Fatalf("metadata round trip failed: %v", meta)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetAccount(context.Background(), "missing")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
