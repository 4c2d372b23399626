package publisher

import (
	"context"
)

// Credentials carries the per-account secrets handed to an adapter for one
// publish attempt. Extra holds platform-specific keys (page ids, author URNs)
// from the account metadata; adapters validate the keys they require.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	AccountID    string
	Extra        map[string]string
}

// Payload is the platform-neutral content of one publish attempt. Hashtags
// are pre-split into discrete tokens; all request shaping (auth headers,
// character limits, media upload sequencing) belongs to the adapter.
type Payload struct {
	Text     string
	ImageURL string
	Hashtags []string
}

// Result is the outcome of one publish attempt. Ordinary remote failures
// (auth rejection, rate limiting, network errors, timeouts) are reported as
// OK=false with a diagnostic message, never as an error.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Publisher is the uniform publish contract every platform adapter implements.
type Publisher interface {
	Name() string

	// Publish performs exactly one publish attempt. The error return is
	// reserved for fatal local configuration problems (a missing credential
	// or metadata key); everything the remote side does wrong comes back
	// inside the Result.
	Publish(ctx context.Context, creds Credentials, payload Payload) (Result, error)
}
