package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tidecast/tidecast/internal/service/publisher"
	"github.com/tidecast/tidecast/pkg/util"
)

const defaultAPIURL = "https://api.twitter.com/2/tweets"

// Tweets are limited to 280 characters counted in runes.
const maxTweetRunes = 280

// Publisher posts tweets through the X API v2.
type Publisher struct {
	logger *zap.Logger
	client *http.Client
	apiURL string
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

func New(logger *zap.Logger) *Publisher {
	return &Publisher{
		logger: logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiURL: defaultAPIURL,
	}
}

func (p *Publisher) Name() string {
	return "twitter"
}

func (p *Publisher) Publish(ctx context.Context, creds publisher.Credentials, payload publisher.Payload) (publisher.Result, error) {
	if creds.AccessToken == "" {
		return publisher.Result{}, fmt.Errorf("twitter: access token is required")
	}

	text := util.JoinCaption(payload.Text, payload.Hashtags)
	text = util.TruncateRunes(text, maxTweetRunes)

	jsonBody, err := json.Marshal(createTweetRequest{Text: text})
	if err != nil {
		return publisher.Result{}, fmt.Errorf("twitter: failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return publisher.Result{}, fmt.Errorf("twitter: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return publisher.Result{Message: "twitter publish timed out"}, nil
		}
		return publisher.Result{Message: fmt.Sprintf("twitter request failed: %v", err)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return publisher.Result{
			Message: fmt.Sprintf("twitter api status %d: %s", resp.StatusCode, string(body)),
		}, nil
	}

	var response createTweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return publisher.Result{Message: fmt.Sprintf("twitter response decode failed: %v", err)}, nil
	}

	p.logger.Info("Tweet posted",
		zap.String("tweet_id", response.Data.ID),
		zap.Int("text_len", len(text)))

	return publisher.Result{
		OK:      true,
		Message: "posted:" + response.Data.ID,
	}, nil
}
