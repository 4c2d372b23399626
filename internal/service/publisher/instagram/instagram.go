package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tidecast/tidecast/internal/service/publisher"
	"github.com/tidecast/tidecast/pkg/util"
)

const defaultGraphURL = "https://graph.facebook.com/v19.0"

// Publisher posts to an Instagram business account through the Graph API.
// Publishing is a two-step sequence: create a media container with the image
// and caption, then publish the container.
type Publisher struct {
	logger   *zap.Logger
	client   *http.Client
	graphURL string
}

type graphResponse struct {
	ID string `json:"id"`
}

func New(logger *zap.Logger) *Publisher {
	return &Publisher{
		logger: logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		graphURL: defaultGraphURL,
	}
}

func (p *Publisher) Name() string {
	return "instagram"
}

func (p *Publisher) Publish(ctx context.Context, creds publisher.Credentials, payload publisher.Payload) (publisher.Result, error) {
	if creds.AccessToken == "" {
		return publisher.Result{}, fmt.Errorf("instagram: access token is required")
	}
	userID := creds.Extra["ig_user_id"]
	if userID == "" {
		return publisher.Result{}, fmt.Errorf("instagram: account metadata is missing ig_user_id")
	}

	// Instagram has no text-only posts. This is a content problem, not a
	// configuration problem, so it is an ordinary failure.
	if payload.ImageURL == "" {
		return publisher.Result{Message: "instagram requires an image url"}, nil
	}

	caption := util.JoinCaption(payload.Text, payload.Hashtags)

	// Step 1: create the media container.
	containerForm := url.Values{}
	containerForm.Set("access_token", creds.AccessToken)
	containerForm.Set("image_url", payload.ImageURL)
	containerForm.Set("caption", caption)

	container, result, err := p.post(ctx, fmt.Sprintf("%s/%s/media", p.graphURL, userID), containerForm)
	if err != nil || !result.OK {
		return result, err
	}

	// Step 2: publish the container.
	publishForm := url.Values{}
	publishForm.Set("access_token", creds.AccessToken)
	publishForm.Set("creation_id", container.ID)

	media, result, err := p.post(ctx, fmt.Sprintf("%s/%s/media_publish", p.graphURL, userID), publishForm)
	if err != nil || !result.OK {
		return result, err
	}

	p.logger.Info("Instagram media published",
		zap.String("ig_user_id", userID),
		zap.String("media_id", media.ID))

	return publisher.Result{
		OK:      true,
		Message: "posted:" + media.ID,
	}, nil
}

func (p *Publisher) post(ctx context.Context, endpoint string, form url.Values) (*graphResponse, publisher.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, publisher.Result{}, fmt.Errorf("instagram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, publisher.Result{Message: "instagram publish timed out"}, nil
		}
		return nil, publisher.Result{Message: fmt.Sprintf("instagram request failed: %v", err)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, publisher.Result{
			Message: fmt.Sprintf("instagram api status %d: %s", resp.StatusCode, string(body)),
		}, nil
	}

	var response graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, publisher.Result{Message: fmt.Sprintf("instagram response decode failed: %v", err)}, nil
	}

	return &response, publisher.Result{OK: true}, nil
}
