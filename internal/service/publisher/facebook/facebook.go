package facebook

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

// Publisher posts to a Facebook page feed through the Graph API. Text-only
// posts go to /{page}/feed; posts with an image go to /{page}/photos, which
// attaches the image and uses the text as its caption.
type Publisher struct {
	logger   *zap.Logger
	client   *http.Client
	graphURL string
}

type graphResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
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
	return "facebook"
}

func (p *Publisher) Publish(ctx context.Context, creds publisher.Credentials, payload publisher.Payload) (publisher.Result, error) {
	if creds.AccessToken == "" {
		return publisher.Result{}, fmt.Errorf("facebook: access token is required")
	}
	pageID := creds.Extra["page_id"]
	if pageID == "" {
		return publisher.Result{}, fmt.Errorf("facebook: account metadata is missing page_id")
	}

	message := util.JoinCaption(payload.Text, payload.Hashtags)

	var endpoint string
	form := url.Values{}
	form.Set("access_token", creds.AccessToken)

	if payload.ImageURL != "" {
		endpoint = fmt.Sprintf("%s/%s/photos", p.graphURL, pageID)
		form.Set("url", payload.ImageURL)
		form.Set("caption", message)
	} else {
		endpoint = fmt.Sprintf("%s/%s/feed", p.graphURL, pageID)
		form.Set("message", message)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return publisher.Result{}, fmt.Errorf("facebook: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return publisher.Result{Message: "facebook publish timed out"}, nil
		}
		return publisher.Result{Message: fmt.Sprintf("facebook request failed: %v", err)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return publisher.Result{
			Message: fmt.Sprintf("facebook api status %d: %s", resp.StatusCode, string(body)),
		}, nil
	}

	var response graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return publisher.Result{Message: fmt.Sprintf("facebook response decode failed: %v", err)}, nil
	}

	postID := response.PostID
	if postID == "" {
		postID = response.ID
	}

	p.logger.Info("Facebook post published",
		zap.String("page_id", pageID),
		zap.String("post_id", postID),
		zap.Bool("with_image", payload.ImageURL != ""))

	return publisher.Result{
		OK:      true,
		Message: "posted:" + postID,
	}, nil
}
