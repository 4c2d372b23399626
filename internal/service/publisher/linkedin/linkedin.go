package linkedin

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

const defaultAPIURL = "https://api.linkedin.com/v2/ugcPosts"

// Publisher creates UGC posts on behalf of a member or organization. The
// author URN comes from account metadata since it is not derivable from the
// token alone.
type Publisher struct {
	logger *zap.Logger
	client *http.Client
	apiURL string
}

type ugcPostRequest struct {
	Author          string                    `json:"author"`
	LifecycleState  string                    `json:"lifecycleState"`
	SpecificContent map[string]shareContent   `json:"specificContent"`
	Visibility      map[string]string         `json:"visibility"`
}

type shareContent struct {
	ShareCommentary    textBlock    `json:"shareCommentary"`
	ShareMediaCategory string       `json:"shareMediaCategory"`
	Media              []shareMedia `json:"media,omitempty"`
}

type textBlock struct {
	Text string `json:"text"`
}

type shareMedia struct {
	Status      string `json:"status"`
	OriginalURL string `json:"originalUrl"`
}

type ugcPostResponse struct {
	ID string `json:"id"`
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
	return "linkedin"
}

func (p *Publisher) Publish(ctx context.Context, creds publisher.Credentials, payload publisher.Payload) (publisher.Result, error) {
	if creds.AccessToken == "" {
		return publisher.Result{}, fmt.Errorf("linkedin: access token is required")
	}
	author := creds.Extra["author_urn"]
	if author == "" {
		return publisher.Result{}, fmt.Errorf("linkedin: account metadata is missing author_urn")
	}

	text := util.JoinCaption(payload.Text, payload.Hashtags)

	content := shareContent{
		ShareCommentary:    textBlock{Text: text},
		ShareMediaCategory: "NONE",
	}
	if payload.ImageURL != "" {
		content.ShareMediaCategory = "ARTICLE"
		content.Media = []shareMedia{{Status: "READY", OriginalURL: payload.ImageURL}}
	}

	body := ugcPostRequest{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]shareContent{
			"com.linkedin.ugc.ShareContent": content,
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return publisher.Result{}, fmt.Errorf("linkedin: failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return publisher.Result{}, fmt.Errorf("linkedin: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return publisher.Result{Message: "linkedin publish timed out"}, nil
		}
		return publisher.Result{Message: fmt.Sprintf("linkedin request failed: %v", err)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return publisher.Result{
			Message: fmt.Sprintf("linkedin api status %d: %s", resp.StatusCode, string(respBody)),
		}, nil
	}

	postID := resp.Header.Get("X-RestLi-Id")
	if postID == "" {
		var response ugcPostResponse
		if err := json.NewDecoder(resp.Body).Decode(&response); err == nil {
			postID = response.ID
		}
	}

	p.logger.Info("LinkedIn post published",
		zap.String("author", author),
		zap.String("post_id", postID))

	return publisher.Result{
		OK:      true,
		Message: "posted:" + postID,
	}, nil
}
