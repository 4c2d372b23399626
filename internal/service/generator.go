package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tidecast/tidecast/internal/config"
	"github.com/tidecast/tidecast/internal/models"
	"github.com/tidecast/tidecast/internal/store"
)

// GeneratorService produces platform-tailored post drafts through an
// OpenAI-compatible chat completions endpoint and stores each draft as an
// immutable content artifact. Like trend discovery it is a pass-through
// collaborator of the publishing pipeline.
type GeneratorService struct {
	config *config.GeneratorConfig
	store  *store.Store
	logger *zap.Logger
	client *http.Client
}

// GenerateRequest describes the draft to produce.
type GenerateRequest struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
	ImageURL string `json:"imageUrl"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewGeneratorService(cfg *config.GeneratorConfig, st *store.Store, logger *zap.Logger) *GeneratorService {
	return &GeneratorService{
		config: cfg,
		store:  st,
		logger: logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Generate requests a draft and persists it as a ContentArtifact.
func (s *GeneratorService) Generate(ctx context.Context, req GenerateRequest) (*models.ContentArtifact, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if s.config.APIKey == "" {
		return nil, fmt.Errorf("content generation is not configured: missing api key")
	}

	tone := req.Tone
	if tone == "" {
		tone = "engaging"
	}
	platform := req.Platform
	if platform == "" {
		platform = "twitter"
	}

	prompt := fmt.Sprintf(
		"Write a short, %s social media post for %s about: %s\n"+
			"Reply with the post text only, followed by one final line containing space-separated hashtags.",
		tone, platform, req.Topic)

	body, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	text, hashtags := splitDraft(body)
	if text == "" {
		return nil, fmt.Errorf("generator returned an empty draft")
	}

	artifact, err := s.store.CreateContent(ctx, store.ContentSpec{
		Topic:    req.Topic,
		Platform: platform,
		Content:  text,
		ImageURL: req.ImageURL,
		Hashtags: hashtags,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Content artifact generated",
		zap.String("content_id", artifact.ID),
		zap.String("platform", platform),
		zap.String("topic", req.Topic))

	return artifact, nil
}

func (s *GeneratorService) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	endpoint := strings.TrimSuffix(s.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call generation api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation api returned status %d: %s", resp.StatusCode, string(body))
	}

	var response chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("generation api returned no choices")
	}

	return response.Choices[0].Message.Content, nil
}

// splitDraft separates the hashtag line from the post body. The final line is
// treated as hashtags only when every token on it starts with '#'.
func splitDraft(draft string) (text, hashtags string) {
	draft = strings.TrimSpace(draft)
	lines := strings.Split(draft, "\n")
	if len(lines) < 2 {
		return draft, ""
	}

	last := strings.TrimSpace(lines[len(lines)-1])
	fields := strings.Fields(last)
	if len(fields) == 0 {
		return draft, ""
	}
	for _, f := range fields {
		if !strings.HasPrefix(f, "#") {
			return draft, ""
		}
	}

	text = strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
	return text, last
}
