package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidecast/tidecast/internal/config"
	"github.com/tidecast/tidecast/internal/models"
	"github.com/tidecast/tidecast/internal/store"
)

// TrendService discovers trending topics from the Google Trends RSS feed and
// persists them for the content pipeline to draw on. It is a pass-through
// collaborator: nothing in the publishing pipeline depends on it.
type TrendService struct {
	config *config.TrendsConfig
	store  *store.Store
	logger *zap.Logger
	client *http.Client
}

// DiscoverOptions narrows a discovery run. Zero values fall back to the
// configured defaults.
type DiscoverOptions struct {
	Language string
	Region   string
	Category string
}

type trendsFeed struct {
	Channel struct {
		Items []trendsFeedItem `xml:"item"`
	} `xml:"channel"`
}

type trendsFeedItem struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	ApproxTraffic string `xml:"approx_traffic"`
	PubDate       string `xml:"pubDate"`
}

func NewTrendService(cfg *config.TrendsConfig, st *store.Store, logger *zap.Logger) *TrendService {
	return &TrendService{
		config: cfg,
		store:  st,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Discover fetches the feed for the requested region and upserts every topic,
// returning what was discovered in this run.
func (s *TrendService) Discover(ctx context.Context, opts DiscoverOptions) ([]models.Trend, error) {
	region := opts.Region
	if region == "" {
		region = s.config.Region
	}
	language := opts.Language
	if language == "" {
		language = s.config.Language
	}
	category := opts.Category
	if category == "" {
		category = "general"
	}

	feedURL := fmt.Sprintf("%s?geo=%s&hl=%s", s.config.FeedURL, url.QueryEscape(region), url.QueryEscape(language))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trends feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trends feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var feed trendsFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode trends feed: %w", err)
	}

	now := time.Now()
	day := now.Format("2006-01-02")

	trends := make([]models.Trend, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if item.Title == "" {
			continue
		}

		trend := models.Trend{
			ID:           uuid.NewString(),
			Title:        item.Title,
			Region:       region,
			Day:          day,
			Language:     language,
			Category:     category,
			Traffic:      item.ApproxTraffic,
			SourceURL:    item.Link,
			DiscoveredAt: now,
		}

		if err := s.store.UpsertTrend(ctx, &trend); err != nil {
			s.logger.Warn("Failed to persist trend",
				zap.String("title", item.Title),
				zap.Error(err))
			continue
		}
		trends = append(trends, trend)
	}

	s.logger.Info("Trend discovery completed",
		zap.String("region", region),
		zap.Int("count", len(trends)))

	return trends, nil
}

func (s *TrendService) List(ctx context.Context, limit int) ([]models.Trend, error) {
	return s.store.ListTrends(ctx, limit)
}

func (s *TrendService) Get(ctx context.Context, id string) (*models.Trend, error) {
	return s.store.GetTrend(ctx, id)
}
