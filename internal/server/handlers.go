package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tidecast/tidecast/internal/service"
	"github.com/tidecast/tidecast/internal/store"
)

type enqueueRequest struct {
	Platform     string `json:"platform"`
	AccountID    string `json:"accountId"`
	ContentID    string `json:"contentId"`
	Payload      string `json:"payload"`
	ImageURL     string `json:"imageUrl"`
	ScheduledFor string `json:"scheduledFor"`
}

type publishRequest struct {
	ScheduledPostID string `json:"scheduledPostId"`
}

type createAccountRequest struct {
	Platform     string            `json:"platform"`
	AccountName  string            `json:"accountName"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	Metadata     map[string]string `json:"metadata"`
}

type discoverTrendsRequest struct {
	Language string `json:"language"`
	Region   string `json:"region"`
	Category string `json:"category"`
}

func (s *Server) handleEnqueue(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	scheduledFor, err := time.Parse(time.RFC3339, req.ScheduledFor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduledFor must be an RFC3339 timestamp"})
		return
	}

	spec := store.JobSpec{
		Platform:     req.Platform,
		Payload:      req.Payload,
		ImageURL:     req.ImageURL,
		ScheduledFor: scheduledFor,
	}
	if req.AccountID != "" {
		spec.AccountID = &req.AccountID
	}
	if req.ContentID != "" {
		spec.ContentID = &req.ContentID
	}

	job, err := s.Scheduler.Enqueue(c.Request.Context(), spec)
	if err != nil {
		var vErr *store.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		s.Logger.Error("Failed to enqueue job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           job.ID,
		"platform":     job.Platform,
		"scheduledFor": job.ScheduledFor.Format(time.RFC3339),
		"status":       job.Status,
	})
}

func (s *Server) handleListScheduled(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	jobs, err := s.Store.ListRecentJobs(c.Request.Context(), limit)
	if err != nil {
		s.Logger.Error("Failed to list scheduled jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list scheduled jobs"})
		return
	}

	posts := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		post := gin.H{
			"id":            job.ID,
			"platform":      job.Platform,
			"scheduledFor":  job.ScheduledFor.Format(time.RFC3339),
			"status":        job.Status,
			"payload":       job.Payload,
			"imageUrl":      job.ImageURL,
			"resultMessage": job.ResultMessage,
			"createdAt":     job.CreatedAt.Format(time.RFC3339),
			"updatedAt":     job.UpdatedAt.Format(time.RFC3339),
			"accountName":   nil,
		}
		if job.Account != nil {
			post["accountName"] = job.Account.AccountName
		}
		if job.Content != nil {
			post["content"] = job.Content.Content
			post["hashtags"] = job.Content.Hashtags
			if job.Content.ImageURL != "" {
				post["imageUrl"] = job.Content.ImageURL
			}
		}
		posts = append(posts, post)
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (s *Server) handlePublishNow(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ScheduledPostID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduledPostId is required"})
		return
	}

	result, err := s.Dispatcher.DispatchNow(c.Request.Context(), req.ScheduledPostID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Scheduled job not found"})
		case errors.Is(err, store.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "Job already completed"})
		default:
			s.Logger.Error("Failed to dispatch job", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to dispatch job"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRunDueCycle(c *gin.Context) {
	if err := s.Scheduler.RunDueCycle(c.Request.Context()); err != nil {
		s.Logger.Error("Scan cycle failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scan cycle failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleListAccounts(c *gin.Context) {
	accounts, err := s.Store.ListAccounts(c.Request.Context())
	if err != nil {
		s.Logger.Error("Failed to list accounts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	// Tokens stay server-side
	out := make([]gin.H, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, gin.H{
			"id":          account.ID,
			"platform":    account.Platform,
			"accountName": account.AccountName,
			"createdAt":   account.CreatedAt.Format(time.RFC3339),
			"updatedAt":   account.UpdatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

func (s *Server) handleCreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	account, err := s.Store.CreateAccount(c.Request.Context(), store.AccountSpec{
		Platform:     req.Platform,
		AccountName:  req.AccountName,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		Metadata:     req.Metadata,
	})
	if err != nil {
		var vErr *store.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		s.Logger.Error("Failed to create account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          account.ID,
		"platform":    account.Platform,
		"accountName": account.AccountName,
	})
}

func (s *Server) handleListTrends(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	trends, err := s.Trends.List(c.Request.Context(), limit)
	if err != nil {
		s.Logger.Error("Failed to list trends", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

func (s *Server) handleDiscoverTrends(c *gin.Context) {
	var req discoverTrendsRequest
	// An empty body means "use the configured defaults"
	_ = c.ShouldBindJSON(&req)

	trends, err := s.Trends.Discover(c.Request.Context(), service.DiscoverOptions{
		Language: req.Language,
		Region:   req.Region,
		Category: req.Category,
	})
	if err != nil {
		s.Logger.Error("Trend discovery failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Trend discovery failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

func (s *Server) handleGetTrend(c *gin.Context) {
	trend, err := s.Trends.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrTrendNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trend not found"})
			return
		}
		s.Logger.Error("Failed to get trend", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get trend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trend": trend})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	artifact, err := s.Generator.Generate(c.Request.Context(), req)
	if err != nil {
		s.Logger.Error("Content generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Content generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": artifact})
}

func (s *Server) handleListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": s.Registry.Platforms()})
}
