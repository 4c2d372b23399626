package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tidecast/tidecast/internal/models"
	"github.com/tidecast/tidecast/internal/service/publisher"
	"github.com/tidecast/tidecast/internal/store"
	"github.com/tidecast/tidecast/pkg/util"
)

// Dispatcher turns one due job into exactly one publish attempt and one
// terminal status write. The timer-driven scan cycle and the manual publish
// endpoint both go through Attempt; there is no second dispatch code path.
type Dispatcher struct {
	store          *store.Store
	registry       *publisher.Registry
	monitoring     *MonitoringService
	logger         *zap.Logger
	publishTimeout time.Duration
}

func NewDispatcher(st *store.Store, registry *publisher.Registry, monitoring *MonitoringService, logger *zap.Logger, publishTimeout time.Duration) *Dispatcher {
	if publishTimeout <= 0 {
		publishTimeout = 30 * time.Second
	}
	return &Dispatcher{
		store:          st,
		registry:       registry,
		monitoring:     monitoring,
		logger:         logger,
		publishTimeout: publishTimeout,
	}
}

// Attempt resolves the job's content, credentials and publisher, performs the
// publish and commits the terminal result. The returned error is non-nil only
// when the result could not be committed; store.ErrInvalidTransition means
// another attempt already completed and this result was discarded.
func (d *Dispatcher) Attempt(ctx context.Context, job *models.ScheduledJob) (publisher.Result, error) {
	result := d.resolveAndPublish(ctx, job)

	status := models.JobStatusFailed
	if result.OK {
		status = models.JobStatusPosted
	}

	if err := d.store.UpdateJobResult(ctx, job.ID, status, result.Message); err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			d.logger.Warn("Another attempt already completed, discarding result",
				zap.String("job_id", job.ID),
				zap.String("platform", job.Platform))
			return result, err
		}
		d.logger.Error("Failed to record job result",
			zap.String("job_id", job.ID),
			zap.Error(err))
		return result, err
	}

	if result.OK {
		d.logger.Info("Job posted",
			zap.String("job_id", job.ID),
			zap.String("platform", job.Platform),
			zap.String("message", result.Message))
	} else {
		d.logger.Warn("Job failed",
			zap.String("job_id", job.ID),
			zap.String("platform", job.Platform),
			zap.String("message", result.Message))
		d.monitoring.RecordError("ERROR", "dispatcher", "Publish attempt failed", result.Message,
			WithPlatform(job.Platform),
			WithJob(job.ID))
	}

	return result, nil
}

// DispatchNow performs a manual publish of a single job outside the periodic
// cycle. A job that already reached a terminal state is rejected with
// store.ErrInvalidTransition before any publisher is touched.
func (d *Dispatcher) DispatchNow(ctx context.Context, jobID string) (publisher.Result, error) {
	job, err := d.store.GetJob(ctx, jobID)
	if err != nil {
		return publisher.Result{}, err
	}

	if job.Status.Terminal() {
		return publisher.Result{}, fmt.Errorf("job %s: %w", jobID, store.ErrInvalidTransition)
	}

	return d.Attempt(ctx, job)
}

// resolveAndPublish runs the per-job algorithm: content first, credentials
// second, publisher third, then the bounded remote call. Every failure along
// the way degrades to an OK=false result so the caller commits exactly one
// terminal write.
func (d *Dispatcher) resolveAndPublish(ctx context.Context, job *models.ScheduledJob) publisher.Result {
	// Resolve content. The artifact takes priority over the inline payload.
	text := job.Payload
	imageURL := job.ImageURL
	hashtags := ""

	if job.ContentID != nil {
		artifact, err := d.store.GetContent(ctx, *job.ContentID)
		switch {
		case errors.Is(err, store.ErrContentNotFound):
			return publisher.Result{Message: fmt.Sprintf("content artifact %s not found", *job.ContentID)}
		case err != nil:
			return publisher.Result{Message: fmt.Sprintf("failed to load content artifact: %v", err)}
		default:
			text = artifact.Content
			hashtags = artifact.Hashtags
			if artifact.ImageURL != "" {
				imageURL = artifact.ImageURL
			}
		}
	}

	if strings.TrimSpace(text) == "" {
		return publisher.Result{Message: "no content to publish: job has neither a content artifact nor an inline payload"}
	}

	// Resolve credentials. A job without an account resolves to empty
	// credentials; adapters reject an empty access token as a fatal error
	// rather than silently posting with empty secrets.
	creds := publisher.Credentials{}
	if job.AccountID != nil {
		account, err := d.store.GetAccount(ctx, *job.AccountID)
		switch {
		case errors.Is(err, store.ErrAccountNotFound):
			d.logger.Warn("Account referenced by job no longer exists",
				zap.String("job_id", job.ID),
				zap.String("account_id", *job.AccountID))
		case err != nil:
			return publisher.Result{Message: fmt.Sprintf("failed to load platform account: %v", err)}
		default:
			creds = publisher.Credentials{
				AccessToken:  account.AccessToken,
				RefreshToken: account.RefreshToken,
				AccountID:    account.ID,
				Extra:        account.MetadataMap(),
			}
		}
	}

	// Resolve the publisher.
	pub, err := d.registry.Resolve(job.Platform)
	if err != nil {
		return publisher.Result{Message: err.Error()}
	}

	payload := publisher.Payload{
		Text:     text,
		ImageURL: imageURL,
		Hashtags: util.SplitHashtags(hashtags),
	}

	pubCtx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	result, err := pub.Publish(pubCtx, creds, payload)
	if err != nil {
		// Fatal local configuration error from the adapter; non-retriable.
		return publisher.Result{Message: err.Error()}
	}

	if !result.OK && result.Message == "" && errors.Is(pubCtx.Err(), context.DeadlineExceeded) {
		result.Message = fmt.Sprintf("publish timed out after %s", d.publishTimeout)
	}

	return result
}
