package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tidecast/tidecast/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return New(db)
}

func strPtr(s string) *string { return &s }

func TestCreateJobValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	cases := []struct {
		name string
		spec JobSpec
	}{
		{"empty platform", JobSpec{Platform: "", Payload: "hi", ScheduledFor: now}},
		{"blank platform", JobSpec{Platform: "   ", Payload: "hi", ScheduledFor: now}},
		{"zero timestamp", JobSpec{Platform: "twitter", Payload: "hi"}},
		{"no content source", JobSpec{Platform: "twitter", ScheduledFor: now}},
		{"blank payload only", JobSpec{Platform: "twitter", Payload: "   ", ScheduledFor: now}},
		{"empty content id and no payload", JobSpec{Platform: "twitter", ContentID: strPtr(""), ScheduledFor: now}},
	}

	for _, tc := range cases {
		_, err := st.CreateJob(ctx, tc.spec)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestCreateJobRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	when := time.Now().Add(2 * time.Hour)

	job, err := st.CreateJob(ctx, JobSpec{
		Platform:     "twitter",
		Payload:      "hello from the job store",
		ScheduledFor: when,
	})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	if job.ID == "" {
		t.Fatalf("expected an assigned id")
	}
	if job.Status != models.JobStatusPending {
		t.Fatalf("status = %q, want PENDING", job.Status)
	}
	if job.ScheduledFor.Unix() != when.Unix() {
		t.Fatalf("scheduledFor = %v, want %v", job.ScheduledFor, when)
	}

	got, err := st.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Platform != "twitter" || got.Payload != "hello from the job store" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.ScheduledFor.Unix() != when.Unix() {
		t.Fatalf("persisted scheduledFor = %v, want %v", got.ScheduledFor, when)
	}
}

func TestGetJobNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetJob(context.Background(), "missing")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestListDueJobsSelectionAndOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	mk := func(offset time.Duration) *models.ScheduledJob {
		job, err := st.CreateJob(ctx, JobSpec{
			Platform:     "twitter",
			Payload:      "due test",
			ScheduledFor: now.Add(offset),
		})
		if err != nil {
			t.Fatalf("CreateJob failed: %v", err)
		}
		return job
	}

	oldest := mk(-2 * time.Hour)
	newer := mk(-1 * time.Minute)
	exact := mk(0)
	future := mk(1 * time.Hour)

	// A terminal job must never come back as due.
	finished := mk(-3 * time.Hour)
	if err := st.UpdateJobResult(ctx, finished.ID, models.JobStatusPosted, "posted:1"); err != nil {
		t.Fatalf("UpdateJobResult failed: %v", err)
	}

	due, err := st.ListDueJobs(ctx, now)
	if err != nil {
		t.Fatalf("ListDueJobs failed: %v", err)
	}

	wantOrder := []string{oldest.ID, newer.ID, exact.ID}
	if len(due) != len(wantOrder) {
		t.Fatalf("got %d due jobs, want %d", len(due), len(wantOrder))
	}
	for i, id := range wantOrder {
		if due[i].ID != id {
			t.Fatalf("due[%d] = %s, want %s (oldest-due first)", i, due[i].ID, id)
		}
	}
	for _, j := range due {
		if j.ID == future.ID {
			t.Fatalf("future job must not be due")
		}
	}
}

func TestUpdateJobResultTerminalGuard(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, JobSpec{
		Platform:     "twitter",
		Payload:      "guard test",
		ScheduledFor: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	if err := st.UpdateJobResult(ctx, job.ID, models.JobStatusFailed, "rate_limited"); err != nil {
		t.Fatalf("first result write failed: %v", err)
	}

	// A second write against the terminal job is rejected, not silently
	// swallowed, and the first outcome stays intact.
	err = st.UpdateJobResult(ctx, job.ID, models.JobStatusPosted, "posted:2")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, err := st.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Status != models.JobStatusFailed || got.ResultMessage != "rate_limited" {
		t.Fatalf("terminal outcome changed: status=%q message=%q", got.Status, got.ResultMessage)
	}
}

func TestUpdateJobResultUnknownJob(t *testing.T) {
	st := newTestStore(t)

	err := st.UpdateJobResult(context.Background(), "missing", models.JobStatusPosted, "posted:1")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestUpdateJobResultRejectsNonTerminal(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, JobSpec{
		Platform:     "twitter",
		Payload:      "non-terminal test",
		ScheduledFor: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	if err := st.UpdateJobResult(ctx, job.ID, models.JobStatusPending, ""); err == nil {
		t.Fatalf("expected error writing a non-terminal status")
	}
}

func TestListRecentJobsLimitAndJoin(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	account, err := st.CreateAccount(ctx, AccountSpec{
		Platform:    "twitter",
		AccountName: "Tidecast Official",
		AccessToken: "tok",
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	artifact, err := st.CreateContent(ctx, ContentSpec{
		Content:  "artifact body",
		Hashtags: "#one #two",
	})
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		spec := JobSpec{
			Platform:     "twitter",
			Payload:      "listing",
			ScheduledFor: now.Add(time.Duration(i) * time.Minute),
		}
		if i == 4 {
			spec.AccountID = &account.ID
			spec.ContentID = &artifact.ID
			spec.Payload = ""
		}
		if _, err := st.CreateJob(ctx, spec); err != nil {
			t.Fatalf("CreateJob failed: %v", err)
		}
	}

	jobs, err := st.ListRecentJobs(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecentJobs failed: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs, want 3", len(jobs))
	}

	// Newest-scheduled first, with account and content joined for display.
	first := jobs[0]
	if first.Account == nil || first.Account.AccountName != "Tidecast Official" {
		t.Fatalf("expected joined account on newest job, got %+v", first.Account)
	}
	if first.Content == nil || first.Content.Content != "artifact body" {
		t.Fatalf("expected joined content on newest job, got %+v", first.Content)
	}
	for i := 1; i < len(jobs); i++ {
		if jobs[i-1].ScheduledFor.Before(jobs[i].ScheduledFor) {
			t.Fatalf("listing not ordered newest first")
		}
	}
}
