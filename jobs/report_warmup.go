package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/pulseboard/pulseboard/internal/finplan"
)

// OrgLister enumerates organizations worth warming.
type OrgLister interface {
	OrganizationsWithPlans(ctx context.Context, updatedSince time.Time) ([]uuid.UUID, error)
}

// ReportWarmupJob pre-populates report caches for recently active
// organizations so the first dashboard load of the day is warm.
type ReportWarmupJob struct {
	Service *finplan.Service
	Orgs    OrgLister
	Logger  *slog.Logger
	Metrics *Metrics
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(service *finplan.Service, orgs OrgLister, logger *slog.Logger, metrics *Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Service: service,
		Orgs:    orgs,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Service == nil || j.Orgs == nil {
		return errors.New("report warmup: handler not configured")
	}
	defer func(tracker *Tracker) {
		err = tracker.End(err)
	}(j.Metrics.Track(TaskReportWarmup))
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Months <= 0 {
		payload.Months = 12
	}
	if payload.ActiveSince <= 0 {
		payload.ActiveSince = 90
	}

	now := j.clock()
	since := now.AddDate(0, 0, -payload.ActiveSince)
	orgs, err := j.Orgs.OrganizationsWithPlans(ctx, since)
	if err != nil {
		return err
	}

	from := finplan.MonthKey(now.AddDate(0, -(payload.Months - 1), 0))
	to := finplan.MonthKey(now)
	var warmed, failed int
	for _, orgID := range orgs {
		for _, granularity := range []finplan.Granularity{finplan.GranularityMonth, finplan.GranularityQuarter} {
			_, err := j.Service.BuildReport(ctx, orgID, finplan.ReportRequest{
				From:        from,
				To:          to,
				Granularity: granularity,
			})
			if err == nil {
				warmed++
			} else {
				failed++
				if j.Logger != nil {
					j.Logger.Warn("report warmup",
						slog.String("org_id", orgID.String()),
						slog.String("granularity", string(granularity)),
						slog.Any("error", err))
				}
			}
		}
	}
	j.Metrics.AddWarmedReports(warmed)
	if j.Logger != nil {
		j.Logger.Info("report warmup done",
			slog.Int("orgs", len(orgs)),
			slog.Int("warmed", warmed),
			slog.Int("failed", failed))
	}
	return nil
}
