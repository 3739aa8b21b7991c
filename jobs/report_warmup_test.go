package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/finplan"
	"github.com/pulseboard/pulseboard/internal/ledger"
)

type stubPlanStore struct {
	rangeCalls []string
}

func (s *stubPlanStore) PlansInRange(ctx context.Context, orgID uuid.UUID, from, to string) ([]finplan.PlanRecord, error) {
	s.rangeCalls = append(s.rangeCalls, from+".."+to)
	return nil, nil
}

func (s *stubPlanStore) UpsertPlans(ctx context.Context, orgID uuid.UUID, plans []finplan.PlanRecord) error {
	return nil
}

func (s *stubPlanStore) TaxRate(ctx context.Context, orgID uuid.UUID) (float64, error) {
	return 0, nil
}

func (s *stubPlanStore) SaveTaxRate(ctx context.Context, orgID uuid.UUID, rate float64) error {
	return nil
}

func (s *stubPlanStore) ListCustomRows(ctx context.Context, orgID uuid.UUID) ([]finplan.CustomRow, error) {
	return nil, nil
}

func (s *stubPlanStore) InsertCustomRow(ctx context.Context, row finplan.CustomRow) error {
	return nil
}

func (s *stubPlanStore) DeleteCustomRow(ctx context.Context, orgID, id uuid.UUID) error {
	return nil
}

type stubLedger struct{}

func (stubLedger) TransactionsInRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ledger.Transaction, error) {
	return nil, nil
}

func (stubLedger) PayrollByMonth(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ledger.PayrollMonth, error) {
	return nil, nil
}

func (stubLedger) ProjectExpensesByMonth(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ledger.ProjectExpenseMonth, error) {
	return nil, nil
}

type stubOrgLister struct {
	orgs  []uuid.UUID
	since time.Time
}

func (s *stubOrgLister) OrganizationsWithPlans(ctx context.Context, updatedSince time.Time) ([]uuid.UUID, error) {
	s.since = updatedSince
	return s.orgs, nil
}

func TestReportWarmupBuildsTrailingWindow(t *testing.T) {
	store := &stubPlanStore{}
	svc := finplan.NewService(store, stubLedger{}, finplan.NewCache(nil, 0), slog.Default())
	lister := &stubOrgLister{orgs: []uuid.UUID{uuid.New(), uuid.New()}}

	job := NewReportWarmupJob(svc, lister, slog.Default(), nil)
	job.clock = func() time.Time {
		return time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	}

	task, err := NewReportWarmupTask(ReportWarmupPayload{Months: 6, ActiveSince: 30})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	// Two orgs, month and quarter granularity each.
	require.Len(t, store.rangeCalls, 4)
	require.Equal(t, "2025-01..2025-06", store.rangeCalls[0])
	require.Equal(t, time.Date(2025, 5, 16, 8, 0, 0, 0, time.UTC), lister.since)
}

func TestReportWarmupDefaultsPayload(t *testing.T) {
	store := &stubPlanStore{}
	svc := finplan.NewService(store, stubLedger{}, finplan.NewCache(nil, 0), slog.Default())
	lister := &stubOrgLister{orgs: []uuid.UUID{uuid.New()}}

	job := NewReportWarmupJob(svc, lister, slog.Default(), nil)
	job.clock = func() time.Time {
		return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	}

	task, err := NewReportWarmupTask(ReportWarmupPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Equal(t, "2024-04..2025-03", store.rangeCalls[0])
}

func TestReportWarmupSkipsRetryOnBadPayload(t *testing.T) {
	store := &stubPlanStore{}
	svc := finplan.NewService(store, stubLedger{}, finplan.NewCache(nil, 0), slog.Default())
	job := NewReportWarmupJob(svc, &stubOrgLister{}, slog.Default(), nil)

	task := asynq.NewTask(TaskReportWarmup, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
