package finplan

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/ledger"
)

// PlanStore persists planning records and settings.
type PlanStore interface {
	PlansInRange(ctx context.Context, orgID uuid.UUID, from, to string) ([]PlanRecord, error)
	UpsertPlans(ctx context.Context, orgID uuid.UUID, plans []PlanRecord) error
	TaxRate(ctx context.Context, orgID uuid.UUID) (float64, error)
	SaveTaxRate(ctx context.Context, orgID uuid.UUID, rate float64) error
	ListCustomRows(ctx context.Context, orgID uuid.UUID) ([]CustomRow, error)
	InsertCustomRow(ctx context.Context, row CustomRow) error
	DeleteCustomRow(ctx context.Context, orgID, id uuid.UUID) error
}

// LedgerReader exposes the external fact sources consumed by the grids.
type LedgerReader interface {
	TransactionsInRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ledger.Transaction, error)
	PayrollByMonth(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ledger.PayrollMonth, error)
	ProjectExpensesByMonth(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ledger.ProjectExpenseMonth, error)
}

// Service orchestrates projection builds and plan persistence.
type Service struct {
	plans         PlanStore
	ledger        LedgerReader
	cache         *Cache
	logger        *slog.Logger
	generation    atomic.Uint64
	buildObserver func(granularity string, elapsed time.Duration)
}

// NewService constructs a Service instance.
func NewService(plans PlanStore, ledgerReader LedgerReader, cache *Cache, logger *slog.Logger) *Service {
	return &Service{plans: plans, ledger: ledgerReader, cache: cache, logger: logger}
}

// SetBuildObserver registers a callback invoked after every full report
// build, cached hits excluded.
func (s *Service) SetBuildObserver(fn func(granularity string, elapsed time.Duration)) {
	s.buildObserver = fn
}

// ReportRequest carries the parameters of one projection build.
type ReportRequest struct {
	From        string // YYYY-MM
	To          string // YYYY-MM
	Granularity Granularity
	Overrides   Overrides
}

func (req ReportRequest) granularity() Granularity {
	if req.Granularity == GranularityQuarter {
		return GranularityQuarter
	}
	return GranularityMonth
}

// BuildReport recomputes the full projection for the range. The build is
// a pure fold over fetched inputs; every call recomputes from scratch.
// Each report carries a monotonically increasing generation token so a
// caller juggling overlapping builds can discard stale results instead of
// letting the last write win silently.
//
// A nil organization or reversed range yields an empty report, not an
// error. Reports without overrides are served from and stored in the
// cache; overridden builds are session-local and never cached.
func (s *Service) BuildReport(ctx context.Context, orgID uuid.UUID, req ReportRequest) (Report, error) {
	gen := s.generation.Add(1)
	empty := Report{
		OrgID:          orgID,
		From:           req.From,
		To:             req.To,
		Granularity:    req.granularity(),
		BreakEvenIndex: BreakEvenNotFound,
		Generation:     gen,
	}
	if orgID == uuid.Nil {
		return empty, nil
	}
	from, err := ParseMonthKey(req.From)
	if err != nil {
		return Report{}, err
	}
	to, err := ParseMonthKey(req.To)
	if err != nil {
		return Report{}, err
	}
	months := MonthRange(from, to)
	if len(months) == 0 {
		return empty, nil
	}

	req.Overrides = req.Overrides.Normalize()
	if req.Overrides.Empty() && s.cache != nil {
		key, err := s.cache.BuildKey(ctx, orgID, req.From, req.To, string(req.granularity()))
		if err == nil {
			var cached Report
			err = s.cache.FetchJSON(ctx, key, &cached, func(ctx context.Context) (any, error) {
				return s.buildReport(ctx, orgID, req, months)
			})
			if err == nil {
				cached.Generation = gen
				return cached, nil
			}
		}
		if s.logger != nil {
			s.logger.Warn("report cache bypass", slog.Any("error", err))
		}
	}

	report, err := s.buildReport(ctx, orgID, req, months)
	if err != nil {
		return Report{}, err
	}
	report.Generation = gen
	return report, nil
}

func (s *Service) buildReport(ctx context.Context, orgID uuid.UUID, req ReportRequest, months []Period) (Report, error) {
	if s.buildObserver != nil {
		start := time.Now()
		defer func() {
			s.buildObserver(string(req.granularity()), time.Since(start))
		}()
	}
	first := months[0]
	last := months[len(months)-1]

	txs, err := s.ledger.TransactionsInRange(ctx, orgID, first.Start, last.End)
	if err != nil {
		return Report{}, fmt.Errorf("finplan: load transactions: %w", err)
	}
	payroll, err := s.ledger.PayrollByMonth(ctx, orgID, first.Start, last.End)
	if err != nil {
		return Report{}, fmt.Errorf("finplan: load payroll: %w", err)
	}
	projectExpenses, err := s.ledger.ProjectExpensesByMonth(ctx, orgID, first.Start, last.End)
	if err != nil {
		return Report{}, fmt.Errorf("finplan: load project expenses: %w", err)
	}
	plans, err := s.plans.PlansInRange(ctx, orgID, first.Key, last.Key)
	if err != nil {
		return Report{}, fmt.Errorf("finplan: load plans: %w", err)
	}
	customRows, err := s.plans.ListCustomRows(ctx, orgID)
	if err != nil {
		return Report{}, fmt.Errorf("finplan: load custom rows: %w", err)
	}
	taxRate, err := s.plans.TaxRate(ctx, orgID)
	if err != nil {
		return Report{}, fmt.Errorf("finplan: load tax rate: %w", err)
	}

	planByMonth := make(map[string]PlanRecord, len(plans))
	for _, p := range plans {
		planByMonth[p.Month] = p
	}
	resolver := Resolver{
		Facts:     BuildFacts(months, txs, payroll, projectExpenses),
		Plans:     planByMonth,
		Overrides: req.Overrides,
	}

	rows := ComputeRows(months, resolver, taxRate)
	cash := ComputeCashFlow(months, resolver, customRows)
	breakEven := BreakEvenIndex(rows)
	periods := months
	if req.granularity() == GranularityQuarter {
		rows = AggregateQuarters(rows)
		cash = AggregateCashQuarters(cash)
		// Break-even is only meaningful month by month.
		breakEven = BreakEvenNotFound
		periods = make([]Period, len(rows))
		for i, row := range rows {
			periods[i] = row.Period
		}
	}

	return Report{
		OrgID:          orgID,
		From:           req.From,
		To:             req.To,
		Granularity:    req.granularity(),
		TaxRate:        taxRate,
		Periods:        periods,
		Rows:           rows,
		CashFlow:       cash,
		BreakEvenIndex: breakEven,
	}, nil
}

// SavePlansInput carries one bulk save: all months in the edited range
// submitted together, optionally with a tax rate change.
type SavePlansInput struct {
	Plans   []PlanRecord
	TaxRate *float64
}

// SavePlans validates and persists the batch in one transaction. On error
// nothing is committed and the caller's edit session stays intact; the
// service never clears or rolls back override state it does not own.
func (s *Service) SavePlans(ctx context.Context, orgID uuid.UUID, input SavePlansInput) error {
	if orgID == uuid.Nil {
		return fmt.Errorf("finplan: organization required")
	}
	seen := make(map[string]struct{}, len(input.Plans))
	for i := range input.Plans {
		p := &input.Plans[i]
		if _, err := ParseMonthKey(p.Month); err != nil {
			return err
		}
		if _, dup := seen[p.Month]; dup {
			return fmt.Errorf("finplan: duplicate month %s in batch", p.Month)
		}
		seen[p.Month] = struct{}{}
		p.OrgID = orgID
		sanitizePlan(p)
	}
	if err := s.plans.UpsertPlans(ctx, orgID, input.Plans); err != nil {
		return err
	}
	if input.TaxRate != nil {
		if err := s.plans.SaveTaxRate(ctx, orgID, *input.TaxRate); err != nil {
			return err
		}
	}
	s.bumpCache(ctx, orgID)
	return nil
}

// GetTaxRate returns the organization's tax rate setting.
func (s *Service) GetTaxRate(ctx context.Context, orgID uuid.UUID) (float64, error) {
	if orgID == uuid.Nil {
		return 0, fmt.Errorf("finplan: organization required")
	}
	return s.plans.TaxRate(ctx, orgID)
}

// SaveTaxRate stores the organization's tax rate setting.
func (s *Service) SaveTaxRate(ctx context.Context, orgID uuid.UUID, rate float64) error {
	if orgID == uuid.Nil {
		return fmt.Errorf("finplan: organization required")
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 || rate > 1 {
		return fmt.Errorf("finplan: tax rate must be between 0 and 1")
	}
	if err := s.plans.SaveTaxRate(ctx, orgID, rate); err != nil {
		return err
	}
	s.bumpCache(ctx, orgID)
	return nil
}

// ListCustomRows returns the organization's custom cash-flow rows.
func (s *Service) ListCustomRows(ctx context.Context, orgID uuid.UUID) ([]CustomRow, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("finplan: organization required")
	}
	return s.plans.ListCustomRows(ctx, orgID)
}

// CreateCustomRow defines a new custom cash-flow row for the organization.
func (s *Service) CreateCustomRow(ctx context.Context, orgID uuid.UUID, name string, section Section) (CustomRow, error) {
	if orgID == uuid.Nil {
		return CustomRow{}, fmt.Errorf("finplan: organization required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return CustomRow{}, fmt.Errorf("finplan: row name is required")
	}
	if !section.Valid() {
		return CustomRow{}, fmt.Errorf("finplan: unknown section %q", section)
	}
	row := CustomRow{
		ID:      uuid.New(),
		OrgID:   orgID,
		Name:    name,
		Section: section,
	}
	if err := s.plans.InsertCustomRow(ctx, row); err != nil {
		return CustomRow{}, err
	}
	s.bumpCache(ctx, orgID)
	return row, nil
}

// DeleteCustomRow removes a custom row and its saved per-month values.
func (s *Service) DeleteCustomRow(ctx context.Context, orgID, id uuid.UUID) error {
	if orgID == uuid.Nil {
		return fmt.Errorf("finplan: organization required")
	}
	if err := s.plans.DeleteCustomRow(ctx, orgID, id); err != nil {
		return err
	}
	s.bumpCache(ctx, orgID)
	return nil
}

func (s *Service) bumpCache(ctx context.Context, orgID uuid.UUID) {
	if err := s.cache.Bump(ctx, orgID); err != nil && s.logger != nil {
		s.logger.Warn("report cache bump", slog.Any("error", err))
	}
}

func sanitizePlan(p *PlanRecord) {
	for _, m := range Metrics() {
		v := p.Value(m)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			p.SetValue(m, 0)
		}
	}
	for id, v := range p.CustomValues {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			p.CustomValues[id] = 0
		}
	}
}
