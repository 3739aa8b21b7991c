// Package finplan computes the P&L and cash-flow projection grids shown on
// the financial planning screens. Everything here is a pure derivation over
// already-fetched data: nothing in this package is persisted except plan
// records and custom row definitions, and every grid is recomputed from
// scratch whenever an input changes.
package finplan

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Metric identifies a base planning figure resolvable per month. Plan
// columns are addressed through this enum rather than building field names
// from strings at runtime.
type Metric int

const (
	MetricRevenue Metric = iota
	MetricCOGS
	MetricMarketing
	MetricPayroll
	MetricOffice
	MetricOtherOpex
	MetricDepreciation
	MetricTaxes
	MetricCapex
	MetricFinancing
)

var metricNames = map[Metric]string{
	MetricRevenue:      "revenue",
	MetricCOGS:         "cogs",
	MetricMarketing:    "marketing",
	MetricPayroll:      "payroll",
	MetricOffice:       "office",
	MetricOtherOpex:    "otherOpex",
	MetricDepreciation: "depreciation",
	MetricTaxes:        "taxes",
	MetricCapex:        "capex",
	MetricFinancing:    "financing",
}

// String returns the wire name used in API payloads.
func (m Metric) String() string {
	return metricNames[m]
}

// ParseMetric resolves a wire name back to its Metric. The second result
// reports whether the name is known.
func ParseMetric(name string) (Metric, bool) {
	for m, n := range metricNames {
		if n == name {
			return m, true
		}
	}
	return 0, false
}

// Metrics enumerates all base metrics in grid order.
func Metrics() []Metric {
	return []Metric{
		MetricRevenue, MetricCOGS, MetricMarketing, MetricPayroll,
		MetricOffice, MetricOtherOpex, MetricDepreciation, MetricTaxes,
		MetricCapex, MetricFinancing,
	}
}

// Section places a custom cash-flow row in the DDS statement.
type Section string

const (
	SectionOperating Section = "operating"
	SectionInvesting Section = "investing"
	SectionFinancing Section = "financing"
)

// Valid reports whether the section is one of the three DDS groups.
func (s Section) Valid() bool {
	switch s {
	case SectionOperating, SectionInvesting, SectionFinancing:
		return true
	}
	return false
}

// CustomRow is a user-defined cash-flow line item. Rows are defined once
// per organization and referenced by id from per-month plan values.
type CustomRow struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	Name      string
	Section   Section
	CreatedAt time.Time
}

// PlanRecord is the persisted projection for one (organization, month)
// pair. At most one record exists per month; saves upsert by key.
type PlanRecord struct {
	OrgID        uuid.UUID
	Month        string // YYYY-MM
	Revenue      float64
	COGS         float64
	Marketing    float64
	Payroll      float64
	Office       float64
	OtherOpex    float64
	Depreciation float64
	Taxes        float64
	Capex        float64
	Financing    float64
	CustomValues map[uuid.UUID]float64
}

// Value returns the planned figure for a metric.
func (p PlanRecord) Value(m Metric) float64 {
	switch m {
	case MetricRevenue:
		return p.Revenue
	case MetricCOGS:
		return p.COGS
	case MetricMarketing:
		return p.Marketing
	case MetricPayroll:
		return p.Payroll
	case MetricOffice:
		return p.Office
	case MetricOtherOpex:
		return p.OtherOpex
	case MetricDepreciation:
		return p.Depreciation
	case MetricTaxes:
		return p.Taxes
	case MetricCapex:
		return p.Capex
	case MetricFinancing:
		return p.Financing
	}
	return 0
}

// SetValue writes the planned figure for a metric.
func (p *PlanRecord) SetValue(m Metric, v float64) {
	switch m {
	case MetricRevenue:
		p.Revenue = v
	case MetricCOGS:
		p.COGS = v
	case MetricMarketing:
		p.Marketing = v
	case MetricPayroll:
		p.Payroll = v
	case MetricOffice:
		p.Office = v
	case MetricOtherOpex:
		p.OtherOpex = v
	case MetricDepreciation:
		p.Depreciation = v
	case MetricTaxes:
		p.Taxes = v
	case MetricCapex:
		p.Capex = v
	case MetricFinancing:
		p.Financing = v
	}
}

// Overrides carries in-session edits keyed by month. They exist only for
// the duration of one request and always win over facts and saved plans,
// even when zero or negative.
type Overrides struct {
	Metrics map[string]map[Metric]float64
	Custom  map[string]map[uuid.UUID]float64
}

// Metric looks up an override for (month, metric).
func (o Overrides) Metric(month string, m Metric) (float64, bool) {
	fields, ok := o.Metrics[month]
	if !ok {
		return 0, false
	}
	v, ok := fields[m]
	return v, ok
}

// CustomValue looks up an override for a custom row in a month.
func (o Overrides) CustomValue(month string, id uuid.UUID) (float64, bool) {
	rows, ok := o.Custom[month]
	if !ok {
		return 0, false
	}
	v, ok := rows[id]
	return v, ok
}

// Empty reports whether no override was captured at all.
func (o Overrides) Empty() bool {
	return len(o.Metrics) == 0 && len(o.Custom) == 0
}

// Normalize coerces non-finite entries to zero. Bad user input must not
// leak NaN into the grids.
func (o Overrides) Normalize() Overrides {
	for _, fields := range o.Metrics {
		for m, v := range fields {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				fields[m] = 0
			}
		}
	}
	for _, rows := range o.Custom {
		for id, v := range rows {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				rows[id] = 0
			}
		}
	}
	return o
}

// Granularity selects the reporting grid.
type Granularity string

const (
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
)

// Row is one computed P&L line for a period. Percentages are expressed in
// points (0..100) and default to zero when revenue is zero.
type Row struct {
	Period       Period
	Revenue      float64
	COGS         float64
	GrossProfit  float64
	GrossMargin  float64
	Marketing    float64
	Payroll      float64
	Office       float64
	OtherOpex    float64
	Depreciation float64
	EBITDA       float64
	EBITDAMargin float64
	Taxes        float64
	NetProfit    float64
	NetMargin    float64
	TotalOpex    float64
	TotalExpense float64
}

// CashRow is one computed DDS line for a period. StartBalance of period i+1
// always equals EndBalance of period i.
type CashRow struct {
	Period           Period
	StartBalance     float64
	Inflow           float64
	OperatingOutflow float64
	OperatingNet     float64
	InvestingFlow    float64
	FinancingFlow    float64
	TotalFlow        float64
	EndBalance       float64
	CustomFlows      map[uuid.UUID]float64

	// PayrollAccrualDelta surfaces accrued payroll minus actual salary
	// outflow as a diagnostic. It is not folded into any total.
	PayrollAccrualDelta float64
}

// Report is the full derived projection for a range. Never persisted;
// cached opportunistically and recomputed on any input change.
type Report struct {
	OrgID          uuid.UUID
	From           string
	To             string
	Granularity    Granularity
	TaxRate        float64
	Periods        []Period
	Rows           []Row
	CashFlow       []CashRow
	BreakEvenIndex int
	Generation     uint64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
