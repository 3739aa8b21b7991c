package finplan

import (
	"github.com/pulseboard/pulseboard/internal/ledger"
)

// Facts holds the observed figures for one month, derived from the
// transaction ledger and the two externally aggregated sources.
type Facts struct {
	Revenue   float64
	COGS      float64
	Marketing float64
	Payroll   float64
	Office    float64
	OtherOpex float64

	// SalaryOutflow is the salary-category outflow before the payroll
	// ledger merge; kept for the accrual-vs-paid diagnostic.
	SalaryOutflow float64
	// PayrollAccrued is the payroll ledger total for the month.
	PayrollAccrued float64
}

// Metric returns the observed value for a metric. Depreciation, taxes,
// capex and financing have no fact source and always read zero.
func (f Facts) Metric(m Metric) float64 {
	switch m {
	case MetricRevenue:
		return f.Revenue
	case MetricCOGS:
		return f.COGS
	case MetricMarketing:
		return f.Marketing
	case MetricPayroll:
		return f.Payroll
	case MetricOffice:
		return f.Office
	case MetricOtherOpex:
		return f.OtherOpex
	}
	return 0
}

// FactSet maps month key to observed facts.
type FactSet map[string]Facts

// BuildFacts buckets transactions into each month's [start, end) interval
// and merges the payroll and project-expense aggregates.
//
// Revenue is the sum of positive amounts; category outflows are absolute
// sums of negative amounts. Payroll and COGS each have two partial sources
// (salary transactions vs payroll ledger, cogs transactions vs project
// expense ledger); the larger of the two wins so gaps in either source do
// not understate the month.
func BuildFacts(months []Period, txs []ledger.Transaction, payroll []ledger.PayrollMonth, projectExpenses []ledger.ProjectExpenseMonth) FactSet {
	set := make(FactSet, len(months))

	for _, p := range months {
		var f Facts
		for _, tx := range txs {
			if tx.Date.Before(p.Start) || !tx.Date.Before(p.End) {
				continue
			}
			if tx.Amount > 0 {
				f.Revenue += tx.Amount
				continue
			}
			out := -tx.Amount
			switch tx.Category {
			case ledger.CategorySalary:
				f.SalaryOutflow += out
			case ledger.CategoryMarketing:
				f.Marketing += out
			case ledger.CategoryOffice:
				f.Office += out
			case ledger.CategoryCOGS:
				f.COGS += out
			default:
				f.OtherOpex += out
			}
		}
		f.Payroll = f.SalaryOutflow
		set[p.Key] = f
	}

	for _, pm := range payroll {
		f, ok := set[pm.Month]
		if !ok {
			continue
		}
		f.PayrollAccrued = pm.Total
		if pm.Total > f.Payroll {
			f.Payroll = pm.Total
		}
		set[pm.Month] = f
	}

	for _, pe := range projectExpenses {
		f, ok := set[pe.Month]
		if !ok {
			continue
		}
		if pe.Total > f.COGS {
			f.COGS = pe.Total
		}
		set[pe.Month] = f
	}

	return set
}
