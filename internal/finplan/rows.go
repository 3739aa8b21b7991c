package finplan

import "math"

// ComputeRow derives the dependent P&L metrics for one period from the
// resolved base figures. Pure: identical inputs always produce identical
// output.
func ComputeRow(p Period, r Resolver, taxRate float64) Row {
	month := p.Key
	revenue := r.Resolve(month, MetricRevenue)
	cogs := r.Resolve(month, MetricCOGS)
	marketing := r.Resolve(month, MetricMarketing)
	payroll := r.Resolve(month, MetricPayroll)
	office := r.Resolve(month, MetricOffice)
	otherOpex := r.Resolve(month, MetricOtherOpex)
	depreciation := r.Resolve(month, MetricDepreciation)

	grossProfit := revenue - cogs
	// EBITDA excludes depreciation by definition.
	ebitda := grossProfit - marketing - payroll - office - otherOpex
	taxes := resolveTaxes(r, month, ebitda, taxRate)
	netProfit := ebitda - depreciation - taxes
	totalOpex := marketing + payroll + office + otherOpex + depreciation

	return Row{
		Period:       p,
		Revenue:      round2(revenue),
		COGS:         round2(cogs),
		GrossProfit:  round2(grossProfit),
		GrossMargin:  marginOf(grossProfit, revenue),
		Marketing:    round2(marketing),
		Payroll:      round2(payroll),
		Office:       round2(office),
		OtherOpex:    round2(otherOpex),
		Depreciation: round2(depreciation),
		EBITDA:       round2(ebitda),
		EBITDAMargin: marginOf(ebitda, revenue),
		Taxes:        round2(taxes),
		NetProfit:    round2(netProfit),
		NetMargin:    marginOf(netProfit, revenue),
		TotalOpex:    round2(totalOpex),
		TotalExpense: round2(totalOpex + cogs),
	}
}

// ComputeRows derives the monthly P&L grid.
func ComputeRows(months []Period, r Resolver, taxRate float64) []Row {
	rows := make([]Row, 0, len(months))
	for _, p := range months {
		rows = append(rows, ComputeRow(p, r, taxRate))
	}
	return rows
}

// resolveTaxes follows its own chain: an override wins, then a non-zero
// saved plan figure, then the estimate round(max(0, ebitda × rate)).
// The estimate is floored at zero so a loss-making month never produces
// a negative tax line.
func resolveTaxes(r Resolver, month string, ebitda, taxRate float64) float64 {
	if v, ok := r.Override(month, MetricTaxes); ok {
		return v
	}
	if v, ok := r.PlanValue(month, MetricTaxes); ok && v != 0 {
		return v
	}
	return math.Round(math.Max(0, ebitda*taxRate))
}

// marginOf guards the percentage against a zero denominator: every margin
// reads zero when revenue is zero, never NaN or Inf.
func marginOf(numerator, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return round2(numerator / revenue * 100)
}
