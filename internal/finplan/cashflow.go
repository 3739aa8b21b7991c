package finplan

import "github.com/google/uuid"

// ComputeCashFlow derives the monthly DDS grid. The running balance is
// seeded at zero and carried forward: each period opens with the previous
// period's closing balance.
//
//	operatingNet = inflow − (categorised outflows + custom operating rows)
//	investing    = −capex − custom investing rows
//	financing    = financing + custom financing rows
func ComputeCashFlow(months []Period, r Resolver, customRows []CustomRow) []CashRow {
	balance := 0.0
	out := make([]CashRow, 0, len(months))
	for _, p := range months {
		month := p.Key

		inflow := r.Resolve(month, MetricRevenue)
		categorised := r.Resolve(month, MetricCOGS) +
			r.Resolve(month, MetricMarketing) +
			r.Resolve(month, MetricPayroll) +
			r.Resolve(month, MetricOffice) +
			r.Resolve(month, MetricOtherOpex)

		var customOperating, customInvesting, customFinancing float64
		flows := make(map[uuid.UUID]float64, len(customRows))
		for _, row := range customRows {
			v := r.ResolveCustom(month, row.ID)
			flows[row.ID] = round2(v)
			switch row.Section {
			case SectionInvesting:
				customInvesting += v
			case SectionFinancing:
				customFinancing += v
			default:
				customOperating += v
			}
		}

		operatingOutflow := categorised + customOperating
		operatingNet := inflow - operatingOutflow
		investing := -r.Resolve(month, MetricCapex) - customInvesting
		financing := r.Resolve(month, MetricFinancing) + customFinancing
		totalFlow := operatingNet + investing + financing

		cr := CashRow{
			Period:           p,
			StartBalance:     round2(balance),
			Inflow:           round2(inflow),
			OperatingOutflow: round2(operatingOutflow),
			OperatingNet:     round2(operatingNet),
			InvestingFlow:    round2(investing),
			FinancingFlow:    round2(financing),
			TotalFlow:        round2(totalFlow),
			EndBalance:       round2(balance + totalFlow),
			CustomFlows:      flows,
		}
		if f, ok := r.MonthFacts(month); ok {
			cr.PayrollAccrualDelta = round2(f.PayrollAccrued - f.SalaryOutflow)
		}
		out = append(out, cr)
		balance = cr.EndBalance
	}
	return out
}
