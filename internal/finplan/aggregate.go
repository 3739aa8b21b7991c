package finplan

import "github.com/google/uuid"

// AggregateQuarters rolls monthly P&L rows into sequential three-month
// buckets. Flow lines are summed. Margin lines are the arithmetic mean of
// the monthly margins, not recomputed from the summed flows, so the
// quarterly figure matches what a reader averaging the monthly grid would
// get. Changing this to a ratio-of-sums is a product decision, not a bug
// fix.
func AggregateQuarters(rows []Row) []Row {
	if len(rows) == 0 {
		return nil
	}
	months := make([]Period, len(rows))
	for i, row := range rows {
		months[i] = row.Period
	}
	buckets := QuarterBuckets(months)

	out := make([]Row, 0, len(buckets))
	offset := 0
	for qi, bucket := range buckets {
		var q Row
		q.Period = quarterPeriod(qi, bucket)
		n := float64(len(bucket))
		for i := range bucket {
			row := rows[offset+i]
			q.Revenue += row.Revenue
			q.COGS += row.COGS
			q.GrossProfit += row.GrossProfit
			q.Marketing += row.Marketing
			q.Payroll += row.Payroll
			q.Office += row.Office
			q.OtherOpex += row.OtherOpex
			q.Depreciation += row.Depreciation
			q.EBITDA += row.EBITDA
			q.Taxes += row.Taxes
			q.NetProfit += row.NetProfit
			q.TotalOpex += row.TotalOpex
			q.TotalExpense += row.TotalExpense
			q.GrossMargin += row.GrossMargin
			q.EBITDAMargin += row.EBITDAMargin
			q.NetMargin += row.NetMargin
		}
		q.GrossMargin = round2(q.GrossMargin / n)
		q.EBITDAMargin = round2(q.EBITDAMargin / n)
		q.NetMargin = round2(q.NetMargin / n)
		out = append(out, q)
		offset += len(bucket)
	}
	return out
}

// AggregateCashQuarters rolls monthly DDS rows into the same sequential
// buckets. Flows and custom rows are summed; the balance carries through:
// a quarter opens with its first month's start balance and closes with its
// last month's end balance.
func AggregateCashQuarters(rows []CashRow) []CashRow {
	if len(rows) == 0 {
		return nil
	}
	months := make([]Period, len(rows))
	for i, row := range rows {
		months[i] = row.Period
	}
	buckets := QuarterBuckets(months)

	out := make([]CashRow, 0, len(buckets))
	offset := 0
	for qi, bucket := range buckets {
		var q CashRow
		q.Period = quarterPeriod(qi, bucket)
		q.StartBalance = rows[offset].StartBalance
		q.CustomFlows = make(map[uuid.UUID]float64)
		for i := range bucket {
			row := rows[offset+i]
			q.Inflow += row.Inflow
			q.OperatingOutflow += row.OperatingOutflow
			q.OperatingNet += row.OperatingNet
			q.InvestingFlow += row.InvestingFlow
			q.FinancingFlow += row.FinancingFlow
			q.TotalFlow += row.TotalFlow
			q.PayrollAccrualDelta += row.PayrollAccrualDelta
			for id, v := range row.CustomFlows {
				q.CustomFlows[id] += v
			}
		}
		q.EndBalance = rows[offset+len(bucket)-1].EndBalance
		out = append(out, q)
		offset += len(bucket)
	}
	return out
}
