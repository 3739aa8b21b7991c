package finplan

import "testing"

func TestAggregateQuartersSumsFlowsAveragesMargins(t *testing.T) {
	rows := []Row{
		{Period: monthPeriod("2025-01"), Revenue: 100, GrossMargin: 10, NetProfit: 5},
		{Period: monthPeriod("2025-02"), Revenue: 200, GrossMargin: 20, NetProfit: 10},
		{Period: monthPeriod("2025-03"), Revenue: 300, GrossMargin: 30, NetProfit: 15},
	}
	quarters := AggregateQuarters(rows)
	if len(quarters) != 1 {
		t.Fatalf("expected 1 quarter, got %d", len(quarters))
	}
	q := quarters[0]
	if q.Revenue != 600 {
		t.Fatalf("quarterly revenue: expected sum 600, got %v", q.Revenue)
	}
	// Mean of monthly margins, not a recomputed ratio.
	if q.GrossMargin != 20 {
		t.Fatalf("quarterly gross margin: expected mean 20, got %v", q.GrossMargin)
	}
	if q.NetProfit != 30 {
		t.Fatalf("quarterly net profit: expected 30, got %v", q.NetProfit)
	}
}

func TestAggregateQuartersPartialBucket(t *testing.T) {
	rows := []Row{
		{Period: monthPeriod("2025-01"), Revenue: 90, NetMargin: 12},
		{Period: monthPeriod("2025-02"), Revenue: 30, NetMargin: 24},
		{Period: monthPeriod("2025-03"), Revenue: 60, NetMargin: 36},
		{Period: monthPeriod("2025-04"), Revenue: 45, NetMargin: 48},
	}
	quarters := AggregateQuarters(rows)
	if len(quarters) != 2 {
		t.Fatalf("expected 2 quarters, got %d", len(quarters))
	}
	if quarters[1].Revenue != 45 {
		t.Fatalf("tail bucket revenue: expected 45, got %v", quarters[1].Revenue)
	}
	// Single-month bucket averages over one month.
	if quarters[1].NetMargin != 48 {
		t.Fatalf("tail bucket margin: expected 48, got %v", quarters[1].NetMargin)
	}
}

func TestAggregateCashQuartersBalancesCarry(t *testing.T) {
	rows := []CashRow{
		{Period: monthPeriod("2025-01"), StartBalance: 0, TotalFlow: 100, EndBalance: 100},
		{Period: monthPeriod("2025-02"), StartBalance: 100, TotalFlow: -40, EndBalance: 60},
		{Period: monthPeriod("2025-03"), StartBalance: 60, TotalFlow: 20, EndBalance: 80},
		{Period: monthPeriod("2025-04"), StartBalance: 80, TotalFlow: 10, EndBalance: 90},
	}
	quarters := AggregateCashQuarters(rows)
	if len(quarters) != 2 {
		t.Fatalf("expected 2 quarters, got %d", len(quarters))
	}
	if quarters[0].StartBalance != 0 || quarters[0].EndBalance != 80 {
		t.Fatalf("first quarter balances: got start=%v end=%v", quarters[0].StartBalance, quarters[0].EndBalance)
	}
	if quarters[0].TotalFlow != 80 {
		t.Fatalf("first quarter flow: expected 80, got %v", quarters[0].TotalFlow)
	}
	if quarters[1].StartBalance != quarters[0].EndBalance {
		t.Fatalf("quarter balances must chain: %v != %v", quarters[1].StartBalance, quarters[0].EndBalance)
	}
}
