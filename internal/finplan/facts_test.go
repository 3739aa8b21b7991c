package finplan

import (
	"testing"
	"time"

	"github.com/pulseboard/pulseboard/internal/ledger"
)

func TestBuildFactsBucketsHalfOpen(t *testing.T) {
	months := MonthRange(date(2025, time.January, 1), date(2025, time.February, 1))
	txs := []ledger.Transaction{
		{Date: date(2025, time.January, 1), Amount: 1000},
		{Date: date(2025, time.January, 31), Amount: 500},
		// First instant of February belongs to February, not January.
		{Date: date(2025, time.February, 1), Amount: 200},
	}
	facts := BuildFacts(months, txs, nil, nil)
	if got := facts["2025-01"].Revenue; got != 1500 {
		t.Fatalf("january revenue: expected 1500, got %v", got)
	}
	if got := facts["2025-02"].Revenue; got != 200 {
		t.Fatalf("february revenue: expected 200, got %v", got)
	}
}

func TestBuildFactsCategorisesOutflows(t *testing.T) {
	months := MonthRange(date(2025, time.March, 1), date(2025, time.March, 1))
	txs := []ledger.Transaction{
		{Date: date(2025, time.March, 5), Amount: -300, Category: ledger.CategoryMarketing},
		{Date: date(2025, time.March, 6), Amount: -200, Category: ledger.CategoryMarketing},
		{Date: date(2025, time.March, 7), Amount: -150, Category: ledger.CategoryOffice},
		{Date: date(2025, time.March, 8), Amount: -90, Category: ledger.CategoryCOGS},
		{Date: date(2025, time.March, 9), Amount: -60, Category: ledger.CategoryOther},
		{Date: date(2025, time.March, 10), Amount: 2000},
	}
	f := BuildFacts(months, txs, nil, nil)["2025-03"]
	if f.Marketing != 500 {
		t.Fatalf("marketing: expected 500, got %v", f.Marketing)
	}
	if f.Office != 150 {
		t.Fatalf("office: expected 150, got %v", f.Office)
	}
	if f.COGS != 90 {
		t.Fatalf("cogs: expected 90, got %v", f.COGS)
	}
	if f.OtherOpex != 60 {
		t.Fatalf("other opex: expected 60, got %v", f.OtherOpex)
	}
	if f.Revenue != 2000 {
		t.Fatalf("revenue: expected 2000, got %v", f.Revenue)
	}
}

func TestBuildFactsPayrollTakesLargerSource(t *testing.T) {
	months := MonthRange(date(2025, time.April, 1), date(2025, time.May, 1))
	txs := []ledger.Transaction{
		{Date: date(2025, time.April, 25), Amount: -800, Category: ledger.CategorySalary},
		{Date: date(2025, time.May, 25), Amount: -1200, Category: ledger.CategorySalary},
	}
	payroll := []ledger.PayrollMonth{
		{Month: "2025-04", Total: 1000}, // ledger more complete
		{Month: "2025-05", Total: 900},  // transactions more complete
	}
	facts := BuildFacts(months, txs, payroll, nil)
	if got := facts["2025-04"].Payroll; got != 1000 {
		t.Fatalf("april payroll: expected 1000, got %v", got)
	}
	if got := facts["2025-05"].Payroll; got != 1200 {
		t.Fatalf("may payroll: expected 1200, got %v", got)
	}
	if got := facts["2025-04"].SalaryOutflow; got != 800 {
		t.Fatalf("april salary outflow must stay raw, got %v", got)
	}
}

func TestBuildFactsProjectExpensesMergeIntoCOGS(t *testing.T) {
	months := MonthRange(date(2025, time.June, 1), date(2025, time.June, 1))
	txs := []ledger.Transaction{
		{Date: date(2025, time.June, 10), Amount: -400, Category: ledger.CategoryCOGS},
	}
	expenses := []ledger.ProjectExpenseMonth{{Month: "2025-06", Total: 650}}
	facts := BuildFacts(months, txs, nil, expenses)
	if got := facts["2025-06"].COGS; got != 650 {
		t.Fatalf("cogs: expected 650, got %v", got)
	}
}
