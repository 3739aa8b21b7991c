package finplanhttp

import (
	"time"

	"github.com/pulseboard/pulseboard/internal/finplan"
)

// Wire representations of the computed grids. Domain structs stay free of
// json tags; this file owns the API shape.

type periodVM struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type rowVM struct {
	Period       periodVM `json:"period"`
	Revenue      float64  `json:"revenue"`
	COGS         float64  `json:"cogs"`
	GrossProfit  float64  `json:"grossProfit"`
	GrossMargin  float64  `json:"grossMargin"`
	Marketing    float64  `json:"marketing"`
	Payroll      float64  `json:"payroll"`
	Office       float64  `json:"office"`
	OtherOpex    float64  `json:"otherOpex"`
	Depreciation float64  `json:"depreciation"`
	EBITDA       float64  `json:"ebitda"`
	EBITDAMargin float64  `json:"ebitdaMargin"`
	Taxes        float64  `json:"taxes"`
	NetProfit    float64  `json:"netProfit"`
	NetMargin    float64  `json:"netMargin"`
	TotalOpex    float64  `json:"totalOpex"`
	TotalExpense float64  `json:"totalExpense"`
}

type cashRowVM struct {
	Period              periodVM           `json:"period"`
	StartBalance        float64            `json:"startBalance"`
	Inflow              float64            `json:"inflow"`
	OperatingOutflow    float64            `json:"operatingOutflow"`
	OperatingNet        float64            `json:"operatingNet"`
	InvestingFlow       float64            `json:"investingFlow"`
	FinancingFlow       float64            `json:"financingFlow"`
	TotalFlow           float64            `json:"totalFlow"`
	EndBalance          float64            `json:"endBalance"`
	CustomFlows         map[string]float64 `json:"customFlows,omitempty"`
	PayrollAccrualDelta float64            `json:"payrollAccrualDelta"`
}

type reportVM struct {
	From           string      `json:"from"`
	To             string      `json:"to"`
	Granularity    string      `json:"granularity"`
	TaxRate        float64     `json:"taxRate"`
	Periods        []periodVM  `json:"periods"`
	Rows           []rowVM     `json:"rows"`
	CashFlow       []cashRowVM `json:"cashFlow"`
	BreakEvenIndex int         `json:"breakEvenIndex"`
	Generation     uint64      `json:"generation"`
}

type customRowVM struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Section   string    `json:"section"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPeriodVM(p finplan.Period) periodVM {
	return periodVM{Key: p.Key, Label: p.Label, Start: p.Start, End: p.End}
}

func toRowVM(r finplan.Row) rowVM {
	return rowVM{
		Period:       toPeriodVM(r.Period),
		Revenue:      r.Revenue,
		COGS:         r.COGS,
		GrossProfit:  r.GrossProfit,
		GrossMargin:  r.GrossMargin,
		Marketing:    r.Marketing,
		Payroll:      r.Payroll,
		Office:       r.Office,
		OtherOpex:    r.OtherOpex,
		Depreciation: r.Depreciation,
		EBITDA:       r.EBITDA,
		EBITDAMargin: r.EBITDAMargin,
		Taxes:        r.Taxes,
		NetProfit:    r.NetProfit,
		NetMargin:    r.NetMargin,
		TotalOpex:    r.TotalOpex,
		TotalExpense: r.TotalExpense,
	}
}

func toCashRowVM(r finplan.CashRow) cashRowVM {
	vm := cashRowVM{
		Period:              toPeriodVM(r.Period),
		StartBalance:        r.StartBalance,
		Inflow:              r.Inflow,
		OperatingOutflow:    r.OperatingOutflow,
		OperatingNet:        r.OperatingNet,
		InvestingFlow:       r.InvestingFlow,
		FinancingFlow:       r.FinancingFlow,
		TotalFlow:           r.TotalFlow,
		EndBalance:          r.EndBalance,
		PayrollAccrualDelta: r.PayrollAccrualDelta,
	}
	if len(r.CustomFlows) > 0 {
		vm.CustomFlows = make(map[string]float64, len(r.CustomFlows))
		for id, v := range r.CustomFlows {
			vm.CustomFlows[id.String()] = v
		}
	}
	return vm
}

func toReportVM(r finplan.Report) reportVM {
	vm := reportVM{
		From:           r.From,
		To:             r.To,
		Granularity:    string(r.Granularity),
		TaxRate:        r.TaxRate,
		Periods:        make([]periodVM, 0, len(r.Periods)),
		Rows:           make([]rowVM, 0, len(r.Rows)),
		CashFlow:       make([]cashRowVM, 0, len(r.CashFlow)),
		BreakEvenIndex: r.BreakEvenIndex,
		Generation:     r.Generation,
	}
	for _, p := range r.Periods {
		vm.Periods = append(vm.Periods, toPeriodVM(p))
	}
	for _, row := range r.Rows {
		vm.Rows = append(vm.Rows, toRowVM(row))
	}
	for _, row := range r.CashFlow {
		vm.CashFlow = append(vm.CashFlow, toCashRowVM(row))
	}
	return vm
}

func toCustomRowVM(r finplan.CustomRow) customRowVM {
	return customRowVM{
		ID:        r.ID.String(),
		Name:      r.Name,
		Section:   string(r.Section),
		CreatedAt: r.CreatedAt,
	}
}
