package finplan

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ExportRows formats the P&L grid into CSV-ready cells. Amounts use
// grouped number formatting; margins keep two decimals.
func ExportRows(rows []Row, tag language.Tag) [][]string {
	p := message.NewPrinter(tag)
	out := make([][]string, 0, len(rows)+1)
	out = append(out, []string{
		"Period", "Revenue", "COGS", "Gross Profit", "Gross Margin %",
		"Marketing", "Payroll", "Office", "Other Opex", "Depreciation",
		"EBITDA", "EBITDA Margin %", "Taxes", "Net Profit", "Net Margin %",
		"Total Expenses",
	})
	for _, row := range rows {
		out = append(out, []string{
			row.Period.Label,
			p.Sprintf("%.2f", row.Revenue),
			p.Sprintf("%.2f", row.COGS),
			p.Sprintf("%.2f", row.GrossProfit),
			p.Sprintf("%.2f", row.GrossMargin),
			p.Sprintf("%.2f", row.Marketing),
			p.Sprintf("%.2f", row.Payroll),
			p.Sprintf("%.2f", row.Office),
			p.Sprintf("%.2f", row.OtherOpex),
			p.Sprintf("%.2f", row.Depreciation),
			p.Sprintf("%.2f", row.EBITDA),
			p.Sprintf("%.2f", row.EBITDAMargin),
			p.Sprintf("%.2f", row.Taxes),
			p.Sprintf("%.2f", row.NetProfit),
			p.Sprintf("%.2f", row.NetMargin),
			p.Sprintf("%.2f", row.TotalExpense),
		})
	}
	return out
}
