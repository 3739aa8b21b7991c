package finplan

import (
	"testing"

	"golang.org/x/text/language"
)

func TestExportRowsHeaderAndShape(t *testing.T) {
	rows := []Row{
		{Period: monthPeriod("2025-01"), Revenue: 12500.5, NetProfit: 1200},
		{Period: monthPeriod("2025-02"), Revenue: 0},
	}
	cells := ExportRows(rows, language.English)
	if len(cells) != 3 {
		t.Fatalf("expected header plus two rows, got %d", len(cells))
	}
	header := cells[0]
	if header[0] != "Period" || header[len(header)-1] != "Total Expenses" {
		t.Fatalf("unexpected header: %v", header)
	}
	for i, line := range cells[1:] {
		if len(line) != len(header) {
			t.Fatalf("row %d has %d cells, header has %d", i, len(line), len(header))
		}
	}
	if cells[1][0] != "January 2025" {
		t.Fatalf("expected period label, got %q", cells[1][0])
	}
}

func TestExportRowsLocalizedGrouping(t *testing.T) {
	rows := []Row{{Period: monthPeriod("2025-03"), Revenue: 1234567.89}}

	en := ExportRows(rows, language.English)
	if en[1][1] != "1,234,567.89" {
		t.Fatalf("english grouping: got %q", en[1][1])
	}
	de := ExportRows(rows, language.German)
	if de[1][1] != "1.234.567,89" {
		t.Fatalf("german grouping: got %q", de[1][1])
	}
}

func TestExportRowsEmpty(t *testing.T) {
	cells := ExportRows(nil, language.English)
	if len(cells) != 1 {
		t.Fatalf("expected header only, got %d lines", len(cells))
	}
}
