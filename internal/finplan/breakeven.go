package finplan

// BreakEvenNotFound is returned when no period satisfies the break-even
// conditions.
const BreakEvenNotFound = -1

// BreakEvenIndex scans rows in order and returns the index of the first
// period where cumulative net profit is positive and the period itself is
// profitable. Both conditions are required: a single profitable month after
// a long losing streak does not count unless the running total has also
// crossed zero, and a cumulative crossing caused by rounding does not count
// unless the month itself is in the black. Only meaningful on the monthly
// grid.
func BreakEvenIndex(rows []Row) int {
	cumulative := 0.0
	for i, row := range rows {
		cumulative += row.NetProfit
		if cumulative > 0 && row.NetProfit > 0 {
			return i
		}
	}
	return BreakEvenNotFound
}
