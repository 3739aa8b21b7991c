package finplan

import (
	"fmt"
	"time"
)

// Period describes one reporting bucket: a calendar month, or a sequential
// three-month window when the grid is quarterly. End is exclusive.
type Period struct {
	Key   string
	Label string
	Start time.Time
	End   time.Time
}

// MonthKey formats a date as the canonical YYYY-MM plan key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonthKey parses a YYYY-MM plan key into the first instant of the
// month in UTC.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}, fmt.Errorf("finplan: invalid month %q: %w", key, err)
	}
	return t.UTC(), nil
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthRange generates consecutive calendar months from start to end,
// inclusive of both endpoints. Inputs are truncated to the first of their
// month. A reversed range yields an empty sequence, not an error.
func MonthRange(start, end time.Time) []Period {
	start = truncateToMonth(start)
	end = truncateToMonth(end)
	if start.After(end) {
		return nil
	}
	var out []Period
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		next := cur.AddDate(0, 1, 0)
		out = append(out, Period{
			Key:   MonthKey(cur),
			Label: cur.Format("January 2006"),
			Start: cur,
			End:   next,
		})
	}
	return out
}

// QuarterBuckets groups consecutive months into windows of up to three,
// aligned to the start of the range rather than the calendar. A range that
// starts mid-quarter therefore produces an arbitrary three-month window,
// and the final bucket may hold fewer than three months.
func QuarterBuckets(months []Period) [][]Period {
	if len(months) == 0 {
		return nil
	}
	buckets := make([][]Period, 0, (len(months)+2)/3)
	for i := 0; i < len(months); i += 3 {
		j := i + 3
		if j > len(months) {
			j = len(months)
		}
		buckets = append(buckets, months[i:j])
	}
	return buckets
}

// quarterPeriod collapses one bucket into a single Period descriptor.
func quarterPeriod(index int, bucket []Period) Period {
	first := bucket[0]
	last := bucket[len(bucket)-1]
	return Period{
		Key:   fmt.Sprintf("Q%d-%d", index+1, first.Start.Year()),
		Label: fmt.Sprintf("Q%d %d (%s – %s)", index+1, first.Start.Year(), first.Start.Format("Jan 2006"), last.Start.Format("Jan 2006")),
		Start: first.Start,
		End:   last.End,
	}
}
