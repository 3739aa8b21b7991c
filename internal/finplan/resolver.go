package finplan

import "github.com/google/uuid"

// Resolver applies the value precedence chain shared by both grids:
// an explicit in-session override always wins, then a strictly positive
// observed fact, then a strictly positive saved plan figure, else zero.
// Facts take precedence over stale plans once real data exists, but an
// absent or zero fact must not mask a legitimate plan figure.
type Resolver struct {
	Facts     FactSet
	Plans     map[string]PlanRecord
	Overrides Overrides
}

// Resolve returns the effective value for a metric in a month.
func (r Resolver) Resolve(month string, m Metric) float64 {
	if v, ok := r.Overrides.Metric(month, m); ok {
		return v
	}
	if f, ok := r.Facts[month]; ok {
		if v := f.Metric(m); v > 0 {
			return v
		}
	}
	if p, ok := r.Plans[month]; ok {
		if v := p.Value(m); v > 0 {
			return v
		}
	}
	return 0
}

// PlanValue returns the saved plan figure for a metric and whether a plan
// record exists for the month at all. Taxes bypass the positivity filter
// and need the raw figure.
func (r Resolver) PlanValue(month string, m Metric) (float64, bool) {
	p, ok := r.Plans[month]
	if !ok {
		return 0, false
	}
	return p.Value(m), true
}

// Override exposes the raw override lookup for callers that must
// distinguish "overridden to zero" from "not overridden".
func (r Resolver) Override(month string, m Metric) (float64, bool) {
	return r.Overrides.Metric(month, m)
}

// ResolveCustom returns the effective value for a custom cash-flow row in
// a month: override if captured, else the saved per-row plan value. Custom
// rows have no observed-transaction source, so there is no fact tier.
func (r Resolver) ResolveCustom(month string, id uuid.UUID) float64 {
	if v, ok := r.Overrides.CustomValue(month, id); ok {
		return v
	}
	if p, ok := r.Plans[month]; ok {
		return p.CustomValues[id]
	}
	return 0
}

// MonthFacts returns the observed facts for a month, if any.
func (r Resolver) MonthFacts(month string) (Facts, bool) {
	f, ok := r.Facts[month]
	return f, ok
}
