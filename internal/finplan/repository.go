package finplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulseboard/pulseboard/internal/shared"
)

const pgUniqueViolation = "23505"

// Repository persists plan records, custom row definitions, and the
// per-organization tax rate.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a planning repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// PlansInRange loads plan records keyed by month for [from, to] inclusive,
// custom per-row values included.
func (r *Repository) PlansInRange(ctx context.Context, orgID uuid.UUID, from, to string) ([]PlanRecord, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("finplan repo not initialised")
	}
	const query = `
		SELECT org_id, month, revenue, cogs, marketing, payroll, office,
		       other_opex, depreciation, taxes, capex, financing
		FROM financial_plans
		WHERE org_id = $1 AND month >= $2 AND month <= $3
		ORDER BY month`
	rows, err := r.pool.Query(ctx, query, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMonth := make(map[string]*PlanRecord)
	var out []PlanRecord
	for rows.Next() {
		var p PlanRecord
		if err := rows.Scan(&p.OrgID, &p.Month, &p.Revenue, &p.COGS, &p.Marketing,
			&p.Payroll, &p.Office, &p.OtherOpex, &p.Depreciation, &p.Taxes,
			&p.Capex, &p.Financing); err != nil {
			return nil, err
		}
		p.CustomValues = make(map[uuid.UUID]float64)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		byMonth[out[i].Month] = &out[i]
	}

	const customQuery = `
		SELECT month, row_id, amount
		FROM plan_custom_values
		WHERE org_id = $1 AND month >= $2 AND month <= $3`
	customRows, err := r.pool.Query(ctx, customQuery, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer customRows.Close()
	for customRows.Next() {
		var month string
		var rowID uuid.UUID
		var amount float64
		if err := customRows.Scan(&month, &rowID, &amount); err != nil {
			return nil, err
		}
		if p, ok := byMonth[month]; ok {
			p.CustomValues[rowID] = amount
		}
	}
	return out, customRows.Err()
}

// UpsertPlans stores the batch in a single transaction, one record per
// month key. The whole batch commits or none of it does; a failed save
// leaves prior plan state intact.
func (r *Repository) UpsertPlans(ctx context.Context, orgID uuid.UUID, plans []PlanRecord) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("finplan repo not initialised")
	}
	if len(plans) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const upsert = `
		INSERT INTO financial_plans (org_id, month, revenue, cogs, marketing,
			payroll, office, other_opex, depreciation, taxes, capex, financing, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (org_id, month) DO UPDATE SET
			revenue = EXCLUDED.revenue, cogs = EXCLUDED.cogs,
			marketing = EXCLUDED.marketing, payroll = EXCLUDED.payroll,
			office = EXCLUDED.office, other_opex = EXCLUDED.other_opex,
			depreciation = EXCLUDED.depreciation, taxes = EXCLUDED.taxes,
			capex = EXCLUDED.capex, financing = EXCLUDED.financing,
			updated_at = now()`
	const clearCustom = `DELETE FROM plan_custom_values WHERE org_id = $1 AND month = $2`
	const insertCustom = `
		INSERT INTO plan_custom_values (org_id, month, row_id, amount)
		VALUES ($1, $2, $3, $4)`

	for _, p := range plans {
		if _, err := tx.Exec(ctx, upsert, orgID, p.Month, p.Revenue, p.COGS,
			p.Marketing, p.Payroll, p.Office, p.OtherOpex, p.Depreciation,
			p.Taxes, p.Capex, p.Financing); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, clearCustom, orgID, p.Month); err != nil {
			return err
		}
		for rowID, amount := range p.CustomValues {
			if _, err := tx.Exec(ctx, insertCustom, orgID, p.Month, rowID, amount); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

// TaxRate loads the organization's tax rate setting; zero when unset.
func (r *Repository) TaxRate(ctx context.Context, orgID uuid.UUID) (float64, error) {
	if r == nil || r.pool == nil {
		return 0, fmt.Errorf("finplan repo not initialised")
	}
	const query = `SELECT tax_rate FROM org_settings WHERE org_id = $1`
	var rate float64
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&rate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return rate, nil
}

// SaveTaxRate upserts the organization's tax rate setting.
func (r *Repository) SaveTaxRate(ctx context.Context, orgID uuid.UUID, rate float64) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("finplan repo not initialised")
	}
	const query = `
		INSERT INTO org_settings (org_id, tax_rate, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (org_id) DO UPDATE SET tax_rate = EXCLUDED.tax_rate, updated_at = now()`
	_, err := r.pool.Exec(ctx, query, orgID, rate)
	return err
}

// ListCustomRows returns the organization's custom cash-flow rows in
// creation order.
func (r *Repository) ListCustomRows(ctx context.Context, orgID uuid.UUID) ([]CustomRow, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("finplan repo not initialised")
	}
	const query = `
		SELECT id, org_id, name, section, created_at
		FROM custom_cash_rows
		WHERE org_id = $1
		ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomRow
	for rows.Next() {
		var cr CustomRow
		var section string
		if err := rows.Scan(&cr.ID, &cr.OrgID, &cr.Name, &section, &cr.CreatedAt); err != nil {
			return nil, err
		}
		cr.Section = Section(section)
		out = append(out, cr)
	}
	return out, rows.Err()
}

// InsertCustomRow stores a new custom row definition. Names are unique per
// organization.
func (r *Repository) InsertCustomRow(ctx context.Context, row CustomRow) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("finplan repo not initialised")
	}
	const query = `
		INSERT INTO custom_cash_rows (id, org_id, name, section, created_at)
		VALUES ($1, $2, $3, $4, now())`
	_, err := r.pool.Exec(ctx, query, row.ID, row.OrgID, row.Name, string(row.Section))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return shared.ErrDuplicateName
	}
	return err
}

// DeleteCustomRow removes a custom row and its per-month values.
func (r *Repository) DeleteCustomRow(ctx context.Context, orgID, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("finplan repo not initialised")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM plan_custom_values WHERE org_id = $1 AND row_id = $2`, orgID, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM custom_cash_rows WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return tx.Commit(ctx)
}

// OrganizationsWithPlans lists organizations that saved at least one plan
// recently. Used by the cache warmup job.
func (r *Repository) OrganizationsWithPlans(ctx context.Context, updatedSince time.Time) ([]uuid.UUID, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("finplan repo not initialised")
	}
	const query = `
		SELECT DISTINCT org_id FROM financial_plans WHERE updated_at >= $1`
	rows, err := r.pool.Query(ctx, query, updatedSince)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
