package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the fact sources owned by the bookkeeping side of the
// platform. All queries are scoped to one organization; the planning core
// never sees another tenant's rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a ledger repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TransactionsInRange returns ledger movements dated in [from, to).
func (r *Repository) TransactionsInRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]Transaction, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("ledger repo not initialised")
	}
	const query = `
		SELECT id, org_id, occurred_on, amount, category, client_id, project_id
		FROM transactions
		WHERE org_id = $1 AND occurred_on >= $2 AND occurred_on < $3
		ORDER BY occurred_on, id`
	rows, err := r.pool.Query(ctx, query, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var tx Transaction
		var rawCategory string
		if err := rows.Scan(&tx.ID, &tx.OrgID, &tx.Date, &tx.Amount, &rawCategory, &tx.ClientID, &tx.ProjectID); err != nil {
			return nil, err
		}
		tx.Category = ParseCategory(rawCategory)
		out = append(out, tx)
	}
	return out, rows.Err()
}

// PayrollByMonth aggregates accrued compensation per month in [from, to).
func (r *Repository) PayrollByMonth(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]PayrollMonth, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("ledger repo not initialised")
	}
	const query = `
		SELECT to_char(date_trunc('month', accrual_month), 'YYYY-MM') AS month,
		       SUM(fix_salary + calculated_kpi + manual_bonus - manual_penalty) AS total
		FROM payroll_entries
		WHERE org_id = $1 AND accrual_month >= $2 AND accrual_month < $3
		GROUP BY 1
		ORDER BY 1`
	rows, err := r.pool.Query(ctx, query, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayrollMonth
	for rows.Next() {
		var pm PayrollMonth
		if err := rows.Scan(&pm.Month, &pm.Total); err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

// ProjectExpensesByMonth aggregates direct project spend per month in
// [from, to), skipping completed and archived projects.
func (r *Repository) ProjectExpensesByMonth(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ProjectExpenseMonth, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("ledger repo not initialised")
	}
	const query = `
		SELECT to_char(date_trunc('month', e.spent_on), 'YYYY-MM') AS month,
		       SUM(e.amount) AS total
		FROM project_expenses e
		JOIN projects p ON p.id = e.project_id
		WHERE e.org_id = $1 AND e.spent_on >= $2 AND e.spent_on < $3
		  AND p.status NOT IN ($4, $5)
		GROUP BY 1
		ORDER BY 1`
	rows, err := r.pool.Query(ctx, query, orgID, from, to, ProjectStatusCompleted, ProjectStatusArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProjectExpenseMonth
	for rows.Next() {
		var pe ProjectExpenseMonth
		if err := rows.Scan(&pe.Month, &pe.Total); err != nil {
			return nil, err
		}
		out = append(out, pe)
	}
	return out, rows.Err()
}
