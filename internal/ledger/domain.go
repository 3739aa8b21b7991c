package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies a money movement on the transaction ledger.
type Category string

const (
	CategorySalary    Category = "salary"
	CategoryMarketing Category = "marketing"
	CategoryOffice    Category = "office"
	CategoryCOGS      Category = "cogs"
	CategoryOther     Category = "other"
)

// ParseCategory maps free-form ledger labels onto the fixed category set.
// Unknown labels land in CategoryOther rather than failing the read.
func ParseCategory(raw string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategorySalary:
		return CategorySalary
	case CategoryMarketing:
		return CategoryMarketing
	case CategoryOffice:
		return CategoryOffice
	case CategoryCOGS:
		return CategoryCOGS
	default:
		return CategoryOther
	}
}

// Transaction is a single ledger movement. Amount is signed: positive
// values are inflows, negative values are outflows.
type Transaction struct {
	ID        int64
	OrgID     uuid.UUID
	Date      time.Time
	Amount    float64
	Category  Category
	ClientID  *int64
	ProjectID *int64
}

// PayrollMonth is the externally aggregated compensation accrued for one
// month: fixed salary plus calculated KPI plus manual bonus minus manual
// penalty, summed in SQL.
type PayrollMonth struct {
	Month string // YYYY-MM
	Total float64
}

// ProjectExpenseMonth is the externally aggregated direct project spend for
// one month, restricted to projects still in flight.
type ProjectExpenseMonth struct {
	Month string // YYYY-MM
	Total float64
}

// Project statuses excluded from expense aggregation.
const (
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)
