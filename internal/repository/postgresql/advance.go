package postgresql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stafftrack/wfm-backend-go/internal/domain/advance"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/database"
)

type advanceRepository struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) advance.AdvanceRepository {
	return &advanceRepository{db: db}
}

// InstallmentsDue implements advance.AdvanceRepository. Installments are
// capped at the remaining principal so the final month never over-deducts.
func (r *advanceRepository) InstallmentsDue(ctx context.Context, employeeID string, month, year int) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(LEAST(monthly_installment, remaining_amount)), 0)
		FROM advances
		WHERE employee_id = $1
		  AND status = 'active'
		  AND (start_year < $3 OR (start_year = $3 AND start_month <= $2))
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, month, year).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum advance installments: %w", err)
	}

	return total, nil
}
