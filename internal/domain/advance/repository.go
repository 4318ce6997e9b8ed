package advance

import (
	"context"

	"github.com/shopspring/decimal"
)

// AdvanceRepository reads the salary-advance ledger. Advances are granted
// and repaid elsewhere; payroll only consumes what is due per period.
type AdvanceRepository interface {
	// InstallmentsDue returns the total installment amount scheduled for the
	// employee in the given period, considering only active advances whose
	// repayment window covers the period.
	InstallmentsDue(ctx context.Context, employeeID string, month, year int) (decimal.Decimal, error)
}
