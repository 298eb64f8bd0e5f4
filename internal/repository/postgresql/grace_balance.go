package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type graceBalanceRepositoryImpl struct {
	db *database.DB
}

func NewGraceBalanceRepository(db *database.DB) deduction.GraceBalanceRepository {
	return &graceBalanceRepositoryImpl{db: db}
}

const graceBalanceColumns = `id, company_id, employee_id, month, year,
	total_late_minutes, grace_minutes_used, deducted_minutes, total_deduction_amount,
	late_count, version, created_at, updated_at`

func scanGraceBalance(row pgx.Row) (deduction.GraceBalance, error) {
	var b deduction.GraceBalance
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.EmployeeID, &b.Month, &b.Year,
		&b.TotalLateMinutes, &b.GraceMinutesUsed, &b.DeductedMinutes, &b.TotalDeductionAmount,
		&b.LateCount, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// GetOrCreate implements deduction.GraceBalanceRepository.
// The row is locked for the rest of the surrounding transaction.
func (r *graceBalanceRepositoryImpl) GetOrCreate(ctx context.Context, companyID string, employeeID string, month, year int) (deduction.GraceBalance, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO grace_balances (company_id, employee_id, month, year)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT uk_grace_balance_period DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, companyID, employeeID, month, year); err != nil {
		return deduction.GraceBalance{}, fmt.Errorf("failed to create grace balance: %w", err)
	}

	query := `SELECT ` + graceBalanceColumns + ` FROM grace_balances
		WHERE employee_id = $1 AND month = $2 AND year = $3
		FOR UPDATE`

	b, err := scanGraceBalance(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		return deduction.GraceBalance{}, fmt.Errorf("failed to get grace balance: %w", err)
	}
	return b, nil
}

// Get implements deduction.GraceBalanceRepository.
func (r *graceBalanceRepositoryImpl) Get(ctx context.Context, employeeID string, month, year int) (deduction.GraceBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + graceBalanceColumns + ` FROM grace_balances
		WHERE employee_id = $1 AND month = $2 AND year = $3`

	b, err := scanGraceBalance(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.GraceBalance{}, deduction.ErrBalanceNotFound
		}
		return deduction.GraceBalance{}, fmt.Errorf("failed to get grace balance: %w", err)
	}
	return b, nil
}

// Update implements deduction.GraceBalanceRepository. It only succeeds when
// b.Version still matches the stored row, and returns the row with its new version.
func (r *graceBalanceRepositoryImpl) Update(ctx context.Context, b deduction.GraceBalance) (deduction.GraceBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE grace_balances SET
			total_late_minutes = $1, grace_minutes_used = $2, deducted_minutes = $3,
			total_deduction_amount = $4, late_count = $5,
			version = version + 1, updated_at = NOW()
		WHERE employee_id = $6 AND month = $7 AND year = $8 AND version = $9
		RETURNING ` + graceBalanceColumns

	updated, err := scanGraceBalance(q.QueryRow(ctx, query,
		b.TotalLateMinutes, b.GraceMinutesUsed, b.DeductedMinutes,
		b.TotalDeductionAmount, b.LateCount,
		b.EmployeeID, b.Month, b.Year, b.Version,
	))
	if err == nil {
		return updated, nil
	}
	if err != pgx.ErrNoRows {
		return deduction.GraceBalance{}, fmt.Errorf("failed to update grace balance: %w", err)
	}

	if _, getErr := r.Get(ctx, b.EmployeeID, b.Month, b.Year); getErr != nil {
		return deduction.GraceBalance{}, getErr
	}
	return deduction.GraceBalance{}, deduction.ErrConcurrentModification
}

// ListByCompanyPeriod implements deduction.GraceBalanceRepository.
func (r *graceBalanceRepositoryImpl) ListByCompanyPeriod(ctx context.Context, companyID string, month, year int) ([]deduction.GraceBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + graceBalanceColumns + ` FROM grace_balances
		WHERE company_id = $1 AND month = $2 AND year = $3
		ORDER BY employee_id`

	rows, err := q.Query(ctx, query, companyID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list grace balances: %w", err)
	}
	defer rows.Close()

	var balances []deduction.GraceBalance
	for rows.Next() {
		b, err := scanGraceBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grace balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
