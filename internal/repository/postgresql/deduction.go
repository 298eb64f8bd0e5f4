package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type deductionRepositoryImpl struct {
	db *database.DB
}

func NewDeductionRepository(db *database.DB) deduction.DeductionRepository {
	return &deductionRepositoryImpl{db: db}
}

const deductionColumns = `id, company_id, employee_id, source_attendance_id, type, amount,
	minutes_deducted, breakdown, status, effective_month, effective_year,
	applied_to_payroll, applied_at, approved_by, approved_at,
	cancelled_by, cancelled_at, cancel_reason, notes, created_at, updated_at`

func scanDeduction(row pgx.Row) (deduction.Deduction, error) {
	var (
		d              deduction.Deduction
		breakdownBytes []byte
	)
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.EmployeeID, &d.SourceAttendanceID, &d.Type, &d.Amount,
		&d.MinutesDeducted, &breakdownBytes, &d.Status, &d.EffectiveMonth, &d.EffectiveYear,
		&d.AppliedToPayroll, &d.AppliedAt, &d.ApprovedBy, &d.ApprovedAt,
		&d.CancelledBy, &d.CancelledAt, &d.CancelReason, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return deduction.Deduction{}, err
	}
	if err := json.Unmarshal(breakdownBytes, &d.Breakdown); err != nil {
		return deduction.Deduction{}, fmt.Errorf("failed to decode breakdown of deduction %s: %w", d.ID, err)
	}
	return d, nil
}

// Create implements deduction.DeductionRepository.
func (r *deductionRepositoryImpl) Create(ctx context.Context, d deduction.Deduction) (deduction.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	breakdownJSON, err := json.Marshal(d.Breakdown)
	if err != nil {
		return deduction.Deduction{}, fmt.Errorf("failed to encode breakdown: %w", err)
	}

	query := `
		INSERT INTO deductions (
			company_id, employee_id, source_attendance_id, type, amount,
			minutes_deducted, breakdown, status, effective_month, effective_year,
			applied_to_payroll, applied_at, approved_by, approved_at,
			cancelled_by, cancelled_at, cancel_reason, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + deductionColumns

	created, err := scanDeduction(q.QueryRow(ctx, query,
		d.CompanyID, d.EmployeeID, d.SourceAttendanceID, d.Type, d.Amount,
		d.MinutesDeducted, breakdownJSON, d.Status, d.EffectiveMonth, d.EffectiveYear,
		d.AppliedToPayroll, d.AppliedAt, d.ApprovedBy, d.ApprovedAt,
		d.CancelledBy, d.CancelledAt, d.CancelReason, d.Notes,
	))
	if err != nil {
		return deduction.Deduction{}, fmt.Errorf("failed to create deduction: %w", err)
	}
	return created, nil
}

// GetByID implements deduction.DeductionRepository.
// Inside a transaction the row is locked until commit.
func (r *deductionRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (deduction.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + deductionColumns + ` FROM deductions WHERE id = $1 AND company_id = $2 FOR UPDATE`

	d, err := scanDeduction(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.Deduction{}, deduction.ErrDeductionNotFound
		}
		return deduction.Deduction{}, fmt.Errorf("failed to get deduction by id: %w", err)
	}
	return d, nil
}

// Update implements deduction.DeductionRepository. Only the lifecycle fields change.
func (r *deductionRepositoryImpl) Update(ctx context.Context, d deduction.Deduction) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE deductions SET
			status = $1, applied_to_payroll = $2, applied_at = $3,
			approved_by = $4, approved_at = $5,
			cancelled_by = $6, cancelled_at = $7, cancel_reason = $8,
			notes = $9, updated_at = NOW()
		WHERE id = $10 AND company_id = $11
	`

	tag, err := q.Exec(ctx, query,
		d.Status, d.AppliedToPayroll, d.AppliedAt,
		d.ApprovedBy, d.ApprovedAt,
		d.CancelledBy, d.CancelledAt, d.CancelReason,
		d.Notes, d.ID, d.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deduction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return deduction.ErrDeductionNotFound
	}
	return nil
}

func (r *deductionRepositoryImpl) list(ctx context.Context, where string, args ...any) ([]deduction.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + deductionColumns + ` FROM deductions WHERE ` + where + ` ORDER BY created_at, id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deductions: %w", err)
	}
	defer rows.Close()

	var deductions []deduction.Deduction
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deduction: %w", err)
		}
		deductions = append(deductions, d)
	}
	return deductions, rows.Err()
}

// ListByEmployeePeriod implements deduction.DeductionRepository.
func (r *deductionRepositoryImpl) ListByEmployeePeriod(ctx context.Context, companyID string, employeeID string, month, year int) ([]deduction.Deduction, error) {
	return r.list(ctx, `company_id = $1 AND employee_id = $2 AND effective_month = $3 AND effective_year = $4`,
		companyID, employeeID, month, year)
}

// ListByCompanyPeriod implements deduction.DeductionRepository.
func (r *deductionRepositoryImpl) ListByCompanyPeriod(ctx context.Context, companyID string, month, year int) ([]deduction.Deduction, error) {
	return r.list(ctx, `company_id = $1 AND effective_month = $2 AND effective_year = $3`,
		companyID, month, year)
}

// MarkAppliedToPayroll implements deduction.DeductionRepository.
func (r *deductionRepositoryImpl) MarkAppliedToPayroll(ctx context.Context, companyID string, month, year int, appliedAt time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE deductions
		SET applied_to_payroll = TRUE, applied_at = $1, updated_at = $1
		WHERE company_id = $2 AND effective_month = $3 AND effective_year = $4
			AND status = $5 AND applied_to_payroll = FALSE
	`

	tag, err := q.Exec(ctx, query, appliedAt, companyID, month, year, deduction.StatusApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to mark deductions as applied: %w", err)
	}
	return tag.RowsAffected(), nil
}
