package deduction

import (
	"context"
	"io"
)

type DeductionService interface {
	// Approve moves a PENDING deduction to APPROVED.
	Approve(ctx context.Context, companyID string, deductionID string, actorID string) (DeductionResponse, error)

	// Cancel voids a deduction and restores the grace balance it consumed.
	Cancel(ctx context.Context, companyID string, deductionID string, actorID string, req CancelDeductionRequest) (DeductionResponse, error)

	MarkAppliedToPayroll(ctx context.Context, companyID string, req ApplyPayrollRequest) (ApplyPayrollResponse, error)

	MonthlyReport(ctx context.Context, companyID string, filter ReportFilter) (MonthlyReportResponse, error)
	CompanyStats(ctx context.Context, companyID string, filter ReportFilter) (CompanyStatsResponse, error)

	// ExportMonthlyReport writes the monthly report as an XLSX workbook.
	ExportMonthlyReport(ctx context.Context, companyID string, filter ReportFilter, w io.Writer) error
}
