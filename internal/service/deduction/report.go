package deduction

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/export"
	"github.com/shopspring/decimal"
)

const topOffendersLimit = 5

// MonthlyReport returns balances and deductions per employee for a period.
func (s *DeductionServiceImpl) MonthlyReport(ctx context.Context, companyID string, filter deduction.ReportFilter) (deduction.MonthlyReportResponse, error) {
	if err := filter.Validate(); err != nil {
		return deduction.MonthlyReportResponse{}, err
	}

	policy, err := s.companyService.GetPolicy(ctx, companyID)
	if err != nil {
		return deduction.MonthlyReportResponse{}, fmt.Errorf("failed to get deduction policy: %w", err)
	}

	names, err := s.employeeNames(ctx, companyID)
	if err != nil {
		return deduction.MonthlyReportResponse{}, err
	}

	balances, err := s.balanceRepo.ListByCompanyPeriod(ctx, companyID, filter.Month, filter.Year)
	if err != nil {
		return deduction.MonthlyReportResponse{}, fmt.Errorf("failed to list grace balances: %w", err)
	}

	var records []deduction.Deduction
	if filter.EmployeeID != nil {
		records, err = s.deductionRepo.ListByEmployeePeriod(ctx, companyID, *filter.EmployeeID, filter.Month, filter.Year)
	} else {
		records, err = s.deductionRepo.ListByCompanyPeriod(ctx, companyID, filter.Month, filter.Year)
	}
	if err != nil {
		return deduction.MonthlyReportResponse{}, fmt.Errorf("failed to list deductions: %w", err)
	}

	byEmployee := make(map[string]*deduction.EmployeeReport)
	report := func(employeeID string) *deduction.EmployeeReport {
		r, ok := byEmployee[employeeID]
		if !ok {
			r = &deduction.EmployeeReport{
				EmployeeID:   employeeID,
				EmployeeName: names[employeeID],
				Balance:      deduction.NewGraceBalanceResponse(deduction.GraceBalance{}, policy.MonthlyGraceMinutes),
				Deductions:   []deduction.DeductionResponse{},
			}
			byEmployee[employeeID] = r
		}
		return r
	}

	for _, b := range balances {
		if filter.EmployeeID != nil && b.EmployeeID != *filter.EmployeeID {
			continue
		}
		report(b.EmployeeID).Balance = deduction.NewGraceBalanceResponse(b, policy.MonthlyGraceMinutes)
	}
	for _, d := range records {
		r := report(d.EmployeeID)
		resp := deduction.NewDeductionResponse(d)
		resp.EmployeeName = r.EmployeeName
		r.Deductions = append(r.Deductions, resp)
		if d.Status != deduction.StatusCancelled {
			r.ActiveAmount = r.ActiveAmount.Add(d.Amount)
		}
	}
	if filter.EmployeeID != nil {
		report(*filter.EmployeeID)
	}

	employees := make([]deduction.EmployeeReport, 0, len(byEmployee))
	for _, r := range byEmployee {
		employees = append(employees, *r)
	}
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].EmployeeName != employees[j].EmployeeName {
			return employees[i].EmployeeName < employees[j].EmployeeName
		}
		return employees[i].EmployeeID < employees[j].EmployeeID
	})

	return deduction.MonthlyReportResponse{
		Month:     filter.Month,
		Year:      filter.Year,
		Employees: employees,
	}, nil
}

// CompanyStats aggregates a period's ledger and deductions across the company.
func (s *DeductionServiceImpl) CompanyStats(ctx context.Context, companyID string, filter deduction.ReportFilter) (deduction.CompanyStatsResponse, error) {
	filter.EmployeeID = nil
	if err := filter.Validate(); err != nil {
		return deduction.CompanyStatsResponse{}, err
	}

	names, err := s.employeeNames(ctx, companyID)
	if err != nil {
		return deduction.CompanyStatsResponse{}, err
	}
	balances, err := s.balanceRepo.ListByCompanyPeriod(ctx, companyID, filter.Month, filter.Year)
	if err != nil {
		return deduction.CompanyStatsResponse{}, fmt.Errorf("failed to list grace balances: %w", err)
	}
	records, err := s.deductionRepo.ListByCompanyPeriod(ctx, companyID, filter.Month, filter.Year)
	if err != nil {
		return deduction.CompanyStatsResponse{}, fmt.Errorf("failed to list deductions: %w", err)
	}

	stats := deduction.CompanyStatsResponse{
		Month:        filter.Month,
		Year:         filter.Year,
		ByStatus:     make(map[deduction.Status]deduction.StatusStats),
		ByType:       make(map[deduction.Type]deduction.StatusStats),
		TopOffenders: []deduction.OffenderStats{},
	}

	offenders := make(map[string]*deduction.OffenderStats)
	for _, b := range balances {
		if b.LateCount == 0 {
			continue
		}
		stats.EmployeesLate++
		stats.TotalLateEvents += b.LateCount
		stats.TotalLateMinutes += b.TotalLateMinutes
		stats.TotalGraceUsed += b.GraceMinutesUsed
		stats.TotalDeductedMinutes += b.DeductedMinutes
		offenders[b.EmployeeID] = &deduction.OffenderStats{
			EmployeeID:       b.EmployeeID,
			EmployeeName:     names[b.EmployeeID],
			LateCount:        b.LateCount,
			TotalLateMinutes: b.TotalLateMinutes,
		}
	}

	for _, d := range records {
		st := stats.ByStatus[d.Status]
		st.Count++
		st.Amount = st.Amount.Add(d.Amount)
		stats.ByStatus[d.Status] = st

		if d.Status == deduction.StatusCancelled {
			continue
		}
		ty := stats.ByType[d.Type]
		ty.Count++
		ty.Amount = ty.Amount.Add(d.Amount)
		stats.ByType[d.Type] = ty
		stats.ActiveAmount = stats.ActiveAmount.Add(d.Amount)

		if o, ok := offenders[d.EmployeeID]; ok {
			o.Amount = o.Amount.Add(d.Amount)
		}
	}

	for _, o := range offenders {
		stats.TopOffenders = append(stats.TopOffenders, *o)
	}
	sort.Slice(stats.TopOffenders, func(i, j int) bool {
		a, b := stats.TopOffenders[i], stats.TopOffenders[j]
		if a.TotalLateMinutes != b.TotalLateMinutes {
			return a.TotalLateMinutes > b.TotalLateMinutes
		}
		return a.EmployeeID < b.EmployeeID
	})
	if len(stats.TopOffenders) > topOffendersLimit {
		stats.TopOffenders = stats.TopOffenders[:topOffendersLimit]
	}

	return stats, nil
}

// ExportMonthlyReport writes a summary sheet and a deduction sheet.
func (s *DeductionServiceImpl) ExportMonthlyReport(ctx context.Context, companyID string, filter deduction.ReportFilter, w io.Writer) error {
	report, err := s.MonthlyReport(ctx, companyID, filter)
	if err != nil {
		return err
	}

	summary := export.Sheet{
		Name: "Summary",
		Headers: []string{
			"Employee ID", "Employee", "Late Count", "Late Minutes",
			"Grace Used", "Grace Remaining", "Deducted Minutes", "Ledger Amount", "Active Amount",
		},
	}
	details := export.Sheet{
		Name: "Deductions",
		Headers: []string{
			"Deduction ID", "Employee", "Type", "Status", "Minutes", "Amount",
			"Applied To Payroll", "Created At", "Justification",
		},
	}

	for _, e := range report.Employees {
		summary.Rows = append(summary.Rows, []any{
			e.EmployeeID,
			e.EmployeeName,
			e.Balance.LateCount,
			e.Balance.TotalLateMinutes,
			e.Balance.GraceMinutesUsed,
			e.Balance.RemainingGrace,
			e.Balance.DeductedMinutes,
			amountCell(e.Balance.TotalDeductionAmount),
			amountCell(e.ActiveAmount),
		})
		for _, d := range e.Deductions {
			details.Rows = append(details.Rows, []any{
				d.ID,
				e.EmployeeName,
				d.Type,
				d.Status,
				d.MinutesDeducted,
				amountCell(d.Amount),
				d.AppliedToPayroll,
				d.CreatedAt,
				d.Breakdown.Describe(),
			})
		}
	}

	return export.WriteXLSX(w, summary, details)
}

func amountCell(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func (s *DeductionServiceImpl) employeeNames(ctx context.Context, companyID string) (map[string]string, error) {
	employees, err := s.employeeRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.FullName
	}
	return names, nil
}
