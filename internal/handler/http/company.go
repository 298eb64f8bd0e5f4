package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/handler/http/response"
)

// CompanyHandler serves the company's deduction policy.
type CompanyHandler interface {
	GetPolicy(w http.ResponseWriter, r *http.Request)
	UpdatePolicy(w http.ResponseWriter, r *http.Request)
}

type CompanyHandlerImpl struct {
	companyService company.CompanyService
}

// GetPolicy implements CompanyHandler.
func (c *CompanyHandlerImpl) GetPolicy(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	policy, err := c.companyService.GetPolicy(r.Context(), claims.CompanyID)
	if err != nil {
		slog.Error("Get deduction policy service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, company.NewDeductionPolicyResponse(policy))
}

// UpdatePolicy implements CompanyHandler.
func (c *CompanyHandlerImpl) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var updateReq company.UpdateDeductionPolicyRequest

	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		slog.Error("Update deduction policy decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := updateReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	policy, err := c.companyService.UpdatePolicy(r.Context(), claims.CompanyID, updateReq)
	if err != nil {
		slog.Error("Update deduction policy service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Deduction policy updated successfully", policy)
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &CompanyHandlerImpl{
		companyService: companyService,
	}
}
