package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

// requestClaims is the caller identity carried by the access token.
type requestClaims struct {
	UserID     string
	CompanyID  string
	EmployeeID *string
	Role       user.Role
}

func claimsFromRequest(r *http.Request) (requestClaims, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return requestClaims{}, user.ErrCompanyIDRequired
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return requestClaims{}, user.ErrCompanyIDRequired
	}

	c := requestClaims{CompanyID: companyID}
	c.UserID, _ = claims["user_id"].(string)
	if role, ok := claims["role"].(string); ok {
		c.Role = user.Role(role)
	}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		c.EmployeeID = &employeeID
	}
	return c, nil
}

// targetEmployee picks the employee an attendance request acts on. Acting for
// someone else needs attendance.view_all.
func (c requestClaims) targetEmployee(requested *string) (string, error) {
	if requested != nil && (c.EmployeeID == nil || *requested != *c.EmployeeID) {
		if !user.HasPermission(c.Role, user.PermissionAttendanceViewAll) {
			return "", user.ErrInsufficientPermissions
		}
		return *requested, nil
	}
	if c.EmployeeID == nil {
		return "", user.ErrEmployeeIDRequired
	}
	return *c.EmployeeID, nil
}

// actor is the id recorded on approvals and cancellations.
func (c requestClaims) actor() string {
	if c.UserID != "" {
		return c.UserID
	}
	if c.EmployeeID != nil {
		return *c.EmployeeID
	}
	return string(c.Role)
}
