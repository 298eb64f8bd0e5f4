package user

import "errors"

var (
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrEmployeeIDRequired      = errors.New("employee ID is required")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
