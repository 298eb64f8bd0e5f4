package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeInactive   = errors.New("employee is not active")
	ErrEmployeeCodeExists = errors.New("employee code already exists")
	ErrInvalidSalaryRate  = errors.New("employee deduction rate or base salary must not be negative")
)
