package company

import "errors"

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrPolicyNotFound  = errors.New("deduction policy not found")
	ErrMalformedPolicy = errors.New("malformed deduction policy")
)
