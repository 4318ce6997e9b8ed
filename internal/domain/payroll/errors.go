package payroll

import "errors"

var (
	ErrRecordNotFound      = errors.New("payroll record not found")
	ErrSettingsNotFound    = errors.New("payroll settings not found")
	ErrStructureNotFound   = errors.New("no active salary structure for the period")
	ErrStructureOverlap    = errors.New("salary structure dates overlap an existing structure")
	ErrInvalidStatusChange = errors.New("invalid payroll status transition")
	ErrRecordNotEditable   = errors.New("payroll record can no longer be edited")
)
