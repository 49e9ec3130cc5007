package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidConfig     = goerr.New("invalid configuration")
	ErrMalformedMapping  = goerr.New("malformed group mapping")
	ErrInvalidPeriod     = goerr.New("invalid voting period")
	ErrInvalidNomination = goerr.New("invalid nomination")
)

// Context keys for error values
const (
	ConfigFieldKey = "config_field"
	ConfigValueKey = "config_value"
	PeriodIDKey    = "period_id"
	EmployeeIDKey  = "employee_id"
)
