package models

import "github.com/shopspring/decimal"

// Match basis for an allocation.
const (
	MatchIDNumber       = "id_number"
	MatchEmployeeNumber = "employee_number"
)

// Allocation records one draw from a collected payment into a
// submission row.
type Allocation struct {
	ID             string
	RunID          string
	SubmissionRow  int
	CollectedRow   int
	IDNumber       string
	EmployeeNumber string
	MatchedBy      string
	Amount         decimal.Decimal
}

// Summary carries the totals of one allocation pass.
type Summary struct {
	Records         int
	Payments        int
	SkippedRows     int
	TotalInstalment decimal.Decimal
	TotalPaid       decimal.Decimal
	TotalCollected  decimal.Decimal
	TotalAllocated  decimal.Decimal
	Unallocated     decimal.Decimal
}
