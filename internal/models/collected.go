package models

import "github.com/shopspring/decimal"

// CollectedRecord is one payment row from the collected sheet.
// Remaining starts equal to Paid and is drawn down during allocation;
// both match indexes point at the same record, so a unit of money can
// be applied at most once.
type CollectedRecord struct {
	Row            int
	IDNumber       string
	EmployeeNumber string
	Paid           decimal.Decimal
	Remaining      decimal.Decimal
}
