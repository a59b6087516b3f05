package models

import "github.com/shopspring/decimal"

// SubmissionRecord is one outstanding instalment row from the
// submission sheet. Row is the 1-based data row index (header excluded).
type SubmissionRecord struct {
	Row            int
	IDNumber       string
	EmployeeNumber string
	Instalment     decimal.Decimal
	Paid           decimal.Decimal
	Diff           decimal.Decimal

	// Extra keeps the source columns so the result sheet can carry
	// them through unchanged.
	Extra map[string]string
}

// Outstanding is how much the row still needs to reach its instalment.
func (s *SubmissionRecord) Outstanding() decimal.Decimal {
	out := s.Instalment.Sub(s.Paid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
