package allocator

import (
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loan_allocator/internal/models"
)

// allocate applies collected payments to submission rows in sheet
// order. Each row draws from payments matching its ID NUMBER first,
// then from payments matching its EMPLOYEE NUMBER, capped at the
// outstanding instalment. Both indexes reference the same payment
// records, so every unit of collected money is applied at most once
// and total collected = total allocated + unallocated holds exactly.
func allocate(runID string, subs []*models.SubmissionRecord, cols []*models.CollectedRecord) ([]models.Allocation, models.Summary) {
	byID := make(map[string][]*models.CollectedRecord)
	byEmp := make(map[string][]*models.CollectedRecord)
	for _, c := range cols {
		if c.IDNumber != "" {
			byID[c.IDNumber] = append(byID[c.IDNumber], c)
		}
		if c.EmployeeNumber != "" {
			byEmp[c.EmployeeNumber] = append(byEmp[c.EmployeeNumber], c)
		}
	}

	var allocations []models.Allocation
	summary := models.Summary{
		Records:  len(subs),
		Payments: len(cols),
	}

	for _, s := range subs {
		summary.TotalInstalment = summary.TotalInstalment.Add(s.Instalment)

		// pre-existing overpayment is capped at the instalment, as
		// the result sheet never reports PAID above it
		if s.Paid.GreaterThan(s.Instalment) {
			s.Paid = s.Instalment
		}

		need := s.Outstanding()
		if need.IsPositive() && s.IDNumber != "" {
			need = drawFrom(runID, s, byID[s.IDNumber], models.MatchIDNumber, need, &allocations)
		}
		if need.IsPositive() && s.EmployeeNumber != "" {
			drawFrom(runID, s, byEmp[s.EmployeeNumber], models.MatchEmployeeNumber, need, &allocations)
		}

		s.Diff = s.Instalment.Sub(s.Paid)
		summary.TotalPaid = summary.TotalPaid.Add(s.Paid)
	}

	for _, c := range cols {
		summary.TotalCollected = summary.TotalCollected.Add(c.Paid)
		summary.Unallocated = summary.Unallocated.Add(c.Remaining)
	}
	for _, a := range allocations {
		summary.TotalAllocated = summary.TotalAllocated.Add(a.Amount)
	}

	log.Printf("[ALLOC][DONE] records=%d payments=%d allocations=%d total_paid=%s unallocated=%s",
		summary.Records, summary.Payments, len(allocations), summary.TotalPaid, summary.Unallocated)

	return allocations, summary
}

// drawFrom takes up to need from the candidate payments, in collected
// sheet order, and returns what is still outstanding.
func drawFrom(runID string, s *models.SubmissionRecord, candidates []*models.CollectedRecord, basis string, need decimal.Decimal, allocations *[]models.Allocation) decimal.Decimal {
	for _, c := range candidates {
		if !need.IsPositive() {
			break
		}
		if !c.Remaining.IsPositive() {
			continue
		}
		amount := decimal.Min(need, c.Remaining)

		c.Remaining = c.Remaining.Sub(amount)
		s.Paid = s.Paid.Add(amount)
		need = need.Sub(amount)

		*allocations = append(*allocations, models.Allocation{
			ID:             uuid.NewString(),
			RunID:          runID,
			SubmissionRow:  s.Row,
			CollectedRow:   c.Row,
			IDNumber:       s.IDNumber,
			EmployeeNumber: s.EmployeeNumber,
			MatchedBy:      basis,
			Amount:         amount,
		})
	}
	return need
}
