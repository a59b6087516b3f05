package allocator

import (
	"testing"

	"github.com/shopspring/decimal"

	"loan_allocator/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sub(row int, id, emp, instalment, paid string) *models.SubmissionRecord {
	return &models.SubmissionRecord{
		Row:            row,
		IDNumber:       id,
		EmployeeNumber: emp,
		Instalment:     dec(instalment),
		Paid:           dec(paid),
	}
}

func col(row int, id, emp, paid string) *models.CollectedRecord {
	p := dec(paid)
	return &models.CollectedRecord{
		Row:            row,
		IDNumber:       id,
		EmployeeNumber: emp,
		Paid:           p,
		Remaining:      p,
	}
}

func TestAllocateByIDNumber(t *testing.T) {
	subs := []*models.SubmissionRecord{sub(1, "ID1", "E1", "500", "0")}
	cols := []*models.CollectedRecord{col(1, "ID1", "E1", "500")}

	allocations, summary := allocate("run-1", subs, cols)

	if len(allocations) != 1 {
		t.Fatalf("expected 1 allocation, got %d", len(allocations))
	}
	if allocations[0].MatchedBy != models.MatchIDNumber {
		t.Errorf("expected match by id_number, got %s", allocations[0].MatchedBy)
	}
	if !subs[0].Paid.Equal(dec("500")) {
		t.Errorf("expected paid 500, got %s", subs[0].Paid)
	}
	if !subs[0].Diff.IsZero() {
		t.Errorf("expected diff 0, got %s", subs[0].Diff)
	}
	if !summary.Unallocated.IsZero() {
		t.Errorf("expected no unallocated balance, got %s", summary.Unallocated)
	}
}

func TestAllocateFallsBackToEmployeeNumber(t *testing.T) {
	subs := []*models.SubmissionRecord{sub(1, "ID1", "E1", "300", "0")}
	cols := []*models.CollectedRecord{col(1, "OTHER", "E1", "300")}

	allocations, _ := allocate("run-1", subs, cols)

	if len(allocations) != 1 {
		t.Fatalf("expected 1 allocation, got %d", len(allocations))
	}
	if allocations[0].MatchedBy != models.MatchEmployeeNumber {
		t.Errorf("expected match by employee_number, got %s", allocations[0].MatchedBy)
	}
	if !subs[0].Diff.IsZero() {
		t.Errorf("expected diff 0, got %s", subs[0].Diff)
	}
}

func TestAllocateCapsAtInstalment(t *testing.T) {
	subs := []*models.SubmissionRecord{sub(1, "ID1", "E1", "200", "0")}
	cols := []*models.CollectedRecord{col(1, "ID1", "E1", "350")}

	allocations, summary := allocate("run-1", subs, cols)

	if len(allocations) != 1 {
		t.Fatalf("expected 1 allocation, got %d", len(allocations))
	}
	if !allocations[0].Amount.Equal(dec("200")) {
		t.Errorf("expected allocation of 200, got %s", allocations[0].Amount)
	}
	if !subs[0].Paid.Equal(dec("200")) {
		t.Errorf("paid must not exceed instalment: got %s", subs[0].Paid)
	}
	if !summary.Unallocated.Equal(dec("150")) {
		t.Errorf("expected 150 unallocated, got %s", summary.Unallocated)
	}
}

func TestAllocatePartialPaymentLeavesDiff(t *testing.T) {
	subs := []*models.SubmissionRecord{sub(1, "ID1", "E1", "400", "0")}
	cols := []*models.CollectedRecord{col(1, "ID1", "E1", "150")}

	_, summary := allocate("run-1", subs, cols)

	if !subs[0].Paid.Equal(dec("150")) {
		t.Errorf("expected paid 150, got %s", subs[0].Paid)
	}
	if !subs[0].Diff.Equal(dec("250")) {
		t.Errorf("expected diff 250, got %s", subs[0].Diff)
	}
	if !summary.TotalPaid.Equal(dec("150")) {
		t.Errorf("expected total paid 150, got %s", summary.TotalPaid)
	}
}

func TestAllocatePreExistingPaidCounts(t *testing.T) {
	subs := []*models.SubmissionRecord{sub(1, "ID1", "E1", "500", "100")}
	cols := []*models.CollectedRecord{col(1, "ID1", "E1", "1000")}

	allocations, summary := allocate("run-1", subs, cols)

	if len(allocations) != 1 {
		t.Fatalf("expected 1 allocation, got %d", len(allocations))
	}
	if !allocations[0].Amount.Equal(dec("400")) {
		t.Errorf("expected draw of 400 on top of existing 100, got %s", allocations[0].Amount)
	}
	if !subs[0].Paid.Equal(dec("500")) {
		t.Errorf("expected paid 500, got %s", subs[0].Paid)
	}
	if !summary.Unallocated.Equal(dec("600")) {
		t.Errorf("expected 600 unallocated, got %s", summary.Unallocated)
	}
}

// A payment matching one row by ID NUMBER and another by EMPLOYEE
// NUMBER must not be spent twice.
func TestAllocatePaymentNeverSpentTwice(t *testing.T) {
	subs := []*models.SubmissionRecord{
		sub(1, "ID1", "E9", "100", "0"),
		sub(2, "ID9", "E1", "100", "0"),
	}
	cols := []*models.CollectedRecord{col(1, "ID1", "E1", "100")}

	_, summary := allocate("run-1", subs, cols)

	if !summary.TotalAllocated.Equal(dec("100")) {
		t.Errorf("expected total allocated 100, got %s", summary.TotalAllocated)
	}
	if !subs[0].Paid.Equal(dec("100")) {
		t.Errorf("row 1 should take the full payment by id, got %s", subs[0].Paid)
	}
	if !subs[1].Paid.IsZero() {
		t.Errorf("row 2 must not reuse the spent payment, got %s", subs[1].Paid)
	}
}

func TestAllocateConservation(t *testing.T) {
	subs := []*models.SubmissionRecord{
		sub(1, "ID1", "E1", "250", "0"),
		sub(2, "ID2", "E2", "900", "50"),
		sub(3, "ID3", "E1", "120", "0"),
	}
	cols := []*models.CollectedRecord{
		col(1, "ID1", "E1", "300"),
		col(2, "ID2", "E9", "400"),
		col(3, "", "E1", "75"),
	}

	_, summary := allocate("run-1", subs, cols)

	if !summary.TotalCollected.Equal(summary.TotalAllocated.Add(summary.Unallocated)) {
		t.Fatalf("collected (%s) != allocated (%s) + unallocated (%s)",
			summary.TotalCollected, summary.TotalAllocated, summary.Unallocated)
	}
	for _, s := range subs {
		if s.Paid.GreaterThan(s.Instalment) {
			t.Errorf("row %d paid %s exceeds instalment %s", s.Row, s.Paid, s.Instalment)
		}
		if s.Diff.IsNegative() {
			t.Errorf("row %d diff is negative: %s", s.Row, s.Diff)
		}
	}
}

func TestAllocateDeterministic(t *testing.T) {
	build := func() ([]*models.SubmissionRecord, []*models.CollectedRecord) {
		return []*models.SubmissionRecord{
				sub(1, "ID1", "E1", "250", "0"),
				sub(2, "ID1", "E2", "250", "0"),
				sub(3, "ID2", "E1", "100", "0"),
			}, []*models.CollectedRecord{
				col(1, "ID1", "E1", "300"),
				col(2, "ID2", "E1", "120"),
			}
	}

	subs1, cols1 := build()
	allocs1, sum1 := allocate("run-1", subs1, cols1)
	subs2, cols2 := build()
	allocs2, sum2 := allocate("run-2", subs2, cols2)

	if len(allocs1) != len(allocs2) {
		t.Fatalf("allocation counts differ: %d vs %d", len(allocs1), len(allocs2))
	}
	for i := range allocs1 {
		a, b := allocs1[i], allocs2[i]
		if a.SubmissionRow != b.SubmissionRow || a.CollectedRow != b.CollectedRow ||
			a.MatchedBy != b.MatchedBy || !a.Amount.Equal(b.Amount) {
			t.Errorf("allocation %d differs: %+v vs %+v", i, a, b)
		}
	}
	if !sum1.TotalPaid.Equal(sum2.TotalPaid) || !sum1.Unallocated.Equal(sum2.Unallocated) {
		t.Errorf("summaries differ: %+v vs %+v", sum1, sum2)
	}
}

func TestAllocationRecordsReferenceMatchedRows(t *testing.T) {
	subs := []*models.SubmissionRecord{
		sub(1, "ID1", "E1", "250", "0"),
		sub(2, "ID2", "E2", "400", "0"),
	}
	cols := []*models.CollectedRecord{
		col(1, "ID1", "E9", "250"),
		col(2, "ID9", "E2", "100"),
	}
	byRow := map[int]*models.CollectedRecord{1: cols[0], 2: cols[1]}

	allocations, _ := allocate("run-1", subs, cols)

	for _, a := range allocations {
		c, ok := byRow[a.CollectedRow]
		if !ok {
			t.Fatalf("allocation references unknown collected row %d", a.CollectedRow)
		}
		switch a.MatchedBy {
		case models.MatchIDNumber:
			if c.IDNumber != a.IDNumber {
				t.Errorf("id mismatch: allocation %s vs collected %s", a.IDNumber, c.IDNumber)
			}
		case models.MatchEmployeeNumber:
			if c.EmployeeNumber != a.EmployeeNumber {
				t.Errorf("employee mismatch: allocation %s vs collected %s", a.EmployeeNumber, c.EmployeeNumber)
			}
		default:
			t.Errorf("unknown match basis %q", a.MatchedBy)
		}
	}
}
