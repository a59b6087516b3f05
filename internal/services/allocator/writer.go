package allocator

import (
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"loan_allocator/internal/models"
)

const (
	sheetResult      = "Result"
	sheetAllocations = "Allocations"
	sheetSummary     = "Summary"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// buildWorkbook renders the result spreadsheet: the submission sheet
// with PAID and DIFF columns, one row per allocation, and the summary
// figures.
func buildWorkbook(header []string, subs []*models.SubmissionRecord, allocations []models.Allocation, summary models.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetResult); err != nil {
		return nil, err
	}

	outHeader := resultHeader(header)
	if err := f.SetSheetRow(sheetResult, "A1", &outHeader); err != nil {
		return nil, err
	}
	for i, s := range subs {
		row := make([]interface{}, 0, len(outHeader))
		for _, col := range outHeader {
			switch col {
			case ColPaid:
				row = append(row, s.Paid.String())
			case ColDiff:
				row = append(row, s.Diff.String())
			default:
				row = append(row, fieldOf(s.Extra, col))
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetResult, cell, &row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(sheetAllocations); err != nil {
		return nil, err
	}
	allocHeader := []interface{}{"SUBMISSION ROW", "COLLECTED ROW", ColIDNumber, ColEmployeeNumber, "MATCHED BY", "AMOUNT"}
	if err := f.SetSheetRow(sheetAllocations, "A1", &allocHeader); err != nil {
		return nil, err
	}
	for i, a := range allocations {
		row := []interface{}{a.SubmissionRow, a.CollectedRow, a.IDNumber, a.EmployeeNumber, a.MatchedBy, a.Amount.String()}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetAllocations, cell, &row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, err
	}
	summaryRows := [][]interface{}{
		{"Records processed", summary.Records},
		{"Payments processed", summary.Payments},
		{"Rows skipped", summary.SkippedRows},
		{"Total instalment", summary.TotalInstalment.String()},
		{"Total paid", summary.TotalPaid.String()},
		{"Total collected", summary.TotalCollected.String()},
		{"Total allocated", summary.TotalAllocated.String()},
		{"Unallocated balance", summary.Unallocated.String()},
	}
	for i, row := range summaryRows {
		r := row
		if err := f.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return nil, err
		}
	}

	log.Printf("[ALLOC][XLSX] result_rows=%d allocation_rows=%d", len(subs), len(allocations))
	return f, nil
}

// resultHeader keeps the submission columns in their original order
// and guarantees PAID and DIFF are present exactly once, at the end
// when the input did not already carry them.
func resultHeader(header []string) []string {
	out := make([]string, 0, len(header)+2)
	hasPaid, hasDiff := false, false
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		switch strings.ToUpper(h) {
		case ColPaid:
			hasPaid = true
			out = append(out, ColPaid)
		case ColDiff:
			hasDiff = true
			out = append(out, ColDiff)
		default:
			out = append(out, h)
		}
	}
	if !hasPaid {
		out = append(out, ColPaid)
	}
	if !hasDiff {
		out = append(out, ColDiff)
	}
	return out
}
