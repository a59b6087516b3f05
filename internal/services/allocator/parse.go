package allocator

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/shopspring/decimal"

	"loan_allocator/internal/models"
	"loan_allocator/internal/utils"
)

// Column names expected in the input sheets. These match the sheets
// produced by the collections department verbatim.
const (
	ColIDNumber       = "ID NUMBER"
	ColEmployeeNumber = "EMPLOYEE NUMBER"
	ColInstalment     = "INSTALMENT AMOUNT"
	ColPaid           = "PAID"
	ColDiff           = "DIFF"
)

var (
	requiredSubmission = []string{ColIDNumber, ColEmployeeNumber, ColInstalment}
	requiredCollected  = []string{ColIDNumber, ColEmployeeNumber, ColPaid}
)

func checkColumns(header []string, required []string, sheet string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.ToUpper(strings.TrimSpace(h))] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s file missing columns: %s", sheet, strings.Join(missing, ", "))
	}
	return nil
}

// parseAmount accepts amounts the way they arrive from exported
// sheets: thousand spaces, comma decimal separators, blanks for zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

func fieldOf(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return strings.TrimSpace(v)
	}
	// header casing can differ between exports
	for k, v := range m {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

type skippedRow struct {
	Sheet  string
	Row    int
	Reason string
	Raw    map[string]string
}

func parseSubmission(rows []map[string]string) ([]*models.SubmissionRecord, []skippedRow) {
	recs := make([]*models.SubmissionRecord, 0, len(rows))
	var skipped []skippedRow

	for i, m := range rows {
		rowNum := i + 1

		instalment, err := parseAmount(fieldOf(m, ColInstalment))
		if err != nil {
			skipped = append(skipped, skippedRow{Sheet: "submission", Row: rowNum, Reason: "bad instalment amount: " + err.Error(), Raw: m})
			continue
		}
		paid, err := parseAmount(fieldOf(m, ColPaid))
		if err != nil {
			skipped = append(skipped, skippedRow{Sheet: "submission", Row: rowNum, Reason: "bad paid amount: " + err.Error(), Raw: m})
			continue
		}

		recs = append(recs, &models.SubmissionRecord{
			Row:            rowNum,
			IDNumber:       utils.NormalizeIdentifier(fieldOf(m, ColIDNumber)),
			EmployeeNumber: utils.NormalizeIdentifier(fieldOf(m, ColEmployeeNumber)),
			Instalment:     instalment,
			Paid:           paid,
			Extra:          m,
		})
	}
	return recs, skipped
}

func parseCollected(rows []map[string]string) ([]*models.CollectedRecord, []skippedRow) {
	recs := make([]*models.CollectedRecord, 0, len(rows))
	var skipped []skippedRow

	for i, m := range rows {
		rowNum := i + 1

		paid, err := parseAmount(fieldOf(m, ColPaid))
		if err != nil {
			skipped = append(skipped, skippedRow{Sheet: "collected", Row: rowNum, Reason: "bad paid amount: " + err.Error(), Raw: m})
			continue
		}
		if paid.IsNegative() {
			skipped = append(skipped, skippedRow{Sheet: "collected", Row: rowNum, Reason: "negative paid amount", Raw: m})
			continue
		}

		recs = append(recs, &models.CollectedRecord{
			Row:            rowNum,
			IDNumber:       utils.NormalizeIdentifier(fieldOf(m, ColIDNumber)),
			EmployeeNumber: utils.NormalizeIdentifier(fieldOf(m, ColEmployeeNumber)),
			Paid:           paid,
			Remaining:      paid,
		})
	}
	return recs, skipped
}

func detectFormat(filePath, contentType string) string {
	p := filePath
	if u, err := url.Parse(filePath); err == nil && u != nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	switch ext {
	case "xlsx":
		return "xlsx"
	case "csv":
		return "csv"
	}
	med, _, _ := mime.ParseMediaType(contentType)
	switch med {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "text/csv", "application/csv", "text/plain":
		return "csv"
	}
	return ""
}
