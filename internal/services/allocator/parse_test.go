package allocator

import (
	"strings"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"100", "100", false},
		{"1 250,50", "1250.5", false},
		{"1250.50", "1250.5", false},
		{"", "0", false},
		{"abc", "", true},
		// comma is a decimal separator here, so a US-style
		// thousands comma must be rejected, not guessed at
		{"1,250.50", "", true},
		{"-15,25", "-15.25", false},
	}
	for _, c := range cases {
		got, err := parseAmount(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseAmount(%q): expected error, got %s", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAmount(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got.String() != c.want {
			t.Errorf("parseAmount(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestCheckColumnsMissing(t *testing.T) {
	header := []string{"ID NUMBER", "EMPLOYEE NUMBER"}
	err := checkColumns(header, requiredSubmission, "submission")
	if err == nil {
		t.Fatal("expected error for missing INSTALMENT AMOUNT")
	}
	if !strings.Contains(err.Error(), "INSTALMENT AMOUNT") {
		t.Errorf("error should name the missing column: %v", err)
	}
}

func TestCheckColumnsCaseInsensitive(t *testing.T) {
	header := []string{"id number", "Employee Number", "Instalment Amount"}
	if err := checkColumns(header, requiredSubmission, "submission"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseSubmissionSkipsBadAmounts(t *testing.T) {
	rows := []map[string]string{
		{"ID NUMBER": "ID1", "EMPLOYEE NUMBER": "E1", "INSTALMENT AMOUNT": "100"},
		{"ID NUMBER": "ID2", "EMPLOYEE NUMBER": "E2", "INSTALMENT AMOUNT": "oops"},
	}
	recs, skipped := parseSubmission(rows)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped row, got %d", len(skipped))
	}
	if skipped[0].Row != 2 {
		t.Errorf("expected row 2 skipped, got %d", skipped[0].Row)
	}
}

func TestParseSubmissionBlankPaidIsZero(t *testing.T) {
	rows := []map[string]string{
		{"ID NUMBER": "ID1", "EMPLOYEE NUMBER": "E1", "INSTALMENT AMOUNT": "100", "PAID": ""},
	}
	recs, skipped := parseSubmission(rows)
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped rows, got %d", len(skipped))
	}
	if !recs[0].Paid.IsZero() {
		t.Errorf("expected zero paid, got %s", recs[0].Paid)
	}
}

func TestParseCollectedSkipsNegative(t *testing.T) {
	rows := []map[string]string{
		{"ID NUMBER": "ID1", "EMPLOYEE NUMBER": "E1", "PAID": "-50"},
		{"ID NUMBER": "ID2", "EMPLOYEE NUMBER": "E2", "PAID": "50"},
	}
	recs, skipped := parseCollected(rows)
	if len(recs) != 1 || len(skipped) != 1 {
		t.Fatalf("expected 1 record and 1 skipped, got %d and %d", len(recs), len(skipped))
	}
	if !recs[0].Remaining.Equal(recs[0].Paid) {
		t.Errorf("remaining should start at paid: %s vs %s", recs[0].Remaining, recs[0].Paid)
	}
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path string
		ct   string
		want string
	}{
		{"s3://bucket/sheets/sub.xlsx", "", "xlsx"},
		{"collected.csv", "", "csv"},
		{"nofile", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"},
		{"nofile", "text/csv", "csv"},
		{"nofile", "", ""},
	}
	for _, c := range cases {
		if got := detectFormat(c.path, c.ct); got != c.want {
			t.Errorf("detectFormat(%q, %q) = %q, want %q", c.path, c.ct, got, c.want)
		}
	}
}
