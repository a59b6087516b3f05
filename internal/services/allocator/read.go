package allocator

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readSheet parses the whole first sheet of an xlsx or csv document
// into header-keyed rows. hint is the format detected from the path
// or content type; the other format is tried as a fallback, which is
// why the source is a byte slice rather than a stream.
func readSheet(data []byte, hint string) (header []string, rows []map[string]string, format string, err error) {
	switch hint {
	case "xlsx":
		header, rows, err = readXLSXFirstSheet(bytes.NewReader(data))
		if err != nil {
			log.Printf("[READ][XLSX][ERR] %v — fallback to CSV", err)
			header, rows, err = readCSV(bytes.NewReader(data))
			if err == nil {
				return header, rows, "csv", nil
			}
			return nil, nil, "", err
		}
		return header, rows, "xlsx", nil

	case "csv":
		header, rows, err = readCSV(bytes.NewReader(data))
		if err != nil {
			log.Printf("[READ][CSV][ERR] %v — fallback to XLSX", err)
			header, rows, err = readXLSXFirstSheet(bytes.NewReader(data))
			if err == nil {
				return header, rows, "xlsx", nil
			}
			return nil, nil, "", err
		}
		return header, rows, "csv", nil

	default:
		log.Printf("[READ] unknown format — try XLSX then CSV")
		header, rows, err = readXLSXFirstSheet(bytes.NewReader(data))
		if err == nil {
			return header, rows, "xlsx", nil
		}
		log.Printf("[READ][XLSX][ERR] %v — fallback to CSV", err)
		header, rows, err = readCSV(bytes.NewReader(data))
		if err == nil {
			return header, rows, "csv", nil
		}
		return nil, nil, "", err
	}
}

func readCSV(r io.Reader) ([]string, []map[string]string, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[READ][CSV] header=%v", header)

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[READ][CSV][WARN] read row err: %v", err)
			continue
		}
		rows = append(rows, toMap(header, record))
	}
	log.Printf("[READ][CSV][DONE] rows=%d", len(rows))
	return header, rows, nil
}

func readXLSXFirstSheet(r io.Reader) ([]string, []map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("xlsx has no sheets")
	}
	sheet := sheets[0]
	log.Printf("[READ][XLSX] first_sheet=%q", sheet)

	it, err := f.Rows(sheet)
	if err != nil {
		return nil, nil, err
	}
	defer it.Close()

	if !it.Next() {
		if it.Error() != nil {
			return nil, nil, it.Error()
		}
		return nil, nil, errors.New("xlsx sheet is empty")
	}
	header, err := it.Columns()
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[READ][XLSX] header=%v", header)

	var rows []map[string]string
	for it.Next() {
		cols, err := it.Columns()
		if err != nil {
			log.Printf("[READ][XLSX][WARN] read row err: %v", err)
			continue
		}
		rows = append(rows, toMap(header, cols))
	}
	if err := it.Error(); err != nil {
		return nil, nil, err
	}
	log.Printf("[READ][XLSX][DONE] rows=%d", len(rows))
	return header, rows, nil
}

func toMap(header []string, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, key := range header {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		m[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return m
}
