// Package tickers loads and normalises ticker lists.
package tickers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Normalize trims and upper-cases tickers, dropping blanks and duplicates
// while keeping the first occurrence's position.
func Normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, t := range list {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Select restricts list to the tickers in only, preserving list order.
// An empty only selects everything.
func Select(list, only []string) []string {
	if len(only) == 0 {
		return list
	}
	want := make(map[string]struct{}, len(only))
	for _, t := range Normalize(only) {
		want[t] = struct{}{}
	}
	var out []string
	for _, t := range list {
		if _, ok := want[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Split parses a comma or whitespace separated ticker string.
func Split(s string) []string {
	return Normalize(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}))
}

// Load reads tickers from the first column of a .csv or .xlsx file. The first
// row is a header and is skipped.
func Load(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open ticker file: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open ticker file: %w", err)
		}
		defer f.Close()
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported ticker file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// ReadCSV returns the normalised first column of a CSV document, skipping the header row.
func ReadCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var col []string
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) > 0 {
			col = append(col, rec[0])
		}
	}
	return Normalize(col), nil
}

// ReadXLSX returns the normalised first column of the first sheet, skipping the header row.
func ReadXLSX(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	var col []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		col = append(col, row[0])
	}
	return Normalize(col), nil
}
