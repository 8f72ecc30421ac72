// Package export writes derived rows as CSV.
//
// The header line lists the bare column names. Text fields are always quoted
// with embedded quotes doubled, numbers are written bare and missing fields
// are written as an empty quoted string.
package export

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sentidash/sentidash/internal/derive"
)

// ErrNoRows is returned when there is nothing to export.
var ErrNoRows = errors.New("export: no rows to export")

// WriteCSV writes a header of columns followed by one line per row.
func WriteCSV[R derive.Record](w io.Writer, columns []string, rows []R) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(columns, ",") + "\n"); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	cells := make([]string, len(columns))
	for n, r := range rows {
		for i, c := range columns {
			cells[i] = cell(r, c)
		}
		if _, err := bw.WriteString(strings.Join(cells, ",") + "\n"); err != nil {
			return fmt.Errorf("export: write row %d: %w", n+1, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

func cell(r derive.Record, column string) string {
	v, ok := r.Field(column)
	if !ok {
		return `""`
	}
	if v.IsNumber() {
		return v.String()
	}
	return quote(v.String())
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FileName returns the export file name for a dataset, e.g. "news_20240115_103000.csv".
// Spaces in the dataset name become underscores.
func FileName(dataset string, now time.Time) string {
	name := strings.ReplaceAll(strings.TrimSpace(dataset), " ", "_")
	return fmt.Sprintf("%s_%s.csv", name, now.Format("20060102_150405"))
}

// SaveTo runs write into a buffer and, if it succeeds, stores the result in dir
// under FileName. Nothing is created when write fails.
func SaveTo(dir, dataset string, now time.Time, write func(io.Writer) error) (string, error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}
	path := filepath.Join(dir, FileName(dataset, now))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("export: write file: %w", err)
	}
	return path, nil
}
