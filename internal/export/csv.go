// Package export serializes a filtered view to delimited text.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/KaramelBytes/sheetsift-cli/internal/utils"
)

// Table is the read-only shape export needs from a view.
type Table interface {
	Header() []string
	Len() int
	Record(i int) []string
}

// WriteCSV writes t as UTF-8 CSV: one header line, then one line per row
// in table order.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := cw.Write(t.Record(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteFile writes t to path atomically. Paths ending in ".gz" are
// gzip-compressed.
func WriteFile(path string, t Table) error {
	var buf bytes.Buffer
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zw := gzip.NewWriter(&buf)
		if err := WriteCSV(zw, t); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close gzip: %w", err)
		}
	} else if err := WriteCSV(&buf, t); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// Filename returns a download name ending in ".csv", falling back to def
// when name is blank.
func Filename(name, def string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = def
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return name
}
