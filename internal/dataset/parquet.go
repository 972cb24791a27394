package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

type parquetReader struct{}

func (parquetReader) CanRead(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".parquet")
}

// Read flattens every leaf column into one text column named by its dotted
// path. Repeated leaves are joined with ", ".
func (parquetReader) Read(data []byte, _ Options) ([]string, [][]string, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("open parquet: %w", err)
	}
	paths := f.Schema().Columns()
	if len(paths) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	header := make([]string, len(paths))
	for i, p := range paths {
		header[i] = strings.Join(p, ".")
	}

	r := parquet.NewReader(f)
	defer r.Close()
	var records [][]string
	buf := make([]parquet.Row, 128)
	for {
		n, err := r.ReadRows(buf)
		for _, row := range buf[:n] {
			records = append(records, flattenRow(row, len(header)))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return header, records, nil
}

func flattenRow(row parquet.Row, width int) []string {
	parts := make([][]string, width)
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= width || v.IsNull() {
			continue
		}
		parts[col] = append(parts[col], valueText(v))
	}
	out := make([]string, width)
	for i, p := range parts {
		out[i] = strings.Join(p, ", ")
	}
	return out
}

func valueText(v parquet.Value) string {
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return fmt.Sprint(v)
	}
}
