package dataset

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Reader decodes one file format into a header and raw records.
type Reader interface {
	CanRead(name string) bool
	Read(data []byte, opt Options) (header []string, records [][]string, err error)
}

// ObjectGetter fetches whole objects from an S3-compatible store.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Options controls how a dataset source is read.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet by name; SheetIndex (1-based) is used
	// when SheetName is empty.
	SheetName  string
	SheetIndex int
	// Objects resolves s3://bucket/key sources. Nil disables them.
	Objects ObjectGetter
}

var registry []Reader

// Register adds a format reader to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
	Register(parquetReader{})
}

// Load reads src (a local path or s3://bucket/key) into a Snapshot.
// Every failure is reported as a *LoadError.
func Load(ctx context.Context, src string, opt Options) (*Snapshot, error) {
	data, name, err := fetch(ctx, src, opt)
	if err != nil {
		return nil, &LoadError{Src: src, Op: "read", Err: err}
	}
	return decode(src, name, data, opt)
}

// LoadBytes decodes an in-memory file. name selects the format by extension.
func LoadBytes(name string, data []byte, opt Options) (*Snapshot, error) {
	return decode(name, name, data, opt)
}

func decode(src, name string, data []byte, opt Options) (*Snapshot, error) {
	rd := readerFor(name)
	if rd == nil {
		return nil, &LoadError{Src: src, Op: "detect format", Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))}
	}
	header, records, err := rd.Read(data, opt)
	if err != nil {
		return nil, &LoadError{Src: src, Op: "parse", Err: err}
	}
	snap, err := New(filepath.Base(name), header, records)
	if err != nil {
		return nil, &LoadError{Src: src, Op: "normalize", Err: err}
	}
	return snap, nil
}

func readerFor(name string) Reader {
	for _, r := range registry {
		if r.CanRead(name) {
			return r
		}
	}
	return nil
}

func fetch(ctx context.Context, src string, opt Options) ([]byte, string, error) {
	if bucket, key, ok := ParseObjectURL(src); ok {
		if opt.Objects == nil {
			return nil, "", fmt.Errorf("no object store configured for %s", src)
		}
		b, err := opt.Objects.GetObject(ctx, bucket, key)
		if err != nil {
			return nil, "", err
		}
		return b, path.Base(key), nil
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return nil, "", err
	}
	return b, src, nil
}

// ParseObjectURL splits s3://bucket/key. ok is false for anything else.
func ParseObjectURL(src string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(src, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
}
