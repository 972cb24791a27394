package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"unicode"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Read extracts the selected sheet. If SheetName is empty and SheetIndex
// <= 0 the first sheet is used. SheetIndex is 1-based.
func (xlsxReader) Read(data []byte, opt Options) ([]string, [][]string, error) {
	wb, err := openWorkbook(data)
	if err != nil {
		return nil, nil, err
	}
	target, err := wb.sheetPart(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, nil, err
	}
	rows, err := wb.rows(target)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	return rows[0], rows[1:], nil
}

// workbook is an opened XLSX package with its sheet list, relationship
// targets and shared strings decoded.
type workbook struct {
	parts   map[string]*zip.File
	sheets  []workbookSheet
	targets map[string]string
	shared  []string
}

type workbookSheet struct {
	Name string `xml:"name,attr"`
	ID   int    `xml:"sheetId,attr"`
	Rel  string `xml:"id,attr"`
}

// richText is a shared or inline string: plain text or a list of runs.
// Phonetic hints are not part of the value and are not decoded.
type richText struct {
	Text string   `xml:"t"`
	Runs []string `xml:"r>t"`
}

func (r richText) String() string { return r.Text + strings.Join(r.Runs, "") }

type sheetRow struct {
	Cells []sheetCell `xml:"c"`
}

type sheetCell struct {
	Ref    string   `xml:"r,attr"`
	Type   string   `xml:"t,attr"`
	Value  string   `xml:"v"`
	Inline richText `xml:"is"`
}

func openWorkbook(data []byte) (*workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &workbook{parts: make(map[string]*zip.File, len(zr.File)), targets: make(map[string]string)}
	for _, f := range zr.File {
		wb.parts[f.Name] = f
	}

	var doc struct {
		Sheets []workbookSheet `xml:"sheets>sheet"`
	}
	if err := wb.decode("xl/workbook.xml", &doc); err != nil {
		return nil, err
	}
	wb.sheets = doc.Sheets

	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := wb.decode("xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	for _, r := range rels.Items {
		if r.ID != "" && r.Target != "" {
			wb.targets[r.ID] = zipEntryName(r.Target)
		}
	}

	var sst struct {
		Items []richText `xml:"si"`
	}
	if err := wb.decode("xl/sharedStrings.xml", &sst); err != nil {
		return nil, err
	}
	wb.shared = make([]string, len(sst.Items))
	for i, si := range sst.Items {
		wb.shared[i] = si.String()
	}
	return wb, nil
}

// part returns the bytes of a package entry, or nil if it does not exist.
func (wb *workbook) part(name string) ([]byte, error) {
	f, ok := wb.parts[name]
	if !ok {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}

// decode unmarshals an optional package entry into v. Missing entries
// leave v untouched.
func (wb *workbook) decode(name string, v any) error {
	b, err := wb.part(name)
	if err != nil || len(b) == 0 {
		return err
	}
	if err := xml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// sheetPart picks the worksheet entry by case-insensitive name, or by
// 1-based position. Position falls back to sheetId and then to the
// conventional entry name.
func (wb *workbook) sheetPart(name string, index int) (string, error) {
	if name != "" {
		names := make([]string, 0, len(wb.sheets))
		for _, s := range wb.sheets {
			if t, ok := wb.targets[s.Rel]; ok && strings.EqualFold(s.Name, name) {
				return t, nil
			}
			names = append(names, s.Name)
		}
		return "", fmt.Errorf("sheet %q not found; available sheets: %s", name, strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index <= len(wb.sheets) {
		if t, ok := wb.targets[wb.sheets[index-1].Rel]; ok {
			return t, nil
		}
	}
	for _, s := range wb.sheets {
		if t, ok := wb.targets[s.Rel]; ok && s.ID == index {
			return t, nil
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", index)), nil
}

// rows decodes a worksheet one <row> element at a time.
func (wb *workbook) rows(entry string) ([][]string, error) {
	b, err := wb.part(entry)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("worksheet %s missing from workbook", entry)
	}
	dec := xml.NewDecoder(bytes.NewReader(b))
	var out [][]string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row sheetRow
		if err := dec.DecodeElement(&row, &se); err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", entry, len(out)+1, err)
		}
		out = append(out, row.values(wb.shared))
	}
}

// values places cells by their reference so sparse rows keep column
// positions. Cells without a usable reference follow the previous one.
func (r sheetRow) values(shared []string) []string {
	var out []string
	next := 0
	for _, c := range r.Cells {
		col := next
		if i, ok := columnOf(c.Ref); ok {
			col = i
		}
		next = col + 1
		for len(out) <= col {
			out = append(out, "")
		}
		out[col] = c.text(shared)
	}
	return out
}

func (c sheetCell) text(shared []string) string {
	switch c.Type {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || i < 0 || i >= len(shared) {
			return ""
		}
		return shared[i]
	case "inlineStr":
		return c.Inline.String()
	case "b":
		if c.Value == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return c.Value
	}
}

// columnOf returns the 0-based column of an A1-style reference such as
// "C12".
func columnOf(ref string) (int, bool) {
	letters := strings.ToUpper(strings.TrimRightFunc(ref, unicode.IsDigit))
	if letters == "" {
		return 0, false
	}
	col := 0
	for _, ch := range letters {
		if ch < 'A' || ch > 'Z' {
			return 0, false
		}
		col = col*26 + int(ch-'A'+1)
	}
	return col - 1, true
}

// zipEntryName maps a workbook relationship target to its package entry.
// Targets are relative to xl/ unless they already start there.
func zipEntryName(target string) string {
	p := path.Clean("/" + target)
	if !strings.HasPrefix(p, "/xl/") {
		p = path.Join("/xl", p)
	}
	return p[1:]
}
