package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-kit/log/level"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
	"github.com/KaramelBytes/sheetsift-cli/internal/links"
	"github.com/KaramelBytes/sheetsift-cli/internal/session"
)

// loadDataset reads src with the configured sheet, delimiter and object
// store settings.
func loadDataset(ctx context.Context, src string) (*dataset.Snapshot, error) {
	c := currentConfig()
	opt := dataset.Options{SheetName: c.SheetName, SheetIndex: c.SheetIndex}

	delim, err := parseDelimiter(flagDelimiter)
	if err != nil {
		return nil, err
	}
	opt.Delimiter = delim

	if _, _, ok := dataset.ParseObjectURL(src); ok {
		store, err := dataset.NewObjectStore(dataset.ObjectStoreConfig{
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			UseSSL:    c.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set s3_endpoint with `sheetsift config set`)", err)
		}
		opt.Objects = store
	}

	s, err := dataset.Load(ctx, src, opt)
	if err != nil {
		return nil, err
	}
	level.Info(logger).Log("msg", "dataset loaded", "src", src, "rows", s.Len(), "cols", s.Width())
	return s, nil
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r, nil
}

func optionBounds() dataset.OptionBounds {
	c := currentConfig()
	return dataset.OptionBounds{Min: c.OptionMinDistinct, Max: c.OptionMaxDistinct}
}

func linkPolicy() links.Policy {
	c := currentConfig()
	return links.NewPolicy(c.LinkColumns, c.LinkLabel)
}

func newShared(s *dataset.Snapshot) *session.Shared {
	sh := session.NewShared(s, linkPolicy(), optionBounds())
	d := sh.Links()
	level.Debug(logger).Log("msg", "link columns detected", "columns", strings.Join(d.Columns, ","), "strategy", d.Strategy)
	return sh
}

// reportDataset prints the load caption and the link-column report.
func reportDataset(w io.Writer, sh *session.Shared) {
	fmt.Fprintln(w, sh.Source().Caption())
	d := sh.Links()
	if len(d.Columns) == 0 {
		fmt.Fprintln(w, "Link columns: none detected")
		return
	}
	fmt.Fprintf(w, "Link columns: %s (%s)\n", strings.Join(d.Columns, ", "), d.Strategy)
}
