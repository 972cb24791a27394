package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sheetsift-cli/internal/export"
	"github.com/KaramelBytes/sheetsift-cli/internal/filter"
	"github.com/KaramelBytes/sheetsift-cli/internal/render"
	"github.com/KaramelBytes/sheetsift-cli/internal/session"
	"github.com/KaramelBytes/sheetsift-cli/internal/utils"
)

var (
	filterIn         []string
	filterKw         []string
	filterAny        []string
	filterGlobal     string
	filterFormat     string
	filterOutput     string
	filterLimit      int
	filterHyperlinks bool
)

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Filter a table and print or save the result",
	Long: `Filter a table with per-column criteria and an optional global keyword.

  --in  col=value   exact match; repeat to allow several values (OR)
  --kw  col=text    case-insensitive substring match
  --any col=text    substring match; repeat for any-of (OR)
  --global text     substring match across every text column

Criteria on different columns combine with AND. Numeric and date columns
cannot be filtered; criteria on them are reported and ignored.`,
	Example: `  sheetsift filter fleet.xlsx --in Power=Diesel --in Power=Electric
  sheetsift filter fleet.csv --kw Sensors=mbes --format csv --output diesel.csv
  sheetsift filter s3://datasets/fleet.parquet --global sonar`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actions, err := filterActions(filterIn, filterKw, filterAny, filterGlobal)
		if err != nil {
			return err
		}
		format := strings.ToLower(strings.TrimSpace(filterFormat))
		switch format {
		case "table", "csv", "markdown", "md":
		default:
			return fmt.Errorf("invalid --format %q (use table, csv or markdown)", filterFormat)
		}

		s, err := loadDataset(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		sh := newShared(s)
		sess := session.New(sh, session.Options{Logger: logger})
		v := sess.Dispatch(actions...)

		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		for _, w := range v.Warnings {
			fmt.Fprintf(stderr, "⚠ Warning: %v\n", w)
		}

		c := currentConfig()
		opt := render.Options{MaxRows: filterLimit, Label: c.LinkLabel, Hyperlinks: filterHyperlinks}
		if filterLimit == 0 {
			opt.MaxRows = c.DisplayMaxRows
		} else if filterLimit < 0 {
			opt.MaxRows = 0
		}
		switch format {
		case "csv":
			reportDataset(stderr, sh)
			fmt.Fprintln(stderr, v.Caption())
			if filterOutput == "" {
				return sess.Export(stdout)
			}
			if err := export.WriteFile(filterOutput, v); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(stdout, "✓ Wrote %d rows to %s\n", v.Len(), filterOutput)
			return nil
		case "markdown", "md":
			return emit(cmd, render.Markdown(v, opt), filterOutput)
		default:
			reportDataset(stdout, sh)
			fmt.Fprintln(stdout)
			return emit(cmd, render.Table(v, opt), filterOutput)
		}
	},
}

// emit prints text or, when output is set, writes it to that file.
func emit(cmd *cobra.Command, text, output string) error {
	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
	if err := utils.SafeWriteFile(output, []byte(text)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", output)
	return nil
}

// filterActions turns the repeatable col=value flags into one action per
// column. A column may use only one of --in, --kw and --any.
func filterActions(in, kw, anyOf []string, global string) ([]session.Action, error) {
	criteria := make(map[string]filter.Criterion)
	add := func(flag, arg string, merge func(prev filter.Criterion, value string) filter.Criterion, kind filter.CriterionKind) error {
		col, value, err := splitAssignment(flag, arg)
		if err != nil {
			return err
		}
		prev, seen := criteria[col]
		if seen && prev.Kind != kind {
			return fmt.Errorf("column %q has more than one filter kind; use one of --in, --kw or --any per column", col)
		}
		if seen && kind == filter.Keyword {
			return fmt.Errorf("--kw given twice for column %q; use --any for any-of matching", col)
		}
		criteria[col] = merge(prev, value)
		return nil
	}

	for _, a := range in {
		if err := add("--in", a, func(prev filter.Criterion, v string) filter.Criterion {
			return filter.NewExactSet(append(prev.Values, v)...)
		}, filter.ExactSet); err != nil {
			return nil, err
		}
	}
	for _, a := range kw {
		if err := add("--kw", a, func(_ filter.Criterion, v string) filter.Criterion {
			return filter.NewKeyword(v)
		}, filter.Keyword); err != nil {
			return nil, err
		}
	}
	for _, a := range anyOf {
		if err := add("--any", a, func(prev filter.Criterion, v string) filter.Criterion {
			return filter.NewKeywordSet(append(prev.Values, v)...)
		}, filter.KeywordSet); err != nil {
			return nil, err
		}
	}

	cols := make([]string, 0, len(criteria))
	for c := range criteria {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	var actions []session.Action
	for _, c := range cols {
		actions = append(actions, session.SetCriterion(c, criteria[c]))
	}
	if strings.TrimSpace(global) != "" {
		actions = append(actions, session.SetGlobalKeyword(global))
	}
	return actions, nil
}

func splitAssignment(flag, arg string) (string, string, error) {
	col, value, ok := strings.Cut(arg, "=")
	col = strings.TrimSpace(col)
	if !ok || col == "" {
		return "", "", fmt.Errorf("%s expects column=value, got %q", flag, arg)
	}
	return col, value, nil
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().StringArrayVar(&filterIn, "in", nil, "exact match col=value (repeatable)")
	filterCmd.Flags().StringArrayVar(&filterKw, "kw", nil, "keyword match col=text")
	filterCmd.Flags().StringArrayVar(&filterAny, "any", nil, "any-of keyword match col=text (repeatable)")
	filterCmd.Flags().StringVar(&filterGlobal, "global", "", "keyword searched in every text column")
	filterCmd.Flags().StringVarP(&filterFormat, "format", "f", "table", "output format: table, csv or markdown")
	filterCmd.Flags().StringVarP(&filterOutput, "output", "o", "", "write to file instead of stdout (.csv.gz is compressed)")
	filterCmd.Flags().IntVar(&filterLimit, "limit", 0, "max rows to print for table/markdown (0 = display_max_rows, -1 = all)")
	filterCmd.Flags().BoolVar(&filterHyperlinks, "hyperlinks", false, "render link cells as terminal hyperlinks")
}
