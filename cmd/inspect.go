package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
	"github.com/KaramelBytes/sheetsift-cli/internal/utils"
)

var (
	inspectFormat string
	inspectTop    int
	inspectOutput string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize a table: column kinds, missing values and filter options",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadDataset(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		sh := newShared(s)
		p := dataset.NewProfile(sh.Source(), dataset.ProfileOptions{
			Bounds:      optionBounds(),
			TopValues:   inspectTop,
			LinkColumns: sh.Links().Columns,
		})

		var text string
		switch strings.ToLower(strings.TrimSpace(inspectFormat)) {
		case "markdown", "md", "":
			text = p.Markdown()
		case "json":
			b, err := utils.PrettyJSON(p)
			if err != nil {
				return err
			}
			text = string(b) + "\n"
		default:
			return fmt.Errorf("invalid --format %q (use markdown or json)", inspectFormat)
		}
		return emit(cmd, text, inspectOutput)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "markdown", "output format: markdown or json")
	inspectCmd.Flags().IntVar(&inspectTop, "top", 8, "most frequent values listed per text column")
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "", "write the summary to a file")
}
