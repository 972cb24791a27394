package cmd

import (
	"github.com/go-kit/log"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sheetsift-cli/internal/session"
	"github.com/KaramelBytes/sheetsift-cli/internal/tui"
	"github.com/KaramelBytes/sheetsift-cli/internal/utils"
)

var (
	exploreExport     string
	exploreHyperlinks bool
)

var exploreCmd = &cobra.Command{
	Use:   "explore <file>",
	Short: "Filter a table interactively in the terminal",
	Long: `Open a full-screen explorer with one filter box per text column and a
global search box. Results update as you type.

In a column box, "=a,b" keeps rows exactly equal to a or b, "a,b" keeps rows
containing a or b, and any other text keeps rows containing it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadDataset(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		c := currentConfig()
		path := exploreExport
		if path == "" {
			path = c.ExportFilename
		}
		if path, err = utils.ExpandHome(path); err != nil {
			return err
		}

		// the alternate screen owns the terminal; log only with --debug
		sessLogger := log.NewNopLogger()
		if debug {
			sessLogger = logger
		}
		sess := session.New(newShared(s), session.Options{Logger: sessLogger})
		return tui.Run(sess, tui.Options{
			Title:      c.Title,
			ExportPath: path,
			LinkLabel:  c.LinkLabel,
			Hyperlinks: exploreHyperlinks,
		})
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringVar(&exploreExport, "export", "", "file written by ctrl+e (default export_filename from config)")
	exploreCmd.Flags().BoolVar(&exploreHyperlinks, "hyperlinks", true, "render link cells as terminal hyperlinks")
}
