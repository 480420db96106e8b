package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adelrodriguez/sakuga/internal/highlight"
	"github.com/adelrodriguez/sakuga/internal/ui/styles"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the available syntax themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := commandConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range highlight.Themes() {
			if name == cfg.Style.Theme {
				_, _ = fmt.Fprintln(out, styles.SuccessStyle.Render("* "+name))
				continue
			}
			_, _ = fmt.Fprintln(out, "  "+name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
}
