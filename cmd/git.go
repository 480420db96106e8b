package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adelrodriguez/sakuga/internal/git"
)

var gitCmd = &cobra.Command{
	Use:   "git <file>",
	Short: "Render the git history of a file",
	Long: `Render the last commits that touched a file, oldest first, as one video.
Renames are followed. The language is inferred from the file name unless
--language is given.`,
	Example: `  sakuga git main.go
  sakuga git src/app.ts -n 5 --reverse`,
	Args: cobra.ExactArgs(1),
	RunE: runGit,
}

func init() {
	addRenderFlags(gitCmd)
	gitCmd.Flags().IntP("commits", "n", git.DefaultLimit, "number of commits to render")
	gitCmd.Flags().Bool("reverse", false, "render newest first")
	gitCmd.Flags().StringP("language", "l", "", "language of the file (default: inferred from its name)")
	rootCmd.AddCommand(gitCmd)
}

func runGit(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	format, err := cfg.Format()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	limit, _ := flags.GetInt("commits")
	if limit <= 0 {
		return fmt.Errorf("--commits must be positive, got %d", limit)
	}
	reverse, _ := flags.GetBool("reverse")
	language, _ := flags.GetString("language")
	output, _ := flags.GetString("output")

	file := args[0]
	output = resolveOutput(file, output, format)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	blocks, err := git.History(ctx, git.NewRealExecutor(cwd), cwd, file, git.HistoryOptions{
		Limit:     limit,
		Reverse:   reverse,
		Language:  language,
		Languages: languages(),
	})
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	defer r.Close(context.Background())

	_, err = r.render(ctx, blocks, file, output, cmd.OutOrStdout())
	return err
}
