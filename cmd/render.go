package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adelrodriguez/sakuga/internal/log"
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/source"
	"github.com/adelrodriguez/sakuga/internal/watcher"
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a markdown file or storyboard to video",
	Long: `Render every fenced code block of a markdown file, or every scene of a
YAML storyboard, into one video.

Markdown code blocks need a language:

  ` + "```ts" + `
  const a = 1
  ` + "```" + `

Storyboards list scenes that either reference a file or inline code:

  scenes:
    - file: before.ts
    - code: const a = 2
      language: ts`,
	Example: `  sakuga render slides.md
  sakuga render story.yaml -o demo.webm -f webm
  sakuga render slides.md --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	addRenderFlags(renderCmd)
	renderCmd.Flags().BoolP("watch", "w", false, "re-render whenever the input or a referenced file changes")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	format, err := cfg.Format()
	if err != nil {
		return err
	}
	input := args[0]
	output, _ := cmd.Flags().GetString("output")
	output = resolveOutput(input, output, format)
	watch, _ := cmd.Flags().GetBool("watch")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	defer r.Close(context.Background())

	if watch {
		return watchInput(ctx, r, input, output, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	_, err = renderInput(ctx, r, input, output, cmd.OutOrStdout())
	return err
}

// renderInput loads input and renders it. The loaded blocks are returned even
// when the render fails so watch mode can follow referenced files.
func renderInput(ctx context.Context, r *renderer, input, output string, out io.Writer) ([]scene.CodeBlock, error) {
	blocks, err := source.Load(input, languages())
	if err != nil {
		return nil, err
	}
	_, err = r.render(ctx, blocks, filepath.Base(input), output, out)
	return blocks, err
}

// watchInput renders input, then renders again after every change until ctx
// ends. Failed renders are reported and do not stop watching.
func watchInput(ctx context.Context, r *renderer, input, output string, out, errOut io.Writer) error {
	for {
		blocks, err := renderInput(ctx, r, input, output, out)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			_, _ = fmt.Fprintln(errOut, "Error:", err)
		}

		paths := watchPaths(input, blocks)
		w, err := watcher.New(watcher.DefaultConfig(paths...))
		if err != nil {
			return err
		}
		changes, err := w.Start()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Watching %d file(s) for changes, ctrl+c to stop\n", len(paths))
		log.Info(log.CatWatch, "Waiting for changes", "paths", paths)

		var changed []string
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return nil
		case changed = <-changes:
		}
		_ = w.Stop()
		log.Info(log.CatWatch, "Input changed, rendering again", "input", input, "changed", changed)
		_, _ = fmt.Fprintf(out, "Changed: %s\n", strings.Join(changed, ", "))
	}
}

// watchPaths returns input plus every block origin that names an existing
// file, as storyboard scenes loaded from files do.
func watchPaths(input string, blocks []scene.CodeBlock) []string {
	paths := []string{input}
	seen := map[string]bool{input: true}
	for _, b := range blocks {
		if seen[b.Origin] {
			continue
		}
		if info, err := os.Stat(b.Origin); err == nil && info.Mode().IsRegular() {
			seen[b.Origin] = true
			paths = append(paths, b.Origin)
		}
	}
	return paths
}
