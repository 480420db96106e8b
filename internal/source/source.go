// Package source extracts the code blocks to render from markdown documents
// and YAML storyboards.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adelrodriguez/sakuga/internal/log"
	"github.com/adelrodriguez/sakuga/internal/scene"
)

var (
	// ErrNoCodeBlocks indicates an input without anything to render.
	ErrNoCodeBlocks = errors.New("no code blocks found")

	// ErrMissingLanguage indicates a code block whose language is unknown.
	ErrMissingLanguage = errors.New("code block needs a language")

	// ErrInvalidStoryboard indicates a storyboard that cannot be read.
	ErrInvalidStoryboard = errors.New("invalid storyboard")
)

// Languages validates and infers code block languages. Nil functions skip the
// corresponding step.
type Languages struct {
	// Check returns an error for a language that cannot be highlighted.
	Check func(language string) error
	// ForFile guesses a language from a file name, or returns "".
	ForFile func(filename string) string
}

// Validate runs Check against a block's language, prefixing errors with the
// block origin.
func (l Languages) Validate(block scene.CodeBlock) error {
	if l.Check == nil {
		return nil
	}
	if err := l.Check(block.Language); err != nil {
		return fmt.Errorf("%s: %w", block.Origin, err)
	}
	return nil
}

// Infer guesses a language from filename.
func (l Languages) Infer(filename string) string {
	if l.ForFile == nil {
		return ""
	}
	return l.ForFile(filename)
}

// NormalizeLanguage returns the first word of an info string, lowercased.
func NormalizeLanguage(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// Load reads path as a storyboard when it has a .yaml or .yml extension and as
// markdown otherwise.
func Load(path string, langs Languages) ([]scene.CodeBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var blocks []scene.CodeBlock
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		blocks, err = ParseStoryboard(data, path, langs)
	default:
		blocks, err = ParseMarkdown(data, path, langs)
	}
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatSource, "Loaded code blocks", "path", path, "blocks", len(blocks))
	return blocks, nil
}
