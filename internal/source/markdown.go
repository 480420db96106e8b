package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/adelrodriguez/sakuga/internal/scene"
)

// ParseMarkdown returns every fenced code block of a markdown document in
// document order. name labels block origins as name:line. Every block needs a
// language in its info string.
func ParseMarkdown(data []byte, name string, langs Languages) ([]scene.CodeBlock, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(data))

	var blocks []scene.CodeBlock
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		block := scene.CodeBlock{
			Code:   strings.TrimSuffix(string(fenced.Lines().Value(data)), "\n"),
			Origin: fmt.Sprintf("%s:%d", name, fenceLine(fenced, data)),
		}
		if fenced.Info != nil {
			segment := fenced.Info.Segment
			block.Language = NormalizeLanguage(string(segment.Value(data)))
		}
		if block.Language == "" {
			return ast.WalkStop, fmt.Errorf("%s: %w (for example ```ts)", block.Origin, ErrMissingLanguage)
		}
		if err := langs.Validate(block); err != nil {
			return ast.WalkStop, err
		}

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoCodeBlocks)
	}
	return blocks, nil
}

// fenceLine returns the 1-based line of the opening fence, or 0 for an empty
// block without an info string.
func fenceLine(n *ast.FencedCodeBlock, data []byte) int {
	switch {
	case n.Info != nil:
		return bytes.Count(data[:n.Info.Segment.Start], []byte("\n")) + 1
	case n.Lines().Len() > 0:
		// the fence sits on the line before the first content line
		return bytes.Count(data[:n.Lines().At(0).Start], []byte("\n"))
	default:
		return 0
	}
}
