package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var errUnsupported = errors.New("unsupported language")

// testLanguages knows ts, js and go.
func testLanguages() Languages {
	known := map[string]bool{"ts": true, "js": true, "go": true}
	return Languages{
		Check: func(language string) error {
			if !known[language] {
				return errUnsupported
			}
			return nil
		},
		ForFile: func(filename string) string {
			switch filepath.Ext(filename) {
			case ".ts":
				return "ts"
			case ".go":
				return "go"
			}
			return ""
		},
	}
}

func TestNormalizeLanguage(t *testing.T) {
	require.Equal(t, "ts", NormalizeLanguage("  TS  "))
	require.Equal(t, "go", NormalizeLanguage("Go title=main.go"))
	require.Equal(t, "", NormalizeLanguage("   "))
}

func TestParseMarkdown(t *testing.T) {
	markdown := strings.Join([]string{
		"# Steps",
		"",
		"```ts",
		"const value = 1",
		"```",
		"",
		"Some prose.",
		"",
		"```JS extra words",
		"console.log(value)",
		"console.log(value)",
		"```",
		"",
	}, "\n")

	blocks, err := ParseMarkdown([]byte(markdown), "README.md", testLanguages())
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	require.Equal(t, "ts", blocks[0].Language)
	require.Equal(t, "const value = 1", blocks[0].Code)
	require.Equal(t, "README.md:3", blocks[0].Origin)

	require.Equal(t, "js", blocks[1].Language)
	require.Equal(t, "console.log(value)\nconsole.log(value)", blocks[1].Code)
	require.Equal(t, "README.md:9", blocks[1].Origin)
}

func TestParseMarkdown_NestedInList(t *testing.T) {
	markdown := "- step one\n\n  ```go\n  x := 1\n  ```\n"

	blocks, err := ParseMarkdown([]byte(markdown), "doc.md", testLanguages())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, "x := 1", blocks[0].Code)
}

func TestParseMarkdown_MissingLanguage(t *testing.T) {
	markdown := "```\nconsole.log('nope')\n```\n"

	_, err := ParseMarkdown([]byte(markdown), "doc.md", testLanguages())
	require.ErrorIs(t, err, ErrMissingLanguage)
	require.ErrorContains(t, err, "doc.md:1")
}

func TestParseMarkdown_UnsupportedLanguage(t *testing.T) {
	markdown := "```nope\nconsole.log('nope')\n```\n"

	_, err := ParseMarkdown([]byte(markdown), "doc.md", testLanguages())
	require.ErrorIs(t, err, errUnsupported)
}

func TestParseMarkdown_NoBlocks(t *testing.T) {
	_, err := ParseMarkdown([]byte("just prose\n\n    indented code is ignored\n"), "doc.md", testLanguages())
	require.ErrorIs(t, err, ErrNoCodeBlocks)
}

func TestParseMarkdown_NoLanguageCheck(t *testing.T) {
	blocks, err := ParseMarkdown([]byte("```brainfuck\n+++\n```\n"), "doc.md", Languages{})
	require.NoError(t, err)
	require.Equal(t, "brainfuck", blocks[0].Language)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseStoryboard(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "steps", "01.ts"), "const value = 1\n")
	board := filepath.Join(dir, "story.yaml")
	writeFile(t, board, strings.Join([]string{
		"scenes:",
		"  - file: steps/01.ts",
		"  - code: |",
		"      const answer = 42",
		"    language: TS",
	}, "\n"))

	blocks, err := Load(board, testLanguages())
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	require.Equal(t, "const value = 1", blocks[0].Code)
	require.Equal(t, "ts", blocks[0].Language)
	require.Equal(t, filepath.Join(dir, "steps", "01.ts"), blocks[0].Origin)

	require.Equal(t, "const answer = 42", blocks[1].Code)
	require.Equal(t, "ts", blocks[1].Language)
	require.Equal(t, board+"#2", blocks[1].Origin)
}

func TestParseStoryboard_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"malformed", "scenes: [", ErrInvalidStoryboard},
		{"empty", "scenes: []", ErrNoCodeBlocks},
		{"neither", "scenes:\n  - language: ts", ErrInvalidStoryboard},
		{"both", "scenes:\n  - file: a.ts\n    code: x", ErrInvalidStoryboard},
		{"no language", "scenes:\n  - code: x", ErrMissingLanguage},
		{"unknown extension", "scenes:\n  - file: notes.txt", ErrMissingLanguage},
		{"unsupported", "scenes:\n  - code: x\n    language: cobol", errUnsupported},
		{"missing file", "scenes:\n  - file: gone.ts", os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "notes.txt"), "plain")
			_, err := ParseStoryboard([]byte(tt.yaml), filepath.Join(dir, "story.yaml"), testLanguages())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_Markdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.md")
	writeFile(t, path, "```go\nfmt.Println()\n```\n")

	blocks, err := Load(path, testLanguages())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, path+":1", blocks[0].Origin)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.md"), testLanguages())
	require.ErrorIs(t, err, os.ErrNotExist)
}
