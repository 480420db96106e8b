package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adelrodriguez/sakuga/internal/scene"
)

// Storyboard lists scenes explicitly instead of extracting them from markdown.
//
//	scenes:
//	  - file: steps/01.ts
//	  - code: |
//	      const answer = 42
//	    language: ts
type Storyboard struct {
	Scenes []StoryboardScene `yaml:"scenes"`
}

// StoryboardScene is one scene: either a file, resolved relative to the
// storyboard, or inline code. Language is inferred from the file name when
// omitted.
type StoryboardScene struct {
	File     string `yaml:"file"`
	Code     string `yaml:"code"`
	Language string `yaml:"language"`
}

// ParseStoryboard decodes a YAML storyboard read from path and loads the files
// it references.
func ParseStoryboard(data []byte, path string, langs Languages) ([]scene.CodeBlock, error) {
	var board Storyboard
	if err := yaml.Unmarshal(data, &board); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidStoryboard, path, err)
	}
	if len(board.Scenes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCodeBlocks)
	}

	dir := filepath.Dir(path)
	blocks := make([]scene.CodeBlock, 0, len(board.Scenes))
	for i, s := range board.Scenes {
		block, err := s.block(dir, fmt.Sprintf("%s#%d", path, i+1), langs)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func (s StoryboardScene) block(dir, origin string, langs Languages) (scene.CodeBlock, error) {
	block := scene.CodeBlock{
		Code:     strings.TrimRight(s.Code, "\n"),
		Language: NormalizeLanguage(s.Language),
		Origin:   origin,
	}

	switch {
	case s.File != "" && s.Code != "":
		return block, fmt.Errorf("%w: %s: set either file or code, not both", ErrInvalidStoryboard, origin)
	case s.File != "":
		path := s.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return block, fmt.Errorf("%s: %w", origin, err)
		}
		block.Code = strings.TrimRight(string(data), "\n")
		block.Origin = path
		if block.Language == "" {
			block.Language = langs.Infer(path)
		}
	case s.Code == "":
		return block, fmt.Errorf("%w: %s: scene has neither file nor code", ErrInvalidStoryboard, origin)
	}

	if block.Language == "" {
		return block, fmt.Errorf("%s: %w", block.Origin, ErrMissingLanguage)
	}
	if err := langs.Validate(block); err != nil {
		return block, err
	}
	return block, nil
}
