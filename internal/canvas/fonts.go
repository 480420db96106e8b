// Package canvas is the drawing and measurement surface of the renderer. It
// paints frames onto a gg pixmap and measures text with the same font faces so
// layout widths match what ends up on screen.
package canvas

import (
	"errors"
	"fmt"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"

	"github.com/adelrodriguez/sakuga/internal/token"
)

// ErrFontLoad is returned when a font file cannot be read or parsed.
var ErrFontLoad = errors.New("failed to load font")

// variant indexes a face by its italic and bold bits.
type variant uint8

const (
	variantRegular variant = iota
	variantItalic
	variantBold
	variantBoldItalic
	variantCount
)

func variantOf(style token.FontStyle) variant {
	return variant(style & (token.FontStyleItalic | token.FontStyleBold))
}

func (v variant) String() string {
	switch v {
	case variantItalic:
		return "italic"
	case variantBold:
		return "bold"
	case variantBoldItalic:
		return "bold-italic"
	default:
		return "regular"
	}
}

// FontFiles names optional font files per variant. Empty entries use Go Mono.
// When only Regular is set the other variants reuse it.
type FontFiles struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
}

// Fonts holds the parsed font sources for every variant at one pixel size.
type Fonts struct {
	size    float64
	sources [variantCount]*text.FontSource
}

// LoadFonts parses the configured font files, falling back to the embedded Go
// Mono family.
func LoadFonts(files FontFiles, size float64) (*Fonts, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: font size must be positive, got %g", ErrFontLoad, size)
	}

	embedded := [variantCount][]byte{
		variantRegular:    gomono.TTF,
		variantItalic:     gomonoitalic.TTF,
		variantBold:       gomonobold.TTF,
		variantBoldItalic: gomonobolditalic.TTF,
	}
	paths := [variantCount]string{
		variantRegular:    files.Regular,
		variantItalic:     files.Italic,
		variantBold:       files.Bold,
		variantBoldItalic: files.BoldItalic,
	}
	if files.Regular != "" {
		for v := variantItalic; v < variantCount; v++ {
			if paths[v] == "" {
				paths[v] = files.Regular
			}
		}
	}

	fonts := &Fonts{size: size}
	for v := variantRegular; v < variantCount; v++ {
		var (
			source *text.FontSource
			err    error
		)
		if paths[v] != "" {
			source, err = text.NewFontSourceFromFile(paths[v])
		} else {
			source, err = text.NewFontSource(embedded[v])
		}
		if err != nil {
			fonts.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrFontLoad, v, err)
		}
		fonts.sources[v] = source
	}
	return fonts, nil
}

// Size returns the pixel size faces are created at.
func (f *Fonts) Size() float64 {
	return f.size
}

// faces creates a private set of faces. Each canvas or measurer owns its own.
func (f *Fonts) faces() [variantCount]text.Face {
	var faces [variantCount]text.Face
	for v, source := range f.sources {
		faces[v] = source.Face(f.size)
	}
	return faces
}

// Close releases the parsed font data.
func (f *Fonts) Close() {
	for v, source := range f.sources {
		if source != nil {
			_ = source.Close()
			f.sources[v] = nil
		}
	}
}
