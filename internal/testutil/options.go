package testutil

import (
	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/token"
)

// TokenData holds the data for one token to be laid out.
type TokenData struct {
	content   string
	color     string
	fontStyle token.FontStyle
	category  token.Category
}

// TokenOption configures a TokenData.
type TokenOption func(*TokenData)

// Tok creates a token with the given content and options.
func Tok(content string, opts ...TokenOption) TokenData {
	data := defaultToken(content)
	for _, opt := range opts {
		opt(&data)
	}
	return data
}

func defaultToken(content string) TokenData {
	return TokenData{
		content:  content,
		color:    "#e6e6e6",
		category: token.CategoryIdentifier,
	}
}

// Color sets the token color as a hex string.
func Color(hex string) TokenOption {
	return func(d *TokenData) { d.color = hex }
}

// Style sets the token font style.
func Style(style token.FontStyle) TokenOption {
	return func(d *TokenData) { d.fontStyle = style }
}

// Bold marks the token bold.
func Bold() TokenOption {
	return func(d *TokenData) { d.fontStyle |= token.FontStyleBold }
}

// Italic marks the token italic.
func Italic() TokenOption {
	return func(d *TokenData) { d.fontStyle |= token.FontStyleItalic }
}

// Category sets the token category.
func Category(c token.Category) TokenOption {
	return func(d *TokenData) { d.category = c }
}

// Keyword is shorthand for Category(token.CategoryKeyword).
func Keyword() TokenOption {
	return Category(token.CategoryKeyword)
}

// Punctuation is shorthand for Category(token.CategoryPunctuation).
func Punctuation() TokenOption {
	return Category(token.CategoryPunctuation)
}

func (d TokenData) paint() paint.Color {
	return paint.ParseHex(d.color)
}
