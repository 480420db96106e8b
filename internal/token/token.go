// Package token defines highlighted tokens and the coarse semantic categories
// used to pair up tokens whose text changed between two scenes.
package token

import (
	"regexp"
	"strings"
)

// FontStyle is a bit set of font variations applied to a token.
type FontStyle uint8

const (
	FontStyleNone      FontStyle = 0
	FontStyleItalic    FontStyle = 1
	FontStyleBold      FontStyle = 2
	FontStyleUnderline FontStyle = 4
)

func (s FontStyle) Italic() bool    { return s&FontStyleItalic != 0 }
func (s FontStyle) Bold() bool      { return s&FontStyleBold != 0 }
func (s FontStyle) Underline() bool { return s&FontStyleUnderline != 0 }

// Category is a coarse semantic class derived from syntax scopes.
type Category string

const (
	CategoryKeyword     Category = "keyword"
	CategoryOperator    Category = "operator"
	CategoryFunction    Category = "function"
	CategoryType        Category = "type"
	CategoryString      Category = "string"
	CategoryNumber      Category = "number"
	CategoryComment     Category = "comment"
	CategoryPunctuation Category = "punctuation"
	CategoryIdentifier  Category = "identifier"
	CategoryOther       Category = "other"
)

// Token is one highlighted run of text as produced by a tokenizer.
type Token struct {
	Content string
	// Color is a hex color; empty means the theme foreground.
	Color     string
	FontStyle FontStyle
	Category  Category
}

// Tokenized is the tokenizer output for one code block.
type Tokenized struct {
	Lines [][]Token
	// Foreground and Background are theme defaults as hex colors; empty when
	// the theme does not define them.
	Foreground string
	Background string
}

type scopeRule struct {
	pattern  *regexp.Regexp
	category Category
}

// Order matters: keyword.operator must be tested before keyword.
var scopeRules = []scopeRule{
	{regexp.MustCompile(`^keyword\.operator`), CategoryOperator},
	{regexp.MustCompile(`^keyword\.`), CategoryKeyword},
	{regexp.MustCompile(`^storage\.type`), CategoryKeyword},
	{regexp.MustCompile(`^storage\.modifier`), CategoryKeyword},
	{regexp.MustCompile(`^entity\.name\.function`), CategoryFunction},
	{regexp.MustCompile(`^entity\.name\.type`), CategoryType},
	{regexp.MustCompile(`^entity\.name\.class`), CategoryType},
	{regexp.MustCompile(`^string\.`), CategoryString},
	{regexp.MustCompile(`^constant\.numeric`), CategoryNumber},
	{regexp.MustCompile(`^comment\.`), CategoryComment},
	{regexp.MustCompile(`^punctuation\.`), CategoryPunctuation},
	{regexp.MustCompile(`^meta\.brace`), CategoryPunctuation},
	{regexp.MustCompile(`^variable\.`), CategoryIdentifier},
	{regexp.MustCompile(`^entity\.name\.`), CategoryIdentifier},
}

// Classify maps a token's scope stack (outermost first) to a Category.
// String scopes anywhere in the stack win, so quotes and string bodies share a
// category; otherwise the innermost scope matching a rule decides.
func Classify(scopes []string) Category {
	for _, scope := range scopes {
		if strings.HasPrefix(scope, "string.") ||
			strings.HasPrefix(scope, "punctuation.definition.string") {
			return CategoryString
		}
	}

	for i := len(scopes) - 1; i >= 0; i-- {
		scope := scopes[i]
		if scope == "" {
			continue
		}
		for _, rule := range scopeRules {
			if rule.pattern.MatchString(scope) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
