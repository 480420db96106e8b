// Package highlight tokenizes code with chroma and colors it with a chroma
// style. Chroma token types are translated to TextMate-style scopes so the
// category of each token is decided by token.Classify.
package highlight

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/token"
)

var (
	// ErrUnsupportedLanguage indicates no lexer matches a language name.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrUnknownTheme indicates no style is registered under a theme name.
	ErrUnknownTheme = errors.New("unknown theme")
)

// DefaultTheme is used when no theme is configured.
const DefaultTheme = "github-dark"

// Chroma implements scene.Tokenizer. It is safe for concurrent use.
type Chroma struct {
	theme string
	style *chroma.Style
}

var _ scene.Tokenizer = (*Chroma)(nil)

// New returns a tokenizer coloring tokens with the named chroma style.
func New(theme string) (*Chroma, error) {
	if theme == "" {
		theme = DefaultTheme
	}
	style, ok := styles.Registry[theme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}
	return &Chroma{theme: theme, style: style}, nil
}

// Theme returns the style name.
func (c *Chroma) Theme() string {
	return c.theme
}

// Themes lists every available style name.
func Themes() []string {
	return styles.Names()
}

// Supports reports whether language names a known lexer.
func Supports(language string) bool {
	return lexerFor(language) != nil
}

// Check returns ErrUnsupportedLanguage unless language names a known lexer.
func Check(language string) error {
	if !Supports(language) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return nil
}

// LanguageForFile guesses the language of a file from its name. It returns ""
// when no lexer matches.
func LanguageForFile(filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		return ""
	}
	if aliases := lexer.Config().Aliases; len(aliases) > 0 {
		return aliases[0]
	}
	return strings.ToLower(lexer.Config().Name)
}

func lexerFor(language string) chroma.Lexer {
	if language == "" {
		return nil
	}
	return lexers.Get(language)
}

// Tokenize splits code into lines of colored tokens. Line breaks are not part
// of any token and trailing line breaks are dropped.
func (c *Chroma) Tokenize(code, language string) (token.Tokenized, error) {
	lexer := lexerFor(language)
	if lexer == nil {
		return token.Tokenized{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	lexer = chroma.Coalesce(lexer)

	code = strings.TrimRight(code, "\n")
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return token.Tokenized{}, fmt.Errorf("tokenize %s: %w", language, err)
	}

	source := "source." + strings.ToLower(lexer.Config().Name)
	lineCount := strings.Count(code, "\n") + 1
	lines := make([][]token.Token, 0, lineCount)
	for _, line := range chroma.SplitTokensIntoLines(iterator.Tokens()) {
		if len(lines) == lineCount {
			break
		}
		var tokens []token.Token
		for _, t := range line {
			content := strings.TrimRight(t.Value, "\r\n")
			if content == "" {
				continue
			}
			tokens = append(tokens, c.token(source, t.Type, content))
		}
		lines = append(lines, tokens)
	}
	for len(lines) < lineCount {
		lines = append(lines, nil)
	}

	background := c.style.Get(chroma.Background)
	out := token.Tokenized{Lines: lines}
	if background.Colour.IsSet() {
		out.Foreground = background.Colour.String()
	}
	if background.Background.IsSet() {
		out.Background = background.Background.String()
	}
	return out, nil
}

func (c *Chroma) token(source string, ttype chroma.TokenType, content string) token.Token {
	entry := c.style.Get(ttype)

	var style token.FontStyle
	if entry.Italic == chroma.Yes {
		style |= token.FontStyleItalic
	}
	if entry.Bold == chroma.Yes {
		style |= token.FontStyleBold
	}
	if entry.Underline == chroma.Yes {
		style |= token.FontStyleUnderline
	}

	t := token.Token{
		Content:   content,
		FontStyle: style,
		Category:  token.Classify(Scopes(source, ttype)),
	}
	if entry.Colour.IsSet() {
		t.Color = entry.Colour.String()
	}
	return t
}

// Scopes returns the TextMate-style scope stack for a chroma token type,
// outermost first.
func Scopes(source string, ttype chroma.TokenType) []string {
	scope := scopeOf(ttype)
	if scope == "" {
		return []string{source}
	}
	return slices.Insert(strings.Split(scope, " "), 0, source)
}

func scopeOf(ttype chroma.TokenType) string {
	switch ttype {
	case chroma.KeywordType:
		return "storage.type"
	case chroma.KeywordDeclaration, chroma.KeywordNamespace:
		return "storage.modifier"
	case chroma.KeywordConstant:
		return "constant.language"
	case chroma.OperatorWord:
		return "keyword.operator.word"
	case chroma.NameFunction, chroma.NameFunctionMagic:
		return "entity.name.function"
	case chroma.NameClass, chroma.NameException:
		return "entity.name.type.class"
	case chroma.NameBuiltin, chroma.NameBuiltinPseudo:
		return "support.function.builtin"
	case chroma.NameTag:
		return "entity.name.tag"
	case chroma.NameNamespace:
		return "entity.name.namespace"
	case chroma.NameAttribute, chroma.NameDecorator:
		return "entity.other.attribute-name"
	case chroma.NameConstant:
		return "variable.other.constant"
	case chroma.LiteralStringEscape:
		return "string.quoted constant.character.escape"
	case chroma.LiteralStringInterpol:
		return "string.interpolated"
	case chroma.LiteralStringRegex:
		return "string.regexp"
	case chroma.LiteralStringDelimiter:
		return "punctuation.definition.string"
	case chroma.CommentMultiline:
		return "comment.block"
	case chroma.CommentPreproc, chroma.CommentPreprocFile:
		return "meta.preprocessor"
	}

	switch {
	case ttype.InCategory(chroma.Keyword):
		return "keyword.control"
	case ttype.InCategory(chroma.Operator):
		return "keyword.operator"
	case ttype.InCategory(chroma.Punctuation):
		return "punctuation.separator"
	case ttype.InSubCategory(chroma.LiteralString):
		return "string.quoted"
	case ttype.InSubCategory(chroma.LiteralNumber):
		return "constant.numeric"
	case ttype.InCategory(chroma.Comment):
		return "comment.line"
	case ttype.InCategory(chroma.Name):
		return "variable.other"
	}
	return ""
}
