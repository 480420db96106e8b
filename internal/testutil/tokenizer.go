package testutil

import (
	"strings"

	"github.com/adelrodriguez/sakuga/internal/token"
)

// WordTokenizer splits code into lines and then into words, keeping every
// space as its own token. All tokens share one color and the identifier
// category.
type WordTokenizer struct {
	// Failures maps a language to the error Tokenize returns for it.
	Failures map[string]error
}

// Tokenize implements scene.Tokenizer.
func (w WordTokenizer) Tokenize(code, language string) (token.Tokenized, error) {
	if err, ok := w.Failures[language]; ok {
		return token.Tokenized{}, err
	}

	var lines [][]token.Token
	for _, line := range strings.Split(code, "\n") {
		var tokens []token.Token
		for i, word := range strings.Split(line, " ") {
			if i > 0 {
				tokens = append(tokens, token.Token{Content: " ", Category: token.CategoryOther})
			}
			if word == "" {
				continue
			}
			tokens = append(tokens, token.Token{
				Content:  word,
				Color:    "#e6e6e6",
				Category: token.CategoryIdentifier,
			})
		}
		lines = append(lines, tokens)
	}
	return token.Tokenized{Lines: lines, Foreground: "#e6e6e6", Background: "#0b0b0b"}, nil
}
