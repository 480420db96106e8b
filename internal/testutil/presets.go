package testutil

import "github.com/adelrodriguez/sakuga/internal/token"

// WithConstDeclaration adds `const <name> = <value>` as one line.
func (b *Builder) WithConstDeclaration(name, value string) *Builder {
	return b.WithTokens(
		Tok("const", Keyword(), Color("#ff7b72")),
		Tok(name),
		Tok("=", Category(token.CategoryOperator), Color("#79c0ff")),
		Tok(value, Category(token.CategoryNumber), Color("#79c0ff")),
	)
}

// WithStandardFunction adds a small three-line function.
func (b *Builder) WithStandardFunction() *Builder {
	return b.
		WithTokens(
			Tok("function", Keyword(), Color("#ff7b72")),
			Tok("add", Category(token.CategoryFunction), Color("#d2a8ff")),
			Tok("(", Punctuation()),
			Tok("a", Italic()),
			Tok(",", Punctuation()),
			Tok("b", Italic()),
			Tok(")", Punctuation()),
			Tok("{", Punctuation()),
		).
		WithTokens(
			Tok("return", Keyword(), Color("#ff7b72")),
			Tok("a"),
			Tok("+", Category(token.CategoryOperator)),
			Tok("b"),
		).
		WithTokens(Tok("}", Punctuation()))
}
