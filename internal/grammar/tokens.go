package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// wordLexer splits condition text into words. A whole count(...) group is
// one token so neighbour names may contain spaces.
var wordLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Count", Pattern: `count\([^)]*\)`},
	{Name: "Word", Pattern: `[^\s]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var whitespaceType = wordLexer.Symbols()["Whitespace"]

// words tokenizes s and returns its non-whitespace tokens.
func words(s string) ([]lexer.Token, error) {
	lex, err := wordLexer.LexString("", s)
	if err != nil {
		return nil, err
	}
	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}
	out := toks[:0]
	for _, t := range toks {
		if t.Type != whitespaceType && !t.EOF() {
			out = append(out, t)
		}
	}
	return out, nil
}
