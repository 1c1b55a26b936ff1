package lexer

import (
	"testing"

	"github.com/ochre-lang/ochre/internal/token"
)

func scanAll(source string) []token.Token {
	s := New(source)
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll(`(){},.-+;*/ ! != = == < <= > >=`)
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Star, token.Slash,
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected kind %v, got %v (%q)", i, k, toks[i].Kind, toks[i].Lexeme)
		}
	}
}

func TestScanKeywordsMatchDeclarativeTable(t *testing.T) {
	for word := range map[string]struct{}{
		"and": {}, "class": {}, "else": {}, "false": {}, "for": {}, "fun": {},
		"if": {}, "nil": {}, "or": {}, "print": {}, "return": {}, "super": {},
		"this": {}, "true": {}, "var": {}, "while": {},
	} {
		want, ok := token.Keyword(word)
		if !ok {
			t.Fatalf("token.Keyword missing entry for %q", word)
		}
		toks := scanAll(word)
		if len(toks) < 1 || toks[0].Kind != want {
			t.Errorf("scanning %q: expected kind %v, got %v", word, want, toks[0].Kind)
		}
	}
}

func TestScanIdentifierNotConfusedWithKeywordPrefix(t *testing.T) {
	toks := scanAll(`forest formula thistle superb`)
	for i, tok := range toks {
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind != token.Identifier {
			t.Errorf("token %d (%q): expected Identifier, got %v", i, tok.Lexeme, tok.Kind)
		}
	}
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(`123 45.67`)
	if toks[0].Kind != token.Number || toks[0].Lexeme != "123" {
		t.Errorf("expected Number \"123\", got %v %q", toks[0].Kind, toks[0].Lexeme)
	}
	if toks[1].Kind != token.Number || toks[1].Lexeme != "45.67" {
		t.Errorf("expected Number \"45.67\", got %v %q", toks[1].Kind, toks[1].Lexeme)
	}
}

func TestScanStrings(t *testing.T) {
	toks := scanAll(`"hello world"`)
	if toks[0].Kind != token.String || toks[0].Lexeme != `"hello world"` {
		t.Errorf("expected quoted string lexeme, got %v %q", toks[0].Kind, toks[0].Lexeme)
	}
}

func TestScanUnterminatedStringIsErrorToken(t *testing.T) {
	toks := scanAll(`"oops`)
	if toks[0].Kind != token.Error {
		t.Errorf("expected an Error token, got %v", toks[0].Kind)
	}
}

func TestScanSkipsLineCommentsAndWhitespace(t *testing.T) {
	toks := scanAll("  // a comment\n\tvar\n")
	if toks[0].Kind != token.Var {
		t.Errorf("expected Var after skipping comment/whitespace, got %v %q", toks[0].Kind, toks[0].Lexeme)
	}
}

func TestScanTracksLineNumbers(t *testing.T) {
	toks := scanAll("1\n2\n3")
	for i, want := range []int{1, 2, 3} {
		if toks[i].Line != want {
			t.Errorf("token %d: expected line %d, got %d", i, want, toks[i].Line)
		}
	}
}

func TestScanUnexpectedCharacterIsErrorToken(t *testing.T) {
	toks := scanAll("@")
	if toks[0].Kind != token.Error {
		t.Errorf("expected an Error token for '@', got %v", toks[0].Kind)
	}
}
