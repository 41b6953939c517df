package lexer

import "testing"

func TestTokenizeBasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []Kind
	}{
		{"42;", []Kind{IntegerLiteral, Semicolon, EOF}},
		{"3.14;", []Kind{FloatLiteral, Semicolon, EOF}},
		{"10L;", []Kind{LongLiteral, Semicolon, EOF}},
		{"0b;", []Kind{BitLiteral, Semicolon, EOF}},
		{"true false null;", []Kind{KwTrue, KwFalse, KwNull, Semicolon, EOF}},
		{"a && b || c;", []Kind{Identifier, AmpAmp, Identifier, PipePipe, Identifier, Semicolon, EOF}},
		{"x <= y >= z;", []Kind{Identifier, Le, Identifier, Ge, Identifier, Semicolon, EOF}},
		{"x++; y--;", []Kind{Identifier, PlusPlus, Semicolon, Identifier, MinusMinus, Semicolon, EOF}},
		{"-> @tracked @shots(5)", []Kind{Arrow, At, KwTracked, At, KwShots, LParen, IntegerLiteral, RParen, EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(tt.expected), tokens)
			}
			for i, k := range tt.expected {
				if tokens[i].Kind != k {
					t.Errorf("token %d: got %v, want %v", i, tokens[i].Kind, k)
				}
			}
		})
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, err := Tokenize(`"a\nb";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != StringLiteral {
		t.Fatalf("expected StringLiteral, got %v", tokens[0].Kind)
	}
	if tokens[0].Text != "a\nb" {
		t.Errorf("got %q, want %q", tokens[0].Text, "a\nb")
	}
}

func TestTokenizeUnterminatedStringFails(t *testing.T) {
	_, err := Tokenize(`"abc`)
	if err == nil {
		t.Fatal("expected a lexical error for an unterminated string")
	}
	if err.Category != 0 {
		t.Errorf("expected Lexical category, got %v", err.Category)
	}
}

func TestKeywordLookup(t *testing.T) {
	if LookupIdent("class") != KwClass {
		t.Error("expected 'class' to resolve to KwClass")
	}
	if LookupIdent("somethingElse") != Identifier {
		t.Error("expected unknown identifier to resolve to Identifier")
	}
}

func TestLineColumnTracking(t *testing.T) {
	tokens, err := Tokenize("int x;\nint y;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// second 'int' keyword should be on line 2
	var found bool
	for _, tok := range tokens {
		if tok.Kind == KwInt && tok.Line == 2 {
			found = true
		}
	}
	if !found {
		t.Error("expected a KwInt token on line 2")
	}
}
