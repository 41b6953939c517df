// Package lexer is a minimal token producer for Bloch source, kept small
// because the lexer proper is an external collaborator to the core
// pipeline (spec §1): the parser's contract begins at a TokenStream.
// This package exists only so the parser, semantic analyser, and runtime
// have something to parse in tests.
package lexer

import "fmt"

// Kind enumerates token categories, grouped the way the teacher's
// internal/lexer/token_type.go groups them: special, literals, keywords,
// punctuation.
type Kind int

const (
	EOF Kind = iota
	ILLEGAL

	Identifier
	IntegerLiteral
	LongLiteral
	FloatLiteral
	BitLiteral
	CharLiteral
	StringLiteral

	// Structural keywords
	KwClass
	KwFunction
	KwConstructor
	KwDestructor
	KwReturn
	KwIf
	KwElse
	KwFor
	KwWhile
	KwImport
	KwNew
	KwThis
	KwSuper
	KwMeasure
	KwReset
	KwDestroy
	KwEcho
	KwFinal
	KwStatic
	KwAbstract
	KwVirtual
	KwOverride
	KwPublic
	KwPrivate
	KwProtected
	KwExtends
	KwDefault
	KwTrue
	KwFalse
	KwNull
	KwVoid

	// Primitive type keywords
	KwInt
	KwLong
	KwFloat
	KwBit
	KwBoolean
	KwString
	KwChar
	KwQubit

	// Annotation-name keywords
	KwQuantum
	KwShots
	KwTracked

	// Punctuation
	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Comma
	Semicolon
	Colon
	Dot
	At
	Question
	Assign
	Arrow
	PlusPlus
	MinusMinus
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	AmpAmp
	PipePipe
)

// Token is a single lexical unit with its source position.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("%v(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Column)
}

var keywords = map[string]Kind{
	"class": KwClass, "function": KwFunction, "constructor": KwConstructor,
	"destructor": KwDestructor, "return": KwReturn, "if": KwIf, "else": KwElse,
	"for": KwFor, "while": KwWhile, "import": KwImport, "new": KwNew,
	"this": KwThis, "super": KwSuper, "measure": KwMeasure, "reset": KwReset,
	"destroy": KwDestroy, "echo": KwEcho, "final": KwFinal, "static": KwStatic,
	"abstract": KwAbstract, "virtual": KwVirtual, "override": KwOverride,
	"public": KwPublic, "private": KwPrivate, "protected": KwProtected,
	"extends": KwExtends, "default": KwDefault, "true": KwTrue, "false": KwFalse,
	"null": KwNull, "void": KwVoid,
	"int": KwInt, "long": KwLong, "float": KwFloat, "bit": KwBit,
	"boolean": KwBoolean, "string": KwString, "char": KwChar, "qubit": KwQubit,
	"quantum": KwQuantum, "shots": KwShots, "tracked": KwTracked,
}

// LookupIdent returns the keyword Kind for text, or Identifier otherwise.
func LookupIdent(text string) Kind {
	if k, ok := keywords[text]; ok {
		return k
	}
	return Identifier
}

// IsPrimitiveKeyword reports whether k names a primitive type keyword.
func IsPrimitiveKeyword(k Kind) bool {
	switch k {
	case KwInt, KwLong, KwFloat, KwBit, KwBoolean, KwString, KwChar, KwQubit, KwVoid:
		return true
	default:
		return false
	}
}
