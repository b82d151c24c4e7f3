package filterql

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenKind represents the type of a lexical token.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenColon
	TokenWildcard
	TokenWhiteSpace
	TokenOpPlus
	TokenOpMinus
	TokenBackSlash
	TokenQuote
	TokenOpenParen
	TokenCloseParen
)

var tokenKindNames = [...]string{
	TokenText:       "TEXT",
	TokenColon:      "COLON",
	TokenWildcard:   "WILDCARD",
	TokenWhiteSpace: "WHITESPACE",
	TokenOpPlus:     "OP_PLUS",
	TokenOpMinus:    "OP_MINUS",
	TokenBackSlash:  "BACKSLASH",
	TokenQuote:      "QUOTE",
	TokenOpenParen:  "OPEN_PAREN",
	TokenCloseParen: "CLOSE_PAREN",
}

// String returns the upper-case name of the kind.
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a tagged span over the source text.
// Start and Length are byte offsets into the source.
type Token struct {
	Kind   TokenKind
	Start  int
	Length int
}

// End returns the offset just past the token.
func (t Token) End() int {
	return t.Start + t.Length
}

// Text returns the slice of src covered by the token.
func (t Token) Text(src string) string {
	return src[t.Start:t.End()]
}

// String renders the token as KIND[start:length].
func (t Token) String() string {
	return fmt.Sprintf("%s[%d:%d]", t.Kind, t.Start, t.Length)
}

// specialKind reports the kind of a single-character token.
func specialKind(r rune) (TokenKind, bool) {
	switch r {
	case ':':
		return TokenColon, true
	case '*':
		return TokenWildcard, true
	case '+':
		return TokenOpPlus, true
	case '-':
		return TokenOpMinus, true
	case '\\':
		return TokenBackSlash, true
	case '"':
		return TokenQuote, true
	case '(':
		return TokenOpenParen, true
	case ')':
		return TokenCloseParen, true
	}
	return 0, false
}

// Tokenize splits text into an ordered token stream that tiles the whole input.
// It never fails: plain runs become TEXT, whitespace runs become WHITESPACE and
// every special character is a token of its own. Invalid UTF-8 bytes are plain.
func Tokenize(text string) *TokenCollection {
	tokens := make([]Token, 0, len(text)/4+1)

	pos := 0
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if kind, ok := specialKind(r); ok {
			tokens = append(tokens, Token{Kind: kind, Start: pos, Length: size})
			pos += size
			continue
		}

		start := pos
		space := unicode.IsSpace(r)
		pos += size
		for pos < len(text) {
			r, size = utf8.DecodeRuneInString(text[pos:])
			if _, special := specialKind(r); special || unicode.IsSpace(r) != space {
				break
			}
			pos += size
		}

		kind := TokenText
		if space {
			kind = TokenWhiteSpace
		}
		tokens = append(tokens, Token{Kind: kind, Start: start, Length: pos - start})
	}

	return newTokenCollection(text, tokens)
}
