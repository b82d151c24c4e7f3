package filterql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenString(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.String()
	}
	return strings.Join(parts, ", ")
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hello", "TEXT[0:5]"},
		{"**", "WILDCARD[0:1], WILDCARD[1:1]"},
		{"service:tuna", "TEXT[0:7], COLON[7:1], TEXT[8:4]"},
		{"a  b", "TEXT[0:1], WHITESPACE[1:2], TEXT[3:1]"},
		{"a\t\n b", "TEXT[0:1], WHITESPACE[1:3], TEXT[4:1]"},
		{"+-\\", "OP_PLUS[0:1], OP_MINUS[1:1], BACKSLASH[2:1]"},
		{"(a)", "OPEN_PAREN[0:1], TEXT[1:1], CLOSE_PAREN[2:1]"},
		{"::", "COLON[0:1], COLON[1:1]"},
		{`""`, "QUOTE[0:1], QUOTE[1:1]"},
		{`"hello \" "`, "QUOTE[0:1], TEXT[1:5], WHITESPACE[6:1], BACKSLASH[7:1], QUOTE[8:1], WHITESPACE[9:1], QUOTE[10:1]"},
		{"order-service", "TEXT[0:5], OP_MINUS[5:1], TEXT[6:7]"},
		{"héllo wörld", "TEXT[0:6], WHITESPACE[6:1], TEXT[7:6]"},
		{"*tuna*", "WILDCARD[0:1], TEXT[1:4], WILDCARD[5:1]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := Tokenize(tt.input)
			assert.Equal(t, tt.expected, tokenString(c.Tokens()))
			assert.Equal(t, tt.input, c.Source())
		})
	}
}

func TestTokenizeSpecialsNeverMerge(t *testing.T) {
	for _, special := range []string{":", "*", "+", "-", "\\", `"`, "(", ")"} {
		c := Tokenize(special + special)
		require.Equal(t, 2, c.Len(), "special %q", special)
		for i, tok := range c.Tokens() {
			assert.Equal(t, i, tok.Start)
			assert.Equal(t, 1, tok.Length)
		}
	}
}

func TestTokenText(t *testing.T) {
	src := "level:error"
	tokens := Tokenize(src).Tokens()
	require.Len(t, tokens, 3)

	assert.Equal(t, "level", tokens[0].Text(src))
	assert.Equal(t, ":", tokens[1].Text(src))
	assert.Equal(t, "error", tokens[2].Text(src))
	assert.Equal(t, 11, tokens[2].End())
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "WHITESPACE", TokenWhiteSpace.String())
	assert.Equal(t, "CLOSE_PAREN", TokenCloseParen.String())
	assert.Equal(t, "TokenKind(42)", TokenKind(42).String())
}

func TestTokenCollectionCursor(t *testing.T) {
	c := Tokenize("a b")

	tok, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, TokenText, tok.Kind)
	assert.Equal(t, 0, c.Pos())

	tok, ok = c.PeekAt(1)
	require.True(t, ok)
	assert.Equal(t, TokenWhiteSpace, tok.Kind)

	_, ok = c.PeekAt(3)
	assert.False(t, ok)
	_, ok = c.PeekAt(-1)
	assert.False(t, ok)

	c.Next()
	c.Next()
	assert.Equal(t, 2, c.Offset())
	assert.Equal(t, "b", c.Rest())

	c.Next()
	assert.True(t, c.Done())
	assert.Equal(t, 3, c.Offset())
	assert.Equal(t, "", c.Rest())

	_, ok = c.Next()
	assert.False(t, ok)

	c.Reset()
	assert.Equal(t, 0, c.Pos())
}

func TestTokensReturnsCopy(t *testing.T) {
	c := Tokenize("a:b")
	tokens := c.Tokens()
	tokens[0].Kind = TokenQuote

	first, _ := c.Peek()
	assert.Equal(t, TokenText, first.Kind)
}
