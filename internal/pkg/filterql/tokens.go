package filterql

// DefaultMaxDepth is the nesting limit used when TokenCollection.MaxDepth is zero.
const DefaultMaxDepth = 256

// TokenCollection is a token stream over a source string together with the
// cursor the parse functions advance. A collection belongs to a single parse
// and is not safe for concurrent use.
type TokenCollection struct {
	source string
	tokens []Token
	pos    int

	// MaxDepth bounds nested groups and chained operators.
	// Zero means DefaultMaxDepth.
	MaxDepth int

	depth  int
	halted bool
}

func newTokenCollection(source string, tokens []Token) *TokenCollection {
	return &TokenCollection{source: source, tokens: tokens}
}

// Source returns the text the tokens were produced from.
func (c *TokenCollection) Source() string {
	return c.source
}

// Tokens returns a copy of all tokens, regardless of the cursor.
func (c *TokenCollection) Tokens() []Token {
	out := make([]Token, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// Len returns the number of tokens.
func (c *TokenCollection) Len() int {
	return len(c.tokens)
}

// Pos returns the index of the next unconsumed token.
func (c *TokenCollection) Pos() int {
	return c.pos
}

// Done reports whether every token has been consumed.
func (c *TokenCollection) Done() bool {
	return c.pos >= len(c.tokens)
}

// Peek returns the next token without consuming it.
func (c *TokenCollection) Peek() (Token, bool) {
	return c.PeekAt(0)
}

// PeekAt returns the token n positions after the cursor without consuming anything.
func (c *TokenCollection) PeekAt(n int) (Token, bool) {
	i := c.pos + n
	if n < 0 || i >= len(c.tokens) {
		return Token{}, false
	}
	return c.tokens[i], true
}

// Next consumes and returns the next token.
func (c *TokenCollection) Next() (Token, bool) {
	tok, ok := c.Peek()
	if ok {
		c.pos++
	}
	return tok, ok
}

// Offset returns the source offset of the cursor; len(Source()) once done.
func (c *TokenCollection) Offset() int {
	if tok, ok := c.Peek(); ok {
		return tok.Start
	}
	return len(c.source)
}

// Rest returns the unconsumed part of the source.
func (c *TokenCollection) Rest() string {
	return c.source[c.Offset():]
}

// Reset rewinds the cursor so the collection can be parsed again.
func (c *TokenCollection) Reset() {
	c.pos = 0
	c.depth = 0
	c.halted = false
}

// peekKind reports whether the token n positions ahead has the given kind.
func (c *TokenCollection) peekKind(n int, kind TokenKind) bool {
	tok, ok := c.PeekAt(n)
	return ok && tok.Kind == kind
}

// skip consumes tokens of the given kind and returns how many were consumed.
func (c *TokenCollection) skip(kind TokenKind) int {
	n := 0
	for c.peekKind(0, kind) {
		c.pos++
		n++
	}
	return n
}

func (c *TokenCollection) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return DefaultMaxDepth
}

// enter claims one level of nesting. It fails once the limit is reached or
// the collection has already been halted by an earlier overflow.
func (c *TokenCollection) enter() bool {
	if c.halted || c.depth >= c.maxDepth() {
		return false
	}
	c.depth++
	return true
}

func (c *TokenCollection) leave() {
	c.depth--
}
