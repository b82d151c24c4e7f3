package filterql

import "fmt"

// Keywords are matched case-sensitively against whole TEXT tokens.
const (
	keywordAnd = "and"
	keywordOr  = "or"
)

// ParseValue parses a run of adjacent atoms (bare text, quoted text, '*').
// Whitespace and any token that cannot start an atom end the run and are left
// unconsumed. A single atom is returned as is, two or more become a Composite.
// With no atom available it returns an *Empty carrying an error.
func ParseValue(c *TokenCollection) Value {
	start := c.Offset()

	var atoms []Value
	for {
		atom := parseAtom(c)
		if atom == nil {
			break
		}
		atoms = append(atoms, atom)
	}

	switch len(atoms) {
	case 0:
		return &Empty{
			Offset: start,
			Errors: []*ParseError{{Message: "expected a value", Position: start}},
		}
	case 1:
		return atoms[0]
	default:
		return &Composite{Parts: atoms}
	}
}

// parseAtom consumes a single atom, or returns nil without consuming.
func parseAtom(c *TokenCollection) Value {
	tok, ok := c.Peek()
	if !ok {
		return nil
	}

	switch tok.Kind {
	case TokenText:
		c.Next()
		return &Literal{Text: tok.Text(c.source), Offset: tok.Start}
	case TokenWildcard:
		c.Next()
		return &Wildcard{Offset: tok.Start}
	case TokenQuote:
		return parseQuoted(c)
	default:
		return nil
	}
}

// parseQuoted consumes a quoted literal. Everything up to the closing quote is
// kept verbatim; a backslash directly before a quote escapes it and both
// characters stay in the text. End of input closes the literal.
func parseQuoted(c *TokenCollection) *Literal {
	open, _ := c.Next()
	start, end := open.End(), len(c.source)

	for {
		tok, ok := c.Next()
		if !ok {
			break
		}
		if tok.Kind == TokenQuote {
			end = tok.Start
			break
		}
		if tok.Kind == TokenBackSlash && c.peekKind(0, TokenQuote) {
			c.Next()
		}
	}

	return &Literal{Text: c.source[start:end], Offset: start, Quoted: true}
}

// ParseOperation parses a boolean expression:
//
//	Operation := OrExpr
//	OrExpr    := AndExpr ( WS 'or'  WS OrExpr  )?
//	AndExpr   := Primary ( WS 'and' WS AndExpr )?
//	Primary   := '(' Operation ')' | Value
//
// AND binds tighter than OR and both associate to the right. The result is
// always an Operation; a lone operand, including a parenthesized group, is
// wrapped in a unary Operation.
func ParseOperation(c *TokenCollection) *Operation {
	if !c.enter() {
		return c.overflow()
	}
	defer c.leave()

	operand, connective := parseOr(c)
	if connective {
		return operand.(*Operation)
	}
	return &Operation{Left: operand}
}

// parseOr returns the parsed operand and whether it is a connective built here.
func parseOr(c *TokenCollection) (Operand, bool) {
	left, connective := parseAnd(c)
	if !acceptKeyword(c, keywordOr) {
		return left, connective
	}

	var right Operand
	if c.enter() {
		right, _ = parseOr(c)
		c.leave()
	} else {
		right = c.overflow()
	}
	return &Operation{Left: left, Operator: OpOr, Right: right}, true
}

func parseAnd(c *TokenCollection) (Operand, bool) {
	left := parsePrimary(c)
	if !acceptKeyword(c, keywordAnd) {
		return left, false
	}

	var right Operand
	if c.enter() {
		right, _ = parseAnd(c)
		c.leave()
	} else {
		right = c.overflow()
	}
	return &Operation{Left: left, Operator: OpAnd, Right: right}, true
}

func parsePrimary(c *TokenCollection) Operand {
	if c.peekKind(0, TokenOpenParen) {
		return parseGroup(c)
	}
	return ParseValue(c)
}

// parseGroup parses '(' Operation ')'. A missing ')' is reported on the
// group's Operation and parsing carries on with what was read.
func parseGroup(c *TokenCollection) *Operation {
	open, _ := c.Next()
	c.skip(TokenWhiteSpace)

	inner := ParseOperation(c)
	if c.halted {
		return inner
	}

	switch {
	case c.peekKind(0, TokenCloseParen):
		c.Next()
	case c.peekKind(0, TokenWhiteSpace) && c.peekKind(1, TokenCloseParen):
		c.Next()
		c.Next()
	default:
		inner.Errors = append(inner.Errors, &ParseError{
			Message:  fmt.Sprintf("expected ')' to close group opened at %d", open.Start),
			Position: c.Offset(),
		})
	}
	return inner
}

// acceptKeyword consumes "WS keyword WS" and reports whether a right operand
// follows. The keyword must be bounded by whitespace, a ')' or end of input. A
// keyword with nothing parseable after it is dangling: it is consumed and
// dropped without an error, and false is returned.
func acceptKeyword(c *TokenCollection, keyword string) bool {
	if !c.peekKind(0, TokenWhiteSpace) {
		return false
	}
	word, ok := c.PeekAt(1)
	if !ok || word.Kind != TokenText || word.Text(c.source) != keyword {
		return false
	}
	if after, ok := c.PeekAt(2); ok && after.Kind != TokenWhiteSpace && after.Kind != TokenCloseParen {
		return false
	}

	c.Next()
	c.Next()

	if !c.peekKind(0, TokenWhiteSpace) {
		return false
	}
	if next, ok := c.PeekAt(1); !ok || !startsPrimary(next.Kind) {
		c.Next()
		return false
	}
	c.Next()
	return true
}

func startsPrimary(kind TokenKind) bool {
	switch kind {
	case TokenText, TokenWildcard, TokenQuote, TokenOpenParen:
		return true
	}
	return false
}

// overflow reports the nesting limit once, then halts the parse by moving the
// cursor to the end of input.
func (c *TokenCollection) overflow() *Operation {
	op := &Operation{Left: &Empty{Offset: c.Offset()}}
	if !c.halted {
		op.Errors = []*ParseError{{
			Message:  fmt.Sprintf("maximum nesting depth %d exceeded", c.maxDepth()),
			Position: c.Offset(),
		}}
		c.halted = true
		c.pos = len(c.tokens)
	}
	return op
}

// ParsePhrase parses field:query. The field is a Value and the query an
// Operation. Without a ':' after the field the phrase carries an error and its
// query is an empty operation.
func ParsePhrase(c *TokenCollection) *Phrase {
	phrase := &Phrase{Field: ParseValue(c)}

	if !c.peekKind(0, TokenColon) {
		offset := c.Offset()
		phrase.Errors = append(phrase.Errors, &ParseError{Message: "expected ':' after field", Position: offset})
		phrase.Query = &Operation{Left: &Empty{Offset: offset}}
		return phrase
	}
	c.Next()

	phrase.Query = ParseOperation(c)
	return phrase
}
