package filterql

import (
	"fmt"
	"strings"
)

// Mode selects the grammar production a query is parsed with.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeValue     Mode = "value"
	ModeOperation Mode = "operation"
	ModePhrase    Mode = "phrase"
)

// ParseMode converts a user supplied mode name. The empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeValue, ModeOperation, ModePhrase:
		return m, nil
	default:
		return "", fmt.Errorf("unknown parse mode %q", s)
	}
}

// Options configures Parse.
type Options struct {
	Mode     Mode
	MaxDepth int
}

// Query is the result of parsing a complete filter text.
type Query struct {
	Source string
	Mode   Mode
	Root   Node // nil for a blank filter
	Tokens []Token

	// Trailing holds errors about input left over after Root.
	Trailing []*ParseError
}

// Parse parses text with default options.
func Parse(text string) *Query {
	return Options{}.Parse(text)
}

// Parse tokenizes and parses text. Surrounding whitespace is ignored. In
// ModeAuto the text is parsed as a Phrase when its first value is directly
// followed by ':', and as an Operation otherwise. Blank text yields a Query
// with a nil Root, which filters nothing out.
func (o Options) Parse(text string) *Query {
	c := Tokenize(text)
	c.MaxDepth = o.MaxDepth

	q := &Query{Source: text, Mode: o.Mode, Tokens: c.Tokens()}
	if q.Mode == "" {
		q.Mode = ModeAuto
	}

	c.skip(TokenWhiteSpace)
	if c.Done() {
		return q
	}

	if q.Mode == ModeAuto {
		q.Mode = detectMode(c)
	}

	switch q.Mode {
	case ModeValue:
		q.Root = ParseValue(c)
	case ModePhrase:
		q.Root = ParsePhrase(c)
	default:
		q.Root = ParseOperation(c)
	}

	c.skip(TokenWhiteSpace)
	if !c.Done() {
		q.Trailing = append(q.Trailing, &ParseError{
			Message:  fmt.Sprintf("unexpected input %q", strings.TrimSpace(c.Rest())),
			Position: c.Offset(),
		})
	}
	return q
}

// detectMode looks ahead for field:query without moving the cursor.
func detectMode(c *TokenCollection) Mode {
	save := c.pos
	ParseValue(c)
	phrase := c.peekKind(0, TokenColon)
	c.pos = save

	if phrase {
		return ModePhrase
	}
	return ModeOperation
}

// Blank reports whether the filter text held nothing but whitespace.
func (q *Query) Blank() bool {
	return q.Root == nil
}

// Errors returns every diagnostic of the query: those attached to the tree,
// followed by trailing input errors.
func (q *Query) Errors() []*ParseError {
	var errs []*ParseError
	if q.Root != nil {
		errs = AllErrors(q.Root)
	}
	return append(errs, q.Trailing...)
}

// Valid reports whether the query parsed without diagnostics.
func (q *Query) Valid() bool {
	return len(q.Errors()) == 0
}

// String returns the debug rendering of the root, or "" for a blank query.
func (q *Query) String() string {
	if q.Root == nil {
		return ""
	}
	return DebugString(q.Root)
}
