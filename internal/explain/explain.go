package explain

import (
	"github.com/coffersTech/logfilter/internal/pkg/filterql"
)

// Explanation is the machine-readable view of a parsed filter.
type Explanation struct {
	Query  string       `json:"query"`
	Mode   string       `json:"mode"`
	Debug  string       `json:"debug"`
	Valid  bool         `json:"valid"`
	Tokens []Token      `json:"tokens"`
	Tree   *Tree        `json:"tree,omitempty"`
	Errors []Diagnostic `json:"errors"`
}

// Token is a token with its kind spelled out and its text resolved.
type Token struct {
	Kind   string `json:"kind"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
	Text   string `json:"text"`
}

// Diagnostic is a ParseError in JSON form.
type Diagnostic struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
}

// Tree mirrors an AST node. Only the fields meaningful for Type are set.
type Tree struct {
	Type     string       `json:"type"`
	Text     string       `json:"text,omitempty"`
	Quoted   bool         `json:"quoted,omitempty"`
	Operator string       `json:"operator,omitempty"`
	Parts    []*Tree      `json:"parts,omitempty"`
	Left     *Tree        `json:"left,omitempty"`
	Right    *Tree        `json:"right,omitempty"`
	Field    *Tree        `json:"field,omitempty"`
	Query    *Tree        `json:"query,omitempty"`
	Errors   []Diagnostic `json:"errors,omitempty"`
}

// Node type names used in Tree.Type.
const (
	TypeLiteral   = "literal"
	TypeWildcard  = "wildcard"
	TypeComposite = "composite"
	TypeEmpty     = "empty"
	TypeOperation = "operation"
	TypePhrase    = "phrase"
)

// Build explains a parsed query.
func Build(q *filterql.Query) *Explanation {
	e := &Explanation{
		Query:  q.Source,
		Mode:   string(q.Mode),
		Debug:  q.String(),
		Tokens: Tokens(q.Source, q.Tokens),
		Errors: Diagnostics(q.Errors()),
	}
	e.Valid = len(e.Errors) == 0
	if q.Root != nil {
		e.Tree = NewTree(q.Root)
	}
	return e
}

// Tokens converts tokens over src.
func Tokens(src string, tokens []filterql.Token) []Token {
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		out[i] = Token{
			Kind:   tok.Kind.String(),
			Start:  tok.Start,
			Length: tok.Length,
			Text:   tok.Text(src),
		}
	}
	return out
}

// Diagnostics converts parse errors; the result is never nil.
func Diagnostics(errs []*filterql.ParseError) []Diagnostic {
	out := make([]Diagnostic, 0, len(errs))
	for _, err := range errs {
		out = append(out, Diagnostic{Message: err.Message, Position: err.Position})
	}
	return out
}

// NewTree converts an AST node. Only the node's own errors are attached at
// each level.
func NewTree(n filterql.Node) *Tree {
	switch n := n.(type) {
	case *filterql.Literal:
		return &Tree{Type: TypeLiteral, Text: n.Text, Quoted: n.Quoted, Errors: local(n.Errors)}
	case *filterql.Wildcard:
		return &Tree{Type: TypeWildcard, Errors: local(n.Errors)}
	case *filterql.Empty:
		return &Tree{Type: TypeEmpty, Errors: local(n.Errors)}
	case *filterql.Composite:
		t := &Tree{Type: TypeComposite, Errors: local(n.Errors)}
		for _, part := range n.Parts {
			t.Parts = append(t.Parts, NewTree(part))
		}
		return t
	case *filterql.Operation:
		t := &Tree{Type: TypeOperation, Operator: n.Operator.String(), Errors: local(n.Errors)}
		if n.Left != nil {
			t.Left = NewTree(n.Left)
		}
		if n.Right != nil {
			t.Right = NewTree(n.Right)
		}
		return t
	case *filterql.Phrase:
		t := &Tree{Type: TypePhrase, Errors: local(n.Errors)}
		if n.Field != nil {
			t.Field = NewTree(n.Field)
		}
		if n.Query != nil {
			t.Query = NewTree(n.Query)
		}
		return t
	default:
		return nil
	}
}

func local(errs []*filterql.ParseError) []Diagnostic {
	if len(errs) == 0 {
		return nil
	}
	return Diagnostics(errs)
}
