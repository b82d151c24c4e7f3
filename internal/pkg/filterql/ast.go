package filterql

import "fmt"

// Node is implemented by every AST node: *Literal, *Wildcard, *Composite,
// *Empty, *Operation and *Phrase. The set is closed.
type Node interface {
	fmt.Stringer
	node() // marker method
}

// Value is a field or operand value: *Literal, *Wildcard, *Composite or *Empty.
type Value interface {
	Operand
	value()
}

// Operand is anything an Operation can hold: a Value or a nested *Operation.
type Operand interface {
	Node
	operand()
}

// ParseError is a diagnostic attached to the node where it was detected.
type ParseError struct {
	Message  string
	Position int // byte offset into the source
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Position, e.Message)
}

// Literal is a bare or quoted text atom. Text is a slice of the source; for a
// quoted literal it excludes the quotes and keeps escapes as written.
type Literal struct {
	Text   string
	Offset int
	Quoted bool
	Errors []*ParseError
}

// Wildcard is a '*' atom.
type Wildcard struct {
	Offset int
	Errors []*ParseError
}

// Composite is two or more adjacent atoms, in source order.
type Composite struct {
	Parts  []Value
	Errors []*ParseError
}

// Empty stands in for a value that was expected but absent.
type Empty struct {
	Offset int
	Errors []*ParseError
}

// Operator is the boolean connective of an Operation.
type Operator int

const (
	OpNone Operator = iota
	OpAnd
	OpOr
)

// String returns "AND", "OR" or "" for OpNone.
func (o Operator) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return ""
	}
}

// Operation is a boolean expression. With OpNone it wraps the single operand
// in Left and Right is nil.
type Operation struct {
	Left     Operand
	Operator Operator
	Right    Operand
	Errors   []*ParseError
}

// Unary reports whether the operation wraps a single operand.
func (o *Operation) Unary() bool {
	return o.Operator == OpNone
}

// Phrase is a field-qualified query, field:query.
type Phrase struct {
	Field  Value
	Query  *Operation
	Errors []*ParseError
}

func (*Literal) node()   {}
func (*Wildcard) node()  {}
func (*Composite) node() {}
func (*Empty) node()     {}
func (*Operation) node() {}
func (*Phrase) node()    {}

func (*Literal) operand()   {}
func (*Wildcard) operand()  {}
func (*Composite) operand() {}
func (*Empty) operand()     {}
func (*Operation) operand() {}

func (*Literal) value()   {}
func (*Wildcard) value()  {}
func (*Composite) value() {}
func (*Empty) value()     {}

func (n *Literal) String() string   { return DebugString(n) }
func (n *Wildcard) String() string  { return DebugString(n) }
func (n *Composite) String() string { return DebugString(n) }
func (n *Empty) String() string     { return DebugString(n) }
func (n *Operation) String() string { return DebugString(n) }
func (n *Phrase) String() string    { return DebugString(n) }
