package filterql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllErrorsCleanTree(t *testing.T) {
	for _, input := range []string{"a", "a or b and c", "(a)", `"x" or *y*`} {
		assert.Nil(t, AllErrors(ParseOperation(Tokenize(input))), input)
	}
}

func TestAllErrorsOrder(t *testing.T) {
	// The outer group's error sits on the node that contains the inner group,
	// so it is reported first.
	op := ParseOperation(Tokenize("(a or (b"))
	assert.Equal(t, "op (op (lit (a) OR op (lit (b))))", DebugString(op))

	errs := AllErrors(op)
	require.Len(t, errs, 2)
	assert.Equal(t, "expected ')' to close group opened at 0", errs[0].Message)
	assert.Equal(t, "expected ')' to close group opened at 6", errs[1].Message)
	assert.Equal(t, 8, errs[0].Position)
	assert.Equal(t, 8, errs[1].Position)
}

func TestAllErrorsLeftBeforeRight(t *testing.T) {
	op := ParseOperation(Tokenize("(() or ()"))

	errs := AllErrors(op)
	require.Len(t, errs, 3)
	assert.Equal(t, "expected ')' to close group opened at 0", errs[0].Message)
	assert.Equal(t, "expected a value", errs[1].Message)
	assert.Equal(t, 2, errs[1].Position)
	assert.Equal(t, "expected a value", errs[2].Message)
	assert.Equal(t, 8, errs[2].Position)
}

func TestAllErrorsFieldBeforeQuery(t *testing.T) {
	p := ParsePhrase(Tokenize(":(x"))

	errs := AllErrors(p)
	require.Len(t, errs, 2)
	assert.Equal(t, "expected a value", errs[0].Message)
	assert.Equal(t, 0, errs[0].Position)
	assert.Equal(t, "expected ')' to close group opened at 1", errs[1].Message)
}

func TestAllErrorsHandBuiltTree(t *testing.T) {
	e1 := &ParseError{Message: "one", Position: 1}
	e2 := &ParseError{Message: "two", Position: 2}
	e3 := &ParseError{Message: "three", Position: 3}
	e4 := &ParseError{Message: "four", Position: 4}

	tree := &Phrase{
		Errors: []*ParseError{e1},
		Field: &Composite{
			Parts: []Value{
				&Literal{Text: "a", Errors: []*ParseError{e2}},
				&Wildcard{Errors: []*ParseError{e3}},
			},
		},
		Query: &Operation{Left: &Empty{Errors: []*ParseError{e4}}},
	}

	assert.Equal(t, []*ParseError{e1, e2, e3, e4}, AllErrors(tree))
}

func TestParseErrorError(t *testing.T) {
	err := &ParseError{Message: "expected a value", Position: 7}
	assert.EqualError(t, err, "parse error at position 7: expected a value")
}
