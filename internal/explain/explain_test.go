package explain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffersTech/logfilter/internal/pkg/filterql"
)

func TestBuildPhrase(t *testing.T) {
	e := Build(filterql.Parse("service:tuna*"))

	want := &Explanation{
		Query: "service:tuna*",
		Mode:  "phrase",
		Debug: "phrase (lit (service) : op (comp (lit (tuna), wild)))",
		Valid: true,
		Tokens: []Token{
			{Kind: "TEXT", Start: 0, Length: 7, Text: "service"},
			{Kind: "COLON", Start: 7, Length: 1, Text: ":"},
			{Kind: "TEXT", Start: 8, Length: 4, Text: "tuna"},
			{Kind: "WILDCARD", Start: 12, Length: 1, Text: "*"},
		},
		Tree: &Tree{
			Type:  TypePhrase,
			Field: &Tree{Type: TypeLiteral, Text: "service"},
			Query: &Tree{
				Type: TypeOperation,
				Left: &Tree{
					Type: TypeComposite,
					Parts: []*Tree{
						{Type: TypeLiteral, Text: "tuna"},
						{Type: TypeWildcard},
					},
				},
			},
		},
		Errors: []Diagnostic{},
	}

	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildOperationWithErrors(t *testing.T) {
	e := Build(filterql.Parse(`(a or "b"`))

	assert.False(t, e.Valid)
	assert.Equal(t, "operation", e.Mode)
	require.Len(t, e.Errors, 1)
	assert.Equal(t, Diagnostic{Message: "expected ')' to close group opened at 0", Position: 9}, e.Errors[0])

	want := &Tree{
		Type: TypeOperation,
		Left: &Tree{
			Type:     TypeOperation,
			Operator: "OR",
			Left:     &Tree{Type: TypeLiteral, Text: "a"},
			Right:    &Tree{Type: TypeLiteral, Text: "b", Quoted: true},
			Errors:   []Diagnostic{{Message: "expected ')' to close group opened at 0", Position: 9}},
		},
	}
	if diff := cmp.Diff(want, e.Tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildBlank(t *testing.T) {
	e := Build(filterql.Parse("  "))
	assert.True(t, e.Valid)
	assert.Nil(t, e.Tree)
	assert.Equal(t, "", e.Debug)

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"  ","mode":"auto","debug":"","valid":true,
		"tokens":[{"kind":"WHITESPACE","start":0,"length":2,"text":"  "}],"errors":[]}`, string(data))
}

func TestTreeJSON(t *testing.T) {
	data, err := json.Marshal(NewTree(filterql.ParseOperation(filterql.Tokenize("a and *"))))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"operation","operator":"AND",
		"left":{"type":"literal","text":"a"},"right":{"type":"wildcard"}}`, string(data))
}
