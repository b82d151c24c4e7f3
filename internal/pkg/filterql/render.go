package filterql

import "strings"

// DebugString renders a node in its canonical debug form:
//
//	lit (text)   wild   comp (a, b)   empty
//	op (X)       op (X AND Y)         op (X OR Y)
//	phrase (field : query)
func DebugString(n Node) string {
	var b strings.Builder
	render(&b, n)
	return b.String()
}

func render(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Literal:
		b.WriteString("lit (")
		b.WriteString(n.Text)
		b.WriteString(")")
	case *Wildcard:
		b.WriteString("wild")
	case *Empty:
		b.WriteString("empty")
	case *Composite:
		b.WriteString("comp (")
		for i, part := range n.Parts {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, part)
		}
		b.WriteString(")")
	case *Operation:
		b.WriteString("op (")
		render(b, n.Left)
		if !n.Unary() {
			b.WriteString(" ")
			b.WriteString(n.Operator.String())
			b.WriteString(" ")
			render(b, n.Right)
		}
		b.WriteString(")")
	case *Phrase:
		b.WriteString("phrase (")
		render(b, n.Field)
		b.WriteString(" : ")
		render(b, n.Query)
		b.WriteString(")")
	default:
		b.WriteString("<nil>")
	}
}
