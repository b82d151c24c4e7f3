package filterql

// AllErrors collects the diagnostics of n and all of its descendants, depth
// first: a node's own errors, then its children in source order (field before
// query, left before right, composite parts in order). A clean tree yields nil.
func AllErrors(n Node) []*ParseError {
	var errs []*ParseError
	collect(n, &errs)
	return errs
}

func collect(n Node, errs *[]*ParseError) {
	switch n := n.(type) {
	case *Literal:
		*errs = append(*errs, n.Errors...)
	case *Wildcard:
		*errs = append(*errs, n.Errors...)
	case *Empty:
		*errs = append(*errs, n.Errors...)
	case *Composite:
		*errs = append(*errs, n.Errors...)
		for _, part := range n.Parts {
			collect(part, errs)
		}
	case *Operation:
		*errs = append(*errs, n.Errors...)
		if n.Left != nil {
			collect(n.Left, errs)
		}
		if n.Right != nil {
			collect(n.Right, errs)
		}
	case *Phrase:
		*errs = append(*errs, n.Errors...)
		if n.Field != nil {
			collect(n.Field, errs)
		}
		if n.Query != nil {
			collect(n.Query, errs)
		}
	}
}
