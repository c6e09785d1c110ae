package outline

// Navigator adapts a Tree for display. Items render as themselves and have
// no children here; consumers that want a hierarchy build it from the
// token fields.
type Navigator struct{}

// Item returns tok unchanged.
func (Navigator) Item(tok Token) Token {
	return tok
}

// Children always returns an empty list.
func (Navigator) Children(Token) []Token {
	return []Token{}
}

// Flatten lists the top-level tokens of tree in display order: classes,
// interfaces, functions, variables, then imports.
func (Navigator) Flatten(tree *Tree) []Token {
	if tree == nil {
		return nil
	}

	var items []Token
	for _, c := range tree.Classes {
		items = append(items, c)
	}
	for _, i := range tree.Interfaces {
		items = append(items, i)
	}
	for _, f := range tree.Functions {
		items = append(items, f)
	}
	for _, v := range tree.Variables {
		items = append(items, v)
	}
	for _, imp := range tree.Imports {
		items = append(items, imp)
	}
	return items
}
