package bvh

import "fmt"

// Verify that the bounds of every internal node, including nodes of nested
// trees, are exactly the union of its children's bounds.
func (t *Tree) Validate() error {
	return t.validate(t.RootNode)
}

func (t *Tree) validate(index NodeIndex) error {
	node, err := t.Node(index)
	if err != nil {
		return err
	}

	switch node.Kind {
	case LeafNode:
		return nil
	case NestedLeafNode:
		subtree, err := t.Node(node.Subtree)
		if err != nil {
			return err
		}
		if !subtree.Bounds.Equal(node.Bounds) {
			return fmt.Errorf("%w: nested leaf %d", ErrBoundsMismatch, index)
		}
		return t.validate(node.Subtree)
	case InternalNode:
		left, err := t.Node(node.Left)
		if err != nil {
			return err
		}
		right, err := t.Node(node.Right)
		if err != nil {
			return err
		}
		if !left.Bounds.Union(right.Bounds).Equal(node.Bounds) {
			return fmt.Errorf("%w: node %d", ErrBoundsMismatch, index)
		}
		if err = t.validate(node.Left); err != nil {
			return err
		}
		return t.validate(node.Right)
	}

	return fmt.Errorf("%w: %s", ErrUnknownNodeKind, node.Kind)
}
