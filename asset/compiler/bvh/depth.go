package bvh

import "fmt"

// Calculate the max number of edges between the root and any leaf. Nested
// trees are treated as if they were inlined in place of their leaf, so their
// depth accumulates on top of the leaf depth. The GPU traversal stack must be
// able to hold this many entries.
func (t *Tree) Depth() (int, error) {
	return t.DepthFrom(t.RootNode, 0)
}

// Calculate the max leaf depth under the node at index, assuming that the node
// itself is located at depth.
func (t *Tree) DepthFrom(index NodeIndex, depth int) (int, error) {
	node, err := t.Node(index)
	if err != nil {
		return 0, err
	}

	switch node.Kind {
	case LeafNode:
		return depth, nil
	case NestedLeafNode:
		return t.DepthFrom(node.Subtree, depth)
	case InternalNode:
		left, err := t.DepthFrom(node.Left, depth+1)
		if err != nil {
			return 0, err
		}
		right, err := t.DepthFrom(node.Right, depth+1)
		if err != nil {
			return 0, err
		}
		if left > right {
			return left, nil
		}
		return right, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrUnknownNodeKind, node.Kind)
}
