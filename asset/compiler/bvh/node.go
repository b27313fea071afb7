package bvh

import "fmt"

// The kind of a primitive that can be partitioned by the BVH builder.
type PrimitiveKind uint8

const (
	// A triangle belonging to a mesh.
	TrianglePrimitive PrimitiveKind = iota

	// A fully built BVH tree for a mesh that should be nested as-is
	// inside the tree being built.
	NestedTreePrimitive
)

// A Primitive is the unit of work for the BVH builder. Primitives are read-only
// views over scene geometry; the builder never modifies them.
type Primitive struct {
	Kind PrimitiveKind

	MeshIndex int

	// Triangle index inside the mesh. Only valid for triangle primitives.
	FaceIndex int

	// The nested tree. Only valid for nested tree primitives.
	Tree *Tree

	Bounds BBox
}

// Create a primitive for a mesh triangle.
func Triangle(meshIndex, faceIndex int, bounds BBox) Primitive {
	return Primitive{
		Kind:      TrianglePrimitive,
		MeshIndex: meshIndex,
		FaceIndex: faceIndex,
		Bounds:    bounds,
	}
}

// Create a primitive that nests a mesh BVH tree. Its bounds are the bounds of
// the nested tree root.
func Nested(meshIndex int, tree *Tree) Primitive {
	return Primitive{
		Kind:      NestedTreePrimitive,
		MeshIndex: meshIndex,
		FaceIndex: -1,
		Tree:      tree,
		Bounds:    tree.Root().Bounds,
	}
}

// The kind of a BVH node.
type NodeKind uint8

const (
	// A node with exactly two children.
	InternalNode NodeKind = iota

	// A leaf wrapping a single triangle primitive.
	LeafNode

	// A leaf that points to the root of a nested mesh tree stored in the
	// same node arena.
	NestedLeafNode
)

func (k NodeKind) String() string {
	switch k {
	case InternalNode:
		return "internal"
	case LeafNode:
		return "leaf"
	case NestedLeafNode:
		return "nested"
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// An index into a tree node arena.
type NodeIndex int32

// A BVH node. Which fields are meaningful depends on Kind:
// - InternalNode: Left and Right
// - LeafNode: Primitive
// - NestedLeafNode: MeshIndex and Subtree
type Node struct {
	Kind   NodeKind
	Bounds BBox

	Left  NodeIndex
	Right NodeIndex

	Primitive Primitive

	MeshIndex int
	Subtree   NodeIndex
}

// A Tree stores BVH nodes in a contiguous arena. Parents are always stored
// before their children.
type Tree struct {
	Nodes    []Node
	RootNode NodeIndex
}

// Get the root node.
func (t *Tree) Root() *Node {
	return &t.Nodes[t.RootNode]
}

// Get node by index.
func (t *Tree) Node(index NodeIndex) (*Node, error) {
	if index < 0 || int(index) >= len(t.Nodes) {
		return nil, fmt.Errorf("%w: %d (tree has %d nodes)", ErrInvalidNode, index, len(t.Nodes))
	}
	return &t.Nodes[index], nil
}

// Count the triangle leaves reachable from the root, expanding nested trees.
func (t *Tree) LeafCount() (int, error) {
	return t.leafCount(t.RootNode)
}

func (t *Tree) leafCount(index NodeIndex) (int, error) {
	node, err := t.Node(index)
	if err != nil {
		return 0, err
	}

	switch node.Kind {
	case LeafNode:
		return 1, nil
	case NestedLeafNode:
		return t.leafCount(node.Subtree)
	case InternalNode:
		left, err := t.leafCount(node.Left)
		if err != nil {
			return 0, err
		}
		right, err := t.leafCount(node.Right)
		if err != nil {
			return 0, err
		}
		return left + right, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrUnknownNodeKind, node.Kind)
}
