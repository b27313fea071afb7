package bvh

import (
	"fmt"

	"github.com/achilleasa/ashtrace/types"
)

// The value used for FlatNode fields that do not apply to a node.
const Absent int32 = -1

// The size of an encoded FlatNode in floats (3 RGBA texels).
const FlatNodeSize = 12

// A FlatNode is the pointer-free representation of a BVH node that can be
// traversed by the GPU:
//
// - For internal nodes LeftIndex and RightIndex point to the child nodes and
//   MeshIndex/FaceIndex are Absent.
// - For leafs MeshIndex and FaceIndex select a mesh triangle and the child
//   indices are Absent.
type FlatNode struct {
	BoundMin types.Vec3
	BoundMax types.Vec3

	LeftIndex  int32
	RightIndex int32
	MeshIndex  int32
	FaceIndex  int32
}

// Returns true if this is a leaf node.
func (n FlatNode) IsLeaf() bool {
	return n.LeftIndex == Absent
}

// Encode node as 3 RGBA texels:
// [min.xyz, 1], [max.xyz, 1], [left, right, mesh, face].
func (n FlatNode) Texels() [FlatNodeSize]float32 {
	return [FlatNodeSize]float32{
		n.BoundMin[0], n.BoundMin[1], n.BoundMin[2], 1,
		n.BoundMax[0], n.BoundMax[1], n.BoundMax[2], 1,
		float32(n.LeftIndex), float32(n.RightIndex), float32(n.MeshIndex), float32(n.FaceIndex),
	}
}

// Flatten a tree into a list of nodes in pre-order. Nested trees are spliced
// in place of the leaf that references them so that all nodes share the same
// index space. Every internal node is immediately followed by its left
// subtree; its right subtree starts right after the last left subtree node.
func Flatten(t *Tree) ([]FlatNode, error) {
	f := &flattener{
		tree: t,
		out:  make([]FlatNode, 0, len(t.Nodes)),
	}

	if err := f.visit(t.RootNode); err != nil {
		return nil, err
	}
	return f.out, nil
}

type flattener struct {
	tree *Tree
	out  []FlatNode
}

func (f *flattener) visit(index NodeIndex) error {
	node, err := f.tree.Node(index)
	if err != nil {
		return err
	}

	switch node.Kind {
	case NestedLeafNode:
		return f.visit(node.Subtree)
	case LeafNode:
		f.out = append(f.out, FlatNode{
			BoundMin:   node.Bounds.Min,
			BoundMax:   node.Bounds.Max,
			LeftIndex:  Absent,
			RightIndex: Absent,
			MeshIndex:  int32(node.Primitive.MeshIndex),
			FaceIndex:  int32(node.Primitive.FaceIndex),
		})
		return nil
	case InternalNode:
		pos := len(f.out)
		f.out = append(f.out, FlatNode{
			BoundMin:   node.Bounds.Min,
			BoundMax:   node.Bounds.Max,
			LeftIndex:  int32(pos + 1),
			RightIndex: Absent,
			MeshIndex:  Absent,
			FaceIndex:  Absent,
		})

		if err = f.visit(node.Left); err != nil {
			return err
		}
		f.out[pos].RightIndex = int32(len(f.out))
		return f.visit(node.Right)
	}

	return fmt.Errorf("%w: %s", ErrUnknownNodeKind, node.Kind)
}
