package bvh

import (
	"testing"

	"github.com/achilleasa/ashtrace/types"
	"github.com/stretchr/testify/require"
)

// Build a scene tree whose leaves nest one mesh tree per entry in meshSizes.
// Mesh m contains meshSizes[m] unit triangles placed along X at a Y offset of
// 10*m so the meshes do not overlap.
func buildNestedScene(t *testing.T, meshSizes ...int) *Tree {
	meshPrims := make([]Primitive, len(meshSizes))
	for meshIndex, size := range meshSizes {
		prims := make([]Primitive, size)
		for faceIndex := 0; faceIndex < size; faceIndex++ {
			prims[faceIndex] = unitPrim(meshIndex, faceIndex, float32(faceIndex), float32(10*meshIndex), 0)
		}
		meshTree, err := Build(prims)
		require.NoError(t, err)
		meshPrims[meshIndex] = Nested(meshIndex, meshTree)
	}

	sceneTree, err := Build(meshPrims)
	require.NoError(t, err)
	return sceneTree
}

// Count nodes in the flattened subtree starting at index.
func flatSubtreeLen(flat []FlatNode, index int32) int {
	node := flat[index]
	if node.IsLeaf() {
		return 1
	}
	return 1 + flatSubtreeLen(flat, node.LeftIndex) + flatSubtreeLen(flat, node.RightIndex)
}

func TestNestedPrimitiveBounds(t *testing.T) {
	meshTree, err := Build(primsAlongX(0, 3))
	require.NoError(t, err)

	prim := Nested(0, meshTree)
	require.Equal(t, NestedTreePrimitive, prim.Kind)
	require.True(t, prim.Bounds.Equal(meshTree.Root().Bounds))
}

func TestNestedTreesAreCopiedIntoSceneArena(t *testing.T) {
	tree := buildNestedScene(t, 4, 4)
	require.NoError(t, tree.Validate())

	// root + 2 nested leafs + 2 * 7 mesh nodes
	require.Len(t, tree.Nodes, 17)

	nestedLeafs := 0
	for _, node := range tree.Nodes {
		if node.Kind == NestedLeafNode {
			nestedLeafs++
			subtree, err := tree.Node(node.Subtree)
			require.NoError(t, err)
			require.True(t, subtree.Bounds.Equal(node.Bounds))
		}
	}
	require.Equal(t, 2, nestedLeafs)

	leafs, err := tree.LeafCount()
	require.NoError(t, err)
	require.Equal(t, 8, leafs)
}

func TestNestedTreeDepthAccumulates(t *testing.T) {
	tree := buildNestedScene(t, 4, 4)

	// Scene root -> nested leaf (depth 1) -> mesh trees of depth 2
	depth, err := tree.Depth()
	require.NoError(t, err)
	require.Equal(t, 3, depth)

	// Uneven meshes: the deepest path wins
	tree = buildNestedScene(t, 1, 8)
	depth, err = tree.Depth()
	require.NoError(t, err)
	require.Equal(t, 4, depth)
}

func TestDepthOfSingleLeaf(t *testing.T) {
	tree, err := Build([]Primitive{unitPrim(0, 0, 0, 0, 0)})
	require.NoError(t, err)

	for _, d := range []int{0, 1, 5} {
		depth, err := tree.DepthFrom(tree.RootNode, d)
		require.NoError(t, err)
		require.Equal(t, d, depth)
	}
}

func TestDepthOfBalancedTree(t *testing.T) {
	for h := 0; h <= 6; h++ {
		tree, err := Build(primsAlongX(0, 1<<uint(h)))
		require.NoError(t, err)

		depth, err := tree.Depth()
		require.NoError(t, err)
		require.Equalf(t, h, depth, "tree built from %d primitives", 1<<uint(h))
	}
}

func TestFlattenNestedTree(t *testing.T) {
	tree := buildNestedScene(t, 3, 5, 1)

	flat, err := Flatten(tree)
	require.NoError(t, err)

	// Nested leafs are replaced by the mesh trees they point to: the
	// flattened length is scene internal nodes + mesh nodes.
	nestedLeafs := 0
	for _, node := range tree.Nodes {
		if node.Kind == NestedLeafNode {
			nestedLeafs++
		}
	}
	require.Len(t, flat, len(tree.Nodes)-nestedLeafs)
	require.Len(t, flat, 2+(2*3-1)+(2*5-1)+1)

	leafs := 0
	seenFaces := make(map[[2]int32]bool)
	for index, node := range flat {
		if node.IsLeaf() {
			leafs++
			require.Equal(t, Absent, node.RightIndex)
			seenFaces[[2]int32{node.MeshIndex, node.FaceIndex}] = true
			continue
		}

		require.Equal(t, Absent, node.MeshIndex)
		require.Equal(t, Absent, node.FaceIndex)
		require.Equalf(t, int32(index+1), node.LeftIndex, "[node %d] left index", index)
		require.Equalf(t, node.LeftIndex+int32(flatSubtreeLen(flat, node.LeftIndex)), node.RightIndex, "[node %d] right index", index)

		// Parents enclose their children
		for _, child := range []FlatNode{flat[node.LeftIndex], flat[node.RightIndex]} {
			require.Equal(t, node.BoundMin, types.MinVec3(node.BoundMin, child.BoundMin))
			require.Equal(t, node.BoundMax, types.MaxVec3(node.BoundMax, child.BoundMax))
		}
	}
	require.Equal(t, 9, leafs)
	require.Len(t, seenFaces, 9)
	require.Equal(t, len(flat), flatSubtreeLen(flat, 0))
}

func TestFlatNodeTexels(t *testing.T) {
	node := FlatNode{
		BoundMin:   types.XYZ(-1, -2, -3),
		BoundMax:   types.XYZ(1, 2, 3),
		LeftIndex:  Absent,
		RightIndex: Absent,
		MeshIndex:  4,
		FaceIndex:  9,
	}

	exp := [FlatNodeSize]float32{-1, -2, -3, 1, 1, 2, 3, 1, -1, -1, 4, 9}
	require.Equal(t, exp, node.Texels())
}

func TestValidateDetectsBoundsMismatch(t *testing.T) {
	tree, err := Build(primsAlongX(0, 4))
	require.NoError(t, err)

	tree.Nodes[tree.RootNode].Bounds = tree.Nodes[tree.RootNode].Bounds.UnionPoint(types.XYZ(100, 0, 0))
	require.ErrorIs(t, tree.Validate(), ErrBoundsMismatch)
}

func TestUnknownNodeKind(t *testing.T) {
	tree := &Tree{Nodes: []Node{{Kind: NodeKind(42)}}}

	_, err := tree.Depth()
	require.ErrorIs(t, err, ErrUnknownNodeKind)
	_, err = Flatten(tree)
	require.ErrorIs(t, err, ErrUnknownNodeKind)
	_, err = tree.LeafCount()
	require.ErrorIs(t, err, ErrUnknownNodeKind)
}
