package bvh

import (
	"fmt"
	"sort"
	"time"

	"github.com/achilleasa/ashtrace/log"
)

type stats struct {
	totalItems  int
	nodes       int
	leafs       int
	nestedLeafs int
	maxDepth    int
}

type builder struct {
	logger log.Logger

	// Bvh nodes stored as a contiguous list
	nodes []Node

	// Stats
	stats stats
}

// Construct a BVH from a set of primitives.
//
// The builder partitions the work list by sorting it along the axis with the
// largest centroid extent and splitting it at round(n/2). Each primitive ends
// up in its own leaf. Nested tree primitives are copied into the new tree's
// node arena and referenced by a NestedLeafNode.
//
// The supplied work list is not modified.
func Build(workList []Primitive) (*Tree, error) {
	if len(workList) == 0 {
		return nil, ErrEmptyWorkList
	}

	b := &builder{
		logger: log.New("bvh builder"),
		nodes:  make([]Node, 0, 2*len(workList)-1),
		stats: stats{
			totalItems: len(workList),
		},
	}

	items := make([]Primitive, len(workList))
	copy(items, workList)

	start := time.Now()
	root, err := b.partition(items, 0)
	if err != nil {
		return nil, err
	}
	b.logger.Debugf(
		"BVH tree build time: %d ms, items: %d, maxDepth: %d, nodes: %d, leafs: %d, nested leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.totalItems, b.stats.maxDepth, b.stats.nodes, b.stats.leafs, b.stats.nestedLeafs,
	)

	return &Tree{
		Nodes:    b.nodes,
		RootNode: root,
	}, nil
}

// Partition worklist and return node index.
func (b *builder) partition(workList []Primitive, depth int) (NodeIndex, error) {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	if len(workList) == 1 {
		return b.createLeaf(workList[0])
	}

	// Reserve the slot for this node so that parents precede their children
	nodeIndex := NodeIndex(len(b.nodes))
	b.nodes = append(b.nodes, Node{Kind: InternalNode})
	b.stats.nodes++

	var leftWorkList, rightWorkList []Primitive
	if len(workList) == 2 {
		leftWorkList, rightWorkList = workList[:1], workList[1:]
	} else {
		centroidBounds := EmptyBBox()
		for index := range workList {
			centroidBounds = centroidBounds.UnionPoint(workList[index].Bounds.Centroid())
		}

		axis := centroidBounds.MaxExtent()
		sort.SliceStable(workList, func(i, j int) bool {
			return workList[i].Bounds.Centroid()[axis] < workList[j].Bounds.Centroid()[axis]
		})

		splitPoint := splitIndex(len(workList))
		leftWorkList, rightWorkList = workList[:splitPoint], workList[splitPoint:]
	}

	if len(leftWorkList)+len(rightWorkList) != len(workList) || len(leftWorkList) == 0 || len(rightWorkList) == 0 {
		return 0, fmt.Errorf("%w: split %d items into %d/%d", ErrSplitMismatch, len(workList), len(leftWorkList), len(rightWorkList))
	}

	leftNodeIndex, err := b.partition(leftWorkList, depth+1)
	if err != nil {
		return 0, err
	}
	rightNodeIndex, err := b.partition(rightWorkList, depth+1)
	if err != nil {
		return 0, err
	}

	node := &b.nodes[nodeIndex]
	node.Left = leftNodeIndex
	node.Right = rightNodeIndex
	node.Bounds = b.nodes[leftNodeIndex].Bounds.Union(b.nodes[rightNodeIndex].Bounds)

	return nodeIndex, nil
}

// Setup a leaf for the given primitive and return its index in the node list.
func (b *builder) createLeaf(prim Primitive) (NodeIndex, error) {
	nodeIndex := NodeIndex(len(b.nodes))

	switch prim.Kind {
	case TrianglePrimitive:
		b.nodes = append(b.nodes, Node{
			Kind:      LeafNode,
			Bounds:    prim.Bounds,
			Primitive: prim,
		})
		b.stats.leafs++
	case NestedTreePrimitive:
		if prim.Tree == nil || len(prim.Tree.Nodes) == 0 {
			return 0, fmt.Errorf("%w: nested primitive for mesh %d has no tree", ErrEmptyWorkList, prim.MeshIndex)
		}

		// Copy the nested tree after the leaf and rebase its indices
		offset := NodeIndex(nodeIndex + 1)
		b.nodes = append(b.nodes, Node{
			Kind:      NestedLeafNode,
			Bounds:    prim.Bounds,
			MeshIndex: prim.MeshIndex,
			Subtree:   prim.Tree.RootNode + offset,
		})
		for _, nested := range prim.Tree.Nodes {
			switch nested.Kind {
			case InternalNode:
				nested.Left += offset
				nested.Right += offset
			case NestedLeafNode:
				nested.Subtree += offset
			}
			b.nodes = append(b.nodes, nested)
		}
		b.stats.nestedLeafs++
	default:
		return 0, fmt.Errorf("bvh: unknown primitive kind %d", prim.Kind)
	}

	return nodeIndex, nil
}

// Get the split point for a sorted work list of n items. The left partition
// receives round(n/2) items with halves rounded up, so 5 items split 3/2.
func splitIndex(n int) int {
	return (n + 1) / 2
}
