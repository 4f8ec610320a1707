package core

import "sort"

// Boundable is anything a BVH can index: a scene primitive or a mesh
// triangle. The BVH itself never looks past the bounding box — the actual
// ray/item test is supplied by the caller, so the same tree shape serves
// both the top-level scene aggregate and a triangle mesh's internal index.
type Boundable interface {
	Bounds() AABB
}

// HitTest is the caller-supplied per-item intersection routine. It returns
// the hit distance and whether the item was hit inside (tMin, tMax].
type HitTest func(item int, tMin, tMax float64) (float64, bool)

// OccludedTest is the any-hit counterpart of HitTest.
type OccludedTest func(item int, tMin, tMax float64) bool

type bvhNode struct {
	bounds      AABB
	left, right *bvhNode
	items       []int // non-nil only for leaves
}

// BVH is a median-split, longest-axis bounding volume hierarchy over a
// fixed set of Boundable items, addressed by index. The scene and
// TriangleMesh use it directly; it knows nothing about rays' payload.
type BVH struct {
	root  *bvhNode
	Items []Boundable
}

const leafThreshold = 8

// NewBVH builds a BVH over items. items is retained by reference as
// BVH.Items; the tree is immutable once built.
func NewBVH(items []Boundable) *BVH {
	if len(items) == 0 {
		return &BVH{Items: items}
	}
	indices := make([]int, len(items))
	for i := range indices {
		indices[i] = i
	}
	return &BVH{
		Items: items,
		root:  buildBVH(items, indices),
	}
}

func buildBVH(items []Boundable, indices []int) *bvhNode {
	bounds := items[indices[0]].Bounds()
	for _, idx := range indices[1:] {
		bounds = bounds.Union(items[idx].Bounds())
	}

	if len(indices) <= leafThreshold {
		return &bvhNode{bounds: bounds, items: indices}
	}

	axis := bounds.LongestAxis()
	sort.Slice(indices, func(i, j int) bool {
		ci := items[indices[i]].Bounds().Center()
		cj := items[indices[j]].Bounds().Center()
		switch axis {
		case 0:
			return ci.X < cj.X
		case 1:
			return ci.Y < cj.Y
		default:
			return ci.Z < cj.Z
		}
	})

	mid := len(indices) / 2
	return &bvhNode{
		bounds: bounds,
		left:   buildBVH(items, indices[:mid]),
		right:  buildBVH(items, indices[mid:]),
	}
}

// Hit returns the closest item hit within (tMin, tMax], using test to
// probe individual leaf items.
func (b *BVH) Hit(ray Ray, tMin, tMax float64, test HitTest) (int, float64, bool) {
	if b.root == nil {
		return -1, 0, false
	}
	return hitNode(b.root, ray, tMin, tMax, test)
}

func hitNode(node *bvhNode, ray Ray, tMin, tMax float64, test HitTest) (int, float64, bool) {
	if !node.bounds.Hit(ray, tMin, tMax) {
		return -1, 0, false
	}

	if node.items != nil {
		bestItem, bestT, hitAny := -1, tMax, false
		for _, item := range node.items {
			if t, ok := test(item, tMin, bestT); ok {
				hitAny, bestT, bestItem = true, t, item
			}
		}
		return bestItem, bestT, hitAny
	}

	bestItem, bestT, hitAny := -1, tMax, false
	if node.left != nil {
		if item, t, ok := hitNode(node.left, ray, tMin, bestT, test); ok {
			hitAny, bestT, bestItem = true, t, item
		}
	}
	if node.right != nil {
		if item, t, ok := hitNode(node.right, ray, tMin, bestT, test); ok {
			hitAny, bestT, bestItem = true, t, item
		}
	}
	return bestItem, bestT, hitAny
}

// Occluded is a any-hit query: it returns as soon as any item reports true.
func (b *BVH) Occluded(ray Ray, tMin, tMax float64, test OccludedTest) bool {
	if b.root == nil {
		return false
	}
	return occludedNode(b.root, ray, tMin, tMax, test)
}

func occludedNode(node *bvhNode, ray Ray, tMin, tMax float64, test OccludedTest) bool {
	if !node.bounds.Hit(ray, tMin, tMax) {
		return false
	}
	if node.items != nil {
		for _, item := range node.items {
			if test(item, tMin, tMax) {
				return true
			}
		}
		return false
	}
	if node.left != nil && occludedNode(node.left, ray, tMin, tMax, test) {
		return true
	}
	if node.right != nil && occludedNode(node.right, ray, tMin, tMax, test) {
		return true
	}
	return false
}
