// Package rtree implements an in-memory Guttman R-tree over N-dimensional
// points with the quadratic split heuristic. Leaves hold point entries with
// entity payloads; internal nodes hold child subtrees. It backs the spatial
// secondary indices.
package rtree

import (
	"fmt"
	"math"
	"sort"

	"github.com/lattice-ecs/lattice/types"
)

// DefaultMaxChildren is the node fanout used when the caller does not pick
// one. Small fanout keeps the O(n^2) quadratic split cheap.
const DefaultMaxChildren = 8

// Num is the coordinate capability: area, enlargement, and distance math
// works uniformly over signed integer and floating point coordinate types.
type Num interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Rect is an axis-aligned box with one Min/Max coordinate per dimension.
type Rect[K Num] struct {
	Min []K
	Max []K
}

// NewRect builds a rect from min/max corners. The corners are copied.
func NewRect[K Num](min, max []K) Rect[K] {
	return Rect[K]{Min: clonePoint(min), Max: clonePoint(max)}
}

// Entry is a point record held at a leaf.
type Entry[K Num] struct {
	Point  []K
	Entity types.Entity
}

// node is either a leaf (entries set) or internal (children set). mbr is the
// tight union of the node's contents.
type node[K Num] struct {
	mbr      Rect[K]
	entries  []Entry[K]
	children []*node[K]
	leaf     bool
}

// RTree is a bounding-box tree of axis-aligned boxes over dims-dimensional
// numeric points. Nodes exceeding maxChildren entries are split; removal
// rebalances at the root only (root collapse), never at intermediate levels.
type RTree[K Num] struct {
	root        *node[K]
	dims        int
	maxChildren int
	size        int
}

// New creates an empty tree over dims-dimensional points. maxChildren <= 0
// selects DefaultMaxChildren.
func New[K Num](dims, maxChildren int) *RTree[K] {
	if dims < 1 {
		panic(fmt.Sprintf("rtree: dims must be >= 1, got %d", dims))
	}
	if maxChildren <= 0 {
		maxChildren = DefaultMaxChildren
	}
	if maxChildren < 2 {
		panic(fmt.Sprintf("rtree: max children must be >= 2, got %d", maxChildren))
	}
	return &RTree[K]{dims: dims, maxChildren: maxChildren}
}

// Dims returns the number of coordinates per point.
func (t *RTree[K]) Dims() int {
	return t.dims
}

// Len returns the number of point entries in the tree.
func (t *RTree[K]) Len() int {
	return t.size
}

// Insert adds a point entry for e. The descent picks, at each internal node,
// the child whose box needs the least area enlargement to cover the point
// (ties to the smallest current box) and unions the boxes along the path.
func (t *RTree[K]) Insert(point []K, e types.Entity) {
	if len(point) != t.dims {
		panic(fmt.Sprintf("rtree: point has %d coordinates, want %d", len(point), t.dims))
	}
	t.size++
	if t.root == nil {
		t.root = &node[K]{
			leaf:    true,
			mbr:     pointRect(point),
			entries: []Entry[K]{{Point: clonePoint(point), Entity: e}},
		}
		return
	}
	if split := t.insert(t.root, point, e); split != nil {
		old := t.root
		t.root = &node[K]{
			mbr:      union(old.mbr, split.mbr),
			children: []*node[K]{old, split},
		}
	}
}

// insert descends to a leaf and appends the entry, splitting on the way back
// up. A non-nil return is the new sibling produced by splitting n, to be
// adopted by n's parent (or a new root).
func (t *RTree[K]) insert(n *node[K], point []K, e types.Entity) *node[K] {
	n.mbr = extend(n.mbr, point)
	if n.leaf {
		n.entries = append(n.entries, Entry[K]{Point: clonePoint(point), Entity: e})
		if len(n.entries) > t.maxChildren {
			return t.splitLeaf(n)
		}
		return nil
	}
	child := n.children[chooseSubtree(n.children, point)]
	if split := t.insert(child, point, e); split != nil {
		n.children = append(n.children, split)
		if len(n.children) > t.maxChildren {
			return t.splitInternal(n)
		}
	}
	return nil
}

// chooseSubtree picks the child needing the least area enlargement to cover
// the point, breaking ties by smallest current area.
func chooseSubtree[K Num](children []*node[K], point []K) int {
	best := 0
	bestEnl := enlargement(children[0].mbr, point)
	bestArea := area(children[0].mbr)
	for i := 1; i < len(children); i++ {
		enl := enlargement(children[i].mbr, point)
		a := area(children[i].mbr)
		if enl < bestEnl || (enl == bestEnl && a < bestArea) {
			best, bestEnl, bestArea = i, enl, a
		}
	}
	return best
}

// splitLeaf redistributes an overflowing leaf's entries between n and a new
// sibling, which is returned.
func (t *RTree[K]) splitLeaf(n *node[K]) *node[K] {
	rects := make([]Rect[K], len(n.entries))
	for i, en := range n.entries {
		rects[i] = pointRect(en.Point)
	}
	groupA, groupB := distribute(rects)
	entries := n.entries
	n.entries = pickEntries(entries, groupA)
	n.mbr = boundEntries(n.entries)
	sib := &node[K]{leaf: true, entries: pickEntries(entries, groupB)}
	sib.mbr = boundEntries(sib.entries)
	return sib
}

// splitInternal redistributes an overflowing internal node's children
// between n and a new sibling, which is returned.
func (t *RTree[K]) splitInternal(n *node[K]) *node[K] {
	rects := make([]Rect[K], len(n.children))
	for i, c := range n.children {
		rects[i] = c.mbr
	}
	groupA, groupB := distribute(rects)
	children := n.children
	n.children = pickChildren(children, groupA)
	n.mbr = boundChildren(n.children)
	sib := &node[K]{children: pickChildren(children, groupB)}
	sib.mbr = boundChildren(sib.children)
	return sib
}

// distribute splits rects into two index groups: quadratic pick-seeds
// chooses the pair wasting the most area as seeds, then each remaining rect
// joins the group whose box needs the least enlargement (ties to the smaller
// box).
func distribute[K Num](rects []Rect[K]) (a, b []int) {
	seedA, seedB := pickSeeds(rects)
	a, b = []int{seedA}, []int{seedB}
	boxA, boxB := rects[seedA], rects[seedB]
	for i := range rects {
		if i == seedA || i == seedB {
			continue
		}
		enlA := area(union(boxA, rects[i])) - area(boxA)
		enlB := area(union(boxB, rects[i])) - area(boxB)
		if enlA < enlB || (enlA == enlB && area(boxA) <= area(boxB)) {
			a = append(a, i)
			boxA = union(boxA, rects[i])
		} else {
			b = append(b, i)
			boxB = union(boxB, rects[i])
		}
	}
	return a, b
}

// pickSeeds returns the pair of rects whose combined box has the greatest
// wasted area (union minus the two operands).
func pickSeeds[K Num](rects []Rect[K]) (int, int) {
	seedA, seedB := 0, 1
	worst := area(union(rects[0], rects[1])) - area(rects[0]) - area(rects[1])
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			waste := area(union(rects[i], rects[j])) - area(rects[i]) - area(rects[j])
			if waste > worst {
				seedA, seedB, worst = i, j, waste
			}
		}
	}
	return seedA, seedB
}

// Remove deletes the entry recorded for e at exactly the given point,
// typically the position cached by the owning index; a matching entity at a
// different position is not touched. MBRs shrink along the removal path.
// The root is the only node rebalanced: an emptied leaf root is cleared and
// an internal root left with a single child is replaced by it. Intermediate
// nodes may stay under-filled.
func (t *RTree[K]) Remove(point []K, e types.Entity) bool {
	if t.root == nil || len(point) != t.dims {
		return false
	}
	if !t.remove(t.root, point, e) {
		return false
	}
	t.size--
	if t.root.leaf {
		if len(t.root.entries) == 0 {
			t.root = nil
		}
	} else if len(t.root.children) == 1 {
		t.root = t.root.children[0]
	}
	return true
}

func (t *RTree[K]) remove(n *node[K], point []K, e types.Entity) bool {
	if n.leaf {
		for i, en := range n.entries {
			if en.Entity == e && pointsEqual(en.Point, point) {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				if len(n.entries) > 0 {
					n.mbr = boundEntries(n.entries)
				}
				return true
			}
		}
		return false
	}
	for i, child := range n.children {
		if !containsPoint(child.mbr, point) {
			continue
		}
		if t.remove(child, point, e) {
			// Drained nodes are dropped; under-filled but non-empty nodes
			// are left alone (no reinsertion below the root).
			if child.empty() {
				n.children = append(n.children[:i], n.children[i+1:]...)
			}
			if len(n.children) > 0 {
				n.mbr = boundChildren(n.children)
			}
			return true
		}
	}
	return false
}

func (n *node[K]) empty() bool {
	if n.leaf {
		return len(n.entries) == 0
	}
	return len(n.children) == 0
}

// Query returns the entities whose points lie inside rect. Subtrees whose
// MBRs do not intersect the query box are pruned; leaf entries are points,
// so the final test is box-contains-point.
func (t *RTree[K]) Query(rect Rect[K]) []types.Entity {
	var out []types.Entity
	t.root.query(rect, &out)
	return out
}

func (n *node[K]) query(rect Rect[K], out *[]types.Entity) {
	if n == nil || !intersects(n.mbr, rect) {
		return
	}
	if n.leaf {
		for _, en := range n.entries {
			if containsPoint(rect, en.Point) {
				*out = append(*out, en.Entity)
			}
		}
		return
	}
	for _, c := range n.children {
		c.query(rect, out)
	}
}

// Nearest returns the entity whose point is closest to p in Euclidean
// distance, visiting subtrees nearest-first and pruning those whose MBR
// cannot beat the best candidate.
func (t *RTree[K]) Nearest(p []K) (types.Entity, bool) {
	if t.root == nil || len(p) != t.dims {
		return types.Entity{}, false
	}
	best := math.Inf(1)
	var bestEntity types.Entity
	found := false
	var walk func(n *node[K])
	walk = func(n *node[K]) {
		if n.leaf {
			for _, en := range n.entries {
				if d := pointDist2(en.Point, p); !found || d < best {
					best, bestEntity, found = d, en.Entity, true
				}
			}
			return
		}
		order := make([]int, len(n.children))
		dists := make([]float64, len(n.children))
		for i, c := range n.children {
			order[i] = i
			dists[i] = minDist2(c.mbr, p)
		}
		sort.Slice(order, func(i, j int) bool { return dists[order[i]] < dists[order[j]] })
		for _, i := range order {
			if found && dists[i] > best {
				break
			}
			walk(n.children[i])
		}
	}
	walk(t.root)
	return bestEntity, found
}

// pointRect is the degenerate box covering exactly one point.
func pointRect[K Num](p []K) Rect[K] {
	return Rect[K]{Min: clonePoint(p), Max: clonePoint(p)}
}

// union returns the smallest box covering both operands. The result never
// aliases either operand's coordinate slices.
func union[K Num](a, b Rect[K]) Rect[K] {
	out := Rect[K]{Min: make([]K, len(a.Min)), Max: make([]K, len(a.Max))}
	for i := range a.Min {
		out.Min[i] = minOf(a.Min[i], b.Min[i])
		out.Max[i] = maxOf(a.Max[i], b.Max[i])
	}
	return out
}

// extend returns the smallest box covering r and the point.
func extend[K Num](r Rect[K], p []K) Rect[K] {
	out := Rect[K]{Min: make([]K, len(r.Min)), Max: make([]K, len(r.Max))}
	for i := range r.Min {
		out.Min[i] = minOf(r.Min[i], p[i])
		out.Max[i] = maxOf(r.Max[i], p[i])
	}
	return out
}

// area is the product of the box's extents, in float64 so integer
// coordinates cannot overflow during split bookkeeping.
func area[K Num](r Rect[K]) float64 {
	a := 1.0
	for i := range r.Min {
		a *= float64(r.Max[i] - r.Min[i])
	}
	return a
}

// enlargement is the extra area the box would need to cover the point.
func enlargement[K Num](r Rect[K], p []K) float64 {
	return area(extend(r, p)) - area(r)
}

func intersects[K Num](a, b Rect[K]) bool {
	for i := range a.Min {
		if a.Min[i] > b.Max[i] || a.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

func containsPoint[K Num](r Rect[K], p []K) bool {
	for i := range r.Min {
		if p[i] < r.Min[i] || p[i] > r.Max[i] {
			return false
		}
	}
	return true
}

// minDist2 is the squared distance from p to the closest point of r, zero
// when p lies inside.
func minDist2[K Num](r Rect[K], p []K) float64 {
	d := 0.0
	for i := range p {
		switch {
		case p[i] < r.Min[i]:
			v := float64(r.Min[i] - p[i])
			d += v * v
		case p[i] > r.Max[i]:
			v := float64(p[i] - r.Max[i])
			d += v * v
		}
	}
	return d
}

func pointDist2[K Num](a, b []K) float64 {
	d := 0.0
	for i := range a {
		v := float64(a[i]) - float64(b[i])
		d += v * v
	}
	return d
}

func minOf[K Num](a, b K) K {
	if a < b {
		return a
	}
	return b
}

func maxOf[K Num](a, b K) K {
	if a > b {
		return a
	}
	return b
}

func pointsEqual[K Num](a, b []K) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func clonePoint[K Num](p []K) []K {
	out := make([]K, len(p))
	copy(out, p)
	return out
}

func boundEntries[K Num](entries []Entry[K]) Rect[K] {
	r := pointRect(entries[0].Point)
	for _, en := range entries[1:] {
		r = extend(r, en.Point)
	}
	return r
}

func boundChildren[K Num](children []*node[K]) Rect[K] {
	r := children[0].mbr
	for _, c := range children[1:] {
		r = union(r, c.mbr)
	}
	return r
}

func pickEntries[K Num](entries []Entry[K], idxs []int) []Entry[K] {
	out := make([]Entry[K], 0, len(idxs))
	for _, i := range idxs {
		out = append(out, entries[i])
	}
	return out
}

func pickChildren[K Num](children []*node[K], idxs []int) []*node[K] {
	out := make([]*node[K], 0, len(idxs))
	for _, i := range idxs {
		out = append(out, children[i])
	}
	return out
}
