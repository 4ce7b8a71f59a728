// Package btree implements an in-memory, order-parameterized balanced
// multiway search tree with inclusive range queries. It backs the scalar
// secondary indices; it is not a persistent/on-disk structure.
package btree

import (
	"cmp"
	"fmt"
	"sort"
)

// Pair is a key/value pair copied out of the tree by Range.
type Pair[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// node keys are kept sorted and unique. children is empty iff the node is a
// leaf; internal nodes hold exactly len(keys)+1 children.
type node[K cmp.Ordered, V any] struct {
	keys     []K
	values   []V
	children []*node[K, V]
	leaf     bool
}

// BTree is a balanced multiway search tree. order is the maximum child count
// of an internal node: nodes hold at most order-1 keys and non-root nodes at
// least order/2-1. Inserting an existing key overwrites its value in place.
//
// The tree exclusively owns its nodes; Range copies matching pairs out, so no
// caller holds references into the tree across mutation.
type BTree[K cmp.Ordered, V any] struct {
	root  *node[K, V]
	order int
	size  int
}

// New creates an empty tree. order must be at least 3: below that the
// minimum-fill formula order/2-1 degenerates to zero or negative.
func New[K cmp.Ordered, V any](order int) *BTree[K, V] {
	if order < 3 {
		panic(fmt.Sprintf("btree: order must be >= 3, got %d", order))
	}
	return &BTree[K, V]{order: order}
}

// Len returns the number of keys in the tree.
func (t *BTree[K, V]) Len() int {
	return t.size
}

func (t *BTree[K, V]) maxKeys() int { return t.order - 1 }
func (t *BTree[K, V]) minKeys() int { return t.order/2 - 1 }

// findKey returns the index of the first key >= k and whether it is an exact
// match.
func (n *node[K, V]) findKey(k K) (int, bool) {
	i := sort.Search(len(n.keys), func(i int) bool { return n.keys[i] >= k })
	return i, i < len(n.keys) && n.keys[i] == k
}

// Get returns the value stored under k.
func (t *BTree[K, V]) Get(k K) (V, bool) {
	n := t.root
	for n != nil {
		i, found := n.findKey(k)
		if found {
			return n.values[i], true
		}
		if n.leaf {
			break
		}
		n = n.children[i]
	}
	var zero V
	return zero, false
}

// Insert stores v under k, overwriting any existing value for k. A full root
// is split before descending, so the traversal below never needs to insert
// into a full node.
func (t *BTree[K, V]) Insert(k K, v V) {
	if t.root == nil {
		t.root = &node[K, V]{leaf: true}
	}
	if len(t.root.keys) == t.maxKeys() {
		old := t.root
		t.root = &node[K, V]{children: []*node[K, V]{old}}
		t.root.splitChild(0, t.order)
	}
	if t.insertNonFull(t.root, k, v) {
		t.size++
	}
}

// insertNonFull inserts into a subtree whose root is known to have spare
// capacity. It reports whether a new key was added (false on overwrite).
func (t *BTree[K, V]) insertNonFull(n *node[K, V], k K, v V) bool {
	i, found := n.findKey(k)
	if found {
		n.values[i] = v
		return false
	}
	if n.leaf {
		n.keys = insertAt(n.keys, i, k)
		n.values = insertAt(n.values, i, v)
		return true
	}
	if len(n.children[i].keys) == t.maxKeys() {
		n.splitChild(i, t.order)
		// The promoted median may itself be the key, or the key may now
		// belong in the right half.
		if k == n.keys[i] {
			n.values[i] = v
			return false
		}
		if k > n.keys[i] {
			i++
		}
	}
	return t.insertNonFull(n.children[i], k, v)
}

// splitChild splits the full child at index i around its median key, which
// is promoted into n.
func (n *node[K, V]) splitChild(i, order int) {
	child := n.children[i]
	mid := (order - 1) / 2
	right := &node[K, V]{leaf: child.leaf}
	right.keys = append(right.keys, child.keys[mid+1:]...)
	right.values = append(right.values, child.values[mid+1:]...)
	if !child.leaf {
		right.children = append(right.children, child.children[mid+1:]...)
		child.children = child.children[:mid+1]
	}
	midKey, midVal := child.keys[mid], child.values[mid]
	child.keys = child.keys[:mid]
	child.values = child.values[:mid]
	n.keys = insertAt(n.keys, i, midKey)
	n.values = insertAt(n.values, i, midVal)
	n.children = insertAt(n.children, i+1, right)
}

// Range returns every pair with lo <= key <= hi in ascending key order. The
// result is a copy: mutating the tree afterwards does not affect it.
func (t *BTree[K, V]) Range(lo, hi K) []Pair[K, V] {
	var out []Pair[K, V]
	t.root.rangeInto(lo, hi, &out)
	return out
}

// rangeInto walks the subtree in order, starting at the first key >= lo. It
// reports false once a key exceeds hi: everything to the right is larger, so
// the whole traversal stops.
func (n *node[K, V]) rangeInto(lo, hi K, out *[]Pair[K, V]) bool {
	if n == nil {
		return true
	}
	i, _ := n.findKey(lo)
	for ; i < len(n.keys); i++ {
		if !n.leaf {
			if !n.children[i].rangeInto(lo, hi, out) {
				return false
			}
		}
		if n.keys[i] > hi {
			return false
		}
		*out = append(*out, Pair[K, V]{Key: n.keys[i], Value: n.values[i]})
	}
	if !n.leaf {
		return n.children[len(n.keys)].rangeInto(lo, hi, out)
	}
	return true
}

// Remove deletes k and returns its value. Children are topped up (borrow or
// merge) before the traversal descends into them, so the recursion never
// enters a node at minimum fill; the root collapses into its sole child when
// it empties, which is how the tree shrinks in height.
func (t *BTree[K, V]) Remove(k K) (V, bool) {
	var zero V
	if t.root == nil {
		return zero, false
	}
	v, ok := t.remove(t.root, k)
	if len(t.root.keys) == 0 {
		if t.root.leaf {
			t.root = nil
		} else {
			t.root = t.root.children[0]
		}
	}
	if ok {
		t.size--
	}
	return v, ok
}

func (t *BTree[K, V]) remove(n *node[K, V], k K) (V, bool) {
	i, found := n.findKey(k)
	if n.leaf {
		if !found {
			var zero V
			return zero, false
		}
		out := n.values[i]
		n.keys = removeAt(n.keys, i)
		n.values = removeAt(n.values, i)
		return out, true
	}
	if found {
		// Replace the key with its predecessor or successor when a
		// neighboring child can spare one, else merge around it and recurse
		// into the merged child.
		left, right := n.children[i], n.children[i+1]
		switch {
		case len(left.keys) > t.minKeys():
			out := n.values[i]
			n.keys[i], n.values[i] = t.removeMax(left)
			return out, true
		case len(right.keys) > t.minKeys():
			out := n.values[i]
			n.keys[i], n.values[i] = t.removeMin(right)
			return out, true
		default:
			n.merge(i)
			return t.remove(left, k)
		}
	}
	if len(n.children[i].keys) <= t.minKeys() {
		n.fill(i, t)
		// fill may have shifted keys or merged children; re-resolve from n.
		return t.remove(n, k)
	}
	return t.remove(n.children[i], k)
}

// removeMax removes and returns the largest pair in the subtree, topping up
// each visited child on the way down.
func (t *BTree[K, V]) removeMax(n *node[K, V]) (K, V) {
	if n.leaf {
		i := len(n.keys) - 1
		k, v := n.keys[i], n.values[i]
		n.keys = n.keys[:i]
		n.values = n.values[:i]
		return k, v
	}
	i := len(n.children) - 1
	if len(n.children[i].keys) <= t.minKeys() {
		n.fill(i, t)
		return t.removeMax(n)
	}
	return t.removeMax(n.children[i])
}

// removeMin removes and returns the smallest pair in the subtree, topping up
// each visited child on the way down.
func (t *BTree[K, V]) removeMin(n *node[K, V]) (K, V) {
	if n.leaf {
		k, v := n.keys[0], n.values[0]
		n.keys = removeAt(n.keys, 0)
		n.values = removeAt(n.values, 0)
		return k, v
	}
	if len(n.children[0].keys) <= t.minKeys() {
		n.fill(0, t)
		return t.removeMin(n)
	}
	return t.removeMin(n.children[0])
}

// fill brings child i above the minimum key count, borrowing a key through
// the parent from a sibling with spare capacity, or merging with one.
func (n *node[K, V]) fill(i int, t *BTree[K, V]) {
	switch {
	case i > 0 && len(n.children[i-1].keys) > t.minKeys():
		n.borrowFromPrev(i)
	case i < len(n.children)-1 && len(n.children[i+1].keys) > t.minKeys():
		n.borrowFromNext(i)
	case i < len(n.children)-1:
		n.merge(i)
	default:
		n.merge(i - 1)
	}
}

// borrowFromPrev rotates the left sibling's largest key through the parent
// into child i.
func (n *node[K, V]) borrowFromPrev(i int) {
	child, prev := n.children[i], n.children[i-1]
	child.keys = insertAt(child.keys, 0, n.keys[i-1])
	child.values = insertAt(child.values, 0, n.values[i-1])
	last := len(prev.keys) - 1
	n.keys[i-1], n.values[i-1] = prev.keys[last], prev.values[last]
	prev.keys = prev.keys[:last]
	prev.values = prev.values[:last]
	if !prev.leaf {
		lc := len(prev.children) - 1
		child.children = insertAt(child.children, 0, prev.children[lc])
		prev.children = prev.children[:lc]
	}
}

// borrowFromNext rotates the right sibling's smallest key through the parent
// into child i.
func (n *node[K, V]) borrowFromNext(i int) {
	child, next := n.children[i], n.children[i+1]
	child.keys = append(child.keys, n.keys[i])
	child.values = append(child.values, n.values[i])
	n.keys[i], n.values[i] = next.keys[0], next.values[0]
	next.keys = removeAt(next.keys, 0)
	next.values = removeAt(next.values, 0)
	if !next.leaf {
		child.children = append(child.children, next.children[0])
		next.children = removeAt(next.children, 0)
	}
}

// merge folds key i and child i+1 into child i.
func (n *node[K, V]) merge(i int) {
	left, right := n.children[i], n.children[i+1]
	left.keys = append(left.keys, n.keys[i])
	left.values = append(left.values, n.values[i])
	left.keys = append(left.keys, right.keys...)
	left.values = append(left.values, right.values...)
	left.children = append(left.children, right.children...)
	n.keys = removeAt(n.keys, i)
	n.values = removeAt(n.values, i)
	n.children = removeAt(n.children, i+1)
}

// insertAt inserts v at index i, shifting subsequent elements forward.
func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// removeAt removes the element at index i, shifting subsequent elements back.
func removeAt[T any](s []T, i int) []T {
	copy(s[i:], s[i+1:])
	var zero T
	s[len(s)-1] = zero
	return s[:len(s)-1]
}
