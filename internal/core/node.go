// This file is part of BOSSWAVE.
//
// BOSSWAVE is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// BOSSWAVE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with BOSSWAVE.  If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"sync/atomic"

	"github.com/Taran2ul/proptree/internal/objects"
)

// Node is a single addressable cell in the property tree (spec.md §3).
// Every field below except refcount is protected by the owning Tree's
// mu; refcount is atomic because it is touched by couriers releasing
// in-flight Records after the tree lock has already been dropped.
type Node struct {
	name          string
	nameAllocated bool

	kind  objects.Kind
	value objects.Value

	children []*Node
	selected *Node

	parent *Node
	origin *Node
	// targets is the reverse of origin: every node whose origin points
	// here, i.e. every node that reads from us.
	targets []*Node

	flags NodeFlags

	// clip is the numeric clamp configured for this node (spec.md §3
	// "Numeric attributes"), independent of which scalar kind currently
	// occupies value -- a clip range set before any numeric value exists
	// still takes effect on the first SetInt/SetFloat.
	clip objects.ClipRange

	// xref is the tree-lock-protected anchor count. Reaching zero starts
	// destruction (spec.md §3 "Reference counts").
	xref int

	// refcount is atomic: external handles plus every in-flight Record
	// that references this node.
	refcount int32

	canonicalSubs []*Subscription
	valueSubs     []*Subscription
}

func newNode(name string, nameAllocated bool) *Node {
	return &Node{
		name:          name,
		nameAllocated: nameAllocated,
		kind:          objects.KindVoid,
		value:         objects.VoidValue{},
		refcount:      1,
	}
}

func (n *Node) isZombie() bool { return n.kind == objects.KindZombie }
func (n *Node) isDir() bool    { return n.kind == objects.KindDir }

// incRef/decRef manage the atomic finalization refcount. decRef returns
// true when the count reached zero, at which point the node's storage
// may be released if it is already a zombie (spec.md invariant 4/5:
// "A node reaches refcount == 0 only after kind == zombie").
func (n *Node) incRef() {
	atomic.AddInt32(&n.refcount, 1)
}

func (n *Node) decRef() bool {
	return atomic.AddInt32(&n.refcount, -1) == 0
}

// findChild returns the existing child with the given name, or nil.
func (n *Node) findChild(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// findChildAt returns the Nth child by position (the "*N" path segment
// from spec.md §4.1), or nil if out of range.
func (n *Node) findChildAt(idx int) *Node {
	if idx < 0 || idx >= len(n.children) {
		return nil
	}
	return n.children[idx]
}

// appendChild places c at the tail of n's child list and sets c.parent.
func (n *Node) appendChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
}

// removeChild deletes c from n's child list by identity. Returns the
// index it occupied, or -1 if not found.
func (n *Node) removeChild(c *Node) int {
	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			if n.selected == c {
				n.selected = nil
			}
			return i
		}
	}
	return -1
}

// insertChildBefore places c immediately before "before" in n's child
// list, or at the tail if before is nil (spec.md §4.1 insert()).
func (n *Node) insertChildBefore(c *Node, before *Node) {
	c.parent = n
	if before == nil {
		n.children = append(n.children, c)
		return
	}
	for i, ch := range n.children {
		if ch == before {
			n.children = append(n.children, nil)
			copy(n.children[i+1:], n.children[i:])
			n.children[i] = c
			return
		}
	}
	n.children = append(n.children, c)
}

// indexOf returns c's position in n's child list, or -1.
func (n *Node) indexOf(c *Node) int {
	for i, ch := range n.children {
		if ch == c {
			return i
		}
	}
	return -1
}

// releaseValue drops any references the current variant owns before the
// variant is switched or the node is destroyed.
func (n *Node) releaseValue() {
	switch v := n.value.(type) {
	case objects.RStringValue:
		v.S.Release()
	case objects.LinkValue:
		v.Release()
	}
	n.value = nil
}

