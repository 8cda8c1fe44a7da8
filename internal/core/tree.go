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

// Package core implements the reactive property tree: the node store,
// subscription registry, notification engine and courier described by
// spec.md. It is grounded on _examples/6Sack-bw2/internal/core's
// Terminus (a lock-protected tree of subscriptions fanned out to
// per-client queues), generalized from a topic trie into a general
// mutable property tree.
package core

import (
	"strconv"
	"sync"

	"github.com/Taran2ul/proptree/internal/objects"
)

// Tree owns the entire node store and subscription registry under a
// single global lock, exactly as spec.md §5 specifies. Grounded on
// terminus.go's Terminus (q_lock sync.RWMutex, cmap, stree) -- Tree uses
// a plain Mutex rather than Terminus's RWMutex because spec.md's lock
// ordering rule (release the tree lock before taking an observer lock,
// never the reverse) needs a single owner, not reader/writer fan-out.
type Tree struct {
	mu sync.Mutex

	roots map[string]*Node

	pool *recordPool

	subs     []*Subscription
	subFree  []SubscriptionID
}

// NewTree constructs an empty property tree with a "global" root
// already created, mirroring spec.md §4.1's "the literal root 'global'".
func NewTree() *Tree {
	t := &Tree{
		roots: make(map[string]*Node),
		pool:  newRecordPool(),
	}
	t.roots["global"] = newNode("", false)
	t.roots["global"].kind = objects.KindDir
	return t
}

// CreateRoot registers and returns a new named root, usable as a
// resolution root alongside "global" (spec.md §4.1 "Addressing").
func (t *Tree) CreateRoot(name string) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.roots[name]; ok {
		return n
	}
	n := newNode("", false)
	n.kind = objects.KindDir
	n.xref = 1
	t.roots[name] = n
	return n
}

// Root returns a previously created named root, or nil.
func (t *Tree) Root(name string) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.roots[name]
}

// ensureDir converts p in place to a directory if it is currently void,
// emitting SET_DIR to its subscribers (spec.md §4.1 "Lazy directories").
// Any other non-dir, non-void kind aborts traversal per spec and is
// reported via the ok return. Must be called with the tree lock held.
func (t *Tree) ensureDir(p *Node) (ok bool) {
	if p.kind == objects.KindDir {
		return true
	}
	if p.kind != objects.KindVoid {
		return false
	}
	p.releaseValue()
	p.kind = objects.KindDir
	p.value = nil
	t.emitValueChange(p, nil)
	return true
}

// Create is idempotent on name: an existing same-named child is
// returned unchanged, otherwise a new void child is appended (spec.md
// §4.1 "Creation"). parent is converted to a directory first if it is
// void. Newly created children inherit MULTI_NOTIFY from the parent.
func (t *Tree) Create(parent *Node, name string) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createLocked(parent, name)
}

func (t *Tree) createLocked(parent *Node, name string) *Node {
	if parent == nil || parent.isZombie() {
		return nil
	}
	if !t.ensureDir(parent) {
		return nil
	}
	if name != "" {
		if existing := parent.findChild(name); existing != nil {
			return existing
		}
	}
	child := newNode(intern(name), name != "")
	if parent.flags.has(NodeMultiSub) || parent.flags.has(NodeMultiNotify) {
		child.flags |= NodeMultiNotify
	}
	parent.appendChild(child)
	child.xref = 1
	t.routeAddChild(parent, child, nil)
	return child
}

func (t *Tree) routeAddChild(parent, child, before *Node) {
	selected := parent.selected == child
	kind := EventAddChild
	if before != nil {
		kind = EventAddChildBefore
	}
	for _, sub := range parent.valueSubs {
		t.routeChild(sub, kind, parent, child, before, selected)
	}
}

// GetName returns p's name, or "" for an unnamed node.
func (t *Tree) GetName(p *Node) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return ""
	}
	return p.name
}

// GetNameOfChilds returns the ordered names of p's children (empty
// string for unnamed children).
func (t *Tree) GetNameOfChilds(p *Node) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return nil
	}
	names := make([]string, len(p.children))
	for i, c := range p.children {
		names[i] = c.name
	}
	return names
}

// Children returns a snapshot of p's direct children in order.
func (t *Tree) Children(p *Node) []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return nil
	}
	out := make([]*Node, len(p.children))
	copy(out, p.children)
	return out
}

// IsMarked reports whether p carries the user-space MARKED flag.
func (t *Tree) IsMarked(p *Node) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return false
	}
	return p.flags.has(NodeMarked)
}

// MarkChilds sets the MARKED flag on every existing child of p, for use
// with a later DestroyMarkedChilds bulk delete.
func (t *Tree) MarkChilds(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return
	}
	for _, c := range p.children {
		c.flags |= NodeMarked
	}
}

// Unmark clears p's own MARKED flag.
func (t *Tree) Unmark(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return
	}
	p.flags &^= NodeMarked
}

// GetString returns the current value of p coerced to a string, or ""
// for void/nil/non-scalar nodes. Convenience introspection helper;
// matches spec.md §6's get_string.
func (t *Tree) GetString(p *Node) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return ""
	}
	switch v := p.value.(type) {
	case objects.RStringValue:
		return v.S.Get()
	case objects.CStringValue:
		return v.S
	case objects.IntValue:
		return strconv.FormatInt(v.V, 10)
	case objects.FloatValue:
		return strconv.FormatFloat(v.V, 'g', -1, 64)
	case objects.LinkValue:
		return v.Title.Get()
	}
	return ""
}

// Follow resolves p's origin chain to the terminal value node (spec.md
// GLOSSARY "Canonical vs value node"). Returns p itself if it has no
// origin.
func (t *Tree) Follow(p *Node) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return followLocked(p)
}

func followLocked(p *Node) *Node {
	seen := map[*Node]bool{}
	for p != nil && p.origin != nil && !seen[p] {
		seen[p] = true
		p = p.origin
	}
	return p
}

// Compare reports whether a and b currently carry equal values, using
// the same Value.Equal comparison link/unlink's spurious-notification
// suppression applies in flushPending (spec.md §4.1).
func (t *Tree) Compare(a, b *Node) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return valuesEqual(a, b)
}

func valuesEqual(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	if a.value == nil || b.value == nil {
		return a.value == nil && b.value == nil
	}
	return a.value.Equal(b.value)
}
