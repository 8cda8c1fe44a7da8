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

import "github.com/Taran2ul/proptree/internal/objects"

// Destroy decrements p's xref anchor count; reaching zero begins
// destruction (spec.md §4.1 "Destruction"). A no-op on an already-zombie
// node.
func (t *Tree) Destroy(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.isZombie() {
		return
	}
	p.xref--
	if p.xref > 0 {
		return
	}
	t.destroyLocked(p)
}

// destroyLocked runs the six-step teardown spec.md §4.1 describes:
// children first (unconditionally, the parent going away anchors them
// no further), then subscription teardown, then unlinking anyone who
// symlinks to p, then unwinding p's own origin anchor, then detaching
// p from its parent. Subscription teardown runs value subscriptions
// (SET_VOID) ahead of canonical subscriptions (detach + DESTROYED):
// for a leaf subscription the two lists share the same
// *Subscription, and running value-first is what makes "SET_VOID then
// DESTROYED" observable (spec.md §8 scenario 5) instead of losing the
// SET_VOID to a subscription the canonical pass already zombified.
// Must be called with the tree lock held.
func (t *Tree) destroyLocked(p *Node) {
	if p.isZombie() {
		return
	}

	for len(p.children) > 0 {
		t.destroyLocked(p.children[0])
	}

	// Value subscriptions see their terminal SET_VOID before canonical
	// subscriptions are zombified and handed DESTROYED -- for a leaf
	// subscription (canonical == value, the common case) both loops
	// touch the same *Subscription, and ordering this pass first is
	// what makes "SET_VOID then DESTROYED" observable (spec.md §8
	// scenario 5) rather than losing the SET_VOID to an
	// already-zombified subscription. routeTerminal (not route) is what
	// makes that hold for a queued courier too: the canonical pass right
	// below zombifies this same *Subscription before the courier ever
	// drains the record, so the record itself has to carry the
	// must-deliver marker rather than relying on delivery happening
	// before zombification.
	for _, sub := range p.valueSubs {
		sub.value = nil
		t.routeTerminal(sub, EventSetVoid, nil, objects.VoidValue{})
	}
	p.valueSubs = nil

	for _, sub := range p.canonicalSubs {
		sub.canonical = nil
		sub.zombify()
		if sub.flags.has(SubTrackDestroy) || sub.flags.has(SubTrackDestroyExp) {
			rec := t.pool.get()
			rec.Sub = sub
			rec.Kind = EventDestroyed
			sub.incRef()
			if sub.flags.has(SubTrackDestroyExp) {
				if c := sub.courier; c != nil {
					c.enqueue(rec, true)
					continue
				}
			}
			t.deliverOrQueue(sub, rec)
		}
	}
	p.canonicalSubs = nil

	targets := append([]*Node(nil), p.targets...)
	for _, tgt := range targets {
		pending := t.unlinkLocked(tgt, false)
		t.flushPending(pending)
	}

	if p.origin != nil {
		t.detachOrigin(p)
	}

	if parent := p.parent; parent != nil {
		parent.removeChild(p)
		for _, sub := range parent.valueSubs {
			t.routeChild(sub, EventDelChild, parent, p, nil, false)
		}
	}

	p.releaseValue()
	p.kind = objects.KindZombie
	p.parent = nil
	if p.decRef() {
		// storage is eligible for GC once every in-flight Record
		// referencing p has also released its hold.
	}
}

// DestroyChilds destroys every child of p.
func (t *Tree) DestroyChilds(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return
	}
	for len(p.children) > 0 {
		t.destroyLocked(p.children[0])
	}
}

// DestroyByName destroys the child of p with the given name, or every
// unnamed child if name == "" (spec.md §4.1 destroy_by_name).
func (t *Tree) DestroyByName(p *Node, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return
	}
	if name != "" {
		if c := p.findChild(name); c != nil {
			t.destroyLocked(c)
		}
		return
	}
	for i := 0; i < len(p.children); {
		if p.children[i].name == "" {
			t.destroyLocked(p.children[i])
			continue
		}
		i++
	}
}

// DestroyFirst destroys p's first child, if any.
func (t *Tree) DestroyFirst(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || len(p.children) == 0 {
		return
	}
	t.destroyLocked(p.children[0])
}

// DestroyMarkedChilds destroys every child of p carrying the MARKED
// flag, for use after MarkChilds (spec.md §4.1).
func (t *Tree) DestroyMarkedChilds(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return
	}
	for i := 0; i < len(p.children); {
		if p.children[i].flags.has(NodeMarked) {
			t.destroyLocked(p.children[i])
			continue
		}
		i++
	}
}
