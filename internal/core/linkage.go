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

// pendingNotice captures a subscription's value before a relink so the
// post-relink value can be compared against it, per spec.md §4.3
// "Re-link walk" -- a subscription whose value is unchanged after the
// move gets no notification at all.
type pendingNotice struct {
	sub     *Subscription
	oldVal  objects.Value
	oldKind objects.Kind
}

// Link establishes "dst reads from src" (spec.md §4.1). Every
// value-subscription currently resolved against dst's old value target
// (itself if unlinked, or the end of its prior origin chain) is moved to
// follow src instead, recursing into children paired by name. A dst
// that is already linked is unlinked first, but the notifications that
// would generate are deferred and compared against the post-link state
// so that re-linking to an equal value produces no spurious record.
func (t *Tree) Link(src, dst *Node, mode LinkMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if dst == nil || dst.isZombie() {
		return
	}
	oldTarget := followLocked(dst)

	if dst.origin != nil {
		t.detachOrigin(dst)
	}

	dst.origin = src
	if src != nil {
		src.targets = append(src.targets, dst)
	}
	switch mode {
	case LinkXrefed:
		if src != nil {
			src.xref++
			dst.flags |= NodeXrefedOriginator
		}
	case LinkXrefedIfOrphan:
		if src != nil && src.parent == nil {
			src.xref++
			dst.flags |= NodeXrefedOriginator
		}
	}

	newTarget := src
	if newTarget == nil {
		newTarget = dst
	}
	pending := t.relocateSubs(oldTarget, newTarget)
	t.flushPending(pending)
	t.relinkAncestors(dst, dst)
}

// Unlink restores dst's value-subscriptions to dst itself, breaking its
// origin (spec.md §4.1 unlink()).
func (t *Tree) Unlink(dst *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if dst == nil || dst.isZombie() || dst.origin == nil {
		return
	}
	pending := t.unlinkLocked(dst, false)
	t.flushPending(pending)
}

// unlinkLocked performs the structural half of unlink: breaking the
// origin pointer, unregistering from the old origin's targets list,
// unwinding any XREFED_ORIGINATOR anchor, and relocating subscriptions
// back onto dst. The returned pending notices are the same whatever
// defer_ is; every caller (Unlink, destroyLocked) flushes them itself.
func (t *Tree) unlinkLocked(dst *Node, defer_ bool) []pendingNotice {
	oldTarget := followLocked(dst)
	t.detachOrigin(dst)
	pending := t.relocateSubs(oldTarget, dst)
	if defer_ {
		return pending
	}
	return pending
}

// detachOrigin clears dst's origin pointer, removes dst from the old
// origin's reverse targets list, and unwinds an XREFED_ORIGINATOR anchor
// if one was established (spec.md §4.1 "xrefed ... so that destroying
// dst will decrement the anchor").
func (t *Tree) detachOrigin(dst *Node) {
	old := dst.origin
	if old == nil {
		return
	}
	dst.origin = nil
	for i, tgt := range old.targets {
		if tgt == dst {
			old.targets = append(old.targets[:i], old.targets[i+1:]...)
			break
		}
	}
	if dst.flags.has(NodeXrefedOriginator) {
		dst.flags &^= NodeXrefedOriginator
		old.xref--
		if old.xref <= 0 {
			t.destroyLocked(old)
		}
	}
}

// relocateSubs moves every value-subscription attached to oldTarget (and,
// recursively, to children of oldTarget paired by name with children of
// newTarget) so that it is attached to newTarget instead, without
// emitting any notification -- the caller compares the returned
// pendingNotice list against the post-move state and flushes only what
// actually changed.
func (t *Tree) relocateSubs(oldTarget, newTarget *Node) []pendingNotice {
	var pending []pendingNotice
	if oldTarget == nil || oldTarget == newTarget {
		return pending
	}
	moving := oldTarget.valueSubs
	oldTarget.valueSubs = nil
	for _, sub := range moving {
		pending = append(pending, pendingNotice{sub: sub, oldVal: oldTarget.value, oldKind: oldTarget.kind})
		sub.value = newTarget
		if newTarget != nil {
			newTarget.valueSubs = append(newTarget.valueSubs, sub)
		}
	}
	if newTarget != nil && newTarget.isDir() && oldTarget.isDir() {
		for _, oc := range oldTarget.children {
			if oc.name == "" {
				continue
			}
			if nc := newTarget.findChild(oc.name); nc != nil {
				pending = append(pending, t.relocateSubs(oc, nc)...)
			}
		}
	}
	return pending
}

// flushPending emits, for each captured subscription state, a synthetic
// void if the old value was a directory, then a value change record
// unless the old and new values now compare equal (spec.md §4.1
// "emit the minimal set of value notifications").
func (t *Tree) flushPending(pending []pendingNotice) {
	for _, p := range pending {
		if p.sub.isZombie() {
			continue
		}
		if p.oldKind == objects.KindDir {
			t.route(p.sub, EventSetVoid, p.sub.value, objects.VoidValue{})
		}
		newNode := p.sub.value
		if newNode == nil {
			continue
		}
		if p.oldKind == newNode.kind && p.oldVal != nil && newNode.value != nil && p.oldVal.Equal(newNode.value) {
			continue
		}
		t.route(p.sub, kindForNode(newNode), newNode, newNode.value)
	}
}

// relinkAncestors implements spec.md §4.1's upward walk: for each strict
// ancestor of changed, any node that symlinks to that ancestor mirrors
// the same subtree shape and must have its matching descendant
// re-synced against the now-current structure. noDescend prevents
// re-entering the subtree the walk emerged from.
func (t *Tree) relinkAncestors(changed *Node, noDescend *Node) {
	for anc := changed.parent; anc != nil; anc = anc.parent {
		for _, tgt := range anc.targets {
			if tgt == noDescend || tgt == nil {
				continue
			}
			pending := t.relocateSubs(tgt, anc)
			t.flushPending(pending)
			t.relinkAncestors(tgt, tgt)
		}
	}
}
