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

// Insert places child at the given position under parent (tail if
// before is nil), per spec.md §4.1 "Directory mutations". If child is
// already parented elsewhere it is detached first; no DEL_CHILD is
// emitted against its old parent, whose subscribers are not told the
// child left.
func (t *Tree) Insert(child, parent, before *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if child == nil || parent == nil || parent.isZombie() {
		return
	}
	if !t.ensureDir(parent) {
		return
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	parent.insertChildBefore(child, before)
	t.routeAddChild(parent, child, before)
}

// Move repositions p within its current parent's child list. A no-op if
// p is already immediately before "before", or if before == p (spec.md
// §4.1).
func (t *Tree) Move(p, before *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.parent == nil || before == p {
		return
	}
	parent := p.parent
	idx := parent.indexOf(p)
	if idx < 0 {
		return
	}
	if before != nil {
		bi := parent.indexOf(before)
		if bi < 0 {
			return
		}
		if bi == idx+1 {
			return // already immediately before `before`
		}
	} else if idx == len(parent.children)-1 {
		return // already at the tail
	}
	parent.removeChild(p)
	parent.insertChildBefore(p, before)
	for _, sub := range parent.valueSubs {
		t.routeChild(sub, EventMoveChild, parent, p, before, parent.selected == p)
	}
}

// RequestMove emits a move request without actually moving p (spec.md
// §4.1: "emits a request record but does not move the child itself").
func (t *Tree) RequestMove(p, before *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.parent == nil {
		return
	}
	parent := p.parent
	for _, sub := range parent.valueSubs {
		t.routeChild(sub, EventReqMoveChild, parent, p, before, false)
	}
}

// Select marks p as its parent's selected child and emits SELECT_CHILD;
// extra is opaque context passed through to observers unchanged.
func (t *Tree) Select(p *Node, extra any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.parent == nil {
		return
	}
	parent := p.parent
	parent.selected = p
	for _, sub := range parent.valueSubs {
		rec := t.newChildRecord(sub, EventSelectChild, parent, p, nil, true)
		if rec == nil {
			continue
		}
		rec.Ext = extra
		t.deliverOrQueue(sub, rec)
	}
}

// Unselect clears parent's selected child and emits SELECT_CHILD(nil).
func (t *Tree) Unselect(parent *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if parent == nil {
		return
	}
	parent.selected = nil
	for _, sub := range parent.valueSubs {
		t.routeChild(sub, EventSelectChild, parent, nil, nil, false)
	}
}

// newChildRecord is routeChild's body split out so Select can attach Ext
// before delivery; routeChild itself covers the common case.
func (t *Tree) newChildRecord(sub *Subscription, kind EventKind, parent, child, before *Node, selected bool) *Record {
	if sub == nil || sub.isZombie() {
		return nil
	}
	rec := t.pool.get()
	rec.Sub = sub
	rec.Kind = kind
	rec.Node = parent
	rec.Child = child
	rec.Before = before
	rec.Selected = selected
	sub.incRef()
	if parent != nil {
		parent.incRef()
	}
	if child != nil {
		child.incRef()
	}
	return rec
}

// RequestNewChild emits a creation request to parent's subscribers
// without creating anything (spec.md §6 request_new_child).
func (t *Tree) RequestNewChild(parent *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if parent == nil {
		return
	}
	for _, sub := range parent.valueSubs {
		t.routeChild(sub, EventReqNewChild, parent, nil, nil, false)
	}
}

// RequestDelete emits a deletion request for p to its parent's
// subscribers without destroying p.
func (t *Tree) RequestDelete(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.parent == nil {
		return
	}
	parent := p.parent
	for _, sub := range parent.valueSubs {
		t.routeChild(sub, EventReqDeleteVector, parent, p, nil, false)
	}
}

// SuggestFocus emits a focus hint to p's own value subscribers.
func (t *Tree) SuggestFocus(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return
	}
	for _, sub := range p.valueSubs {
		t.route(sub, EventSuggestFocus, p, p.value)
	}
}

// WantMoreChilds signals that a consumer of p's child list wants more
// children materialized (pagination request, spec.md §6).
func (t *Tree) WantMoreChilds(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return
	}
	for _, sub := range p.valueSubs {
		t.route(sub, EventWantMoreChilds, p, objects.VoidValue{})
	}
}

// HaveMoreChilds informs subscribers whether more children remain
// available beyond what has been materialized.
func (t *Tree) HaveMoreChilds(p *Node, have bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return
	}
	v := int64(0)
	if have {
		v = 1
	}
	for _, sub := range p.valueSubs {
		t.route(sub, EventHaveMoreChilds, p, objects.IntValue{V: v})
	}
}

// SendExtEvent walks to p's origin before fan-out (spec.md §6), so an
// event sent against a symlink is delivered through whoever actually
// resolved the link, exactly like a value change would be.
func (t *Tree) SendExtEvent(p *Node, payload any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		return
	}
	target := followLocked(p)
	for _, sub := range target.valueSubs {
		if sub.isZombie() {
			continue
		}
		rec := t.pool.get()
		rec.Sub = sub
		rec.Kind = EventExtEvent
		rec.Node = target
		rec.Ext = payload
		sub.incRef()
		target.incRef()
		t.deliverOrQueue(sub, rec)
	}
}
