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

// Record is the immutable notification spec.md §3 describes: a
// {sub, event_kind, payload} triple. Exactly one of Value/Child/Vector
// is meaningful, chosen by Kind. Modeled on internal/core/message.go's
// Message as the unit the dispatcher moves from mutation to callback.
type Record struct {
	handle uint64

	Sub      *Subscription
	Kind     EventKind
	Node     *Node // the referent: the value node the change is reported against
	Value    objects.Value
	Child    *Node // ADD_CHILD / DEL_CHILD / MOVE_CHILD / SELECT_CHILD
	Before   *Node
	Selected bool // set on an ADD_CHILD record when Child is the parent's selected child
	Vector   []childRecord
	Ext      any

	// Terminal marks a record that must be delivered even to an already-
	// zombified subscription, the same exemption EventDestroyed gets.
	// Set by routeTerminal for the destroy-time SET_VOID (spec.md §4.1
	// step 3), which is built and enqueued in the same tree-lock critical
	// section that zombifies the subscription -- without this exemption
	// a queued courier would drop it at drain time.
	Terminal bool
}

type childRecord struct {
	Child    *Node
	Selected bool
}

// route builds a Record for sub and either delivers it inline (DIRECT_UPDATE
// / INTERNAL) or enqueues it to sub's courier, per spec.md §4.3 "Direct vs
// queued". Must be called with the Tree's lock held.
func (t *Tree) route(sub *Subscription, kind EventKind, node *Node, value objects.Value) {
	if sub == nil || sub.isZombie() {
		return
	}
	if kind == EventSetVoid && sub.flags.has(SubIgnoreVoid) {
		return
	}
	rec := t.pool.get()
	rec.Sub = sub
	rec.Kind = kind
	rec.Node = node
	rec.Value = dupValue(value)
	sub.incRef()
	if node != nil {
		node.incRef()
	}
	t.deliverOrQueue(sub, rec)
}

// routeTerminal builds a Record the same way route does, but marks it
// Terminal so it still reaches the callback even if the caller
// zombifies sub immediately afterward, in the same critical section --
// used for the destroy-time SET_VOID delivered to value subscriptions
// (spec.md §4.1 step 3, scenario 5) so a queued courier doesn't drop it
// the way it would drop an ordinary route() record.
func (t *Tree) routeTerminal(sub *Subscription, kind EventKind, node *Node, value objects.Value) {
	if sub == nil {
		return
	}
	rec := t.pool.get()
	rec.Sub = sub
	rec.Kind = kind
	rec.Node = node
	rec.Value = dupValue(value)
	rec.Terminal = true
	sub.incRef()
	if node != nil {
		node.incRef()
	}
	t.deliverOrQueue(sub, rec)
}

// routeChild builds a structural (ADD_CHILD/DEL_CHILD/MOVE_CHILD/...) Record.
func (t *Tree) routeChild(sub *Subscription, kind EventKind, parent, child, before *Node, selected bool) {
	if sub == nil || sub.isZombie() {
		return
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
	t.deliverOrQueue(sub, rec)
}

// routeVector builds a single coalesced ADD_CHILD_VECTOR_DIRECT record
// carrying every existing child, used by Subscribe's initial snapshot
// when the subscription is direct and no child is selected (spec.md
// §4.2).
func (t *Tree) routeVector(sub *Subscription, parent *Node, kids []childRecord) {
	if sub == nil || sub.isZombie() {
		return
	}
	rec := t.pool.get()
	rec.Sub = sub
	rec.Kind = EventAddChildVectorDirect
	rec.Node = parent
	rec.Vector = kids
	sub.incRef()
	if parent != nil {
		parent.incRef()
	}
	for _, k := range kids {
		if k.Child != nil {
			k.Child.incRef()
		}
	}
	t.deliverOrQueue(sub, rec)
}

func (t *Tree) deliverOrQueue(sub *Subscription, rec *Record) {
	if sub.flags.has(SubDirectUpdate) || sub.flags.has(SubInternal) {
		t.invoke(sub, rec)
		return
	}
	c := sub.courier
	if c == nil {
		t.releaseRecord(rec)
		return
	}
	c.enqueue(rec, sub.flags.has(SubExpedite))
}

// invoke delivers rec synchronously for DIRECT_UPDATE/INTERNAL
// subscriptions (runs under the tree lock, spec.md §4.3). Couriers do
// not use it: their drain loop delivers through Courier.dispatchOne,
// which applies the same zombie check under the observer lock.
func (t *Tree) invoke(sub *Subscription, rec *Record) {
	// A DESTROYED record is built at the moment the subscription is
	// zombified and must still be delivered -- it is one of the records a
	// zombie subscription always lets through (spec.md §8 scenario 5);
	// the destroy-time terminal SET_VOID (Terminal) is the other.
	if sub.isZombie() && rec.Kind != EventDestroyed && !rec.Terminal {
		t.releaseRecord(rec)
		return
	}
	sub.trampoline.deliver(rec)
	t.releaseRecord(rec)
}

// releaseRecord drops the references a Record owns and returns it to
// the pool. Safe to call without the tree lock held; only touches
// atomic refcounts and the lock-free pool index.
func (t *Tree) releaseRecord(rec *Record) {
	if rec.Sub != nil {
		if rec.Sub.decRef() {
			// Arena slot cleanup happens in unsubscribe once both
			// lists have dropped it; nothing further to do here.
		}
	}
	if rec.Node != nil {
		rec.Node.decRef()
	}
	if rec.Child != nil {
		rec.Child.decRef()
	}
	releaseValue(rec.Value)
	for _, k := range rec.Vector {
		if k.Child != nil {
			k.Child.decRef()
		}
	}
	t.pool.put(rec)
}

func dupValue(v objects.Value) objects.Value {
	switch vv := v.(type) {
	case objects.RStringValue:
		return objects.RStringValue{S: vv.S.Dup()}
	case objects.LinkValue:
		return objects.LinkValue{Title: vv.Title.Dup(), URL: vv.URL.Dup()}
	default:
		return v
	}
}

func releaseValue(v objects.Value) {
	switch vv := v.(type) {
	case objects.RStringValue:
		vv.S.Release()
	case objects.LinkValue:
		vv.Release()
	}
}

// emitValueChange fans a value change on p out to p's value-subscriptions
// and, if p sits under a MULTI_SUB ancestor, to that ancestor's MULTI
// subscribers (spec.md §4.3 "Value fan-out"). Must run with the tree
// lock held. skip, if non-nil, is the subscription the mutator itself
// owns and should not be notified of its own write.
func (t *Tree) emitValueChange(p *Node, skip *Subscription) {
	for _, sub := range p.valueSubs {
		if sub == skip {
			continue
		}
		t.route(sub, kindForNode(p), p, p.value)
	}
	if p.flags.has(NodeMultiNotify) {
		for anc := p.parent; anc != nil; anc = anc.parent {
			if !anc.flags.has(NodeMultiSub) {
				continue
			}
			for _, sub := range anc.valueSubs {
				if !sub.flags.has(SubMulti) || sub == skip {
					continue
				}
				t.route(sub, kindForNode(anc), anc, anc.value)
			}
		}
	}
}

// kindForNode picks the event kind a value-change record against p
// should carry, special-casing directories (whose "value" is nil --
// children live on the node, not in a Value payload) ahead of the
// scalar dispatch in kindForValue.
func kindForNode(p *Node) EventKind {
	if p.kind == objects.KindDir {
		return EventSetDir
	}
	return kindForValue(p.value)
}

func kindForValue(v objects.Value) EventKind {
	switch v.(type) {
	case objects.IntValue:
		return EventSetInt
	case objects.FloatValue:
		return EventSetFloat
	case objects.RStringValue:
		return EventSetRString
	case objects.CStringValue:
		return EventSetCString
	case objects.LinkValue:
		return EventSetLink
	default:
		return EventSetVoid
	}
}
