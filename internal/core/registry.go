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

// Subscribe resolves opts' path (without creating any node -- a
// subscription to a path that doesn't exist yet simply resolves to a
// null canonical/value pair, spec.md §4.2; void nodes along the path are
// still converted to directories, as in resolve), installs the subscription
// on the resolved nodes' lists, propagates MONITORED/MULTI_SUB, and
// delivers the initial snapshot unless NO_INITIAL_UPDATE is set. Returns
// the zero SubscriptionID and false if a SINGLETON dedupe hit occurs.
func (t *Tree) Subscribe(opts *SubscribeOptions) (SubscriptionID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var canonical, value *Node
	if len(opts.path) == 0 {
		if len(opts.roots) > 0 {
			canonical = t.roots[opts.roots[0]]
			value = canonical
		}
	} else {
		var root *Node
		for _, rn := range opts.roots {
			if r := t.roots[rn]; r != nil {
				root = r
				break
			}
		}
		if root == nil {
			root = t.roots["global"]
		}
		p := t.resolve(root, opts.path, false)
		if p != nil {
			canonical = p
			value = followLocked(p)
		}
	}

	if canonical != nil && canonical.isZombie() {
		canonical = nil
	}
	if value != nil && value.isZombie() {
		value = nil
	}

	if opts.flags.has(SubSingleton) && value != nil {
		for _, s := range value.valueSubs {
			if s.callback == opts.callback && s.opaque == opts.opaque {
				return 0, false
			}
		}
	}

	sub := &Subscription{
		canonical:    canonical,
		value:        value,
		flags:        opts.flags,
		courier:      opts.courier,
		observerLock: opts.observerLock,
		trampoline:   opts.trampoline,
		callback:     opts.callback,
		opaque:       opts.opaque,
		refcount:     1,
	}
	sub.id = t.allocSub(sub)
	if opts.courier != nil {
		opts.courier.attachSub()
	}

	direct := sub.flags.has(SubDirectUpdate) || sub.flags.has(SubInternal)
	notifyNow := !sub.flags.has(SubNoInitialUpdate)
	activateOnCanonical := false

	if canonical != nil {
		canonical.canonicalSubs = append(canonical.canonicalSubs, sub)

		if sub.flags.has(SubSubscriptionMonitor) && !canonical.flags.has(NodeMonitored) {
			canonical.flags |= NodeMonitored
			for _, t2 := range canonical.valueSubs {
				if !t2.flags.has(SubSubscriptionMonitor) {
					activateOnCanonical = true
					break
				}
			}
		}
		if sub.flags.has(SubMulti) {
			canonical.flags |= NodeMultiSub
			floodMultiNotify(canonical)
		}
	}

	if value != nil {
		value.valueSubs = append(value.valueSubs, sub)

		if notifyNow {
			t.route(sub, kindForNode(value), value, value.value)
			if value.isDir() && !sub.flags.has(SubMulti) {
				if value.selected == nil && direct {
					kids := make([]childRecord, len(value.children))
					for i, c := range value.children {
						kids[i] = childRecord{Child: c, Selected: false}
					}
					t.routeVector(sub, value, kids)
				} else {
					for _, c := range value.children {
						t.routeChild(sub, EventAddChild, value, c, nil, value.selected == c)
					}
				}
			}
		}

		if !sub.flags.has(SubSubscriptionMonitor) && value.flags.has(NodeMonitored) {
			t.sendSubscriptionMonitorActive(value)
		}
	}

	if activateOnCanonical {
		t.sendSubscriptionMonitorActive(canonical)
	}

	if canonical == nil && (sub.flags.has(SubTrackDestroy) || sub.flags.has(SubTrackDestroyExp)) {
		rec := t.pool.get()
		rec.Sub = sub
		rec.Kind = EventDestroyed
		sub.incRef()
		sub.zombify()
		t.deliverOrQueue(sub, rec)
	}

	return sub.id, true
}

// floodMultiNotify sets MULTI_NOTIFY on every node in p's subtree,
// spec.md §3 invariant "MULTI_NOTIFY holds on a node iff some strict
// ancestor has MULTI_SUB set".
func floodMultiNotify(p *Node) {
	for _, c := range p.children {
		c.flags |= NodeMultiNotify
		if c.isDir() {
			floodMultiNotify(c)
		}
	}
}

// unfloodMultiNotify is floodMultiNotify's mirror, called once p's own
// NodeMultiSub has just been cleared and no strict ancestor of p still
// carries it. It stops descending beneath any node that carries its own
// NodeMultiSub -- that node's flood still owns its descendants'
// MULTI_NOTIFY regardless of what happens at p.
func unfloodMultiNotify(p *Node) {
	for _, c := range p.children {
		c.flags &^= NodeMultiNotify
		if c.isDir() && !c.flags.has(NodeMultiSub) {
			unfloodMultiNotify(c)
		}
	}
}

// ancestorHasMultiSub reports whether a strict ancestor of p still
// carries NodeMultiSub, in which case p's subtree's MULTI_NOTIFY flags
// must stay set regardless of p's own MULTI_SUB state (spec.md §3
// invariant "MULTI_NOTIFY holds on a node iff some strict ancestor has
// MULTI_SUB set").
func ancestorHasMultiSub(p *Node) bool {
	for a := p.parent; a != nil; a = a.parent {
		if a.flags.has(NodeMultiSub) {
			return true
		}
	}
	return false
}

func (t *Tree) sendSubscriptionMonitorActive(p *Node) {
	for _, sub := range p.valueSubs {
		if sub.flags.has(SubSubscriptionMonitor) {
			continue
		}
		t.route(sub, EventSubscriptionMonitorActive, p, p.value)
	}
}

// allocSub installs sub into the arena, reusing a freed slot if one is
// available (DESIGN NOTES §9's SubscriptionID arena: IDs, not raw
// pointers, cross the public API boundary).
func (t *Tree) allocSub(sub *Subscription) SubscriptionID {
	if n := len(t.subFree); n > 0 {
		id := t.subFree[n-1]
		t.subFree = t.subFree[:n-1]
		t.subs[id-1] = sub
		return id
	}
	t.subs = append(t.subs, sub)
	return SubscriptionID(len(t.subs))
}

// resolveSub looks up an arena slot by ID, or nil if it has been freed.
func (t *Tree) resolveSub(id SubscriptionID) *Subscription {
	if id == 0 || int(id) > len(t.subs) {
		return nil
	}
	return t.subs[id-1]
}

// Unsubscribe detaches the subscription from both its canonical and
// value lists, recomputes MONITORED/MULTI_SUB from the remaining
// subscribers, decrements the courier's attached count, and zombifies
// the subscription (spec.md §4.2 "Unsubscribe"). In-flight Records
// referring to it are dropped harmlessly at dispatch time.
func (t *Tree) Unsubscribe(id SubscriptionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sub := t.resolveSub(id)
	if sub == nil || sub.isZombie() {
		return
	}
	sub.zombify()

	if sub.canonical != nil {
		sub.canonical.canonicalSubs = removeSub(sub.canonical.canonicalSubs, sub)
		recomputeMonitored(sub.canonical)
		recomputeMultiSub(sub.canonical)
		sub.canonical = nil
	}
	if sub.value != nil {
		sub.value.valueSubs = removeSub(sub.value.valueSubs, sub)
		recomputeMonitored(sub.value)
		sub.value = nil
	}
	if sub.courier != nil {
		sub.courier.detachSub()
	}

	t.subs[id-1] = nil
	t.subFree = append(t.subFree, id)
}

// removeSub returns list with target deleted by identity, preserving order.
func removeSub(list []*Subscription, target *Subscription) []*Subscription {
	for i, s := range list {
		if s == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func recomputeMonitored(p *Node) {
	for _, s := range p.canonicalSubs {
		if s.flags.has(SubSubscriptionMonitor) {
			return
		}
	}
	p.flags &^= NodeMonitored
}

func recomputeMultiSub(p *Node) {
	for _, s := range p.canonicalSubs {
		if s.flags.has(SubMulti) {
			return
		}
	}
	p.flags &^= NodeMultiSub
	if !ancestorHasMultiSub(p) {
		unfloodMultiNotify(p)
	}
}
