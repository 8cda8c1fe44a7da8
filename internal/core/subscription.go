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
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Taran2ul/proptree/internal/objects"
)

// SubscriptionID is the handle the public API hands out for a
// subscription: a 1-based index into the owning Tree's arena of
// *Subscription. Nodes and Records still hold *Subscription pointers
// directly; only Unsubscribe resolves by ID. Unsubscribe frees the slot,
// so a stale ID resolves to nil until a later Subscribe reuses that slot,
// after which it resolves to the new subscription.
type SubscriptionID uint64

// Trampoline normalizes a Record into one of the typed callback shapes
// spec.md §3 lists for a subscription (int, float, string, rstring,
// event, destroyed, set-through-pointer).
type Trampoline interface {
	deliver(rec *Record)
}

type intTrampoline struct{ fn func(v int64) }

func (t intTrampoline) deliver(rec *Record) {
	if iv, ok := rec.Value.(objects.IntValue); ok {
		t.fn(iv.V)
	} else if rec.Kind == EventSetVoid {
		t.fn(0)
	}
}

// IntCallback builds a Trampoline that reports the node's integer value.
func IntCallback(fn func(v int64)) Trampoline { return intTrampoline{fn} }

type floatTrampoline struct{ fn func(v float64) }

func (t floatTrampoline) deliver(rec *Record) {
	if fv, ok := rec.Value.(objects.FloatValue); ok {
		t.fn(fv.V)
	} else if rec.Kind == EventSetVoid {
		t.fn(0)
	}
}

// FloatCallback builds a Trampoline that reports the node's float value.
func FloatCallback(fn func(v float64)) Trampoline { return floatTrampoline{fn} }

type stringTrampoline struct{ fn func(s string) }

func (t stringTrampoline) deliver(rec *Record) {
	switch v := rec.Value.(type) {
	case objects.RStringValue:
		t.fn(v.S.Get())
	case objects.CStringValue:
		t.fn(v.S)
	case nil, objects.VoidValue:
		if rec.Kind == EventSetVoid {
			t.fn("")
		}
	}
}

// StringCallback builds a Trampoline that normalizes rstring/cstring
// payloads to a plain string.
func StringCallback(fn func(s string)) Trampoline { return stringTrampoline{fn} }

type rstringTrampoline struct{ fn func(s *objects.RString) }

func (t rstringTrampoline) deliver(rec *Record) {
	if v, ok := rec.Value.(objects.RStringValue); ok {
		t.fn(v.S)
	} else if rec.Kind == EventSetVoid {
		t.fn(nil)
	}
}

// RStringCallback builds a Trampoline that hands back the ref-counted
// string unchanged (no copy into a plain Go string).
func RStringCallback(fn func(s *objects.RString)) Trampoline { return rstringTrampoline{fn} }

type eventTrampoline struct {
	fn func(kind EventKind, rec *Record)
}

func (t eventTrampoline) deliver(rec *Record) { t.fn(rec.Kind, rec) }

// EventCallback builds a Trampoline that receives every Record verbatim,
// tagged with its EventKind -- used for directory/structural
// subscriptions (ADD_CHILD, MOVE_CHILD, SELECT_CHILD, ...).
func EventCallback(fn func(kind EventKind, rec *Record)) Trampoline {
	return eventTrampoline{fn}
}

type destroyedTrampoline struct{ fn func() }

func (t destroyedTrampoline) deliver(rec *Record) {
	if rec.Kind == EventDestroyed {
		t.fn()
	}
}

// DestroyedCallback builds a Trampoline that only ever fires once, on
// the subscription's TRACK_DESTROY record.
func DestroyedCallback(fn func()) Trampoline { return destroyedTrampoline{fn} }

type pointerTrampoline struct{ target *int64 }

func (t pointerTrampoline) deliver(rec *Record) {
	if iv, ok := rec.Value.(objects.IntValue); ok {
		atomic.StoreInt64(t.target, iv.V)
	}
}

// PointerCallback builds a set-through-pointer Trampoline: no callback
// function at all, just an integer slot the dispatcher stores into.
func PointerCallback(target *int64) Trampoline { return pointerTrampoline{target: target} }

// Subscription is a single observer registration (spec.md §3). All
// fields except refcount and zombie are tree-lock-protected.
type Subscription struct {
	id SubscriptionID

	// canonical is the address-of-record (pre-origin); value is where
	// the subscription currently reads from (post-origin). Either may
	// be nil.
	canonical *Node
	value     *Node

	flags        SubFlags
	courier      *Courier
	observerLock sync.Locker
	trampoline   Trampoline

	// callback/opaque dedupe SINGLETON subscriptions by identity, compared
	// as given (including nil): two SINGLETON subscribes for the same
	// callback that both pass no opaque of their own collide correctly
	// instead of each minting a distinct identity.
	callback uintptr
	opaque   any

	zombie int32

	// refcount is atomic: held by the canonical list, the value list,
	// and every in-flight Record that references this subscription.
	refcount int32
}

func (s *Subscription) isZombie() bool { return atomic.LoadInt32(&s.zombie) != 0 }

func (s *Subscription) zombify() { atomic.StoreInt32(&s.zombie, 1) }

func (s *Subscription) incRef() { atomic.AddInt32(&s.refcount, 1) }

func (s *Subscription) decRef() bool { return atomic.AddInt32(&s.refcount, -1) == 0 }

// SubscribeOptions is the variadic-tag-builder replacement DESIGN NOTES
// §9 calls for, grounded on api/chainbuilder.go's method-chained
// ChainBuilder construction style.
type SubscribeOptions struct {
	path         []string
	roots        []string
	flags        SubFlags
	courier      *Courier
	observerLock sync.Locker
	trampoline   Trampoline
	callback     uintptr
	opaque       any
}

// NewSubscribeOptions starts a builder for Tree.Subscribe.
func NewSubscribeOptions() *SubscribeOptions {
	return &SubscribeOptions{roots: []string{"global"}}
}

// Path sets the path from a dotted string ("a.b.c"); use Segments for
// pre-split segments.
func (o *SubscribeOptions) Path(path string) *SubscribeOptions {
	o.path = splitDotted(path)
	return o
}

func (o *SubscribeOptions) Segments(segs []string) *SubscribeOptions {
	o.path = segs
	return o
}

func (o *SubscribeOptions) Roots(roots ...string) *SubscribeOptions {
	o.roots = roots
	return o
}

func (o *SubscribeOptions) Flags(f SubFlags) *SubscribeOptions {
	o.flags = f
	return o
}

func (o *SubscribeOptions) Courier(c *Courier) *SubscribeOptions {
	o.courier = c
	return o
}

func (o *SubscribeOptions) ObserverLock(l sync.Locker) *SubscribeOptions {
	o.observerLock = l
	return o
}

func (o *SubscribeOptions) Trampoline(t Trampoline) *SubscribeOptions {
	o.trampoline = t
	return o
}

// Singleton marks the subscription SINGLETON and records the (callback,
// opaque) identity used for dedupe. callback should be a stable address
// for the call site (e.g. reflect.ValueOf(fn).Pointer()); opaque is
// compared as given, including nil -- two SINGLETON subscribes for the
// same callback that both pass no opaque of their own must collide, not
// each mint a distinct identity.
func (o *SubscribeOptions) Singleton(callback uintptr, opaque any) *SubscribeOptions {
	o.flags |= SubSingleton
	o.callback = callback
	o.opaque = opaque
	return o
}

func splitDotted(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
