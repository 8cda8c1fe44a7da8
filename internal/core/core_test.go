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
	"testing"

	"github.com/Taran2ul/proptree/internal/objects"
)

// TestInitialSnapshot covers spec.md §8 scenario 1: subscribing to a
// path carrying an int already delivers one callback with that value.
func TestInitialSnapshot(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	a := tr.Create(root, "a")
	tr.SetInt(a, 7)

	var got []int64
	opts := NewSubscribeOptions().
		Path("a").
		Flags(SubDirectUpdate).
		Trampoline(IntCallback(func(v int64) { got = append(got, v) }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("got %v, want [7]", got)
	}
}

// TestIdempotentStringNoInitialUpdate covers scenario 2: a fresh
// subscription with NO_INITIAL_UPDATE sees zero callbacks, and a
// repeated identical set emits nothing either.
func TestIdempotentStringNoInitialUpdate(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	a := tr.Create(root, "a")
	tr.SetString(a, "x")
	tr.SetString(a, "x")

	var calls int
	opts := NewSubscribeOptions().
		Path("a").
		Flags(SubDirectUpdate | SubNoInitialUpdate).
		Trampoline(StringCallback(func(s string) { calls++ }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}
	if calls != 0 {
		t.Fatalf("expected 0 calls, got %d", calls)
	}

	tr.SetString(a, "x")
	if calls != 0 {
		t.Fatalf("idempotent set notified: %d calls", calls)
	}
	tr.SetString(a, "y")
	if calls != 1 {
		t.Fatalf("expected 1 call after real change, got %d", calls)
	}
}

// TestDirectoryChildrenWithSelection covers scenario 3: SET_DIR then
// one ADD_CHILD per existing child, with the selected child flagged.
func TestDirectoryChildrenWithSelection(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	b := tr.Create(root, "b")
	c := tr.Create(root, "c")
	tr.Create(root, "d")
	tr.Select(c, nil)

	type seen struct {
		kind     EventKind
		child    *Node
		selected bool
	}
	var records []seen
	opts := NewSubscribeOptions().
		Segments(nil).
		Flags(SubDirectUpdate).
		Trampoline(EventCallback(func(kind EventKind, rec *Record) {
			records = append(records, seen{kind, rec.Child, rec.Selected})
		}))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}

	if len(records) != 4 {
		t.Fatalf("expected SET_DIR + 3 ADD_CHILD, got %d records: %+v", len(records), records)
	}
	if records[0].kind != EventSetDir {
		t.Fatalf("first record = %v, want SET_DIR", records[0].kind)
	}
	for i, want := range []*Node{b, c, nil} {
		rec := records[i+1]
		if rec.kind != EventAddChild {
			t.Fatalf("record %d kind = %v, want ADD_CHILD", i+1, rec.kind)
		}
		if want != nil && rec.child != want {
			t.Fatalf("record %d child mismatch", i+1)
		}
	}
	if !records[2].selected {
		t.Fatal("record for c should carry Selected = true")
	}
	if records[1].selected || records[3].selected {
		t.Fatal("only c's record should carry Selected")
	}
}

// TestLinkageRewrite covers scenario 4: linking dst to src delivers
// exactly one notification for the value difference, then suppresses
// a re-set of the same value, then fires again on a genuine change.
func TestLinkageRewrite(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	src := tr.Create(root, "src")
	dst := tr.Create(root, "dst")
	tr.SetInt(src, 5)
	tr.SetInt(dst, 9)

	var got []int64
	opts := NewSubscribeOptions().
		Path("dst").
		Flags(SubDirectUpdate | SubNoInitialUpdate).
		Trampoline(IntCallback(func(v int64) { got = append(got, v) }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}

	tr.Link(src, dst, LinkSoft)
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("after link got %v, want [5]", got)
	}

	tr.SetInt(src, 5)
	if len(got) != 1 {
		t.Fatalf("idempotent set through link notified: %v", got)
	}

	tr.SetInt(src, 6)
	if len(got) != 2 || got[1] != 6 {
		t.Fatalf("after real change got %v, want [5 6]", got)
	}
}

// TestDestructionWithTracker covers scenario 5's two branches: a
// TRACK_DESTROY subscription to a nonexistent path fires DESTROYED
// immediately, and one to an existing node sees SET_VOID then
// DESTROYED when that node is destroyed.
func TestDestructionWithTracker(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	x := tr.Create(root, "x")

	var kinds []EventKind
	opts := NewSubscribeOptions().
		Path("x.y").
		Flags(SubDirectUpdate | SubTrackDestroy | SubNoInitialUpdate).
		Trampoline(EventCallback(func(kind EventKind, rec *Record) { kinds = append(kinds, kind) }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}
	if len(kinds) != 1 || kinds[0] != EventDestroyed {
		t.Fatalf("nonexistent-path tracker got %v, want [DESTROYED]", kinds)
	}

	y := tr.Create(x, "y")
	var kinds2 []EventKind
	opts2 := NewSubscribeOptions().
		Path("x.y").
		Flags(SubDirectUpdate | SubTrackDestroy | SubNoInitialUpdate).
		Trampoline(EventCallback(func(kind EventKind, rec *Record) { kinds2 = append(kinds2, kind) }))
	if _, ok := tr.Subscribe(opts2); !ok {
		t.Fatal("subscribe failed")
	}
	tr.Destroy(y)
	if len(kinds2) != 2 || kinds2[0] != EventSetVoid || kinds2[1] != EventDestroyed {
		t.Fatalf("destroy-tracker got %v, want [SET_VOID DESTROYED]", kinds2)
	}
}

// TestMultiSubscription covers scenario 6: a MULTI subscriber on root
// receives a value record, referent == root, for a set on any
// descendant.
func TestMultiSubscription(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	a := tr.Create(root, "a")
	b := tr.Create(a, "b")

	var referents []*Node
	opts := NewSubscribeOptions().
		Segments(nil).
		Flags(SubDirectUpdate | SubMulti | SubNoInitialUpdate).
		Trampoline(EventCallback(func(kind EventKind, rec *Record) { referents = append(referents, rec.Node) }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}

	tr.SetInt(b, 1)
	if len(referents) != 1 || referents[0] != root {
		t.Fatalf("got referents %v, want [root]", referents)
	}
}

// TestLazyDirLaw covers the "lazy dir" law: setting a scalar under a
// void ancestor chain materializes every intermediate directory and
// emits exactly one SET_DIR per ancestor plus one terminal record.
func TestLazyDirLaw(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")

	var kinds []EventKind
	opts := NewSubscribeOptions().
		Segments(nil).
		Flags(SubDirectUpdate | SubMulti | SubNoInitialUpdate).
		Trampoline(EventCallback(func(kind EventKind, rec *Record) { kinds = append(kinds, kind) }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}

	leaf := tr.GetByName("global", []string{"p", "q", "r"})
	tr.SetInt(leaf, 3)

	// ADD_CHILD(p) from creation under root, then one SET_DIR per
	// materialized ancestor (p, q) fanned to the MULTI subscriber on
	// root, then one more value record for the terminal SetInt.
	if len(kinds) != 4 {
		t.Fatalf("got %v records, want 4 (ADD_CHILD + 2x ancestor SET_DIR + terminal set)", kinds)
	}
}

// TestIdempotentSetterNoNotification is a direct check of the
// "idempotent setters" law for a scalar that never goes through a
// directory.
func TestIdempotentSetterNoNotification(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	a := tr.Create(root, "a")
	tr.SetInt(a, 4)

	calls := 0
	opts := NewSubscribeOptions().
		Path("a").
		Flags(SubDirectUpdate | SubNoInitialUpdate).
		Trampoline(IntCallback(func(v int64) { calls++ }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}
	tr.SetInt(a, 4)
	if calls != 0 {
		t.Fatalf("idempotent SetInt notified %d times", calls)
	}
}

// TestClipRange exercises numeric clamping on set and on range
// configuration (spec.md §4.1 "Clipping").
func TestClipRange(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	a := tr.Create(root, "a")
	tr.SetIntClipRange(a, 0, 10)
	tr.SetInt(a, 99)
	if iv, ok := a.value.(objects.IntValue); !ok || iv.V != 10 {
		t.Fatalf("clamped value = %v, want 10", a.value)
	}
	tr.SetInt(a, -5)
	if iv, ok := a.value.(objects.IntValue); !ok || iv.V != 0 {
		t.Fatalf("clamped value = %v, want 0", a.value)
	}
}

// TestUnsubscribeStopsDelivery checks that Unsubscribe detaches a
// subscription from both lists so later mutations produce no callback.
func TestUnsubscribeStopsDelivery(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	a := tr.Create(root, "a")

	calls := 0
	opts := NewSubscribeOptions().
		Path("a").
		Flags(SubDirectUpdate | SubNoInitialUpdate).
		Trampoline(IntCallback(func(v int64) { calls++ }))
	id, ok := tr.Subscribe(opts)
	if !ok {
		t.Fatal("subscribe failed")
	}
	tr.Unsubscribe(id)
	tr.SetInt(a, 1)
	if calls != 0 {
		t.Fatalf("unsubscribed callback still fired %d times", calls)
	}
}

// TestQueuedCourierLinkageRewrite re-runs scenario 4 through a queued
// waitable courier instead of SubDirectUpdate, exercising enqueue/Poll
// dispatch and confirming no Record is leaked past the drain.
func TestQueuedCourierLinkageRewrite(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	src := tr.Create(root, "src")
	dst := tr.Create(root, "dst")
	tr.SetInt(src, 5)
	tr.SetInt(dst, 9)

	c := tr.NewWaitableCourier()
	defer c.Destroy()

	var got []int64
	opts := NewSubscribeOptions().
		Path("dst").
		Flags(SubNoInitialUpdate).
		Courier(c).
		Trampoline(IntCallback(func(v int64) { got = append(got, v) }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}

	tr.Link(src, dst, LinkSoft)
	c.Poll()
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("after link got %v, want [5]", got)
	}

	tr.SetInt(src, 5)
	c.Poll()
	if len(got) != 1 {
		t.Fatalf("idempotent set through link notified: %v", got)
	}

	tr.SetInt(src, 6)
	c.Poll()
	if len(got) != 2 || got[1] != 6 {
		t.Fatalf("after real change got %v, want [5 6]", got)
	}
	if n := tr.pool.liveCount(); n != 0 {
		t.Fatalf("%d records still live after full drain", n)
	}
}

// TestQueuedCourierDestructionWithTracker re-runs scenario 5's existing-
// node branch through a queued waitable courier: it is the regression
// test for the destroy-time terminal SET_VOID, which a zombified queued
// subscription would otherwise drop before the courier ever drains it.
func TestQueuedCourierDestructionWithTracker(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	x := tr.Create(root, "x")
	y := tr.Create(x, "y")

	c := tr.NewWaitableCourier()
	defer c.Destroy()

	var kinds []EventKind
	opts := NewSubscribeOptions().
		Path("x.y").
		Flags(SubTrackDestroy | SubNoInitialUpdate).
		Courier(c).
		Trampoline(EventCallback(func(kind EventKind, rec *Record) { kinds = append(kinds, kind) }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}

	tr.Destroy(y)
	if !c.Poll() {
		t.Fatal("expected queued records to dispatch")
	}
	if len(kinds) != 2 || kinds[0] != EventSetVoid || kinds[1] != EventDestroyed {
		t.Fatalf("queued destroy-tracker got %v, want [SET_VOID DESTROYED]", kinds)
	}
	if n := tr.pool.liveCount(); n != 0 {
		t.Fatalf("%d records still live after full drain", n)
	}
}

// TestPositionalSegment exercises the "*N" positional child selector.
func TestPositionalSegment(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	tr.Create(root, "x")
	tr.Create(root, "y")
	got := tr.Find("global", []string{"*1"})
	if got == nil || got.name != "y" {
		t.Fatalf("positional lookup got %v, want node y", got)
	}
}
