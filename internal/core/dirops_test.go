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

import "testing"

func TestMoveReordersAndNotifies(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	a := tr.Create(root, "a")
	b := tr.Create(root, "b")
	c := tr.Create(root, "c")

	var moved []*Node
	opts := NewSubscribeOptions().
		Segments(nil).
		Flags(SubDirectUpdate | SubNoInitialUpdate).
		Trampoline(EventCallback(func(kind EventKind, rec *Record) {
			if kind == EventMoveChild {
				moved = append(moved, rec.Child)
			}
		}))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}

	tr.Move(c, a) // move c before a: order becomes c, a, b
	if len(moved) != 1 || moved[0] != c {
		t.Fatalf("expected one MOVE_CHILD(c), got %v", moved)
	}
	got := tr.Children(root)
	if len(got) != 3 || got[0] != c || got[1] != a || got[2] != b {
		t.Fatalf("order after move = %v, want [c a b]", got)
	}

	// Already in position: no-op, no further notification.
	tr.Move(c, a)
	if len(moved) != 1 {
		t.Fatalf("no-op move should not notify, got %v", moved)
	}
}

func TestRequestMoveDoesNotMove(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	a := tr.Create(root, "a")
	b := tr.Create(root, "b")

	var reqs int
	opts := NewSubscribeOptions().
		Segments(nil).
		Flags(SubDirectUpdate | SubNoInitialUpdate).
		Trampoline(EventCallback(func(kind EventKind, rec *Record) {
			if kind == EventReqMoveChild {
				reqs++
			}
		}))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}

	tr.RequestMove(b, a)
	if reqs != 1 {
		t.Fatalf("expected 1 REQ_MOVE_CHILD, got %d", reqs)
	}
	got := tr.Children(root)
	if got[0] != a || got[1] != b {
		t.Fatal("RequestMove must not reorder children")
	}
}

func TestInsertDetachesFromOldParent(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	p1 := tr.Create(root, "p1")
	p2 := tr.Create(root, "p2")
	child := tr.Create(p1, "x")

	tr.Insert(child, p2, nil)
	if len(tr.Children(p1)) != 0 {
		t.Fatal("child should have been detached from p1")
	}
	kids := tr.Children(p2)
	if len(kids) != 1 || kids[0] != child {
		t.Fatalf("child should be under p2, got %v", kids)
	}
}

func TestUnselectClearsSelection(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	a := tr.Create(root, "a")
	tr.Select(a, nil)
	if root.selected != a {
		t.Fatal("select did not set root.selected")
	}
	tr.Unselect(root)
	if root.selected != nil {
		t.Fatal("unselect did not clear root.selected")
	}
}

func TestUnlinkRestoresSubscriptionRouting(t *testing.T) {
	tr := NewTree()
	root := tr.CreateRoot("global")
	src := tr.Create(root, "src")
	dst := tr.Create(root, "dst")
	tr.SetInt(src, 1)
	tr.SetInt(dst, 2)

	var got []int64
	opts := NewSubscribeOptions().
		Path("dst").
		Flags(SubDirectUpdate | SubNoInitialUpdate).
		Trampoline(IntCallback(func(v int64) { got = append(got, v) }))
	if _, ok := tr.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}

	tr.Link(src, dst, LinkSoft)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("after link got %v, want [1]", got)
	}

	tr.Unlink(dst)
	// dst's own value (2) differs from src's (1), so unlink reports it.
	if len(got) != 2 || got[1] != 2 {
		t.Fatalf("after unlink got %v, want [1 2]", got)
	}

	tr.SetInt(dst, 2)
	if len(got) != 2 {
		t.Fatalf("idempotent set after unlink notified: %v", got)
	}
	tr.SetInt(src, 99)
	if len(got) != 2 {
		t.Fatalf("set on src after unlink should not reach dst's subscriber: %v", got)
	}
}
