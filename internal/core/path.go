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
	"strconv"
	"strings"

	"github.com/Taran2ul/proptree/internal/objects"
)

// resolve walks segs from root (spec.md §4.1 "Addressing", "Lazy
// directories"). In both modes a void node with segments still
// remaining is converted in place to a directory (emitting SET_DIR);
// only when create is true are missing children created. A "*N" segment
// selects the Nth child by position; any other segment matches by
// name, creating a void child when create is true and none exists.
// Traversal aborts (returns nil) on encountering any non-dir, non-void
// scalar with segments still remaining. Must be called with the tree
// lock held.
func (t *Tree) resolve(root *Node, segs []string, create bool) *Node {
	cur := root
	for _, seg := range segs {
		if cur == nil || cur.isZombie() {
			return nil
		}
		if !t.ensureDir(cur) {
			return nil
		}
		var next *Node
		if idx, ok := positional(seg); ok {
			next = cur.findChildAt(idx)
		} else if create {
			next = t.createLocked(cur, seg)
		} else {
			next = cur.findChild(seg)
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// positional reports whether seg is a "*N" positional selector, and if
// so returns N.
func positional(seg string) (int, bool) {
	if !strings.HasPrefix(seg, "*") {
		return 0, false
	}
	n, err := strconv.Atoi(seg[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// rootFor resolves a root name to its Node, defaulting to "global".
func (t *Tree) rootFor(name string) *Node {
	if name == "" {
		name = "global"
	}
	return t.roots[name]
}

// GetByName resolves the segment path segs against root (default "global"), creating intermediate directories
// and a terminal void child as needed -- the read/write counterpart of
// Subscribe's resolution step, usable for simple one-shot gets/sets
// (spec.md §6 get_by_name).
func (t *Tree) GetByName(root string, segs []string) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.rootFor(root)
	if r == nil {
		return nil
	}
	return t.resolve(r, segs, true)
}

// Find resolves path without creating any node; returns nil if any
// segment is missing. A void node on the path with segments remaining
// is still converted to a directory, as in resolve.
func (t *Tree) Find(root string, segs []string) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.rootFor(root)
	if r == nil {
		return nil
	}
	return t.resolve(r, segs, false)
}

// Setv resolves path (creating as needed) and applies value to the
// terminal node, the vector-payload counterpart of the scalar path
// setters (spec.md §6 setv): Void clears, Int/Float/RStringValue's
// string/CStringValue's string/LinkValue's title+url dispatch to the
// matching typed setter.
func (t *Tree) Setv(root string, segs []string, value objects.Value) {
	t.mu.Lock()
	p := t.resolve(t.rootFor(root), segs, true)
	t.mu.Unlock()
	if p == nil {
		return
	}
	switch v := value.(type) {
	case objects.VoidValue:
		t.SetVoid(p)
	case objects.IntValue:
		t.SetInt(p, v.V)
	case objects.FloatValue:
		t.SetFloat(p, v.V)
	case objects.RStringValue:
		t.SetString(p, v.S.Get())
	case objects.CStringValue:
		t.SetCString(p, v.S)
	case objects.LinkValue:
		t.SetLink(p, v.Title.Get(), v.URL.Get())
	}
}

// Set is the dotted-string convenience wrapper around Setv.
func (t *Tree) Set(root, path string, value objects.Value) {
	t.Setv(root, splitDotted(path), value)
}
