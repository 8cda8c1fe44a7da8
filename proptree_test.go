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

package proptree

import (
	"testing"

	"github.com/Taran2ul/proptree/internal/core"
)

func TestContextBasic(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	root := ctx.Tree.Root("global")
	a := ctx.Tree.Create(root, "a")
	ctx.Tree.SetInt(a, 42)

	var got int64
	opts := core.NewSubscribeOptions().
		Path("a").
		Flags(core.SubDirectUpdate).
		Trampoline(core.IntCallback(func(v int64) { got = v }))
	if _, ok := ctx.Subscribe(opts); !ok {
		t.Fatal("subscribe failed")
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestNewRootIsIndependentOfGlobal(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	other := ctx.NewRoot("other")
	x := ctx.Tree.Create(other, "x")
	ctx.Tree.SetString(x, "hello")

	if ctx.Tree.Find("global", []string{"x"}) != nil {
		t.Fatal("named root leaked into global")
	}
	if got := ctx.Tree.Find("other", []string{"x"}); got == nil || ctx.Tree.GetString(got) != "hello" {
		t.Fatal("node not resolvable under its own named root")
	}
}
