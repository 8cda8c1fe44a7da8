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

import "sync"

// internTable holds static node names that are safe to treat as borrowed
// (the NAME_NOT_ALLOCATED idea, generalized from C string
// literals to Go's interned strings). The table is shared by every Tree
// in the process, while its only caller, createLocked, holds just its
// own Tree's lock, so this is a sync.Map rather than a plain map behind
// Tree.mu.
var internTable sync.Map

// intern returns a canonical copy of name so that repeated creation of
// children with the same name does not keep allocating distinct backing
// arrays. Names shorter than 2 bytes are not worth interning.
func intern(name string) string {
	if len(name) < 2 {
		return name
	}
	if v, ok := internTable.Load(name); ok {
		return v.(string)
	}
	internTable.Store(name, name)
	return name
}
