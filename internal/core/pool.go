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
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// recordPool is the slab pool spec.md §6 names as an external
// collaborator ("A slab pool with create, get, put"). Records are
// allocated from here and returned once the consuming callback has run
// (or the owning subscription zombified), per spec.md §4.3 "Record
// lifetime".
//
// Puts can race Gets: a courier releases a Record after invoking its
// callback with the tree lock NOT held (spec.md §5), while the
// mutator thread may be handing out a fresh Record to a different
// courier at the same instant. live indexes in-flight Records by a
// monotonic handle so that a double-release -- an invariant violation,
// never an expected path -- is trapped per spec.md §7's "invariant
// violation -> trap" rather than silently corrupting the free slab.
type recordPool struct {
	sync.Pool
	live   *xsync.Map[uint64, *Record]
	nextID uint64
}

func newRecordPool() *recordPool {
	p := &recordPool{live: xsync.NewMap[uint64, *Record]()}
	p.Pool.New = func() any { return &Record{} }
	return p
}

// get returns a zeroed Record ready for the notification engine to fill
// in, tagged with a fresh handle for live-tracking.
func (p *recordPool) get() *Record {
	rec := p.Pool.Get().(*Record)
	*rec = Record{handle: atomic.AddUint64(&p.nextID, 1)}
	p.live.Store(rec.handle, rec)
	return rec
}

// put returns rec to the slab once dispatch has fully finished with it.
// Called exactly once per Record, from whichever goroutine (courier
// worker or the mutator itself, for direct/internal delivery) consumes
// it last -- LoadAndDelete traps a second call for the same handle
// instead of letting it corrupt the free slab.
func (p *recordPool) put(rec *Record) {
	if rec == nil {
		return
	}
	if _, ok := p.live.LoadAndDelete(rec.handle); !ok {
		panic("proptree: double release of notification record")
	}
	p.Pool.Put(rec)
}

// liveCount reports how many Records are currently outstanding (useful
// for tests asserting no Record leaked past a dispatch pass).
func (p *recordPool) liveCount() int {
	return p.live.Size()
}
