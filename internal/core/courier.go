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
	"time"

	"github.com/google/uuid"
)

// Notify is the user-supplied (notify, opaque) pair spec.md §6 names for
// the external-notify delivery mode.
type Notify func(opaque any)

// Courier is a delivery endpoint: two FIFO queues (expedited, normal)
// plus one of four delivery modes (spec.md §4.4). Queue heads/tails are
// protected by the owning Tree's lock, exactly as spec.md §5 specifies
// ("Courier queue heads/tails are tree-lock-protected; the condition
// variable uses the tree lock as its mutex") -- no mutex of Courier's
// guards its queues; cond, when present, is built on tree.mu. Its one
// mutex, defaultObserverLock, is only the fallback observer lock.
//
// Grounded on terminus.go's Client (mlist + queueChanged), generalized
// from a single external-notify shape into all four modes, with the
// threaded worker's lock discipline modeled on api/peerclient.go's
// rxloop goroutine.
type Courier struct {
	id   uuid.UUID
	tree *Tree
	mode DeliveryMode

	expedited []*Record
	normal    []*Record

	cond         *sync.Cond
	notifyFn     Notify
	notifyOpaque any

	attached int32
	stopped  bool
	worker   sync.WaitGroup

	defaultObserverLock sync.Mutex
}

func (t *Tree) newCourier(mode DeliveryMode) *Courier {
	c := &Courier{id: uuid.New(), tree: t, mode: mode}
	if mode == DeliveryThreaded || mode == DeliveryWaitable {
		c.cond = sync.NewCond(&t.mu)
	}
	return c
}

// NewThreadedCourier creates a courier with its own worker goroutine
// that wakes on signal and dispatches both queues outside the tree
// lock.
func (t *Tree) NewThreadedCourier() *Courier {
	c := t.newCourier(DeliveryThreaded)
	c.worker.Add(1)
	go c.threadedLoop()
	return c
}

// NewNotifyCourier creates a courier that calls notify(opaque) on every
// enqueue; the caller is responsible for subsequently calling Poll (or
// Wait/WaitAndDispatch) to actually dispatch.
func (t *Tree) NewNotifyCourier(notify Notify, opaque any) *Courier {
	c := t.newCourier(DeliveryExternalNotify)
	c.notifyFn = notify
	c.notifyOpaque = opaque
	return c
}

// NewWaitableCourier creates a courier with no owned thread; the
// consumer calls Wait/WaitAndDispatch/Poll.
func (t *Tree) NewWaitableCourier() *Courier {
	return t.newCourier(DeliveryWaitable)
}

// NewPassiveCourier creates a courier with neither a thread nor a
// notify callback; the consumer must call Poll itself (Check only
// reports whether work is queued).
func (t *Tree) NewPassiveCourier() *Courier {
	return t.newCourier(DeliveryPassive)
}

func (c *Courier) attachSub() { atomic.AddInt32(&c.attached, 1) }
func (c *Courier) detachSub() { atomic.AddInt32(&c.attached, -1) }

// enqueue appends rec to the expedited or normal queue and triggers the
// mode-appropriate wakeup. Must be called with the tree lock held
// (every call site -- deliverOrQueue and destroyLocked -- already holds
// it).
func (c *Courier) enqueue(rec *Record, expedite bool) {
	if expedite {
		c.expedited = append(c.expedited, rec)
	} else {
		c.normal = append(c.normal, rec)
	}
	switch c.mode {
	case DeliveryThreaded, DeliveryWaitable:
		if c.cond != nil {
			c.cond.Signal()
		}
	case DeliveryExternalNotify:
		if c.notifyFn != nil {
			c.notifyFn(c.notifyOpaque)
		}
	case DeliveryPassive:
		// consumer must poll
	}
}

// popLocked removes and returns the next Record to dispatch: the
// expedited queue is always drained ahead of the normal queue (spec.md
// §4.4 "Expedited queue is fully drained before the first item of the
// normal queue is processed on each wakeup"). Must be called with the
// tree lock held.
func (c *Courier) popLocked() (*Record, bool) {
	if len(c.expedited) > 0 {
		rec := c.expedited[0]
		c.expedited = c.expedited[1:]
		return rec, true
	}
	if len(c.normal) > 0 {
		rec := c.normal[0]
		c.normal = c.normal[1:]
		return rec, true
	}
	return nil, false
}

func (c *Courier) hasWorkLocked() bool {
	return len(c.expedited) > 0 || len(c.normal) > 0
}

// dispatchOne runs the full per-record dispatch contract from spec.md
// §4.4: acquire the observer lock (falling back to a private mutex when
// the subscription didn't supply one), skip zombified subscriptions --
// except a DESTROYED record or one marked Terminal, both of which a
// zombie subscription must still receive -- invoke, release the
// observer lock, release the record. Must be called with the tree lock
// NOT held.
func (c *Courier) dispatchOne(rec *Record) {
	lock := rec.Sub.observerLock
	if lock == nil {
		lock = &c.defaultObserverLock
	}
	lock.Lock()
	if !rec.Sub.isZombie() || rec.Kind == EventDestroyed || rec.Terminal {
		rec.Sub.trampoline.deliver(rec)
	}
	lock.Unlock()
	c.tree.releaseRecord(rec)
}

// threadedLoop is the worker goroutine for DeliveryThreaded couriers.
func (c *Courier) threadedLoop() {
	defer c.worker.Done()
	c.tree.mu.Lock()
	for {
		for !c.hasWorkLocked() && !c.stopped {
			c.cond.Wait()
		}
		if c.stopped && !c.hasWorkLocked() {
			c.tree.mu.Unlock()
			return
		}
		rec, ok := c.popLocked()
		c.tree.mu.Unlock()
		if ok {
			c.dispatchOne(rec)
		}
		c.tree.mu.Lock()
	}
}

// Poll drains whatever is currently queued without blocking. Used by
// passive and external-notify couriers, and available on any mode.
// Returns true if at least one Record was dispatched.
func (c *Courier) Poll() bool {
	dispatched := false
	for {
		c.tree.mu.Lock()
		rec, ok := c.popLocked()
		c.tree.mu.Unlock()
		if !ok {
			break
		}
		c.dispatchOne(rec)
		dispatched = true
	}
	return dispatched
}

// Check reports whether the courier has queued work, without consuming
// any of it.
func (c *Courier) Check() bool {
	c.tree.mu.Lock()
	defer c.tree.mu.Unlock()
	return c.hasWorkLocked()
}

// Wait blocks up to timeout for the courier to have queued work, or
// until Stop is called. Returns true if work is ready.
func (c *Courier) Wait(timeout time.Duration) bool {
	c.tree.mu.Lock()
	ready := c.waitLocked(timeout)
	c.tree.mu.Unlock()
	return ready
}

// WaitAndDispatch waits as Wait does and then drains everything queued,
// returning the number of Records dispatched.
func (c *Courier) WaitAndDispatch(timeout time.Duration) int {
	if !c.Wait(timeout) {
		return 0
	}
	n := 0
	for {
		c.tree.mu.Lock()
		rec, ok := c.popLocked()
		c.tree.mu.Unlock()
		if !ok {
			break
		}
		c.dispatchOne(rec)
		n++
	}
	return n
}

// waitLocked blocks on c.cond (built on the tree lock) until work
// appears, Stop is called, or timeout elapses. Must be called with the
// tree lock held; returns with it held.
func (c *Courier) waitLocked(timeout time.Duration) bool {
	if c.cond == nil {
		// passive/external-notify couriers have no condition variable;
		// a zero-length poll is the only option.
		return c.hasWorkLocked()
	}
	if c.hasWorkLocked() || c.stopped {
		return c.hasWorkLocked()
	}
	expired := make(chan struct{})
	timer := time.AfterFunc(timeout, func() {
		close(expired)
		c.cond.Broadcast()
	})
	defer timer.Stop()
	for !c.hasWorkLocked() && !c.stopped {
		select {
		case <-expired:
			return false
		default:
		}
		c.cond.Wait()
	}
	return c.hasWorkLocked()
}

// Stop signals the courier's worker (if any) to exit after draining
// what remains queued, without blocking for it to actually exit.
func (c *Courier) Stop() {
	c.tree.mu.Lock()
	c.stopped = true
	if c.cond != nil {
		c.cond.Broadcast()
	}
	c.tree.mu.Unlock()
}

// Destroy requires no attached subscriptions; a violation is logged but
// tolerated, matching spec.md §7. Joins the worker goroutine for
// threaded couriers.
func (c *Courier) Destroy() {
	if n := atomic.LoadInt32(&c.attached); n != 0 {
		pkgLog.Errorf("courier %s destroyed with %d subscriptions still attached", c.id, n)
	}
	c.Stop()
	if c.mode == DeliveryThreaded {
		c.worker.Wait()
	}
}
