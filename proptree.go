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

// Package proptree is the public facade over internal/core and
// internal/objects: a reactive property tree with a node store,
// subscription registry, notification engine and courier. Assembles
// a single entry point the way bosswave_test.go's OpenBWContext
// assembles the api package.
package proptree

import (
	log "github.com/cihub/seelog"

	"github.com/Taran2ul/proptree/internal/core"
	"github.com/Taran2ul/proptree/internal/objects"
)

// SetLogger installs the logger every Context's Tree/Courier logs
// through, mirroring clistub.go's silencelog() at the package level
// instead of per-client.
func SetLogger(l log.LoggerInterface) {
	core.SetLogger(l)
}

// Re-exported so callers never need to import internal/core directly.
type (
	Node           = core.Node
	Tree           = core.Tree
	Subscription   = core.SubscriptionID
	SubscribeOpts  = core.SubscribeOptions
	SubFlags       = core.SubFlags
	Courier        = core.Courier
	Trampoline     = core.Trampoline
	EventKind      = core.EventKind
	Record         = core.Record
	LinkMode       = core.LinkMode
	Value          = objects.Value
)

const (
	Expedite            = core.SubExpedite
	DirectUpdate        = core.SubDirectUpdate
	NoInitialUpdate     = core.SubNoInitialUpdate
	IgnoreVoid          = core.SubIgnoreVoid
	SubscriptionMonitor = core.SubSubscriptionMonitor
	Multi               = core.SubMulti
	TrackDestroy        = core.SubTrackDestroy
	TrackDestroyExp     = core.SubTrackDestroyExp
	Singleton           = core.SubSingleton
	Internal            = core.SubInternal
)

const (
	LinkSoft           = core.LinkSoft
	LinkXrefed         = core.LinkXrefed
	LinkXrefedIfOrphan = core.LinkXrefedIfOrphan
)

// Forever re-exports core.Forever, a far-future time.Time for callers
// that need a deadline that never expires. Courier.Wait takes a
// time.Duration, not a deadline, so Forever is not an argument to it.
var Forever = core.Forever

// Context is a single, independent property tree plus its default
// threaded courier, exactly as DESIGN NOTES §9's "Global state" item
// prescribes: an explicit constructed object, never a package-level
// singleton.
type Context struct {
	Tree *core.Tree

	// Default is the context's threaded courier -- the equivalent of
	// prop_core.c's global_courier. Subscribe does not apply it on its
	// own: a subscription is routed through it only when its
	// SubscribeOptions name it via Courier(ctx.Default).
	Default *core.Courier
}

// NewContext constructs an empty property tree (with its "global" root
// already present, per core.NewTree) and starts its default threaded
// courier.
func NewContext() *Context {
	t := core.NewTree()
	return &Context{Tree: t, Default: t.NewThreadedCourier()}
}

// NewRoot registers an additional named resolution root alongside
// "global" (spec.md §4.1 "Addressing").
func (c *Context) NewRoot(name string) *Node {
	return c.Tree.CreateRoot(name)
}

// Subscribe resolves and installs opts against this context's tree. Pass
// opts.Courier(ctx.Default) to route through the context's default
// courier, or a courier of the caller's own.
func (c *Context) Subscribe(opts *SubscribeOpts) (Subscription, bool) {
	return c.Tree.Subscribe(opts)
}

// Unsubscribe is Tree.Unsubscribe, exposed at the Context level for
// symmetry with Subscribe.
func (c *Context) Unsubscribe(id Subscription) {
	c.Tree.Unsubscribe(id)
}

// Close stops the default courier and joins its worker goroutine. It
// does not wait for subscriptions to be individually unsubscribed first
// -- Destroy's "violation is logged but tolerated" contract (spec.md
// §7) applies.
func (c *Context) Close() {
	c.Default.Destroy()
}
