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

import "time"

// Forever is a far-future time usable as an expiry/deadline sentinel
// by callers that need a deadline that never expires.
var Forever = time.Date(2050, time.January, 1, 1, 1, 1, 1, time.UTC)

// EventKind identifies the shape of a notification Record's payload.
type EventKind int

const (
	EventSetVoid EventKind = iota
	EventSetRString
	EventSetCString
	EventSetLink
	EventSetInt
	EventSetFloat
	EventSetDir
	EventAddChild
	EventAddChildBefore
	EventDelChild
	EventMoveChild
	EventSelectChild
	EventReqNewChild
	EventReqMoveChild
	EventReqDeleteVector
	EventSuggestFocus
	EventAddChildVector
	EventAddChildVectorBefore
	EventAddChildVectorDirect
	EventExtEvent
	EventDestroyed
	EventSubscriptionMonitorActive
	EventWantMoreChilds
	EventHaveMoreChilds
)

var eventKindNames = map[EventKind]string{
	EventSetVoid:                   "SET_VOID",
	EventSetRString:                "SET_RSTRING",
	EventSetCString:                "SET_CSTRING",
	EventSetLink:                   "SET_RLINK",
	EventSetInt:                    "SET_INT",
	EventSetFloat:                  "SET_FLOAT",
	EventSetDir:                    "SET_DIR",
	EventAddChild:                  "ADD_CHILD",
	EventAddChildBefore:            "ADD_CHILD_BEFORE",
	EventDelChild:                  "DEL_CHILD",
	EventMoveChild:                 "MOVE_CHILD",
	EventSelectChild:               "SELECT_CHILD",
	EventReqNewChild:               "REQ_NEW_CHILD",
	EventReqMoveChild:              "REQ_MOVE_CHILD",
	EventReqDeleteVector:           "REQ_DELETE_VECTOR",
	EventSuggestFocus:              "SUGGEST_FOCUS",
	EventAddChildVector:            "ADD_CHILD_VECTOR",
	EventAddChildVectorBefore:      "ADD_CHILD_VECTOR_BEFORE",
	EventAddChildVectorDirect:      "ADD_CHILD_VECTOR_DIRECT",
	EventExtEvent:                  "EXT_EVENT",
	EventDestroyed:                 "DESTROYED",
	EventSubscriptionMonitorActive: "SUBSCRIPTION_MONITOR_ACTIVE",
	EventWantMoreChilds:            "WANT_MORE_CHILDS",
	EventHaveMoreChilds:            "HAVE_MORE_CHILDS",
}

func (k EventKind) String() string {
	if n, ok := eventKindNames[k]; ok {
		return n
	}
	return "UNKNOWN_EVENT"
}

// NodeFlags is a bitset of the dynamic per-node flags from spec.md §3.
type NodeFlags uint16

const (
	NodeMultiSub NodeFlags = 1 << iota
	NodeMultiNotify
	NodeMonitored
	NodeClippedValue
	NodeMarked
	NodeXrefedOriginator
	NodeNameNotAllocated
)

func (f NodeFlags) has(bit NodeFlags) bool { return f&bit != 0 }

// SubFlags is a bitset of the per-subscription flags from spec.md §3.
type SubFlags uint32

const (
	SubInternal SubFlags = 1 << iota
	SubExpedite
	SubDirectUpdate
	SubNoInitialUpdate
	SubIgnoreVoid
	SubSubscriptionMonitor
	SubMulti
	SubTrackDestroy
	SubTrackDestroyExp
	SubSingleton
)

func (f SubFlags) has(bit SubFlags) bool { return f&bit != 0 }

// LinkMode selects how link() anchors the source node's xref count.
type LinkMode int

const (
	LinkSoft LinkMode = iota
	LinkXrefed
	LinkXrefedIfOrphan
)

// DeliveryMode selects a courier's dispatch strategy.
type DeliveryMode int

const (
	DeliveryThreaded DeliveryMode = iota
	DeliveryExternalNotify
	DeliveryWaitable
	DeliveryPassive
)
