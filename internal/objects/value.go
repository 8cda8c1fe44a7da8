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

package objects

import (
	"fmt"
	"strconv"
)

// Kind is the node variant discriminator (spec.md §3's "kind"). Dir and
// Zombie are structural kinds owned by internal/core.Node directly (a
// directory's children live on the node, not in a Value), everything
// else is a Value.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindRString
	KindCString
	KindLink
	KindDir
	KindZombie
)

// kindNames is the same dispatch-table idiom objects/routing.go used for
// RoutingObjectConstructor, repurposed here to name a kind in
// Kind.String instead of picking a deserialization function.
var kindNames = map[Kind]string{
	KindVoid:    "void",
	KindInt:     "int",
	KindFloat:   "float",
	KindRString: "rstring",
	KindCString: "cstring",
	KindLink:    "link",
	KindDir:     "dir",
	KindZombie:  "zombie",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ClipRange is an optional numeric clamp. Has is false when no range was
// ever configured (CLIPPED_VALUE unset on the owning node).
type ClipRange struct {
	Min, Max float64
	Has      bool
}

// Clamp returns v clamped into the range, or v unchanged if Has is false.
func (c ClipRange) Clamp(v float64) float64 {
	if !c.Has {
		return v
	}
	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}

// Value is the payload carried by a scalar node variant or a notification
// record. Dir and Zombie are not Values; they are represented directly
// on internal/core.Node since a directory's children are part of the
// tree structure, not an immutable payload.
type Value interface {
	Kind() Kind
	Equal(Value) bool
}

type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }
func (VoidValue) Equal(o Value) bool {
	_, ok := o.(VoidValue)
	return ok
}

type IntValue struct {
	V    int64
	Clip ClipRange
}

func (IntValue) Kind() Kind { return KindInt }
func (v IntValue) Equal(o Value) bool {
	ov, ok := o.(IntValue)
	return ok && ov.V == v.V
}

type FloatValue struct {
	V    float64
	Clip ClipRange
}

func (FloatValue) Kind() Kind { return KindFloat }
func (v FloatValue) Equal(o Value) bool {
	ov, ok := o.(FloatValue)
	return ok && ov.V == v.V
}

type RStringValue struct {
	S *RString
}

func (RStringValue) Kind() Kind { return KindRString }
func (v RStringValue) Equal(o Value) bool {
	ov, ok := o.(RStringValue)
	return ok && v.S.Equal(ov.S)
}

// CStringValue is a borrowed static string -- the node never owns or
// releases it (the NAME_NOT_ALLOCATED distinction, applied here to
// value instead of name storage).
type CStringValue struct {
	S string
}

func (CStringValue) Kind() Kind { return KindCString }
func (v CStringValue) Equal(o Value) bool {
	ov, ok := o.(CStringValue)
	return ok && v.S == ov.S
}

type LinkValue struct {
	Title *RString
	URL   *RString
}

func (LinkValue) Kind() Kind { return KindLink }
func (v LinkValue) Equal(o Value) bool {
	ov, ok := o.(LinkValue)
	return ok && v.Title.Equal(ov.Title) && v.URL.Equal(ov.URL)
}

// ParseValue builds a Value from a kind name and its literal text, the
// one place in this system where malformed input is a genuine external
// boundary (a CLI argument) rather than programmer
// misuse -- unlike the core's silent-no-op convention (spec.md §7),
// this returns an error a caller can surface to the user.
func ParseValue(kind, literal string) (Value, error) {
	switch kind {
	case "void":
		return VoidValue{}, nil
	case "int":
		v, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return nil, NewValueError(1, fmt.Sprintf("not an integer: %q", literal))
		}
		return IntValue{V: v}, nil
	case "float":
		v, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return nil, NewValueError(2, fmt.Sprintf("not a float: %q", literal))
		}
		return FloatValue{V: v}, nil
	case "string":
		return RStringValue{S: AllocRString(literal, TagUTF8)}, nil
	default:
		return nil, NewValueError(0, fmt.Sprintf("unknown value kind: %q", kind))
	}
}

// NewLink allocates title/url as fresh single-reference RStrings.
func NewLink(title, url string) LinkValue {
	return LinkValue{Title: AllocRString(title, TagUTF8), URL: AllocRString(url, TagUTF8)}
}

// Release drops the references a LinkValue owns. Called when a node's
// variant is switched away from Link or the node is destroyed.
func (v LinkValue) Release() {
	v.Title.Release()
	v.URL.Release()
}
