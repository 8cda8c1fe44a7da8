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

import "github.com/Taran2ul/proptree/internal/objects"

// setValue is the idempotent-setter core shared by every typed setter
// (spec.md §4.1 "Typed setters"): if the current variant already equals
// newVal, nothing happens; otherwise the old variant's owned resources
// are released, the node switches to the new variant, and a value
// notification fans out. skip, if non-nil, is the mutator's own
// subscription, excluded from the fan-out. Directories are never
// silently clobbered by a scalar setter -- traversal never overwrites a
// directory any more than it overwrites a scalar (spec.md §4.1 "Lazy
// directories"). Must be called with the tree lock held.
func (t *Tree) setValue(p *Node, newVal objects.Value, skip *Subscription) {
	if p == nil || p.isZombie() || p.kind == objects.KindDir {
		return
	}
	if p.kind == newVal.Kind() && p.value != nil && p.value.Equal(newVal) {
		return
	}
	p.releaseValue()
	p.kind = newVal.Kind()
	p.value = newVal
	t.emitValueChange(p, skip)
}

// SetVoid clears p to the void variant.
func (t *Tree) SetVoid(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setValue(p, objects.VoidValue{}, nil)
}

// SetString sets p to an owned UTF-8 rstring built fresh from s. A nil
// vs. empty string is not ambiguous here: the caller must call SetVoid
// to clear a node, matching prop_core.c's prop_set_string_ex treating a
// NULL argument as set_void rather than as an empty string (see
// SPEC_FULL.md §4.x).
func (t *Tree) SetString(p *Node, s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setValue(p, objects.RStringValue{S: objects.AllocRString(s, objects.TagUTF8)}, nil)
}

// SetRString sets p to rs directly, taking a reference (spec.md's
// set_rstring: the caller retains its own reference).
func (t *Tree) SetRString(p *Node, rs *objects.RString) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setValue(p, objects.RStringValue{S: rs.Dup()}, nil)
}

// SetCString sets p to a borrowed static string: no allocation, no
// release on variant switch.
func (t *Tree) SetCString(p *Node, s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setValue(p, objects.CStringValue{S: s}, nil)
}

// SetLink sets p to a title+url link, each a fresh ref-counted string.
func (t *Tree) SetLink(p *Node, title, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setValue(p, objects.NewLink(title, url), nil)
}

// SetInt sets p's integer value, clamped into p's configured clip
// range if any (spec.md §4.1 "Clipping"). Always copies the integer
// slot -- see SPEC_FULL.md §9(c): prop_core.c's set_int has a latent
// bug copying the float slot on one branch; we do not reproduce it.
func (t *Tree) SetInt(p *Node, v int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.isZombie() {
		return
	}
	clamped := int64(p.clip.Clamp(float64(v)))
	t.setValue(p, objects.IntValue{V: clamped, Clip: p.clip}, nil)
}

// SetFloat sets p's float value, clamped into p's configured clip range.
func (t *Tree) SetFloat(p *Node, v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.isZombie() {
		return
	}
	t.setValue(p, objects.FloatValue{V: p.clip.Clamp(v), Clip: p.clip}, nil)
}

// coerceNumeric returns p's current value as a float64 plus whether p
// was already a float (so add/toggle can write back the matching kind).
func coerceNumeric(p *Node) (v float64, wasFloat bool) {
	switch cur := p.value.(type) {
	case objects.IntValue:
		return float64(cur.V), false
	case objects.FloatValue:
		return cur.V, true
	default:
		return 0, false
	}
}

// AddInt adds delta to p's integer value (coercing from float first if
// the current variant is float), then re-clamps (spec.md §4.1 "add_*
// first coerces float<->int if the current variant disagrees ...
// coercion preserves the clipping bounds by value").
func (t *Tree) AddInt(p *Node, delta int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.isZombie() {
		return
	}
	cur, _ := coerceNumeric(p)
	nv := int64(cur) + delta
	clamped := int64(p.clip.Clamp(float64(nv)))
	t.setValue(p, objects.IntValue{V: clamped, Clip: p.clip}, nil)
}

// AddFloat adds delta to p's float value (coercing from int first if
// needed), then re-clamps.
func (t *Tree) AddFloat(p *Node, delta float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.isZombie() {
		return
	}
	cur, _ := coerceNumeric(p)
	t.setValue(p, objects.FloatValue{V: p.clip.Clamp(cur + delta)}, nil)
}

// ToggleInt flips p's integer value between zero and one (treating any
// non-zero current value as "on").
func (t *Tree) ToggleInt(p *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.isZombie() {
		return
	}
	cur, _ := coerceNumeric(p)
	next := int64(0)
	if cur == 0 {
		next = 1
	}
	clamped := int64(p.clip.Clamp(float64(next)))
	t.setValue(p, objects.IntValue{V: clamped, Clip: p.clip}, nil)
}

// SetIntClipRange configures p's numeric clip range and immediately
// re-clamps an existing integer value, notifying if it changes (spec.md
// §4.1 "Setting the range may itself clamp the current value").
func (t *Tree) SetIntClipRange(p *Node, min, max float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.isZombie() {
		return
	}
	p.clip = objects.ClipRange{Min: min, Max: max, Has: true}
	p.flags |= NodeClippedValue
	if iv, ok := p.value.(objects.IntValue); ok {
		t.setValue(p, objects.IntValue{V: int64(p.clip.Clamp(float64(iv.V))), Clip: p.clip}, nil)
	}
}

// SetFloatClipRange configures p's numeric clip range and re-clamps an
// existing float value.
func (t *Tree) SetFloatClipRange(p *Node, min, max float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil || p.isZombie() {
		return
	}
	p.clip = objects.ClipRange{Min: min, Max: max, Has: true}
	p.flags |= NodeClippedValue
	if fv, ok := p.value.(objects.FloatValue); ok {
		t.setValue(p, objects.FloatValue{V: p.clip.Clamp(fv.V)}, nil)
	}
}
