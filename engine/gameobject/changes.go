package gameobject

import (
	"sort"

	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/value"
)

// Change is an attribute modified since the last ClearChanges, with its current resolved value
type Change struct {
	Desc  *attr.Descriptor
	Value value.Value
}

// ChangeIter walks the changes of an object once, in attribute id order.
// Values are resolved when Next reaches them.
type ChangeIter struct {
	obj *GameObjectData
	ids []uint16
	pos int
}

// Changes returns an iterator over the attributes modified since the last ClearChanges
func (o *GameObjectData) Changes() *ChangeIter {
	ids := make([]uint16, 0, len(o.changed))
	for id := range o.changed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return &ChangeIter{obj: o, ids: ids}
}

// Next returns the next change. ok is false once the iterator is exhausted.
func (it *ChangeIter) Next() (c Change, ok bool) {
	for it.pos < len(it.ids) {
		id := it.ids[it.pos]
		it.pos++
		d, err := it.obj.class.ByID(id)
		if err != nil {
			continue
		}
		return Change{Desc: d, Value: it.obj.resolve(d)}, true
	}
	return Change{}, false
}

// Len returns the number of changes not yet returned by Next
func (it *ChangeIter) Len() int {
	return len(it.ids) - it.pos
}

// HasChanges returns if any attribute was modified since the last ClearChanges
func (o *GameObjectData) HasChanges() bool {
	return len(o.changed) > 0
}

// ClearChanges forgets all tracked changes. Called once per tick after sync systems ran.
func (o *GameObjectData) ClearChanges() {
	if len(o.changed) > 0 {
		o.changed = map[uint16]struct{}{}
	}
}
