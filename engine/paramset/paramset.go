package paramset

import (
	"fmt"
	"sort"

	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
)

// ParamSet stores attribute values of one class, keyed by attribute id.
// Every key is a valid attribute of the class and every value is of the declared kind.
//
// Values are copied on the way in and on the way out, so callers never share a stored slice or set.
// ParamSet is not synchronized.
type ParamSet struct {
	class  *attr.ClassDesc
	values map[uint16]value.Value
}

// New creates an empty ParamSet of the class
func New(class *attr.ClassDesc) *ParamSet {
	return &ParamSet{
		class:  class,
		values: map[uint16]value.Value{},
	}
}

// Class returns the class of the set
func (ps *ParamSet) Class() *attr.ClassDesc {
	return ps.class
}

// Len returns the number of stored attributes
func (ps *ParamSet) Len() int {
	return len(ps.values)
}

// Get returns the value stored for id
func (ps *ParamSet) Get(id uint16) (value.Value, bool) {
	v, ok := ps.values[id]
	if !ok {
		return nil, false
	}
	return value.Clone(v), true
}

// GetNamed returns the value stored for the attribute called name
func (ps *ParamSet) GetNamed(name string) (value.Value, bool, error) {
	d, err := ps.class.ByName(name)
	if err != nil {
		return nil, false, err
	}
	v, ok := ps.values[d.ID]
	if !ok {
		return nil, false, nil
	}
	return value.Clone(v), true, nil
}

// Insert stores v for id and returns the previous value, if any
func (ps *ParamSet) Insert(id uint16, v value.Value) (value.Value, error) {
	d, err := ps.class.ByID(id)
	if err != nil {
		return nil, err
	}
	if err := value.Check(d.Kind, v); err != nil {
		return nil, errors.Wrapf(err, "insert %s", d)
	}
	old := ps.values[id]
	ps.values[id] = value.Clone(v)
	return old, nil
}

// Remove deletes the value of id and returns it
func (ps *ParamSet) Remove(id uint16) (value.Value, bool) {
	v, ok := ps.values[id]
	if ok {
		delete(ps.values, id)
	}
	return v, ok
}

// Extend copies every entry of other into ps, overwriting existing entries
func (ps *ParamSet) Extend(other *ParamSet) error {
	if err := ps.checkClass(other); err != nil {
		return err
	}
	for id, v := range other.values {
		ps.values[id] = value.Clone(v)
	}
	return nil
}

// IDs returns the stored attribute ids in ascending order
func (ps *ParamSet) IDs() []uint16 {
	ids := make([]uint16, 0, len(ps.values))
	for id := range ps.values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Range calls f for every stored attribute in id order until f returns false
func (ps *ParamSet) Range(f func(d *attr.Descriptor, v value.Value) bool) {
	for _, id := range ps.IDs() {
		d, err := ps.class.ByID(id)
		if err != nil {
			continue
		}
		if !f(d, value.Clone(ps.values[id])) {
			return
		}
	}
}

// Resolve returns the stored value of d, or its class default
func (ps *ParamSet) Resolve(d *attr.Descriptor) value.Value {
	if v, ok := ps.values[d.ID]; ok {
		return value.Clone(v)
	}
	return value.Clone(d.Default)
}

// Diff returns the entries of ps whose value differs from what other resolves for the same attribute
func (ps *ParamSet) Diff(other *ParamSet) (*ParamSet, error) {
	if err := ps.checkClass(other); err != nil {
		return nil, err
	}
	delta := New(ps.class)
	for id, v := range ps.values {
		d, err := ps.class.ByID(id)
		if err != nil {
			return nil, err
		}
		if !value.Equal(v, other.Resolve(d)) {
			delta.values[id] = value.Clone(v)
		}
	}
	return delta, nil
}

// Equal reports whether both sets belong to the same class and store equal values
func (ps *ParamSet) Equal(other *ParamSet) bool {
	if ps.class != other.class || len(ps.values) != len(other.values) {
		return false
	}
	for id, v := range ps.values {
		ov, ok := other.values[id]
		if !ok || !value.Equal(v, ov) {
			return false
		}
	}
	return true
}

// Clone deep copies the set
func (ps *ParamSet) Clone() *ParamSet {
	c := &ParamSet{
		class:  ps.class,
		values: make(map[uint16]value.Value, len(ps.values)),
	}
	for id, v := range ps.values {
		c.values[id] = value.Clone(v)
	}
	return c
}

func (ps *ParamSet) checkClass(other *ParamSet) error {
	if ps.class != other.class {
		return errors.WithStack(&common.ClassMismatchError{Left: ps.class.Name, Right: other.class.Name})
	}
	return nil
}

func (ps *ParamSet) String() string {
	return fmt.Sprintf("%s%v", ps.class.Name, ps.IDs())
}
