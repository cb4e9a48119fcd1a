package gameobject

import (
	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/gwparam/paramstore/engine/paramset"
	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
)

// GameObjectData is a game object whose attributes resolve through an optional parent template.
//
// The instance set only holds overrides: a value equal to what the parent (or the class default)
// resolves is never stored locally. Parents are shared between many objects and are never
// mutated through a child.
type GameObjectData struct {
	class    *attr.ClassDesc
	parent   *GameObjectData
	instance *paramset.ParamSet
	changed  map[uint16]struct{}
}

// New creates a template object without parent
func New(class *attr.ClassDesc) *GameObjectData {
	return &GameObjectData{
		class:    class,
		instance: paramset.New(class),
		changed:  map[uint16]struct{}{},
	}
}

// Instantiate creates a live copy of parent with no overrides
func Instantiate(parent *GameObjectData) *GameObjectData {
	o := New(parent.class)
	o.parent = parent
	return o
}

// Class returns the class of the object
func (o *GameObjectData) Class() *attr.ClassDesc {
	return o.class
}

// Parent returns the template of the object, or nil
func (o *GameObjectData) Parent() *GameObjectData {
	return o.parent
}

// SetParent replaces the template. Local overrides are kept as they are.
func (o *GameObjectData) SetParent(parent *GameObjectData) error {
	if parent != nil {
		if parent.class != o.class {
			return o.classMismatch(parent.class)
		}
		for p := parent; p != nil; p = p.parent {
			if p == o {
				return errors.Errorf("%s: parent chain would contain the object itself", o.class.Name)
			}
		}
	}
	o.parent = parent
	return nil
}

// Overrides returns a copy of the local overrides
func (o *GameObjectData) Overrides() *paramset.ParamSet {
	return o.instance.Clone()
}

// HasOverride returns if the attribute called name is overridden locally
func (o *GameObjectData) HasOverride(name string) bool {
	_, ok, _ := o.instance.GetNamed(name)
	return ok
}

func (o *GameObjectData) resolve(d *attr.Descriptor) value.Value {
	for obj := o; obj != nil; obj = obj.parent {
		if v, ok := obj.instance.Get(d.ID); ok {
			return v
		}
	}
	return value.Clone(d.Default)
}

func (o *GameObjectData) inherited(d *attr.Descriptor) value.Value {
	if o.parent == nil {
		return d.Default
	}
	return o.parent.resolve(d)
}

// Get returns the resolved value of attribute id
func (o *GameObjectData) Get(id uint16) (value.Value, error) {
	d, err := o.class.ByID(id)
	if err != nil {
		return nil, err
	}
	return o.resolve(d), nil
}

// GetNamed returns the resolved value of the attribute called name
func (o *GameObjectData) GetNamed(name string) (value.Value, error) {
	d, err := o.class.ByName(name)
	if err != nil {
		return nil, err
	}
	return o.resolve(d), nil
}

// Set assigns attribute id and returns the previous local override, if any.
// A value equal to the inherited one removes the local override.
func (o *GameObjectData) Set(id uint16, v value.Value) (value.Value, error) {
	d, err := o.class.ByID(id)
	if err != nil {
		return nil, err
	}
	return o.set(d, v)
}

// SetNamed assigns the attribute called name, see Set
func (o *GameObjectData) SetNamed(name string, v value.Value) (value.Value, error) {
	d, err := o.class.ByName(name)
	if err != nil {
		return nil, err
	}
	return o.set(d, v)
}

func (o *GameObjectData) set(d *attr.Descriptor, v value.Value) (value.Value, error) {
	if err := value.Check(d.Kind, v); err != nil {
		return nil, errors.Wrapf(err, "set %s", d)
	}

	old, had := o.instance.Get(d.ID)
	if value.Equal(v, o.inherited(d)) {
		if had {
			o.instance.Remove(d.ID)
			o.changed[d.ID] = struct{}{}
		}
		return old, nil
	}

	if had && value.Equal(old, v) {
		return old, nil
	}
	if _, err := o.instance.Insert(d.ID, v); err != nil {
		return nil, err
	}
	o.changed[d.ID] = struct{}{}
	return old, nil
}

// Merge folds the overrides of other into o. The parent of o is left alone.
func (o *GameObjectData) Merge(other *GameObjectData) error {
	if other.class != o.class {
		return o.classMismatch(other.class)
	}
	for _, e := range other.instance.Entries() {
		if _, err := o.set(e.Desc, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// Flatten returns the explicitly stored values along the parent chain, nearest first.
// Class defaults are not part of the view.
func (o *GameObjectData) Flatten() *paramset.ParamSet {
	if o.parent == nil {
		return o.instance.Clone()
	}
	flat := o.parent.Flatten()
	_ = flat.Extend(o.instance.Clone())
	return flat
}

// PersistentValueSet returns the flattened Persistent attributes as a set without parent
func (o *GameObjectData) PersistentValueSet() *paramset.ParamSet {
	flat := o.Flatten()
	for _, e := range flat.Entries() {
		if !e.Desc.IsPersistent() {
			flat.Remove(e.Desc.ID)
		}
	}
	return flat
}

// Resolved returns the resolved value of every attribute of the class, defaults included
func (o *GameObjectData) Resolved() *paramset.ParamSet {
	ps := paramset.New(o.class)
	for _, d := range o.class.Attributes() {
		if _, err := ps.Insert(d.ID, o.resolve(d)); err != nil {
			gwlog.Errorf("%s: resolve %s: %s", o.class.Name, d.Name, err)
		}
	}
	return ps
}

// Equal reports whether both objects resolve every attribute to equal values
func (o *GameObjectData) Equal(other *GameObjectData) bool {
	if other.class != o.class {
		return false
	}
	for _, d := range o.class.Attributes() {
		if !value.Equal(o.resolve(d), other.resolve(d)) {
			return false
		}
	}
	return true
}

// Clone copies the overrides deeply and shares the parent
func (o *GameObjectData) Clone() *GameObjectData {
	return &GameObjectData{
		class:    o.class,
		parent:   o.parent,
		instance: o.instance.Clone(),
		changed:  map[uint16]struct{}{},
	}
}

// DiffData returns the resolved values of o that differ from what other resolves
func (o *GameObjectData) DiffData(other *GameObjectData) (*paramset.ParamSet, error) {
	if other.class != o.class {
		return nil, o.classMismatch(other.class)
	}
	delta := paramset.New(o.class)
	for _, d := range o.class.Attributes() {
		v := o.resolve(d)
		if value.Equal(v, other.resolve(d)) {
			continue
		}
		if _, err := delta.Insert(d.ID, v); err != nil {
			return nil, err
		}
	}
	return delta, nil
}

// Apply sets every entry of delta on o
func (o *GameObjectData) Apply(delta *paramset.ParamSet) error {
	if delta.Class() != o.class {
		return o.classMismatch(delta.Class())
	}
	for _, e := range delta.Entries() {
		if _, err := o.set(e.Desc, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (o *GameObjectData) classMismatch(other *attr.ClassDesc) error {
	err := &common.ClassMismatchError{Left: o.class.Name, Right: other.Name}
	gwlog.Errorf("%s", err)
	return errors.WithStack(err)
}

func (o *GameObjectData) String() string {
	return "GameObjectData<" + o.instance.String() + ">"
}
