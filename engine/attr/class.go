package attr

import (
	"sort"

	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
)

// ClassDesc is the attribute schema of one game class.
//
// Schemas are built once at startup from generated data and are read-only afterwards, so a
// ClassDesc may be shared by any number of goroutines once registration is done.
type ClassDesc struct {
	ID   uint16
	Name string

	byID   map[uint16]*Descriptor
	byName map[string]*Descriptor
	attrs  []*Descriptor // sorted by ID
}

func newClassDesc(name string, id uint16) *ClassDesc {
	return &ClassDesc{
		ID:     id,
		Name:   name,
		byID:   map[uint16]*Descriptor{},
		byName: map[string]*Descriptor{},
	}
}

// AddAttr adds an attribute descriptor to the class
func (c *ClassDesc) AddAttr(d Descriptor) (*Descriptor, error) {
	if d.Name == "" {
		return nil, errors.Errorf("%s: attribute %d has no name", c.Name, d.ID)
	}
	if !d.Kind.Valid() {
		return nil, errors.Errorf("%s::%s: invalid kind %s", c.Name, d.Name, d.Kind)
	}
	if _, ok := c.byID[d.ID]; ok {
		return nil, errors.Errorf("%s::%s: attribute id %d already defined", c.Name, d.Name, d.ID)
	}
	if _, ok := c.byName[d.Name]; ok {
		return nil, errors.Errorf("%s: attribute %s already defined", c.Name, d.Name)
	}
	if d.Default == nil {
		d.Default = value.Zero(d.Kind)
	} else if err := value.Check(d.Kind, d.Default); err != nil {
		return nil, errors.Wrapf(err, "%s::%s default", c.Name, d.Name)
	}

	desc := &d
	desc.class = c
	c.byID[desc.ID] = desc
	c.byName[desc.Name] = desc

	idx := sort.Search(len(c.attrs), func(i int) bool { return c.attrs[i].ID > desc.ID })
	c.attrs = append(c.attrs, nil)
	copy(c.attrs[idx+1:], c.attrs[idx:])
	c.attrs[idx] = desc
	return desc, nil
}

// DefineAttr defines an attribute with flag names like "Persistent" or "ClientPrivileged".
// Schemas are static data, so a bad definition panics.
func (c *ClassDesc) DefineAttr(id uint16, name string, def value.Value, defs ...string) *ClassDesc {
	flags, err := ParseFlags(defs...)
	if err != nil {
		gwlog.Panicf("attribute %s::%s: %s", c.Name, name, err)
	}
	if def == nil {
		gwlog.Panicf("attribute %s::%s: default value is required to infer its kind", c.Name, name)
	}
	if _, err := c.AddAttr(Descriptor{ID: id, Name: name, Kind: def.Kind(), Default: def, Flags: flags}); err != nil {
		gwlog.Panicf("DefineAttr: %s", err)
	}
	return c
}

// ByID looks up an attribute by wire id
func (c *ClassDesc) ByID(id uint16) (*Descriptor, error) {
	if d, ok := c.byID[id]; ok {
		return d, nil
	}
	return nil, &common.UnknownAttributeIDError{Class: c.Name, ID: id}
}

// ByName looks up an attribute by name
func (c *ClassDesc) ByName(name string) (*Descriptor, error) {
	if d, ok := c.byName[name]; ok {
		return d, nil
	}
	return nil, &common.UnknownAttributeNameError{Class: c.Name, Name: name}
}

// Attributes returns all descriptors ordered by id. The slice must not be modified.
func (c *ClassDesc) Attributes() []*Descriptor {
	return c.attrs
}

// NumAttributes returns the number of attributes of the class
func (c *ClassDesc) NumAttributes() int {
	return len(c.attrs)
}

func (c *ClassDesc) String() string {
	return c.Name
}
