package attr

import (
	"github.com/gwparam/paramstore/engine/value"
)

// Descriptor is the static metadata of one attribute of a class
type Descriptor struct {
	ID      uint16
	Name    string
	Kind    value.Kind
	Default value.Value
	Flags   Flag

	class *ClassDesc
}

// Class returns the class that defines the attribute
func (d *Descriptor) Class() *ClassDesc {
	return d.class
}

// IsPersistent returns if the attribute is stored in the database
func (d *Descriptor) IsPersistent() bool {
	return d.Flags.Has(Persistent)
}

// VisibleToClient returns if ordinary client sync includes the attribute
func (d *Descriptor) VisibleToClient() bool {
	return d.Flags&(ExcludeFromClient|ClientUnknown|ClientPrivileged) == 0
}

// VisibleToPrivilegedClient returns if the owning client sees the attribute.
// ClientUnknown attributes are hidden unless they are also ClientPrivileged.
func (d *Descriptor) VisibleToPrivilegedClient() bool {
	if d.Flags.Has(ExcludeFromClient) {
		return false
	}
	return !d.Flags.Has(ClientUnknown) || d.Flags.Has(ClientPrivileged)
}

func (d *Descriptor) String() string {
	return d.class.Name + "::" + d.Name
}
