package gameobject

import (
	"github.com/goccy/go-json"
	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/gwparam/paramstore/engine/paramset"
)

// Write writes the flattened object for persistence
func (o *GameObjectData) Write(p *netutil.Packet) error {
	return paramset.WriteEntries(p, o.Flatten().Entries(), paramset.All)
}

// WriteToClient writes the flattened attributes visible to ordinary clients
func (o *GameObjectData) WriteToClient(p *netutil.Packet) error {
	return paramset.WriteEntries(p, o.Flatten().Entries(), paramset.Client)
}

// WriteToPrivilegedClient writes the flattened attributes visible to the owning client
func (o *GameObjectData) WriteToPrivilegedClient(p *netutil.Packet) error {
	return paramset.WriteEntries(p, o.Flatten().Entries(), paramset.PrivilegedClient)
}

// Read applies an envelope written by any of the writers. Entries go through Set, so values
// equal to the inherited ones do not become overrides. The envelope is decoded completely before
// anything is applied: on error o is left untouched.
func (o *GameObjectData) Read(p *netutil.Packet) error {
	ps, err := paramset.Read(p, o.class)
	if err != nil {
		return err
	}
	return o.Apply(ps)
}

// AsJSON converts the flattened Persistent attributes to a document keyed by name
func (o *GameObjectData) AsJSON() (map[string]interface{}, error) {
	return o.Flatten().AsJSON()
}

// MarshalJSON implements json.Marshaler
func (o *GameObjectData) MarshalJSON() ([]byte, error) {
	doc, err := o.AsJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// FromJSON sets the Persistent attributes found in doc
func (o *GameObjectData) FromJSON(doc map[string]interface{}) error {
	ps, err := paramset.FromJSON(o.class, doc)
	if err != nil {
		return err
	}
	for _, e := range ps.Entries() {
		if _, err := o.set(e.Desc, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON parses JSON text into a new template object of class
func UnmarshalJSON(class *attr.ClassDesc, b []byte) (*GameObjectData, error) {
	ps, err := paramset.UnmarshalJSON(class, b)
	if err != nil {
		return nil, err
	}
	o := New(class)
	if err := o.Apply(ps); err != nil {
		return nil, err
	}
	return o, nil
}
