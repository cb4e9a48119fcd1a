package paramset

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
)

// FormatVersion is the leading byte of every attribute envelope
const FormatVersion = 1

// Filter selects the attributes written into an envelope
type Filter func(d *attr.Descriptor) bool

var (
	// All passes every attribute
	All Filter = func(d *attr.Descriptor) bool { return true }
	// NotExcludedFromClient drops attributes that no client may ever see
	NotExcludedFromClient Filter = func(d *attr.Descriptor) bool { return !d.Flags.Has(attr.ExcludeFromClient) }
	// Client keeps attributes of ordinary client sync
	Client Filter = (*attr.Descriptor).VisibleToClient
	// PrivilegedClient keeps attributes the owning client sees
	PrivilegedClient Filter = (*attr.Descriptor).VisibleToPrivilegedClient
	// Persistent keeps attributes stored in the database
	Persistent Filter = (*attr.Descriptor).IsPersistent
)

// Entry is one attribute of an envelope
type Entry struct {
	Desc  *attr.Descriptor
	Value value.Value
}

// WriteEntries writes the envelope of entries that pass filter and are not skip values.
// Entries are written in the given order.
func WriteEntries(p *netutil.Packet, entries []Entry, filter Filter) error {
	kept := entries[:0:0]
	for _, e := range entries {
		if value.ShouldSkip(e.Value) || !filter(e.Desc) {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > netutil.MAX_SHORT_LEN {
		return common.InvalidDataf("%d entries do not fit u16 count", len(kept))
	}

	p.AppendByte(FormatVersion)
	p.AppendUint16(uint16(len(kept)))
	for _, e := range kept {
		p.AppendUint16(e.Desc.ID)
		if err := value.Write(p, e.Value); err != nil {
			return errors.Wrapf(err, "write %s", e.Desc)
		}
	}
	return nil
}

// ReadEntries parses an envelope of class and calls apply for each entry.
//
// An attribute id unknown to the class aborts the parse: value widths are implied by the
// descriptor, so the rest of the stream cannot be located. Persistence and client envelopes are
// read by this same function.
func ReadEntries(p *netutil.Packet, class *attr.ClassDesc, apply func(d *attr.Descriptor, v value.Value) error) error {
	version, err := p.ReadOneByte()
	if err != nil {
		return errors.Wrap(err, "read envelope version")
	}
	if version != FormatVersion {
		return common.InvalidDataf("%s: unsupported envelope version %d", class.Name, version)
	}
	count, err := p.ReadUint16()
	if err != nil {
		return errors.Wrap(err, "read envelope count")
	}

	for i := 0; i < int(count); i++ {
		id, err := p.ReadUint16()
		if err != nil {
			return errors.Wrapf(err, "read entry %d of %d", i, count)
		}
		d, err := class.ByID(id)
		if err != nil {
			gwlog.Warnf("%s: discarding envelope at entry %d: %s", class.Name, i, err)
			return errors.WithStack(err)
		}
		v, err := value.Read(p, d.Kind)
		if err != nil {
			gwlog.Warnf("%s: bad value at entry %d: %s", d, i, err)
			return errors.Wrapf(err, "read %s", d)
		}
		if err := apply(d, v); err != nil {
			return err
		}
	}
	return nil
}

// Read parses an envelope written by Write or WriteToClient
func Read(p *netutil.Packet, class *attr.ClassDesc) (*ParamSet, error) {
	ps := New(class)
	err := ReadEntries(p, class, func(d *attr.Descriptor, v value.Value) error {
		ps.values[d.ID] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ps, nil
}

// Entries returns copies of the stored attributes in id order
func (ps *ParamSet) Entries() []Entry {
	entries := make([]Entry, 0, len(ps.values))
	for id, v := range ps.values {
		d, err := ps.class.ByID(id)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Desc: d, Value: value.Clone(v)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Desc.ID < entries[j].Desc.ID })
	return entries
}

// Write writes every attribute that is not a skip value
func (ps *ParamSet) Write(p *netutil.Packet) error {
	return WriteEntries(p, ps.Entries(), All)
}

// WriteToClient writes like Write but leaves out ExcludeFromClient attributes
func (ps *ParamSet) WriteToClient(p *netutil.Packet) error {
	return WriteEntries(p, ps.Entries(), NotExcludedFromClient)
}

// WriteFiltered writes the attributes that pass filter
func (ps *ParamSet) WriteFiltered(p *netutil.Packet, filter Filter) error {
	return WriteEntries(p, ps.Entries(), filter)
}

// AsJSON converts the Persistent attributes to a document keyed by attribute name
func (ps *ParamSet) AsJSON() (map[string]interface{}, error) {
	doc := map[string]interface{}{}
	for _, e := range ps.Entries() {
		if !e.Desc.IsPersistent() {
			continue
		}
		v, err := value.ToJSON(e.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "json of %s", e.Desc)
		}
		doc[e.Desc.Name] = v
	}
	return doc, nil
}

// MarshalJSON implements json.Marshaler
func (ps *ParamSet) MarshalJSON() ([]byte, error) {
	doc, err := ps.AsJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// FromJSON builds a set from a document keyed by attribute name. The document may come from a JSON,
// MessagePack or BSON decoder. Attributes that are not Persistent are ignored.
func FromJSON(class *attr.ClassDesc, doc map[string]interface{}) (*ParamSet, error) {
	ps := New(class)
	for name, data := range doc {
		d, err := class.ByName(name)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if !d.IsPersistent() {
			gwlog.Debugf("%s: ignoring non persistent attribute in document", d)
			continue
		}
		v, err := value.FromJSON(d.Kind, data)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s", d)
		}
		ps.values[d.ID] = v
	}
	return ps, nil
}

// UnmarshalJSON parses JSON text into a set of class
func UnmarshalJSON(class *attr.ClassDesc, b []byte) (*ParamSet, error) {
	var doc map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(&common.InvalidDataError{Reason: err.Error()}, class.Name)
	}
	return FromJSON(class, doc)
}
