package paramset

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/classes"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
)

var registry = classes.MustRegister()

func class(t *testing.T, name string) *attr.ClassDesc {
	c, err := registry.Class(name)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func attrID(t *testing.T, c *attr.ClassDesc, name string) uint16 {
	d, err := c.ByName(name)
	if err != nil {
		t.Fatal(err)
	}
	return d.ID
}

func mustInsert(t *testing.T, ps *ParamSet, name string, v value.Value) {
	if _, err := ps.Insert(attrID(t, ps.Class(), name), v); err != nil {
		t.Fatal(err)
	}
}

func samplePlayer(t *testing.T) *ParamSet {
	ps := New(class(t, classes.Player))
	mustInsert(t, ps, "Lvl", value.Int(10))
	mustInsert(t, ps, "Zone", value.String("test"))
	mustInsert(t, ps, "Position", value.Vector3{X: 1, Y: 2, Z: 3})
	mustInsert(t, ps, "Gold", value.Int64(1<<40))
	mustInsert(t, ps, "SessionKey", value.GUID(uuid.New()))
	mustInsert(t, ps, "Inventory", value.ContentRefList{{Class: 3, ID: uuid.New()}})
	mustInsert(t, ps, "Cooldowns", value.MustJSON(map[string]int{"fireball": 3}))
	mustInsert(t, ps, "Friends", value.NewGUIDSet(uuid.New(), uuid.New()))
	mustInsert(t, ps, "Stats", value.IntArray{1, 2, 3})
	return ps
}

func TestInsertGetRemove(t *testing.T) {
	ps := New(class(t, classes.Player))
	lvl := attrID(t, ps.Class(), "Lvl")

	old, err := ps.Insert(lvl, value.Int(3))
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, old)
	old, _ = ps.Insert(lvl, value.Int(4))
	assert.Equal(t, value.Int(3), old)

	v, ok := ps.Get(lvl)
	assert.T(t, ok, "Lvl should be stored")
	assert.Equal(t, value.Int(4), v)

	if _, err := ps.Insert(lvl, value.String("4")); !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("insert of wrong kind should fail, got %v", err)
	}
	if _, err := ps.Insert(999, value.Int(1)); !errors.Is(err, common.ErrUnknownAttributeID) {
		t.Errorf("insert of unknown id should fail, got %v", err)
	}
	if _, _, err := ps.GetNamed("Mana"); !errors.Is(err, common.ErrUnknownAttributeName) {
		t.Errorf("unknown name should fail, got %v", err)
	}

	v, ok = ps.Remove(lvl)
	assert.T(t, ok, "Lvl should be removed")
	assert.Equal(t, value.Int(4), v)
	assert.Equal(t, 0, ps.Len())
}

func TestValuesAreCopied(t *testing.T) {
	ps := New(class(t, classes.Player))
	stats := attrID(t, ps.Class(), "Stats")

	s := value.IntArray{1, 2, 3}
	if _, err := ps.Insert(stats, s); err != nil {
		t.Fatal(err)
	}
	s[0] = 9
	v, _ := ps.Get(stats)
	assert.Equal(t, value.IntArray{1, 2, 3}, v)

	v.(value.IntArray)[1] = 9
	ps.Entries()[0].Value.(value.IntArray)[2] = 9
	v, _ = ps.Get(stats)
	assert.Equal(t, value.IntArray{1, 2, 3}, v)
}

func TestRoundTrip(t *testing.T) {
	ps := samplePlayer(t)
	p := netutil.NewPacket()
	defer p.Release()
	if err := ps.Write(p); err != nil {
		t.Fatal(err)
	}

	got, err := Read(netutil.NewPacketWithPayload(p.Payload()), ps.Class())
	if err != nil {
		t.Fatal(err)
	}
	assert.T(t, got.Equal(ps), "round trip should reproduce", ps, "got", got)
}

func TestWriteLayout(t *testing.T) {
	ps := New(class(t, classes.Player))
	mustInsert(t, ps, "Lvl", value.Int(10))
	mustInsert(t, ps, "Alive", value.Bool(false))
	p := netutil.NewPacket()
	if err := ps.Write(p); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []byte{
		1,    // version
		2, 0, // count
		1, 0, 0, // Alive
		2, 0, 10, 0, 0, 0, // Lvl
	}, p.Payload())
}

func TestSkipValues(t *testing.T) {
	ps := New(class(t, classes.Player))
	mustInsert(t, ps, "Mount", value.ContentRef{Class: 3})
	mustInsert(t, ps, "Cooldowns", value.JSON{})
	mustInsert(t, ps, "Lvl", value.Int(1))

	p := netutil.NewPacket()
	if err := ps.Write(p); err != nil {
		t.Fatal(err)
	}
	got, err := Read(p, ps.Class())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []uint16{2}, got.IDs())
}

func TestWriteToClient(t *testing.T) {
	ps := samplePlayer(t)
	p := netutil.NewPacket()
	if err := ps.WriteToClient(p); err != nil {
		t.Fatal(err)
	}
	got, err := Read(p, ps.Class())
	if err != nil {
		t.Fatal(err)
	}
	_, ok := got.Get(attrID(t, ps.Class(), "SessionKey"))
	assert.T(t, !ok, "SessionKey must not reach clients")
	assert.Equal(t, ps.Len()-1, got.Len())
}

func TestReadErrors(t *testing.T) {
	c := class(t, classes.Player)

	// unknown id aborts the whole envelope
	p := netutil.NewPacket()
	p.AppendByte(FormatVersion)
	p.AppendUint16(2)
	p.AppendUint16(999)
	p.AppendUint32(7)
	p.AppendUint16(2)
	p.AppendUint32(7)
	if _, err := Read(p, c); !errors.Is(err, common.ErrUnknownAttributeID) {
		t.Errorf("unknown id should abort, got %v", err)
	}

	p = netutil.NewPacketWithPayload([]byte{2, 0, 0})
	if _, err := Read(p, c); !errors.Is(err, common.ErrInvalidData) {
		t.Errorf("bad version should fail, got %v", err)
	}

	// count larger than the entries present
	p = netutil.NewPacketWithPayload([]byte{1, 3, 0, 2, 0, 10, 0, 0, 0})
	if _, err := Read(p, c); !errors.Is(err, common.ErrInvalidData) {
		t.Errorf("truncated envelope should fail, got %v", err)
	}

	// string length running past the buffer
	p = netutil.NewPacketWithPayload([]byte{1, 1, 0, 3, 0, 200, 0, 'a'})
	if _, err := Read(p, c); !errors.Is(err, common.ErrInvalidData) {
		t.Errorf("bad string length should fail, got %v", err)
	}
}

func TestDiff(t *testing.T) {
	c := class(t, classes.Player)
	a := New(c)
	mustInsert(t, a, "Lvl", value.Int(10))
	mustInsert(t, a, "Zone", value.String("test"))
	mustInsert(t, a, "Alive", value.Bool(true))

	b := New(c)
	mustInsert(t, b, "Lvl", value.Int(10))
	mustInsert(t, b, "Zone", value.String("home"))

	d, err := a.Diff(b)
	if err != nil {
		t.Fatal(err)
	}
	// Alive equals the default b resolves to
	assert.Equal(t, []uint16{3}, d.IDs())

	if _, err := a.Diff(New(class(t, classes.Npc))); !errors.Is(err, common.ErrClassMismatch) {
		t.Errorf("diff across classes should fail, got %v", err)
	}
}

func TestExtendCloneEqual(t *testing.T) {
	c := class(t, classes.Player)
	a := samplePlayer(t)
	b := a.Clone()
	assert.T(t, a.Equal(b), "clone should be equal")

	stats := attrID(t, c, "Stats")
	b.values[stats].(value.IntArray)[0] = 100
	assert.T(t, !a.Equal(b), "clone should not share arrays")

	patch := New(c)
	mustInsert(t, patch, "Lvl", value.Int(11))
	if err := a.Extend(patch); err != nil {
		t.Fatal(err)
	}
	v, _ := a.Get(attrID(t, c, "Lvl"))
	assert.Equal(t, value.Int(11), v)

	if err := a.Extend(New(class(t, classes.Item))); !errors.Is(err, common.ErrClassMismatch) {
		t.Errorf("extend across classes should fail, got %v", err)
	}
}

func TestJSON(t *testing.T) {
	ps := samplePlayer(t)
	b, err := ps.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalJSON(ps.Class(), b)
	if err != nil {
		t.Fatal(err)
	}

	want := New(ps.Class())
	ps.Range(func(d *attr.Descriptor, v value.Value) bool {
		if d.IsPersistent() {
			want.values[d.ID] = v
		}
		return true
	})
	assert.T(t, want.Equal(got), "json should keep persistent attributes only:", got)

	if _, err := UnmarshalJSON(ps.Class(), []byte(`{"Mana": 3}`)); !errors.Is(err, common.ErrUnknownAttributeName) {
		t.Errorf("unknown name should fail, got %v", err)
	}
	if _, err := UnmarshalJSON(ps.Class(), []byte(`{"Lvl": "ten"}`)); !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("wrong type should fail, got %v", err)
	}
	got, err = UnmarshalJSON(ps.Class(), []byte(`{"Lvl": 3, "Position": [1, 2, 3]}`))
	assert.Equal(t, nil, err)
	assert.Equal(t, []uint16{2}, got.IDs())
}
