package gameobject

import (
	"math"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/classes"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/gwparam/paramstore/engine/paramset"
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

func mustSet(t *testing.T, o *GameObjectData, name string, v value.Value) {
	if _, err := o.SetNamed(name, v); err != nil {
		t.Fatalf("set %s: %s", name, err)
	}
}

func mustGet(t *testing.T, o *GameObjectData, name string) value.Value {
	v, err := o.GetNamed(name)
	if err != nil {
		t.Fatalf("get %s: %s", name, err)
	}
	return v
}

func npcTemplate(t *testing.T) *GameObjectData {
	tpl := New(class(t, classes.Npc))
	mustSet(t, tpl, "Name", value.String("guard"))
	mustSet(t, tpl, "Hp", value.Int(5))
	mustSet(t, tpl, "Loot", value.ContentRefList{{Class: 3, ID: uuid.New()}})
	tpl.ClearChanges()
	return tpl
}

func TestResolution(t *testing.T) {
	tpl := npcTemplate(t)
	npc := Instantiate(tpl)

	assert.Equal(t, value.String("guard"), mustGet(t, npc, "Name"))
	assert.Equal(t, value.Int(5), mustGet(t, npc, "Hp"))
	// not set anywhere in the chain
	assert.Equal(t, value.String("idle"), mustGet(t, npc, "Behavior"))
	assert.Equal(t, value.Double(12.5), mustGet(t, npc, "AggroRange"))
	assert.Equal(t, value.Vector3{}, mustGet(t, npc, "Position"))

	if _, err := npc.GetNamed("Mana"); !errors.Is(err, common.ErrUnknownAttributeName) {
		t.Errorf("unknown name should fail, got %v", err)
	}
	if _, err := npc.Get(99); !errors.Is(err, common.ErrUnknownAttributeID) {
		t.Errorf("unknown id should fail, got %v", err)
	}
	if _, err := npc.SetNamed("Hp", value.String("5")); !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("set of wrong kind should fail, got %v", err)
	}
}

func TestOverrideCollapsing(t *testing.T) {
	tpl := npcTemplate(t)
	npc := Instantiate(tpl)

	prev, err := npc.SetNamed("Hp", value.Int(5))
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, prev)
	assert.T(t, !npc.HasOverride("Hp"), "value equal to the parent should not be stored")
	assert.Equal(t, value.Int(5), mustGet(t, npc, "Hp"))

	mustSet(t, npc, "Hp", value.Int(3))
	assert.T(t, npc.HasOverride("Hp"), "Hp should be overridden")

	prev, _ = npc.SetNamed("Hp", value.Int(5))
	assert.Equal(t, value.Int(3), prev)
	assert.T(t, !npc.HasOverride("Hp"), "override should collapse")

	// class default collapses on a template
	mustSet(t, tpl, "Behavior", value.String("idle"))
	assert.T(t, !tpl.HasOverride("Behavior"), "default should not be stored")
	assert.Equal(t, value.Int(5), mustGet(t, tpl, "Hp"))

	// the parent is never touched through the child
	mustSet(t, npc, "Name", value.String("captain"))
	assert.Equal(t, value.String("guard"), mustGet(t, tpl, "Name"))
}

func TestChanges(t *testing.T) {
	o := New(class(t, classes.Player))
	mustSet(t, o, "Lvl", value.Int(1))
	o.ClearChanges()

	it := o.Changes()
	_, ok := it.Next()
	assert.T(t, !ok, "no changes after ClearChanges")

	mustSet(t, o, "Lvl", value.Int(10))
	it = o.Changes()
	assert.Equal(t, 1, it.Len())
	c, ok := it.Next()
	assert.T(t, ok, "one change expected")
	assert.Equal(t, "Lvl", c.Desc.Name)
	assert.Equal(t, value.Int(10), c.Value)
	_, ok = it.Next()
	assert.T(t, !ok, "iterator should be exhausted")
	_, ok = it.Next()
	assert.T(t, !ok, "iterator should not restart")

	// a collapsing set is a change too
	o.ClearChanges()
	mustSet(t, o, "Lvl", value.Int(0))
	c, ok = o.Changes().Next()
	assert.T(t, ok, "removal by collapse should be tracked")
	assert.Equal(t, value.Int(0), c.Value)

	// setting the current value again is not
	o.ClearChanges()
	mustSet(t, o, "Lvl", value.Int(0))
	assert.T(t, !o.HasChanges(), "no-op set should not be tracked")
}

func TestPlayerScenario(t *testing.T) {
	c := class(t, classes.Player)
	o := New(c)
	assert.Equal(t, value.Bool(true), mustGet(t, o, "Alive"))
	assert.Equal(t, value.Int(0), mustGet(t, o, "Lvl"))

	if err := o.SetInt("Lvl", 10); err != nil {
		t.Fatal(err)
	}
	if err := o.SetStr("Zone", "test"); err != nil {
		t.Fatal(err)
	}

	p := netutil.NewPacket()
	defer p.Release()
	if err := o.Write(p); err != nil {
		t.Fatal(err)
	}

	fresh := New(c)
	if err := fresh.Read(netutil.NewPacketWithPayload(p.Payload())); err != nil {
		t.Fatal(err)
	}
	ov := fresh.Overrides()
	assert.Equal(t, []uint16{2, 3}, ov.IDs())
	lvl, _ := fresh.GetInt("Lvl")
	zone, _ := fresh.GetStr("Zone")
	alive, _ := fresh.GetBool("Alive")
	assert.Equal(t, int32(10), lvl)
	assert.Equal(t, "test", zone)
	assert.Equal(t, true, alive)
	assert.T(t, fresh.Equal(o), "read should reproduce the written object")
}

func writtenIDs(t *testing.T, write func(p *netutil.Packet) error, c *attr.ClassDesc) map[uint16]bool {
	p := netutil.NewPacket()
	defer p.Release()
	if err := write(p); err != nil {
		t.Fatal(err)
	}
	ps, err := paramset.Read(p, c)
	if err != nil {
		t.Fatal(err)
	}
	ids := map[uint16]bool{}
	for _, id := range ps.IDs() {
		ids[id] = true
	}
	return ids
}

func subset(a, b map[uint16]bool) bool {
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}

func TestWriteFilters(t *testing.T) {
	c := class(t, classes.Player)
	tpl := New(c)
	mustSet(t, tpl, "Name", value.String("hero"))
	mustSet(t, tpl, "Gold", value.Int64(100))
	mustSet(t, tpl, "Friends", value.NewGUIDSet(uuid.New()))

	o := Instantiate(tpl)
	mustSet(t, o, "Lvl", value.Int(3))
	mustSet(t, o, "SessionKey", value.GUID(uuid.New()))
	mustSet(t, o, "Cooldowns", value.MustJSON(map[string]int{"dash": 1}))
	mustSet(t, o, "Mount", value.ContentRef{Class: 3}) // skip value
	mustSet(t, o, "Position", value.Vector3{X: 1})

	all := writtenIDs(t, o.Write, c)
	client := writtenIDs(t, o.WriteToClient, c)
	privileged := writtenIDs(t, o.WriteToPrivilegedClient, c)

	assert.T(t, subset(client, all), "client set should be a subset of the full set")
	assert.T(t, subset(client, privileged), "client set should be a subset of the privileged set")
	assert.T(t, subset(privileged, all), "privileged set should be a subset of the full set")

	// Name(4), Gold(6), Friends(10) come from the template
	assert.Equal(t, map[uint16]bool{2: true, 4: true, 5: true, 6: true, 7: true, 9: true, 10: true}, all)
	assert.Equal(t, map[uint16]bool{2: true, 4: true, 5: true}, client)
	assert.Equal(t, map[uint16]bool{2: true, 4: true, 5: true, 6: true, 10: true}, privileged)
}

func TestMerge(t *testing.T) {
	tpl := npcTemplate(t)
	npc := Instantiate(tpl)
	mustSet(t, npc, "Hp", value.Int(1))

	patch := New(tpl.Class())
	mustSet(t, patch, "Hp", value.Int(5))
	mustSet(t, patch, "Position", value.Vector3{X: 4})
	if err := npc.Merge(patch); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, tpl, npc.Parent())
	assert.Equal(t, value.Vector3{X: 4}, mustGet(t, npc, "Position"))
	// patch value equals the template value, so the override collapses
	assert.T(t, !npc.HasOverride("Hp"), "Hp should collapse into the template value")

	if err := npc.Merge(New(class(t, classes.Item))); !errors.Is(err, common.ErrClassMismatch) {
		t.Errorf("merge across classes should fail, got %v", err)
	}
}

func TestPersistentValueSet(t *testing.T) {
	tpl := npcTemplate(t)
	npc := Instantiate(tpl)
	mustSet(t, npc, "Position", value.Vector3{Y: 2})

	ps := npc.PersistentValueSet()
	assert.Equal(t, []uint16{2}, ps.IDs())
	v, _ := ps.Get(2)
	assert.Equal(t, value.Int(5), v)
}

func TestDiffApply(t *testing.T) {
	c := class(t, classes.Player)
	tpl := New(c)
	mustSet(t, tpl, "Zone", value.String("lobby"))

	a := Instantiate(tpl)
	mustSet(t, a, "Lvl", value.Int(7))
	mustSet(t, a, "Zone", value.String("arena"))
	mustSet(t, a, "Alive", value.Bool(false))

	b := New(c)
	mustSet(t, b, "Lvl", value.Int(7))
	mustSet(t, b, "Stats", value.IntArray{1})
	mustSet(t, b, "Gold", value.Int64(9))

	delta, err := a.Diff(b)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []uint16{1, 3, 6, 13}, delta.IDs())
	if err := b.Apply(delta); err != nil {
		t.Fatal(err)
	}
	assert.T(t, b.Equal(a), "apply(a.diff(b), b) should equal a")

	delta, err = a.Diff(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, delta.Len())

	npc := New(class(t, classes.Npc))
	var erased Object = npc
	if _, err := a.Diff(erased); !errors.Is(err, common.ErrClassMismatch) {
		t.Errorf("diff across classes should fail, got %v", err)
	}
	if err := npc.Apply(delta); !errors.Is(err, common.ErrClassMismatch) {
		t.Errorf("apply across classes should fail, got %v", err)
	}
}

func TestCloneAndParent(t *testing.T) {
	tpl := npcTemplate(t)
	npc := Instantiate(tpl)
	mustSet(t, npc, "Dialog", value.StringArray{"hi"})

	cp := npc.Clone()
	assert.Equal(t, tpl, cp.Parent())
	assert.T(t, cp.Equal(npc), "clone should be equal")
	mustSet(t, cp, "Dialog", value.StringArray{"bye"})
	assert.Equal(t, value.StringArray{"hi"}, mustGet(t, npc, "Dialog"))

	// hot reload of the template keeps the overrides
	tpl2 := New(tpl.Class())
	mustSet(t, tpl2, "Name", value.String("archer"))
	if err := npc.SetParent(tpl2); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, value.String("archer"), mustGet(t, npc, "Name"))
	assert.Equal(t, value.StringArray{"hi"}, mustGet(t, npc, "Dialog"))

	if err := tpl2.SetParent(npc); err == nil {
		t.Errorf("cyclic parent should be rejected")
	}
	if err := npc.SetParent(New(class(t, classes.Item))); !errors.Is(err, common.ErrClassMismatch) {
		t.Errorf("parent of another class should be rejected, got %v", err)
	}
}

func TestJSON(t *testing.T) {
	c := class(t, classes.Player)
	o := New(c)
	mustSet(t, o, "Lvl", value.Int(12))
	mustSet(t, o, "Gold", value.Int64(1<<50))
	mustSet(t, o, "Position", value.Vector3{Z: 1})

	b, err := o.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalJSON(c, b)
	if err != nil {
		t.Fatal(err)
	}
	gold, _ := got.GetInt64("Gold")
	assert.Equal(t, int64(1<<50), gold)
	assert.Equal(t, value.Vector3{}, mustGet(t, got, "Position"))

	doc, _ := o.AsJSON()
	cp := New(c)
	if err := cp.FromJSON(doc); err != nil {
		t.Fatal(err)
	}
	lvl, _ := cp.GetInt("Lvl")
	assert.Equal(t, int32(12), lvl)
}

func TestBuild(t *testing.T) {
	type bundle struct{ Name string }
	RegisterBuilder(classes.Npc, func(o *GameObjectData) (interface{}, error) {
		name, err := o.GetStr("Name")
		return &bundle{Name: name}, err
	})

	npc := Instantiate(npcTemplate(t))
	b, err := npc.Build()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, &bundle{Name: "guard"}, b)

	if _, err := New(class(t, classes.Item)).Build(); err == nil {
		t.Errorf("build without builder should fail")
	}
	if _, err := GetAs[value.String](npc, "Hp"); !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("downcast to the wrong type should fail, got %v", err)
	}
}

func TestValuesAreCopied(t *testing.T) {
	tpl := New(class(t, classes.Player))
	mustSet(t, tpl, "Stats", value.IntArray{1, 2, 3})
	mustSet(t, tpl, "Friends", value.NewGUIDSet(uuid.New()))
	child := Instantiate(tpl)

	// editing what the child resolves must not reach the template
	stats := mustGet(t, child, "Stats").(value.IntArray)
	stats[0] = 99
	assert.Equal(t, value.IntArray{1, 2, 3}, mustGet(t, tpl, "Stats"))
	friends := mustGet(t, child, "Friends").(value.GUIDSet)
	friends[uuid.New()] = struct{}{}
	assert.Equal(t, 1, len(mustGet(t, tpl, "Friends").(value.GUIDSet)))
	assert.T(t, !child.HasOverride("Stats"), "child should still inherit Stats")

	// the stored override does not follow later edits of the caller's slice
	child.ClearChanges()
	s := value.IntArray{7}
	mustSet(t, child, "Stats", s)
	child.ClearChanges()
	s[0] = 1
	assert.Equal(t, value.IntArray{7}, mustGet(t, child, "Stats"))
	assert.T(t, !child.HasChanges(), "no change should be recorded")

	// nor does the template through a flattened view
	flat := child.Flatten()
	d, err := tpl.Class().ByName("Stats")
	if err != nil {
		t.Fatal(err)
	}
	v, ok := flat.Get(d.ID)
	assert.T(t, ok, "Stats should be flattened")
	v.(value.IntArray)[0] = 5
	assert.Equal(t, value.IntArray{7}, mustGet(t, child, "Stats"))
}

func TestReadErrorLeavesObjectUntouched(t *testing.T) {
	src := New(class(t, classes.Player))
	mustSet(t, src, "Lvl", value.Int(10))
	mustSet(t, src, "Zone", value.String("test"))
	p := netutil.NewPacket()
	defer p.Release()
	if err := src.Write(p); err != nil {
		t.Fatal(err)
	}
	payload := p.CopyPayload()

	dst := New(class(t, classes.Player))
	mustSet(t, dst, "Lvl", value.Int(3))
	dst.ClearChanges()

	truncated := netutil.NewPacketWithPayload(payload[:len(payload)-2])
	if err := dst.Read(truncated); !errors.Is(err, common.ErrInvalidData) {
		t.Fatalf("truncated envelope should fail with invalid data, got %v", err)
	}
	assert.Equal(t, value.Int(3), mustGet(t, dst, "Lvl"))
	assert.T(t, !dst.HasOverride("Zone"), "Zone should not be applied")
	assert.T(t, !dst.HasChanges(), "a failed read should record no changes")

	// the complete envelope applies
	if err := dst.Read(netutil.NewPacketWithPayload(payload)); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, value.Int(10), mustGet(t, dst, "Lvl"))
	assert.Equal(t, value.String("test"), mustGet(t, dst, "Zone"))
}

func TestNaNIsNotAChange(t *testing.T) {
	o := New(class(t, classes.Player))
	mustSet(t, o, "Speed", value.Float(float32(math.NaN())))
	assert.T(t, o.HasChanges(), "first NaN should be a change")
	o.ClearChanges()

	mustSet(t, o, "Speed", value.Float(float32(math.NaN())))
	assert.T(t, !o.HasChanges(), "NaN over NaN should not be a change")
	assert.T(t, o.HasOverride("Speed"), "Speed should stay overridden")
}
