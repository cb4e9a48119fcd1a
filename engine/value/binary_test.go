package value

import (
	"testing"

	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/pkg/errors"
)

func sampleValues() []Value {
	id := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	return []Value{
		Bool(true),
		Int(-42),
		Int64(1 << 40),
		UInt(4000000000),
		Float(1.25),
		Double(-3.5),
		String("test zone"),
		Vector3{X: 1, Y: -2, Z: 3.5},
		GUID(id),
		LocalizedString(id),
		MustJSON(map[string]interface{}{"quest": "intro", "step": 3}),
		ContentRef{Class: 7, ID: id},
		ContentRefList{{Class: 1, ID: id}, {Class: 2, ID: uuid.New()}},
		NewGUIDSet(id, uuid.New(), uuid.New()),
		IntArray{1, -1, 300},
		Int64Array{1 << 50},
		FloatArray{0.5, 0.25},
		StringArray{"a", "", "ccc"},
		Vector3Array{{1, 1, 1}, {2, 2, 2}},
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	for _, v := range sampleValues() {
		p := netutil.NewPacket()
		if err := Write(p, v); err != nil {
			t.Fatalf("write %s: %v", v.Kind(), err)
		}

		r := netutil.NewPacketWithPayload(p.CopyPayload())
		got, err := Read(r, v.Kind())
		if err != nil {
			t.Fatalf("read %s: %v", v.Kind(), err)
		}
		if !Equal(v, got) {
			t.Errorf("%s: wrote %v, read %v", v.Kind(), v, got)
		}
		if r.HasUnreadPayload() {
			t.Errorf("%s: %d bytes left unread", v.Kind(), len(r.UnreadPayload()))
		}
		p.Release()
		r.Release()
	}
}

func TestGUIDFieldLayout(t *testing.T) {
	id := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	p := netutil.NewPacket()
	defer p.Release()
	WriteGUID(p, id)

	expected := []byte{0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	if string(p.Payload()) != string(expected) {
		t.Errorf("wrong layout: % x", p.Payload())
	}
}

func TestStringEncoding(t *testing.T) {
	p := netutil.NewPacket()
	defer p.Release()
	if err := Write(p, String("abc")); err != nil {
		t.Fatal(err)
	}
	if b := p.Payload(); len(b) != 5 || b[0] != 3 || b[1] != 0 || string(b[2:]) != "abc" {
		t.Errorf("string should be u16 length + bytes, got % x", b)
	}
}

func TestReadCorruptLength(t *testing.T) {
	p := netutil.NewPacket()
	defer p.Release()
	p.AppendUint32(1 << 30) // int array claiming a billion entries
	p.AppendUint32(1)

	r := netutil.NewPacketWithPayload(p.Payload())
	defer r.Release()
	if _, err := Read(r, KindIntArray); !errors.Is(err, common.ErrInvalidData) {
		t.Errorf("corrupt count should be invalid data, got %v", err)
	}
}

func TestReadInvalidKind(t *testing.T) {
	r := netutil.NewPacketWithPayload([]byte{1, 2, 3})
	defer r.Release()
	if _, err := Read(r, KindInvalid); !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("invalid kind should be a type mismatch, got %v", err)
	}
}
