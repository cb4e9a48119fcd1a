package value

import (
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/pkg/errors"
)

const guidSize = 16

// Write appends the binary encoding of v. No kind tag is written: readers know the kind from the
// attribute descriptor.
func Write(p *netutil.Packet, v Value) error {
	switch val := v.(type) {
	case Bool:
		p.AppendBool(bool(val))
	case Int:
		p.AppendUint32(uint32(val))
	case Int64:
		p.AppendUint64(uint64(val))
	case UInt:
		p.AppendUint32(uint32(val))
	case Float:
		p.AppendFloat32(float32(val))
	case Double:
		p.AppendFloat64(float64(val))
	case String:
		return p.AppendShortStr(string(val))
	case Vector3:
		writeVector3(p, val)
	case GUID:
		writeGUID(p, uuid.UUID(val))
	case LocalizedString:
		writeGUID(p, uuid.UUID(val))
	case JSON:
		b, err := val.Bytes()
		if err != nil {
			return err
		}
		p.AppendVarBytes(b)
	case ContentRef:
		writeContentRef(p, val)
	case ContentRefList:
		if len(val) > netutil.MAX_SHORT_LEN {
			return common.InvalidDataf("content ref list of %d entries does not fit u16 count", len(val))
		}
		p.AppendUint16(uint16(len(val)))
		for _, ref := range val {
			writeContentRef(p, ref)
		}
	case GUIDSet:
		if len(val) > netutil.MAX_SHORT_LEN {
			return common.InvalidDataf("guid set of %d entries does not fit u16 count", len(val))
		}
		p.AppendUint16(uint16(len(val)))
		for _, id := range val.Sorted() {
			writeGUID(p, id)
		}
	case IntArray:
		p.AppendUint32(uint32(len(val)))
		for _, i := range val {
			p.AppendUint32(uint32(i))
		}
	case Int64Array:
		p.AppendUint32(uint32(len(val)))
		for _, i := range val {
			p.AppendUint64(uint64(i))
		}
	case FloatArray:
		p.AppendUint32(uint32(len(val)))
		for _, f := range val {
			p.AppendFloat32(f)
		}
	case StringArray:
		p.AppendUint32(uint32(len(val)))
		for _, s := range val {
			if err := p.AppendShortStr(s); err != nil {
				return err
			}
		}
	case Vector3Array:
		p.AppendUint32(uint32(len(val)))
		for _, vec := range val {
			writeVector3(p, vec)
		}
	default:
		return &common.TypeMismatchError{Expected: "attribute value", Actual: typeName(v)}
	}
	return nil
}

// Read decodes one value of kind k from the unread payload of p
func Read(p *netutil.Packet, k Kind) (Value, error) {
	switch k {
	case KindBool:
		v, err := p.ReadBool()
		return Bool(v), err
	case KindInt:
		v, err := p.ReadUint32()
		return Int(int32(v)), err
	case KindInt64:
		v, err := p.ReadUint64()
		return Int64(int64(v)), err
	case KindUInt:
		v, err := p.ReadUint32()
		return UInt(v), err
	case KindFloat:
		v, err := p.ReadFloat32()
		return Float(v), err
	case KindDouble:
		v, err := p.ReadFloat64()
		return Double(v), err
	case KindString:
		v, err := p.ReadShortStr()
		return String(v), err
	case KindVector3:
		return readVector3(p)
	case KindGUID:
		id, err := readGUID(p)
		return GUID(id), err
	case KindLocalizedString:
		id, err := readGUID(p)
		return LocalizedString(id), err
	case KindJSON:
		b, err := p.ReadVarBytes()
		if err != nil {
			return nil, err
		}
		return NewJSONBytes(b), nil
	case KindContentRef:
		return readContentRef(p)
	case KindContentRefList:
		n, err := readCount16(p, 2+guidSize)
		if err != nil {
			return nil, err
		}
		refs := make(ContentRefList, n)
		for i := range refs {
			if refs[i], err = readContentRef(p); err != nil {
				return nil, err
			}
		}
		return refs, nil
	case KindGUIDSet:
		n, err := readCount16(p, guidSize)
		if err != nil {
			return nil, err
		}
		set := make(GUIDSet, n)
		for i := 0; i < n; i++ {
			id, err := readGUID(p)
			if err != nil {
				return nil, err
			}
			set[id] = struct{}{}
		}
		return set, nil
	case KindIntArray:
		n, err := readCount32(p, 4)
		if err != nil {
			return nil, err
		}
		arr := make(IntArray, n)
		for i := range arr {
			v, err := p.ReadUint32()
			if err != nil {
				return nil, err
			}
			arr[i] = int32(v)
		}
		return arr, nil
	case KindInt64Array:
		n, err := readCount32(p, 8)
		if err != nil {
			return nil, err
		}
		arr := make(Int64Array, n)
		for i := range arr {
			v, err := p.ReadUint64()
			if err != nil {
				return nil, err
			}
			arr[i] = int64(v)
		}
		return arr, nil
	case KindFloatArray:
		n, err := readCount32(p, 4)
		if err != nil {
			return nil, err
		}
		arr := make(FloatArray, n)
		for i := range arr {
			if arr[i], err = p.ReadFloat32(); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case KindStringArray:
		n, err := readCount32(p, 2)
		if err != nil {
			return nil, err
		}
		arr := make(StringArray, n)
		for i := range arr {
			if arr[i], err = p.ReadShortStr(); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case KindVector3Array:
		n, err := readCount32(p, 12)
		if err != nil {
			return nil, err
		}
		arr := make(Vector3Array, n)
		for i := range arr {
			if arr[i], err = readVector3(p); err != nil {
				return nil, err
			}
		}
		return arr, nil
	}
	return nil, errors.WithStack(&common.TypeMismatchError{Expected: "attribute value kind", Actual: k.String()})
}

// readCount16 reads a u16 element count and checks that the elements can fit in the unread payload
func readCount16(p *netutil.Packet, minElemSize int) (int, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return 0, err
	}
	return checkCount(p, int(n), minElemSize)
}

func readCount32(p *netutil.Packet, minElemSize int) (int, error) {
	n, err := p.ReadUint32()
	if err != nil {
		return 0, err
	}
	return checkCount(p, int(n), minElemSize)
}

func checkCount(p *netutil.Packet, n int, minElemSize int) (int, error) {
	if left := len(p.UnreadPayload()); n*minElemSize > left {
		return 0, common.InvalidDataf("count %d needs at least %d bytes, %d left", n, n*minElemSize, left)
	}
	return n, nil
}

func writeVector3(p *netutil.Packet, v Vector3) {
	p.AppendFloat32(v.X)
	p.AppendFloat32(v.Y)
	p.AppendFloat32(v.Z)
}

func readVector3(p *netutil.Packet) (v Vector3, err error) {
	if v.X, err = p.ReadFloat32(); err != nil {
		return
	}
	if v.Y, err = p.ReadFloat32(); err != nil {
		return
	}
	v.Z, err = p.ReadFloat32()
	return
}

// writeGUID writes the GUID field layout: u32, u16, u16 little-endian followed by 8 raw bytes
func writeGUID(p *netutil.Packet, id uuid.UUID) {
	p.AppendUint32(binary.BigEndian.Uint32(id[0:4]))
	p.AppendUint16(binary.BigEndian.Uint16(id[4:6]))
	p.AppendUint16(binary.BigEndian.Uint16(id[6:8]))
	p.AppendBytes(id[8:16])
}

func readGUID(p *netutil.Packet) (id uuid.UUID, err error) {
	b, err := p.ReadBytes(guidSize)
	if err != nil {
		return
	}
	binary.BigEndian.PutUint32(id[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(id[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(id[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(id[8:], b[8:16])
	return
}

func writeContentRef(p *netutil.Packet, ref ContentRef) {
	p.AppendUint16(ref.Class)
	writeGUID(p, ref.ID)
}

func readContentRef(p *netutil.Packet) (ref ContentRef, err error) {
	if ref.Class, err = p.ReadUint16(); err != nil {
		return
	}
	ref.ID, err = readGUID(p)
	return
}

// WriteGUID exposes the GUID field layout to other codecs
func WriteGUID(p *netutil.Packet, id uuid.UUID) {
	writeGUID(p, id)
}

// ReadGUID reads a GUID written by WriteGUID
func ReadGUID(p *netutil.Packet) (uuid.UUID, error) {
	return readGUID(p)
}
