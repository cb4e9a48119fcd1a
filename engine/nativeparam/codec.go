package nativeparam

import (
	"math"

	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
)

// MaxDepth bounds the nesting of Struct params
const MaxDepth = 32

// Write appends the tag and payload of param
func Write(p *netutil.Packet, param Param) error {
	return write(p, param, 0)
}

func write(p *netutil.Packet, param Param, depth int) error {
	if param == nil {
		param = Invalid{}
	}
	p.AppendByte(byte(param.Tag()))

	switch v := param.(type) {
	case Invalid:
	case Byte:
		p.AppendByte(byte(v))
	case Float:
		p.AppendFloat32(float32(v))
	case Double:
		p.AppendFloat64(float64(v))
	case Int:
		p.AppendUint32(uint32(v))
	case String:
		return p.AppendShortStr(string(v))
	case Struct:
		if depth >= MaxDepth {
			return common.InvalidDataf("struct nested deeper than %d", MaxDepth)
		}
		if len(v) > math.MaxUint8 {
			return common.InvalidDataf("struct of %d fields does not fit u8 count", len(v))
		}
		p.AppendByte(byte(len(v)))
		for i, field := range v {
			if err := write(p, field, depth+1); err != nil {
				return errors.Wrapf(err, "field %d", i)
			}
		}
	case Guid:
		value.WriteGUID(p, uuid.UUID(v))
	case AvatarId:
		p.AppendUint64(uint64(v))
	case Vector3:
		p.AppendFloat32(v.X)
		p.AppendFloat32(v.Y)
		p.AppendFloat32(v.Z)
	case Bool:
		p.AppendBool(bool(v))
	case JsonValue:
		b, err := value.JSON(v).Bytes()
		if err != nil {
			return err
		}
		p.AppendVarBytes(b)
	case IntArray:
		if err := appendCount16(p, len(v)); err != nil {
			return err
		}
		for _, i := range v {
			p.AppendUint32(uint32(i))
		}
	case LongLong:
		p.AppendUint64(uint64(v))
	case Buffer:
		p.AppendVarBytes(v)
	case UInt:
		p.AppendUint32(uint32(v))
	case GuidArray:
		if err := appendCount16(p, len(v)); err != nil {
			return err
		}
		for _, id := range v {
			value.WriteGUID(p, id)
		}
	case StringArray:
		if err := appendCount16(p, len(v)); err != nil {
			return err
		}
		for _, s := range v {
			if err := p.AppendShortStr(s); err != nil {
				return err
			}
		}
	default:
		return errors.Errorf("unsupported native param %T", param)
	}
	return nil
}

func appendCount16(p *netutil.Packet, n int) error {
	if n > math.MaxUint16 {
		return common.InvalidDataf("%d elements do not fit u16 count", n)
	}
	p.AppendUint16(uint16(n))
	return nil
}

// Read decodes one param. An unknown tag fails the rest of the stream: there is no way to skip
// a payload whose layout is unknown.
func Read(p *netutil.Packet) (Param, error) {
	return read(p, 0)
}

func read(p *netutil.Packet, depth int) (Param, error) {
	b, err := p.ReadOneByte()
	if err != nil {
		return nil, err
	}

	switch Tag(b) {
	case TagInvalid:
		return Invalid{}, nil
	case TagByte:
		v, err := p.ReadOneByte()
		return Byte(v), err
	case TagFloat:
		v, err := p.ReadFloat32()
		return Float(v), err
	case TagDouble:
		v, err := p.ReadFloat64()
		return Double(v), err
	case TagInt:
		v, err := p.ReadUint32()
		return Int(int32(v)), err
	case TagString:
		v, err := p.ReadShortStr()
		return String(v), err
	case TagStruct:
		if depth >= MaxDepth {
			return nil, common.InvalidDataf("struct nested deeper than %d", MaxDepth)
		}
		n, err := p.ReadOneByte()
		if err != nil {
			return nil, err
		}
		fields := make(Struct, 0, n)
		for i := 0; i < int(n); i++ {
			field, err := read(p, depth+1)
			if err != nil {
				return nil, errors.Wrapf(err, "field %d", i)
			}
			fields = append(fields, field)
		}
		return fields, nil
	case TagGuid:
		id, err := value.ReadGUID(p)
		return Guid(id), err
	case TagAvatarId:
		v, err := p.ReadUint64()
		return AvatarId(v), err
	case TagVector3:
		var xyz [3]float32
		for i := range xyz {
			if xyz[i], err = p.ReadFloat32(); err != nil {
				return nil, err
			}
		}
		return Vector3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
	case TagBool:
		v, err := p.ReadBool()
		return Bool(v), err
	case TagJsonValue:
		v, err := p.ReadVarBytes()
		if err != nil {
			return nil, err
		}
		return JsonValue(value.NewJSONBytes(v)), nil
	case TagIntArray:
		n, err := readCount16(p, 4)
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
	case TagLongLong:
		v, err := p.ReadUint64()
		return LongLong(int64(v)), err
	case TagBuffer:
		v, err := p.ReadVarBytes()
		return Buffer(v), err
	case TagUInt:
		v, err := p.ReadUint32()
		return UInt(v), err
	case TagGuidArray:
		n, err := readCount16(p, 16)
		if err != nil {
			return nil, err
		}
		arr := make(GuidArray, n)
		for i := range arr {
			if arr[i], err = value.ReadGUID(p); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case TagStringArray:
		n, err := readCount16(p, 2)
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
	default:
		return nil, errors.WithStack(&common.UnknownTagError{Tag: b})
	}
}

func readCount16(p *netutil.Packet, elemSize int) (int, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return 0, err
	}
	if int(n)*elemSize > len(p.UnreadPayload()) {
		return 0, common.InvalidDataf("%d elements of %d bytes exceed the %d unread bytes", n, elemSize, len(p.UnreadPayload()))
	}
	return int(n), nil
}

// ReadAll decodes params until the packet is drained
func ReadAll(p *netutil.Packet) ([]Param, error) {
	var params []Param
	for p.HasUnreadPayload() {
		param, err := Read(p)
		if err != nil {
			return params, err
		}
		params = append(params, param)
	}
	return params, nil
}
