package netutil

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/gwparam/paramstore/engine/common"
)

const (
	_MIN_PAYLOAD_CAP = 128

	// MAX_SHORT_LEN is the longest byte string that fits behind a u16 length prefix
	MAX_SHORT_LEN = math.MaxUint16
)

var (
	packetEndian = binary.LittleEndian

	packetPool = sync.Pool{
		New: func() interface{} {
			p := &Packet{}
			p.bytes = p.initialBytes[:0]
			return p
		},
	}
)

// Packet is a little-endian byte buffer shared by every binary codec of the store.
//
// Writers append to the end of the payload, readers consume from a read cursor.
// Read methods never panic: running past the payload yields an InvalidDataError.
type Packet struct {
	readCursor   uint32
	bytes        []byte
	initialBytes [_MIN_PAYLOAD_CAP]byte
}

// NewPacket allocates a new empty packet
func NewPacket() *Packet {
	return packetPool.Get().(*Packet)
}

// NewPacketWithPayload allocates a packet for reading the given payload. The payload is not copied.
func NewPacketWithPayload(payload []byte) *Packet {
	p := NewPacket()
	p.bytes = payload
	return p
}

// Release puts the packet back to the packet pool
func (p *Packet) Release() {
	p.readCursor = 0
	p.bytes = p.initialBytes[:0]
	packetPool.Put(p)
}

// Payload returns the total payload of packet
func (p *Packet) Payload() []byte {
	return p.bytes
}

// CopyPayload returns a copy of the payload which stays valid after Release
func (p *Packet) CopyPayload() []byte {
	b := make([]byte, len(p.bytes))
	copy(b, p.bytes)
	return b
}

// GetPayloadLen returns the payload length
func (p *Packet) GetPayloadLen() uint32 {
	return uint32(len(p.bytes))
}

// UnreadPayload returns the unread payload
func (p *Packet) UnreadPayload() []byte {
	return p.bytes[p.readCursor:]
}

// HasUnreadPayload returns if there is payload left to read
func (p *Packet) HasUnreadPayload() bool {
	return int(p.readCursor) < len(p.bytes)
}

// ClearPayload clears packet payload
func (p *Packet) ClearPayload() {
	p.readCursor = 0
	p.bytes = p.bytes[:0]
}

// AppendByte appends one byte to the end of payload
func (p *Packet) AppendByte(b byte) {
	p.bytes = append(p.bytes, b)
}

// AppendBool appends one byte 1/0 to the end of payload
func (p *Packet) AppendBool(b bool) {
	if b {
		p.AppendByte(1)
	} else {
		p.AppendByte(0)
	}
}

// AppendUint16 appends one uint16 to the end of payload
func (p *Packet) AppendUint16(v uint16) {
	p.bytes = packetEndian.AppendUint16(p.bytes, v)
}

// AppendUint32 appends one uint32 to the end of payload
func (p *Packet) AppendUint32(v uint32) {
	p.bytes = packetEndian.AppendUint32(p.bytes, v)
}

// AppendUint64 appends one uint64 to the end of payload
func (p *Packet) AppendUint64(v uint64) {
	p.bytes = packetEndian.AppendUint64(p.bytes, v)
}

// AppendFloat32 appends one float32 to the end of payload
func (p *Packet) AppendFloat32(f float32) {
	p.AppendUint32(math.Float32bits(f))
}

// AppendFloat64 appends one float64 to the end of payload
func (p *Packet) AppendFloat64(f float64) {
	p.AppendUint64(math.Float64bits(f))
}

// AppendBytes appends slice of bytes to the end of payload
func (p *Packet) AppendBytes(v []byte) {
	p.bytes = append(p.bytes, v...)
}

// AppendVarBytes appends bytes behind a u32 length
func (p *Packet) AppendVarBytes(v []byte) {
	p.AppendUint32(uint32(len(v)))
	p.AppendBytes(v)
}

// AppendVarStr appends a string behind a u32 length
func (p *Packet) AppendVarStr(s string) {
	p.AppendUint32(uint32(len(s)))
	p.bytes = append(p.bytes, s...)
}

// AppendShortStr appends a string behind a u16 length
func (p *Packet) AppendShortStr(s string) error {
	if len(s) > MAX_SHORT_LEN {
		return common.InvalidDataf("string of %d bytes does not fit u16 length", len(s))
	}
	p.AppendUint16(uint16(len(s)))
	p.bytes = append(p.bytes, s...)
	return nil
}

func (p *Packet) need(size uint32) error {
	if uint64(p.readCursor)+uint64(size) > uint64(len(p.bytes)) {
		return common.InvalidDataf("need %d bytes at offset %d, payload is %d bytes", size, p.readCursor, len(p.bytes))
	}
	return nil
}

// ReadOneByte reads one byte from the beginning of unread payload
func (p *Packet) ReadOneByte() (byte, error) {
	if err := p.need(1); err != nil {
		return 0, err
	}
	v := p.bytes[p.readCursor]
	p.readCursor += 1
	return v, nil
}

// ReadBool reads one byte 1/0 from the beginning of unread payload
func (p *Packet) ReadBool() (bool, error) {
	b, err := p.ReadOneByte()
	return b != 0, err
}

// ReadUint16 reads one uint16 from the beginning of unread payload
func (p *Packet) ReadUint16() (uint16, error) {
	if err := p.need(2); err != nil {
		return 0, err
	}
	v := packetEndian.Uint16(p.bytes[p.readCursor:])
	p.readCursor += 2
	return v, nil
}

// ReadUint32 reads one uint32 from the beginning of unread payload
func (p *Packet) ReadUint32() (uint32, error) {
	if err := p.need(4); err != nil {
		return 0, err
	}
	v := packetEndian.Uint32(p.bytes[p.readCursor:])
	p.readCursor += 4
	return v, nil
}

// ReadUint64 reads one uint64 from the beginning of unread payload
func (p *Packet) ReadUint64() (uint64, error) {
	if err := p.need(8); err != nil {
		return 0, err
	}
	v := packetEndian.Uint64(p.bytes[p.readCursor:])
	p.readCursor += 8
	return v, nil
}

// ReadFloat32 reads one float32 from the beginning of unread payload
func (p *Packet) ReadFloat32() (float32, error) {
	v, err := p.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads one float64 from the beginning of unread payload
func (p *Packet) ReadFloat64() (float64, error) {
	v, err := p.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadBytes reads bytes from the beginning of unread payload. The bytes are not copied.
func (p *Packet) ReadBytes(size uint32) ([]byte, error) {
	if err := p.need(size); err != nil {
		return nil, err
	}
	b := p.bytes[p.readCursor : p.readCursor+size]
	p.readCursor += size
	return b, nil
}

// ReadVarBytes reads bytes behind a u32 length. The bytes are copied.
func (p *Packet) ReadVarBytes() ([]byte, error) {
	n, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	b, err := p.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// ReadVarStr reads a string behind a u32 length
func (p *Packet) ReadVarStr() (string, error) {
	n, err := p.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := p.ReadBytes(n)
	return string(b), err
}

// ReadShortStr reads a string behind a u16 length
func (p *Packet) ReadShortStr() (string, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return "", err
	}
	b, err := p.ReadBytes(uint32(n))
	return string(b), err
}
