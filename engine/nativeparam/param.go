// Package nativeparam implements the self describing tagged values carried by dynamic RPC calls
package nativeparam

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/value"
)

// Tag is the leading byte of every encoded param
type Tag uint8

// Tags are part of the wire format
const (
	TagInvalid Tag = iota
	TagByte
	TagFloat
	TagDouble
	TagInt
	TagString
	TagStruct
	TagGuid
	TagAvatarId
	TagVector3
	TagBool
	TagJsonValue
	TagIntArray
	TagLongLong
	TagBuffer
	TagUInt
	TagGuidArray
	TagStringArray

	numTags
)

var tagNames = [numTags]string{
	"Invalid", "Byte", "Float", "Double", "Int", "String", "Struct", "Guid", "AvatarId", "Vector3",
	"Bool", "JsonValue", "IntArray", "LongLong", "Buffer", "UInt", "GuidArray", "StringArray",
}

func (t Tag) String() string {
	if t < numTags {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Param is one native param. The concrete types below are the only implementations.
type Param interface {
	Tag() Tag
}

type (
	// Invalid is the empty param
	Invalid     struct{}
	Byte        uint8
	Float       float32
	Double      float64
	Int         int32
	String      string
	Struct      []Param
	Guid        uuid.UUID
	AvatarId    uint64
	Vector3     value.Vector3
	Bool        bool
	JsonValue   value.JSON
	IntArray    []int32
	LongLong    int64
	Buffer      []byte
	UInt        uint32
	GuidArray   []uuid.UUID
	StringArray []string
)

func (Invalid) Tag() Tag     { return TagInvalid }
func (Byte) Tag() Tag        { return TagByte }
func (Float) Tag() Tag       { return TagFloat }
func (Double) Tag() Tag      { return TagDouble }
func (Int) Tag() Tag         { return TagInt }
func (String) Tag() Tag      { return TagString }
func (Struct) Tag() Tag      { return TagStruct }
func (Guid) Tag() Tag        { return TagGuid }
func (AvatarId) Tag() Tag    { return TagAvatarId }
func (Vector3) Tag() Tag     { return TagVector3 }
func (Bool) Tag() Tag        { return TagBool }
func (JsonValue) Tag() Tag   { return TagJsonValue }
func (IntArray) Tag() Tag    { return TagIntArray }
func (LongLong) Tag() Tag    { return TagLongLong }
func (Buffer) Tag() Tag      { return TagBuffer }
func (UInt) Tag() Tag        { return TagUInt }
func (GuidArray) Tag() Tag   { return TagGuidArray }
func (StringArray) Tag() Tag { return TagStringArray }
