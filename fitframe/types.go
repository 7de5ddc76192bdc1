// Package fitframe reads the FIT binary framing: header, CRCs,
// definition messages, and data messages. It decodes field payloads to
// Go scalars and flags the protocol's reserved "invalid" sentinels, but
// assigns no profile meaning to fields; callers interpret global message
// numbers and field numbers themselves.
package fitframe

// Header is the decoded FIT file header.
type Header struct {
	Size            uint8
	ProtocolVersion uint8
	ProfileVersion  uint16
	DataSize        uint32
	DataType        string
}

// Field is one decoded field of a data message. Value holds a Go scalar
// for single-element fields (uint8, int16, float64, ...), a string for
// string fields, or []any for array fields. Invalid is true when every
// element of the payload equals the base type's reserved sentinel.
type Field struct {
	Num      uint8
	Value    any
	Invalid  bool
	Floating bool
	IsArray  bool
}

// Message is one decoded data message. Timestamp is the raw value of
// field 253 in FIT-epoch seconds, resolved through the compressed
// timestamp header when the message carries one; it is meaningful only
// when HasTimestamp is set.
type Message struct {
	LocalType    uint8
	GlobalNum    uint16
	Timestamp    uint32
	HasTimestamp bool
	Fields       []Field
}

// Field returns the first field with the given number.
func (m *Message) Field(num uint8) (Field, bool) {
	for _, f := range m.Fields {
		if f.Num == num {
			return f, true
		}
	}
	return Field{}, false
}

// File is a fully parsed FIT stream. LeftoverBytes counts input bytes
// past the declared data size and trailing CRC; chained FIT files leave
// their subsequent files here unread.
type File struct {
	Header          Header
	Messages        []Message
	DefinitionCount int
	HeaderCRCValid  bool
	FileCRCValid    bool
	LeftoverBytes   int
}

type baseType uint8

const (
	baseEnum    baseType = 0x00
	baseSint8   baseType = 0x01
	baseUint8   baseType = 0x02
	baseSint16  baseType = 0x83
	baseUint16  baseType = 0x84
	baseSint32  baseType = 0x85
	baseUint32  baseType = 0x86
	baseString  baseType = 0x07
	baseFloat32 baseType = 0x88
	baseFloat64 baseType = 0x89
	baseUint8z  baseType = 0x0A
	baseUint16z baseType = 0x8B
	baseUint32z baseType = 0x8C
	baseByte    baseType = 0x0D
	baseSint64  baseType = 0x8E
	baseUint64  baseType = 0x8F
	baseUint64z baseType = 0x90
)

type baseSpec struct {
	size     int
	floating bool
}

var baseSpecs = map[baseType]baseSpec{
	baseEnum:    {size: 1},
	baseSint8:   {size: 1},
	baseUint8:   {size: 1},
	baseSint16:  {size: 2},
	baseUint16:  {size: 2},
	baseSint32:  {size: 4},
	baseUint32:  {size: 4},
	baseString:  {size: 1},
	baseFloat32: {size: 4, floating: true},
	baseFloat64: {size: 8, floating: true},
	baseUint8z:  {size: 1},
	baseUint16z: {size: 2},
	baseUint32z: {size: 4},
	baseByte:    {size: 1},
	baseSint64:  {size: 8},
	baseUint64:  {size: 8},
	baseUint64z: {size: 8},
}

// The definition record carries the base type in a byte whose high bit
// marks multi-byte types; the low five bits identify the type. Some
// writers clear the high bit, so resolution goes through the low bits.
func resolveBaseType(b byte) baseType {
	switch b & 0x1F {
	case 0x03:
		return baseSint16
	case 0x04:
		return baseUint16
	case 0x05:
		return baseSint32
	case 0x06:
		return baseUint32
	case 0x08:
		return baseFloat32
	case 0x09:
		return baseFloat64
	case 0x0B:
		return baseUint16z
	case 0x0C:
		return baseUint32z
	case 0x0E:
		return baseSint64
	case 0x0F:
		return baseUint64
	case 0x10:
		return baseUint64z
	default:
		return baseType(b & 0x1F)
	}
}
