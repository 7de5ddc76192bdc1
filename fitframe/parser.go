package fitframe

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tormoder/fit/dyncrc16"
)

const (
	compressedHeaderMask       = 0x80
	compressedLocalMesgNumMask = 0x60
	compressedTimeMask         = 0x1F
	mesgDefinitionMask         = 0x40
	devDataMask                = 0x20
	localMesgNumMask           = 0x0F

	headerSizeNoCRC = 12
	headerSizeCRC   = 14

	timestampFieldNum = 253
	invalidUint32     = 0xFFFFFFFF
)

type fieldDef struct {
	num  uint8
	size uint8
	base baseType
}

type devFieldDef struct {
	num    uint8
	size   uint8
	devIdx uint8
}

type definition struct {
	global    uint16
	arch      binary.ByteOrder
	fields    []fieldDef
	devFields []devFieldDef
}

type parser struct {
	data           []byte
	definitions    map[uint8]definition
	lastTimestamp  uint32
	lastTimeOffset int32
	messages       []Message
	defCount       int
}

// Parse decodes a complete FIT byte stream. CRC mismatches are reported
// through the File flags rather than as errors; structural problems
// (bad header, truncation, data messages without a definition) fail the
// parse.
func Parse(data []byte) (*File, error) {
	if len(data) < headerSizeNoCRC+2 {
		return nil, fmt.Errorf("fit stream too short: %d bytes", len(data))
	}

	header, headerCRCValid, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	dataStart := int(header.Size)
	required := dataStart + int(header.DataSize) + 2
	if len(data) < required {
		return nil, fmt.Errorf("fit stream truncated: have %d bytes, need at least %d", len(data), required)
	}

	storedCRC := binary.LittleEndian.Uint16(data[required-2 : required])
	computedCRC := dyncrc16.Checksum(data[:required-2])

	p := &parser{
		data:        data[dataStart : required-2],
		definitions: make(map[uint8]definition),
	}
	if err := p.parseRecords(); err != nil {
		return nil, err
	}

	return &File{
		Header:          header,
		Messages:        p.messages,
		DefinitionCount: p.defCount,
		HeaderCRCValid:  headerCRCValid,
		FileCRCValid:    storedCRC == computedCRC,
		LeftoverBytes:   len(data) - required,
	}, nil
}

func parseHeader(data []byte) (Header, bool, error) {
	size := data[0]
	if size != headerSizeNoCRC && size != headerSizeCRC {
		return Header{}, false, fmt.Errorf("invalid fit header size: %d", size)
	}
	if len(data) < int(size) {
		return Header{}, false, fmt.Errorf("truncated fit header: need %d bytes", size)
	}

	h := Header{
		Size:            size,
		ProtocolVersion: data[1],
		ProfileVersion:  binary.LittleEndian.Uint16(data[2:4]),
		DataSize:        binary.LittleEndian.Uint32(data[4:8]),
		DataType:        string(data[8:12]),
	}
	if h.DataType != ".FIT" {
		return Header{}, false, fmt.Errorf("invalid fit data type in header: %q", h.DataType)
	}

	// A 14-byte header may carry a CRC of zero, which means "not set".
	crcValid := true
	if size == headerSizeCRC {
		stored := binary.LittleEndian.Uint16(data[12:14])
		if stored != 0 {
			crcValid = stored == dyncrc16.Checksum(data[:12])
		}
	}
	return h, crcValid, nil
}

func (p *parser) parseRecords() error {
	pos := 0
	index := 0
	for pos < len(p.data) {
		index++
		headerByte := p.data[pos]
		pos++

		switch {
		case (headerByte & compressedHeaderMask) == compressedHeaderMask:
			local := (headerByte & compressedLocalMesgNumMask) >> 5
			def, ok := p.definitions[local]
			if !ok {
				return fmt.Errorf("missing definition for compressed data message local=%d record=%d", local, index)
			}
			newPos, err := p.parseDataMessage(pos, headerByte, local, def, true)
			if err != nil {
				return err
			}
			pos = newPos
		case (headerByte & mesgDefinitionMask) == mesgDefinitionMask:
			local := headerByte & localMesgNumMask
			def, newPos, err := p.parseDefinition(pos, headerByte, index)
			if err != nil {
				return err
			}
			p.definitions[local] = def
			p.defCount++
			pos = newPos
		default:
			local := headerByte & localMesgNumMask
			def, ok := p.definitions[local]
			if !ok {
				return fmt.Errorf("missing definition for data message local=%d record=%d", local, index)
			}
			newPos, err := p.parseDataMessage(pos, headerByte, local, def, false)
			if err != nil {
				return err
			}
			pos = newPos
		}
	}
	return nil
}

func (p *parser) parseDefinition(pos int, headerByte uint8, index int) (definition, int, error) {
	read := func(n int) ([]byte, error) {
		if pos+n > len(p.data) {
			return nil, fmt.Errorf("definition message truncated at record %d", index)
		}
		out := p.data[pos : pos+n]
		pos += n
		return out, nil
	}

	if _, err := read(1); err != nil { // reserved byte
		return definition{}, 0, err
	}

	archRaw, err := read(1)
	if err != nil {
		return definition{}, 0, err
	}
	var arch binary.ByteOrder
	switch archRaw[0] {
	case 0:
		arch = binary.LittleEndian
	case 1:
		arch = binary.BigEndian
	default:
		return definition{}, 0, fmt.Errorf("invalid architecture byte %d at record %d", archRaw[0], index)
	}

	globalBytes, err := read(2)
	if err != nil {
		return definition{}, 0, err
	}

	numFieldsRaw, err := read(1)
	if err != nil {
		return definition{}, 0, err
	}
	numFields := int(numFieldsRaw[0])

	def := definition{
		global: arch.Uint16(globalBytes),
		arch:   arch,
		fields: make([]fieldDef, 0, numFields),
	}
	for i := 0; i < numFields; i++ {
		raw, err := read(3)
		if err != nil {
			return definition{}, 0, err
		}
		def.fields = append(def.fields, fieldDef{
			num:  raw[0],
			size: raw[1],
			base: resolveBaseType(raw[2]),
		})
	}

	if (headerByte & devDataMask) == devDataMask {
		devCountRaw, err := read(1)
		if err != nil {
			return definition{}, 0, err
		}
		devCount := int(devCountRaw[0])
		def.devFields = make([]devFieldDef, 0, devCount)
		for i := 0; i < devCount; i++ {
			raw, err := read(3)
			if err != nil {
				return definition{}, 0, err
			}
			def.devFields = append(def.devFields, devFieldDef{
				num:    raw[0],
				size:   raw[1],
				devIdx: raw[2],
			})
		}
	}

	return def, pos, nil
}

func (p *parser) parseDataMessage(pos int, headerByte, local uint8, def definition, compressed bool) (int, error) {
	read := func(n int) ([]byte, error) {
		if pos+n > len(p.data) {
			return nil, fmt.Errorf("data message truncated (local=%d global=%d)", local, def.global)
		}
		out := p.data[pos : pos+n]
		pos += n
		return out, nil
	}

	msg := Message{
		LocalType: local,
		GlobalNum: def.global,
		Fields:    make([]Field, 0, len(def.fields)),
	}

	if compressed && p.lastTimestamp != 0 {
		// The 5-bit offset rolls over against the previous offset; the
		// result extends the last full timestamp seen in the stream.
		timeOffset := int32(headerByte & compressedTimeMask)
		p.lastTimestamp += uint32((timeOffset - p.lastTimeOffset) & int32(compressedTimeMask))
		p.lastTimeOffset = timeOffset
		msg.Timestamp = p.lastTimestamp
		msg.HasTimestamp = true
	}

	for _, fd := range def.fields {
		raw, err := read(int(fd.size))
		if err != nil {
			return 0, err
		}
		field := decodeField(raw, fd, def.arch)
		if fd.num == timestampFieldNum {
			if ts, ok := field.Value.(uint32); ok && !field.Invalid {
				p.lastTimestamp = ts
				p.lastTimeOffset = int32(ts & compressedTimeMask)
				msg.Timestamp = ts
				msg.HasTimestamp = true
			}
		}
		msg.Fields = append(msg.Fields, field)
	}

	// Developer field payloads are length-prefixed by the definition;
	// consume them so framing stays aligned, but drop the values.
	for _, ddf := range def.devFields {
		if _, err := read(int(ddf.size)); err != nil {
			return 0, err
		}
	}

	p.messages = append(p.messages, msg)
	return pos, nil
}

func decodeField(raw []byte, def fieldDef, arch binary.ByteOrder) Field {
	field := Field{Num: def.num}

	spec, ok := baseSpecs[def.base]
	if !ok {
		field.Value = append([]byte(nil), raw...)
		field.IsArray = len(raw) > 1
		return field
	}
	field.Floating = spec.floating

	switch def.base {
	case baseString:
		str := decodeNullTerminatedString(raw)
		field.Value = str
		field.Invalid = len(str) == 0 && allBytes(raw, 0x00)
		return field
	case baseByte:
		field.Value = append([]byte(nil), raw...)
		field.Invalid = allBytes(raw, 0xFF)
		field.IsArray = len(raw) > 1
		return field
	}

	if spec.size <= 0 || len(raw)%spec.size != 0 {
		field.Value = append([]byte(nil), raw...)
		field.IsArray = len(raw) > 1
		return field
	}

	count := len(raw) / spec.size
	values := make([]any, 0, count)
	invalidCount := 0
	for i := 0; i < count; i++ {
		part := raw[i*spec.size : (i+1)*spec.size]
		v, invalid := decodeSingleValue(part, def.base, arch)
		values = append(values, v)
		if invalid {
			invalidCount++
		}
	}

	field.Invalid = invalidCount == count
	if count == 1 {
		field.Value = values[0]
	} else {
		field.Value = values
		field.IsArray = true
	}
	return field
}

// decodeSingleValue decodes one element and reports whether it equals
// the base type's reserved invalid sentinel. All-ones for unsigned
// types, max positive for signed, zero for the z-variants.
func decodeSingleValue(raw []byte, bt baseType, arch binary.ByteOrder) (any, bool) {
	switch bt {
	case baseEnum:
		v := raw[0]
		return v, v == 0xFF
	case baseSint8:
		v := int8(raw[0])
		return v, v == int8(0x7F)
	case baseUint8:
		v := raw[0]
		return v, v == 0xFF
	case baseSint16:
		v := int16(arch.Uint16(raw))
		return v, v == int16(0x7FFF)
	case baseUint16:
		v := arch.Uint16(raw)
		return v, v == 0xFFFF
	case baseSint32:
		v := int32(arch.Uint32(raw))
		return v, v == int32(0x7FFFFFFF)
	case baseUint32:
		v := arch.Uint32(raw)
		return v, v == invalidUint32
	case baseFloat32:
		bits := arch.Uint32(raw)
		return float64(math.Float32frombits(bits)), bits == 0xFFFFFFFF
	case baseFloat64:
		bits := arch.Uint64(raw)
		return math.Float64frombits(bits), bits == 0xFFFFFFFFFFFFFFFF
	case baseUint8z:
		v := raw[0]
		return v, v == 0x00
	case baseUint16z:
		v := arch.Uint16(raw)
		return v, v == 0x0000
	case baseUint32z:
		v := arch.Uint32(raw)
		return v, v == 0x00000000
	case baseSint64:
		v := int64(arch.Uint64(raw))
		return v, v == int64(0x7FFFFFFFFFFFFFFF)
	case baseUint64:
		v := arch.Uint64(raw)
		return v, v == 0xFFFFFFFFFFFFFFFF
	case baseUint64z:
		v := arch.Uint64(raw)
		return v, v == 0x0000000000000000
	default:
		return append([]byte(nil), raw...), false
	}
}

func decodeNullTerminatedString(raw []byte) string {
	for i := 0; i < len(raw); i++ {
		if raw[i] == 0x00 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

func allBytes(raw []byte, value byte) bool {
	if len(raw) == 0 {
		return false
	}
	for _, b := range raw {
		if b != value {
			return false
		}
	}
	return true
}
