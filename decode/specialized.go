package decode

import (
	"encoding/base64"
	"fmt"

	"github.com/kardessa/gcparse/jsontree"
)

// specialized is the closed registry of class names the generic parser
// never handles structurally. It is deliberately never extended by schema
// data — these seven shapes are a fixed part of the wire format, ported
// from the reference decoder's custom_parser module. It is filled in init
// because the decoders reach back into the parser, which reads this map.
var specialized map[string]func(*Parser) (jsontree.Value, error)

func init() {
	specialized = map[string]func(*Parser) (jsontree.Value, error){
		"FixPoint":      decodeFixPoint,
		"DynamicValue":  decodeDynamicValue,
		"DynamicValues": decodeDynamicValues,
		"DynamicFloat":  decodeDynamicFloat,
		"ReadInfo":      decodeReadInfo,
		"JsonEnum":      decodeJsonEnum,
		"TextID":        decodeTextID,
	}
}

// readRawBool reads a single raw byte and reports whether it is nonzero.
// Several specialized decoders gate on a bare byte rather than a
// zigzag-varint bool the way the generic Boolean primitive does.
func readRawBool(p *Parser) (bool, error) {
	b, err := p.r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// decodeFixPoint reads a fixed-point scalar stored as an i64 varint, cast
// through a float32 intermediate before the 2^32 scale divide, reproducing
// the reference decoder's precision loss exactly. Always wrapped in a
// single-field Value object.
func decodeFixPoint(p *Parser) (jsontree.Value, error) {
	v, err := p.r.ReadZigzagVarint()
	if err != nil {
		return nil, fmt.Errorf("FixPoint: %w", err)
	}
	f := float32(v) / float32(4294967296)

	obj := jsontree.NewObject()
	obj.Set("Value", float64(f))
	return obj, nil
}

// dynamicValueTag enumerates DynamicValue's six payload shapes.
const (
	dvInt32 = iota
	dvFloat
	dvBoolean
	dvArray
	dvMap
	dvString
)

// decodeDynamicValue reads a single tagged-union value: a signed 8-bit
// varint tag followed by one of Int32/Float/Boolean/Array/Map/String/Null, always
// wrapped as {"Type": ..., "Value": ...}.
func decodeDynamicValue(p *Parser) (jsontree.Value, error) {
	tag, err := p.r.ReadInt8()
	if err != nil {
		return nil, fmt.Errorf("DynamicValue: %w", err)
	}

	var typeName string
	var value jsontree.Value

	switch tag {
	case dvInt32:
		v, err := p.r.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("DynamicValue: %w", err)
		}
		typeName, value = "Int32", int64(v)
	case dvFloat:
		v, err := p.r.ReadFloat32()
		if err != nil {
			return nil, fmt.Errorf("DynamicValue: %w", err)
		}
		typeName, value = "Float", float64(v)
	case dvBoolean:
		v, err := p.r.ReadBool()
		if err != nil {
			return nil, fmt.Errorf("DynamicValue: %w", err)
		}
		typeName, value = "Boolean", v
	case dvArray:
		l, err := p.r.ReadZigzagVarint()
		if err != nil {
			return nil, fmt.Errorf("DynamicValue: %w", err)
		}
		if l < 0 || uint64(l) > MaxCollectionLength {
			return nil, fmt.Errorf("%w: DynamicValue array length %d", ErrAllocationTooLarge, l)
		}
		arr := make(jsontree.Array, 0, l)
		for i := int64(0); i < l; i++ {
			v, err := decodeDynamicValue(p)
			if err != nil {
				return nil, fmt.Errorf("DynamicValue[%d]: %w", i, err)
			}
			arr = append(arr, v)
		}
		typeName, value = "Array", arr
	case dvMap:
		// Despite the name, this is an array of DynamicValue entries, each
		// preceded by two varints the reference decoder reads and discards.
		l, err := p.r.ReadZigzagVarint()
		if err != nil {
			return nil, fmt.Errorf("DynamicValue: %w", err)
		}
		if l < 0 || uint64(l) > MaxCollectionLength {
			return nil, fmt.Errorf("%w: DynamicValue map length %d", ErrAllocationTooLarge, l)
		}
		arr := make(jsontree.Array, 0, l)
		for i := int64(0); i < l; i++ {
			if _, err := p.r.ReadZigzagVarint(); err != nil {
				return nil, fmt.Errorf("DynamicValue map[%d]: %w", i, err)
			}
			if _, err := p.r.ReadZigzagVarint(); err != nil {
				return nil, fmt.Errorf("DynamicValue map[%d]: %w", i, err)
			}
			v, err := decodeDynamicValue(p)
			if err != nil {
				return nil, fmt.Errorf("DynamicValue map[%d]: %w", i, err)
			}
			arr = append(arr, v)
		}
		typeName, value = "Map", arr
	case dvString:
		v, err := p.r.ReadString()
		if err != nil {
			return nil, fmt.Errorf("DynamicValue: %w", err)
		}
		typeName, value = "String", v
	default:
		typeName, value = "Null", nil
	}

	obj := jsontree.NewObject()
	obj.Set("Type", typeName)
	obj.Set("Value", value)
	return obj, nil
}

// decodeDynamicValues reads a "LAHCFFKCOBC" string-hash-keyed map whose
// entries branch between a three-DynamicFloat shape and a FixPoint shape,
// each followed by a ReadInfo tail. Result is wrapped as {"Floats": {...}}.
func decodeDynamicValues(p *Parser) (jsontree.Value, error) {
	l, err := p.r.ReadVarint()
	if err != nil {
		return nil, fmt.Errorf("DynamicValues: %w", err)
	}
	if l > MaxCollectionLength {
		return nil, fmt.Errorf("%w: DynamicValues length %d", ErrAllocationTooLarge, l)
	}

	floats := jsontree.NewObject()
	for i := uint64(0); i < l; i++ {
		key, err := p.parseClassByName("StringHash", false)
		if err != nil {
			return nil, fmt.Errorf("DynamicValues[%d] key: %w", i, err)
		}

		isThreeFloat, err := readRawBool(p)
		if err != nil {
			return nil, fmt.Errorf("DynamicValues[%d]: %w", i, err)
		}

		var entry *jsontree.Object
		if isThreeFloat {
			v7, err := decodeDynamicFloat(p)
			if err != nil {
				return nil, fmt.Errorf("DynamicValues[%d] v7: %w", i, err)
			}
			v8, err := decodeDynamicFloat(p)
			if err != nil {
				return nil, fmt.Errorf("DynamicValues[%d] v8: %w", i, err)
			}
			v9, err := decodeDynamicFloat(p)
			if err != nil {
				return nil, fmt.Errorf("DynamicValues[%d] v9: %w", i, err)
			}
			readInfo, err := decodeReadInfo(p)
			if err != nil {
				return nil, fmt.Errorf("DynamicValues[%d] ReadInfo: %w", i, err)
			}

			entry = jsontree.NewObject()
			entry.Set("v7", v7)
			entry.Set("v8", v8)
			entry.Set("v9", v9)
			entry.Set("ReadInfo", readInfo)
		} else {
			v24, err := decodeFixPoint(p)
			if err != nil {
				return nil, fmt.Errorf("DynamicValues[%d] v24: %w", i, err)
			}

			hasUnk, err := readRawBool(p)
			if err != nil {
				return nil, fmt.Errorf("DynamicValues[%d]: %w", i, err)
			}
			unk := jsontree.NewObject()
			if hasUnk {
				v15, err := decodeFixPoint(p)
				if err != nil {
					return nil, fmt.Errorf("DynamicValues[%d] v15: %w", i, err)
				}
				v16, err := decodeFixPoint(p)
				if err != nil {
					return nil, fmt.Errorf("DynamicValues[%d] v16: %w", i, err)
				}
				unk.Set("v15", v15)
				unk.Set("v16", v16)
			}

			readInfo, err := decodeReadInfo(p)
			if err != nil {
				return nil, fmt.Errorf("DynamicValues[%d] ReadInfo: %w", i, err)
			}

			entry = jsontree.NewObject()
			entry.Set("ReadInfo", readInfo)
			entry.Set("unk", unk)
			entry.Set("v24", v24)
		}

		floats.Set(fmt.Sprint(key), entry)
	}

	obj := jsontree.NewObject()
	obj.Set("Floats", floats)
	return obj, nil
}

// decodeDynamicFloat reads either a postfix-expression byte program or a
// single fixed value, gated by a leading raw-byte bool.
func decodeDynamicFloat(p *Parser) (jsontree.Value, error) {
	isDynamic, err := readRawBool(p)
	if err != nil {
		return nil, fmt.Errorf("DynamicFloat: %w", err)
	}

	obj := jsontree.NewObject()
	if !isDynamic {
		fixedValue, err := decodeFixPoint(p)
		if err != nil {
			return nil, fmt.Errorf("DynamicFloat: %w", err)
		}
		obj.Set("IsDynamic", false)
		obj.Set("FixedValue", fixedValue)
		return obj, nil
	}

	opcodeLen, err := p.r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("DynamicFloat opcode length: %w", err)
	}
	opcodeBytes, err := p.r.Read(uint(opcodeLen))
	if err != nil {
		return nil, fmt.Errorf("DynamicFloat opcodes: %w", err)
	}
	opcodes := base64.StdEncoding.EncodeToString(opcodeBytes)

	fixedCount, err := p.r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("DynamicFloat fixed-value count: %w", err)
	}
	fixedValues := make(jsontree.Array, 0, fixedCount)
	for i := byte(0); i < fixedCount; i++ {
		v, err := decodeFixPoint(p)
		if err != nil {
			return nil, fmt.Errorf("DynamicFloat fixed value %d: %w", i, err)
		}
		fixedValues = append(fixedValues, v)
	}

	hashCount, err := p.r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("DynamicFloat hash count: %w", err)
	}
	dynamicHashes := make(jsontree.Array, 0, hashCount)
	for i := byte(0); i < hashCount; i++ {
		h, err := p.r.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("DynamicFloat hash %d: %w", i, err)
		}
		dynamicHashes = append(dynamicHashes, int64(h))
	}

	postfix := jsontree.NewObject()
	postfix.Set("OpCodes", opcodes)
	postfix.Set("FixedValues", fixedValues)
	postfix.Set("DynamicHashes", dynamicHashes)

	obj.Set("IsDynamic", true)
	obj.Set("PostfixExpr", postfix)
	return obj, nil
}

// decodeReadInfo reads a struct whose field names are intentionally
// obfuscated in the source schema (AKFKONMJCEC, EGMAFIOOKJJ). A leading
// raw-byte bool gates whether the struct is present at all; when absent
// this decodes to a JSON null rather than an object.
func decodeReadInfo(p *Parser) (jsontree.Value, error) {
	hasInfo, err := readRawBool(p)
	if err != nil {
		return nil, fmt.Errorf("ReadInfo: %w", err)
	}
	if !hasInfo {
		return nil, nil
	}

	s, err := p.r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("ReadInfo: %w", err)
	}
	v17, err := p.r.ReadZigzagVarint()
	if err != nil {
		return nil, fmt.Errorf("ReadInfo: %w", err)
	}

	obj := jsontree.NewObject()
	obj.Set("AKFKONMJCEC", s)
	obj.Set("EGMAFIOOKJJ", v17)
	return obj, nil
}

// decodeJsonEnum reads an {EnumIndex, Value} pair of i32 varints; unlike
// schema Enum entries this type carries no label table at all.
func decodeJsonEnum(p *Parser) (jsontree.Value, error) {
	enumIndex, err := p.r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("JsonEnum: %w", err)
	}
	value, err := p.r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("JsonEnum: %w", err)
	}

	obj := jsontree.NewObject()
	obj.Set("EnumIndex", int64(enumIndex))
	obj.Set("Value", int64(value))
	return obj, nil
}

// decodeTextID reads a textmap row identifier: a hash pair used to look up
// localized text out of band, not an embedded string.
func decodeTextID(p *Parser) (jsontree.Value, error) {
	hash, err := p.r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("TextID: %w", err)
	}
	hash64, err := p.r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("TextID: %w", err)
	}

	obj := jsontree.NewObject()
	obj.Set("Hash", int64(hash))
	obj.Set("Hash64", hash64)
	return obj, nil
}
