package wire

import "github.com/wippyai/tinypacks/value"

// Type is the type band of a header byte (bits 7:5).
type Type byte

const (
	TypeNone    Type = 0x00
	TypeBoolean Type = 0x20
	TypeInteger Type = 0x40
	TypeReal    Type = 0x60
	TypeString  Type = 0x80
	TypeBytes   Type = 0xA0
	TypeList    Type = 0xC0
	TypeMap     Type = 0xE0
)

// Header byte layout
const (
	TypeMask = 0xE0 // bits 7:5
	SizeMask = 0x1F // bits 4:0

	// MaxDirectSize is the largest content length stored in the size field.
	MaxDirectSize = 30
	// Ext16Marker in the size field announces a 2-byte length.
	Ext16Marker = 0x1F
	// Ext32Marker as the 2-byte length announces a 4-byte length.
	Ext32Marker = 0xFFFF

	// MaxContentLength is the largest content length the format can carry.
	MaxContentLength = 0xFFFFFFFF
)

// Family masks group the type bands by their top two bits.
const (
	FamilyMask      = 0xC0
	FamilyNumber    = 0x40 // integer, real
	FamilyBlock     = 0x80 // string, bytes
	FamilyContainer = 0xC0 // list, map
)

var typeNames = [8]string{"none", "boolean", "integer", "real", "string", "bytes", "list", "map"}

func (t Type) String() string {
	if byte(t)&SizeMask != 0 {
		return "unknown"
	}
	return typeNames[t>>5]
}

// Valid reports whether t is one of the eight type bands.
func (t Type) Valid() bool {
	return byte(t)&SizeMask == 0
}

// IsContainer reports whether the content of t is a run of elements.
func (t Type) IsContainer() bool {
	return byte(t)&FamilyMask == FamilyContainer
}

// Kind maps a type band to the value kind it carries.
func (t Type) Kind() value.Kind {
	return value.Kind(t >> 5)
}

// TypeOf maps a value kind to its type band.
func TypeOf(k value.Kind) Type {
	return Type(k << 5)
}

// ValidWidth reports whether n is a legal content length for t.
// Strings, bytes and containers accept any length.
func ValidWidth(t Type, n uint32) bool {
	switch t {
	case TypeNone:
		return n == 0
	case TypeBoolean:
		return n <= 1
	case TypeInteger:
		return n == 0 || n == 1 || n == 2 || n == 4 || n == 8
	case TypeReal:
		return n == 0 || n == 4 || n == 8
	}
	return true
}
