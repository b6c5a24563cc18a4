package hl

import (
	"github.com/pkg/errors"

	"github.com/baltrad-go/hlhdf/hdf5"
)

// FormatSpecifier is the logical value-type tag of a node payload. The
// vocabulary is closed: parsing an unknown name yields FormatUndefined.
type FormatSpecifier int

const (
	FormatUndefined FormatSpecifier = iota - 1
	FormatChar
	FormatSChar
	FormatUChar
	FormatShort
	FormatUShort
	FormatInt
	FormatUInt
	FormatLong
	FormatULong
	FormatLLong
	FormatULLong
	FormatFloat
	FormatDouble
	FormatLDouble
	FormatHSize
	FormatHSSize
	FormatHerr
	FormatHbool
	FormatString
	FormatCompound
	FormatArray
)

var formatNames = map[FormatSpecifier]string{
	FormatChar:     "char",
	FormatSChar:    "schar",
	FormatUChar:    "uchar",
	FormatShort:    "short",
	FormatUShort:   "ushort",
	FormatInt:      "int",
	FormatUInt:     "uint",
	FormatLong:     "long",
	FormatULong:    "ulong",
	FormatLLong:    "llong",
	FormatULLong:   "ullong",
	FormatFloat:    "float",
	FormatDouble:   "double",
	FormatLDouble:  "ldouble",
	FormatHSize:    "hsize",
	FormatHSSize:   "hssize",
	FormatHerr:     "herr",
	FormatHbool:    "hbool",
	FormatString:   "string",
	FormatCompound: "compound",
	FormatArray:    "array",
}

var formatTags = func() map[string]FormatSpecifier {
	m := make(map[string]FormatSpecifier, len(formatNames))
	for tag, name := range formatNames {
		m[name] = tag
	}
	return m
}()

// ParseFormat translates a format name to its tag. Unknown names parse to
// FormatUndefined.
func ParseFormat(name string) FormatSpecifier {
	if tag, ok := formatTags[name]; ok {
		return tag
	}
	return FormatUndefined
}

func (f FormatSpecifier) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "undefined"
}

// IsFormatSupported reports whether a format name denotes a value type whose
// byte size follows from the name alone. String, compound and array values
// need caller-supplied sizing, so their names are not "supported" here.
func IsFormatSupported(name string) bool {
	switch ParseFormat(name) {
	case FormatUndefined, FormatString, FormatCompound, FormatArray:
		return false
	default:
		return true
	}
}

// Size returns the byte width of a fixed-width format. It fails with
// ErrSizeUndetermined for string, compound, array and undefined tags.
func (f FormatSpecifier) Size() (int, error) {
	switch f {
	case FormatChar, FormatSChar, FormatUChar, FormatHbool:
		return 1, nil
	case FormatShort, FormatUShort:
		return 2, nil
	case FormatInt, FormatUInt, FormatHerr:
		return 4, nil
	case FormatLong, FormatULong, FormatLLong, FormatULLong, FormatHSize, FormatHSSize:
		return 8, nil
	case FormatFloat:
		return 4, nil
	case FormatDouble:
		return 8, nil
	case FormatLDouble:
		return 16, nil
	default:
		return 0, errors.Wrap(ErrSizeUndetermined, f.String())
	}
}

// storeDatatype realizes a format tag as a concrete store type. strLen is
// only consulted for FormatString and must include the terminator.
func storeDatatype(f FormatSpecifier, strLen int) (*hdf5.Datatype, error) {
	switch f {
	case FormatChar, FormatSChar:
		return hdf5.NewFixedPointType(1, true), nil
	case FormatUChar, FormatHbool:
		return hdf5.NewFixedPointType(1, false), nil
	case FormatShort:
		return hdf5.NewFixedPointType(2, true), nil
	case FormatUShort:
		return hdf5.NewFixedPointType(2, false), nil
	case FormatInt, FormatHerr:
		return hdf5.NewFixedPointType(4, true), nil
	case FormatUInt:
		return hdf5.NewFixedPointType(4, false), nil
	case FormatLong, FormatLLong, FormatHSSize:
		return hdf5.NewFixedPointType(8, true), nil
	case FormatULong, FormatULLong, FormatHSize:
		return hdf5.NewFixedPointType(8, false), nil
	case FormatFloat:
		return hdf5.NewFloatType(4), nil
	case FormatDouble:
		return hdf5.NewFloatType(8), nil
	case FormatLDouble:
		return hdf5.NewFloatType(16), nil
	case FormatString:
		if strLen <= 0 {
			strLen = 1
		}
		return hdf5.NewStringType(strLen), nil
	default:
		return nil, errors.Wrap(ErrUnrecognizedFormat, f.String())
	}
}

// formatOf derives the canonical format tag of a store type. Widths that
// several tags share collapse onto one canonical tag, so 8-byte integers
// read back as llong/ullong regardless of how they were written.
func formatOf(dt *hdf5.Datatype) FormatSpecifier {
	switch {
	case dt == nil:
		return FormatUndefined
	case dt.IsFixedPoint():
		signed := dt.IsSigned()
		switch dt.Size() {
		case 1:
			if signed {
				return FormatSChar
			}
			return FormatUChar
		case 2:
			if signed {
				return FormatShort
			}
			return FormatUShort
		case 4:
			if signed {
				return FormatInt
			}
			return FormatUInt
		case 8:
			if signed {
				return FormatLLong
			}
			return FormatULLong
		}
	case dt.IsFloat():
		switch dt.Size() {
		case 4:
			return FormatFloat
		case 8:
			return FormatDouble
		case 16:
			return FormatLDouble
		}
	case dt.IsString():
		return FormatString
	case dt.IsCompound():
		return FormatCompound
	case dt.ArrayDims() != nil:
		return FormatArray
	}
	return FormatUndefined
}
