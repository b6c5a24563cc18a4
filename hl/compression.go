package hl

import "github.com/pkg/errors"

// CompressionKind selects the dataset compression method.
type CompressionKind int

const (
	CompressionNone CompressionKind = iota
	CompressionZLib
	CompressionSZLib
)

func (k CompressionKind) String() string {
	switch k {
	case CompressionNone:
		return "none"
	case CompressionZLib:
		return "zlib"
	case CompressionSZLib:
		return "szlib"
	default:
		return "unknown"
	}
}

// Compression describes per-dataset compression. The zero Level with
// CompressionZLib means "store uncompressed", matching deflate semantics.
type Compression struct {
	Kind  CompressionKind
	Level int // zlib: 0..9

	// szlib parameters
	SZLibMask           uint32
	SZLibPixelsPerBlock int
}

// NewCompression returns a descriptor of the given kind with default
// parameters.
func NewCompression(kind CompressionKind) *Compression {
	return &Compression{Kind: kind}
}

// ZLibCompression returns a deflate descriptor with the given level.
func ZLibCompression(level int) *Compression {
	return &Compression{Kind: CompressionZLib, Level: level}
}

// SZLibCompression returns a block-coded descriptor.
func SZLibCompression(mask uint32, pixelsPerBlock int) *Compression {
	return &Compression{
		Kind:                CompressionSZLib,
		SZLibMask:           mask,
		SZLibPixelsPerBlock: pixelsPerBlock,
	}
}

// Validate checks the descriptor's parameters against its kind.
func (c *Compression) Validate() error {
	switch c.Kind {
	case CompressionNone:
		return nil
	case CompressionZLib:
		if c.Level < 0 || c.Level > 9 {
			return errors.Wrapf(ErrInvalidCompressionParams, "zlib level %d", c.Level)
		}
		return nil
	case CompressionSZLib:
		if c.SZLibMask == 0 || c.SZLibPixelsPerBlock <= 0 {
			return errors.Wrap(ErrInvalidCompressionParams, "szlib mask and pixels per block must be positive")
		}
		return nil
	default:
		return errors.Wrapf(ErrInvalidCompressionParams, "unknown kind %d", c.Kind)
	}
}

// Clone returns a value copy.
func (c *Compression) Clone() *Compression {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
