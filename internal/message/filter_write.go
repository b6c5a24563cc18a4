package message

import (
	"github.com/baltrad-go/hlhdf/internal/binary"
)

// NewDeflatePipeline creates a filter pipeline message with a single DEFLATE
// filter at the given compression level (1-9).
func NewDeflatePipeline(level int) *FilterPipeline {
	return &FilterPipeline{
		Version: 2,
		Filters: []FilterInfo{
			{
				ID:         FilterDeflate,
				Flags:      0,
				ClientData: []uint32{uint32(level)},
			},
		},
	}
}

// Serialize writes the FilterPipeline to the writer using the version 2 format.
func (m *FilterPipeline) Serialize(w *binary.Writer) error {
	if err := w.WriteUint8(2); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(len(m.Filters))); err != nil {
		return err
	}

	for _, f := range m.Filters {
		if err := w.WriteUint16(f.ID); err != nil {
			return err
		}
		// Name length field is only present for custom filters (ID >= 256);
		// the built-in filters we write never carry a name.
		if f.ID >= 256 {
			if err := w.WriteUint16(0); err != nil {
				return err
			}
		}
		if err := w.WriteUint16(f.Flags); err != nil {
			return err
		}
		if err := w.WriteUint16(uint16(len(f.ClientData))); err != nil {
			return err
		}
		for _, cd := range f.ClientData {
			if err := w.WriteUint32(cd); err != nil {
				return err
			}
		}
	}

	return nil
}

// SerializedSize returns the size in bytes when serialized.
func (m *FilterPipeline) SerializedSize(w *binary.Writer) int {
	size := 2 // version + number of filters
	for _, f := range m.Filters {
		size += 6 // id + flags + client data count
		if f.ID >= 256 {
			size += 2 // name length
		}
		size += 4 * len(f.ClientData)
	}
	return size
}
