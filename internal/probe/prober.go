package probe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotVTF is returned when the file signature is not "VTF\0".
var ErrNotVTF = errors.New("not a VTF file")

var signature = [4]byte{'V', 'T', 'F', 0}

// Probe reads the header of the texture at path.
func Probe(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("probe %q: %w", path, err)
	}
	return h, nil
}

// Parse decodes a VTF header from r. Exported for testing without texture
// files on disk.
func Parse(r io.Reader) (*Header, error) {
	var raw vtfHeader
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if raw.Signature != signature {
		return nil, ErrNotVTF
	}
	return buildHeader(&raw), nil
}

// --- VTF wire layout ---

// vtfHeader is the on-disk header through the 7.2 depth field, little
// endian and packed. Older versions end before Depth; whatever follows is
// image data and is ignored.
type vtfHeader struct {
	Signature     [4]byte
	Version       [2]uint32
	HeaderSize    uint32
	Width         uint16
	Height        uint16
	Flags         uint32
	Frames        uint16
	FirstFrame    uint16
	_             [4]byte
	Reflectivity  [3]float32
	_             [4]byte
	BumpmapScale  float32
	HighResFormat int32
	MipmapCount   uint8
	LowResFormat  int32
	LowResWidth   uint8
	LowResHeight  uint8
	Depth         uint16
}

func buildHeader(raw *vtfHeader) *Header {
	h := &Header{
		Version:     raw.Version,
		Width:       int(raw.Width),
		Height:      int(raw.Height),
		Flags:       raw.Flags,
		Frames:      max(int(raw.Frames), 1),
		Depth:       1,
		MipmapCount: int(raw.MipmapCount),
		Format:      ImageFormat(raw.HighResFormat),
	}
	if raw.Version[0] > 7 || (raw.Version[0] == 7 && raw.Version[1] >= 2) {
		h.Depth = max(int(raw.Depth), 1)
	}
	return h
}
