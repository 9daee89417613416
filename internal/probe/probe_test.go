package probe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabefollower/source1import/internal/artifact"
)

// encode returns a header followed by a few bytes of fake image data.
func encode(t *testing.T, raw vtfHeader) []byte {
	t.Helper()
	raw.Signature = signature
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &raw))
	buf.Write(make([]byte, 16))
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     vtfHeader
		class   artifact.Class
		parts   int
		summary string
	}{
		{
			name:    "plain DXT5",
			raw:     vtfHeader{Version: [2]uint32{7, 2}, Width: 512, Height: 256, Frames: 1, HighResFormat: int32(FormatDXT5), Depth: 1},
			class:   artifact.ClassDefault,
			parts:   1,
			summary: "512x256 DXT5",
		},
		{
			name:    "hdr cubemap",
			raw:     vtfHeader{Version: [2]uint32{7, 4}, Width: 64, Height: 64, Flags: FlagEnvmap, Frames: 1, HighResFormat: int32(FormatRGBA16161616F)},
			class:   artifact.ClassCubemapFace,
			parts:   6,
			summary: "64x64 RGBA16161616F, cubemap, hdr",
		},
		{
			name:    "animated",
			raw:     vtfHeader{Version: [2]uint32{7, 1}, Width: 128, Height: 128, Frames: 12, HighResFormat: int32(FormatBGRA8888)},
			class:   artifact.ClassSequenceFrame,
			parts:   12,
			summary: "128x128 BGRA8888, 12 frames",
		},
		{
			name:    "volume",
			raw:     vtfHeader{Version: [2]uint32{7, 3}, Width: 32, Height: 32, Frames: 1, Depth: 8, HighResFormat: int32(FormatRGBA8888)},
			class:   artifact.ClassDepthSlice,
			parts:   8,
			summary: "32x32 RGBA8888, 8 slices",
		},
		{
			name:    "depth ignored before 7.2",
			raw:     vtfHeader{Version: [2]uint32{7, 1}, Width: 16, Height: 16, Depth: 8, HighResFormat: int32(FormatDXT1)},
			class:   artifact.ClassDefault,
			parts:   1,
			summary: "16x16 DXT1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Parse(bytes.NewReader(encode(t, tt.raw)))
			require.NoError(t, err)
			assert.Equal(t, tt.class, h.ExpectedClass())
			assert.Equal(t, tt.parts, h.ExpectedParts())
			assert.Equal(t, tt.summary, h.Summary())
			assert.GreaterOrEqual(t, h.Frames, 1)
			assert.GreaterOrEqual(t, h.Depth, 1)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("VTF\x00short")))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, err = Parse(bytes.NewReader(make([]byte, 80)))
	assert.True(t, errors.Is(err, ErrNotVTF))

	_, err = Parse(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, io.EOF))
}

func TestProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky_up.vtf")
	raw := vtfHeader{Version: [2]uint32{7, 2}, Width: 256, Height: 256, Frames: 1, HighResFormat: int32(FormatDXT1)}
	require.NoError(t, os.WriteFile(path, encode(t, raw), 0o644))

	h, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, "7.2", h.VersionString())
	assert.Equal(t, "256x256", h.Resolution())
	assert.Equal(t, ".tga", h.OutputExt())

	_, err = Probe(filepath.Join(t.TempDir(), "missing.vtf"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "RGBA8888", FormatRGBA8888.String())
	assert.Equal(t, "UVLX8888", FormatUVLX8888.String())
	assert.Equal(t, "NONE", FormatNone.String())
	assert.Equal(t, "format(99)", ImageFormat(99).String())
	assert.True(t, FormatRGBA16161616.IsHDR())
	assert.False(t, FormatDXT5.IsHDR())
}
