package probe

import (
	"fmt"
	"strconv"

	"github.com/gabefollower/source1import/internal/artifact"
)

// ImageFormat is the pixel format of a texture's high-resolution image.
type ImageFormat int32

// Image formats as numbered in the VTF header.
const (
	FormatNone ImageFormat = iota - 1
	FormatRGBA8888
	FormatABGR8888
	FormatRGB888
	FormatBGR888
	FormatRGB565
	FormatI8
	FormatIA88
	FormatP8
	FormatA8
	FormatRGB888Bluescreen
	FormatBGR888Bluescreen
	FormatARGB8888
	FormatBGRA8888
	FormatDXT1
	FormatDXT3
	FormatDXT5
	FormatBGRX8888
	FormatBGR565
	FormatBGRX5551
	FormatBGRA4444
	FormatDXT1OneBitAlpha
	FormatBGRA5551
	FormatUV88
	FormatUVWQ8888
	FormatRGBA16161616F
	FormatRGBA16161616
	FormatUVLX8888
)

var formatNames = [...]string{
	"RGBA8888", "ABGR8888", "RGB888", "BGR888", "RGB565", "I8", "IA88", "P8",
	"A8", "RGB888_BLUESCREEN", "BGR888_BLUESCREEN", "ARGB8888", "BGRA8888",
	"DXT1", "DXT3", "DXT5", "BGRX8888", "BGR565", "BGRX5551", "BGRA4444",
	"DXT1_ONEBITALPHA", "BGRA5551", "UV88", "UVWQ8888", "RGBA16161616F",
	"RGBA16161616", "UVLX8888",
}

func (f ImageFormat) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	if f == FormatNone {
		return "NONE"
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// FlagEnvmap marks a cubemap texture.
const FlagEnvmap uint32 = 0x4000

// Header holds the parsed fixed part of a VTF file. Frames and Depth are at
// least 1.
type Header struct {
	Version     [2]uint32
	Width       int
	Height      int
	Flags       uint32
	Frames      int
	Depth       int
	MipmapCount int
	Format      ImageFormat
}

// VersionString returns e.g. "7.2".
func (h *Header) VersionString() string {
	return fmt.Sprintf("%d.%d", h.Version[0], h.Version[1])
}

// Resolution returns "WxH".
func (h *Header) Resolution() string {
	return strconv.Itoa(h.Width) + "x" + strconv.Itoa(h.Height)
}

// IsCubemap reports whether the envmap flag is set.
func (h *Header) IsCubemap() bool { return h.Flags&FlagEnvmap != 0 }

// ExpectedClass returns the artifact class a converter should produce.
// Cubemap takes precedence over animation, animation over depth.
func (h *Header) ExpectedClass() artifact.Class {
	switch {
	case h.IsCubemap():
		return artifact.ClassCubemapFace
	case h.Frames > 1:
		return artifact.ClassSequenceFrame
	case h.Depth > 1:
		return artifact.ClassDepthSlice
	}
	return artifact.ClassDefault
}

// ExpectedParts returns how many distinct artifacts of [Header.ExpectedClass]
// a complete conversion yields.
func (h *Header) ExpectedParts() int {
	switch h.ExpectedClass() {
	case artifact.ClassCubemapFace:
		return len(artifact.Faces)
	case artifact.ClassSequenceFrame:
		return h.Frames
	case artifact.ClassDepthSlice:
		return h.Depth
	}
	return 1
}

// Summary is a short human description, e.g. "512x512 DXT5, cubemap, hdr".
func (h *Header) Summary() string {
	s := h.Resolution() + " " + h.Format.String()
	switch h.ExpectedClass() {
	case artifact.ClassCubemapFace:
		s += ", cubemap"
	case artifact.ClassSequenceFrame:
		s += fmt.Sprintf(", %d frames", h.Frames)
	case artifact.ClassDepthSlice:
		s += fmt.Sprintf(", %d slices", h.Depth)
	}
	if h.IsHDR() {
		s += ", hdr"
	}
	return s
}
