package artifact

import "fmt"

// Class is the closed set of artifact shapes a backend can emit for one
// source asset.
type Class uint8

const (
	ClassDefault Class = iota
	ClassCubemapFace
	ClassSequenceFrame
	ClassDepthSlice
)

// String returns the class label used in reports and metrics.
func (c Class) String() string {
	switch c {
	case ClassDefault:
		return "default"
	case ClassCubemapFace:
		return "cubemap_face"
	case ClassSequenceFrame:
		return "sequence_frame"
	case ClassDepthSlice:
		return "depth_slice"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Faces lists the cubemap face codes in expansion order.
var Faces = []string{"up", "dn", "lf", "rt", "bk", "ft"}

// MaxIndex bounds sequence and depth-slice indices (three zero-padded digits).
const MaxIndex = 999

// depthMarker precedes the index of a depth slice.
const depthMarker = "_z"

// Kind is one classified artifact. Face is set only for ClassCubemapFace,
// Index only for ClassSequenceFrame and ClassDepthSlice.
type Kind struct {
	Class Class
	Face  string
	Index int
}

// Default is the kind of a single-image artifact.
func Default() Kind { return Kind{Class: ClassDefault} }

// CubemapFace returns the kind for one cubemap face.
func CubemapFace(face string) Kind { return Kind{Class: ClassCubemapFace, Face: face} }

// SequenceFrame returns the kind for one animation frame.
func SequenceFrame(index int) Kind { return Kind{Class: ClassSequenceFrame, Index: index} }

// DepthSlice returns the kind for one volume slice.
func DepthSlice(index int) Kind { return Kind{Class: ClassDepthSlice, Index: index} }

// Suffix is the filename suffix this kind appends to a stem.
func (k Kind) Suffix() string {
	switch k.Class {
	case ClassCubemapFace:
		return k.Face
	case ClassSequenceFrame:
		return fmt.Sprintf("%03d", k.Index)
	case ClassDepthSlice:
		return fmt.Sprintf("%s%03d", depthMarker, k.Index)
	}
	return ""
}

func (k Kind) String() string {
	switch k.Class {
	case ClassCubemapFace:
		return "cubemap_face(" + k.Face + ")"
	case ClassSequenceFrame, ClassDepthSlice:
		return fmt.Sprintf("%s(%03d)", k.Class, k.Index)
	}
	return k.Class.String()
}

// MarshalText renders the kind as its String form in reports.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// MultiPart reports whether artifacts of this kind come in groups.
func (k Kind) MultiPart() bool { return k.Class != ClassDefault }

func isFace(code string) bool {
	for _, f := range Faces {
		if f == code {
			return true
		}
	}
	return false
}
