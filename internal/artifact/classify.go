package artifact

import (
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// anchorSuffixes are tried once per output extension. Each names the first
// member of a kind's group; [ExpandGroup] finds the rest.
var anchorSuffixes = func() []string {
	s := []string{Default().Suffix()}
	for _, f := range Faces {
		s = append(s, CubemapFace(f).Suffix())
	}
	return append(s, SequenceFrame(0).Suffix(), DepthSlice(0).Suffix())
}()

// Member is one file of an expanded group.
type Member struct {
	Path string
	Kind Kind
}

// EnumerateCandidatePaths yields every path that may hold the first artifact
// of a group for asset, for each extension in exts. The sequence is finite
// and can be ranged over any number of times. It never touches the
// filesystem.
func EnumerateCandidatePaths(asset Asset, exts []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, ext := range exts {
			for _, suffix := range anchorSuffixes {
				if !yield(asset.Sibling(asset.Stem+suffix, ext)) {
					return
				}
			}
		}
	}
}

// Classify reports which kind observed is for asset. Precedence:
//
//  1. stem equals the asset stem: Default
//  2. asset stem + face code: CubemapFace
//  3. asset stem + "_z" + three digits: DepthSlice
//  4. asset stem + three digits: SequenceFrame
//
// ok is false when observed is not an artifact of asset, including when it
// carries the source extension. Face-named stems ("dirt", "left") get no
// special treatment here; see [ClassifyFaceSet].
func Classify(asset Asset, observed string) (Kind, bool) {
	return classify(asset, observed, false)
}

// ClassifyFaceSet is [Classify] for an asset known to be one face of a
// cubemap set (see [FaceSet]): the asset's own output is CubemapFace of its
// trailing face code, and the other faces of the set ("sky_dn" for "sky_up")
// classify as CubemapFace too.
func ClassifyFaceSet(asset Asset, observed string) (Kind, bool) {
	return classify(asset, observed, true)
}

func classify(asset Asset, observed string, faceSet bool) (Kind, bool) {
	name := filepath.Base(observed)
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, asset.Ext) {
		return Kind{}, false
	}
	stem := strings.TrimSuffix(name, ext)

	base, face, faceNamed := asset.faceBase()
	faceNamed = faceNamed && faceSet

	if stem == asset.Stem {
		if faceNamed {
			return CubemapFace(face), true
		}
		return Default(), true
	}
	if rest, ok := strings.CutPrefix(stem, asset.Stem); ok {
		if isFace(rest) {
			return CubemapFace(rest), true
		}
		if digits, ok := strings.CutPrefix(rest, depthMarker); ok {
			if n, ok := parseIndex(digits); ok {
				return DepthSlice(n), true
			}
		}
		if n, ok := parseIndex(rest); ok {
			return SequenceFrame(n), true
		}
	}
	if faceNamed {
		if rest, ok := strings.CutPrefix(stem, base); ok && isFace(rest) {
			return CubemapFace(rest), true
		}
	}
	return Kind{}, false
}

// FaceSet reports whether a face-named asset such as "sky_up" has evidence
// of belonging to a cubemap set: another face of the same base is present
// as a source asset (sourceExists) or as an output with one of exts
// (outputExists). Assets whose stem does not end in a face code never form
// a set.
func FaceSet(asset Asset, exts []string, sourceExists, outputExists func(string) bool) bool {
	base, face, ok := asset.faceBase()
	if !ok {
		return false
	}
	for _, f := range Faces {
		if f == face {
			continue
		}
		if sourceExists(asset.Sibling(base+f, asset.Ext)) {
			return true
		}
		for _, ext := range exts {
			if outputExists(asset.Sibling(base+f, ext)) {
				return true
			}
		}
	}
	return false
}

// ExpandGroup returns every existing member of the group that head (already
// classified as kind) belongs to, in canonical order. Cubemap expansion
// checks all six faces; a face is left out when a source asset of its own
// name sits next to asset, since that file is the other asset's output.
// Frames and slices are contiguous from index 000: the first missing index
// ends the group. A Default head is returned as-is.
func ExpandGroup(asset Asset, head string, kind Kind, exists func(string) bool) []Member {
	dir := filepath.Dir(head)
	ext := filepath.Ext(head)
	stem := strings.TrimSuffix(filepath.Base(head), ext)
	prefix := strings.TrimSuffix(stem, kind.Suffix())

	if !kind.MultiPart() {
		return []Member{{Path: head, Kind: kind}}
	}

	var members []Member
	switch kind.Class {
	case ClassCubemapFace:
		for _, face := range Faces {
			s := prefix + face
			if s != asset.Stem && exists(filepath.Join(dir, s+asset.Ext)) {
				continue
			}
			if p := filepath.Join(dir, s+ext); exists(p) {
				members = append(members, Member{Path: p, Kind: CubemapFace(face)})
			}
		}
	case ClassSequenceFrame, ClassDepthSlice:
		for i := 0; i <= MaxIndex; i++ {
			k := Kind{Class: kind.Class, Index: i}
			p := filepath.Join(dir, prefix+k.Suffix()+ext)
			if !exists(p) {
				break
			}
			members = append(members, Member{Path: p, Kind: k})
		}
	}
	return members
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// parseIndex accepts exactly three decimal digits.
func parseIndex(s string) (int, bool) {
	if len(s) != 3 {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
