package artifact

import (
	"path/filepath"
	"strings"
)

// Asset is one discovered source file. Read-only once created.
type Asset struct {
	Path string `json:"path" yaml:"path"` // Full path to the source file.
	Stem string `json:"stem" yaml:"stem"` // Base name without extension.
	Dir  string `json:"dir" yaml:"dir"`   // Containing directory.
	Ext  string `json:"ext" yaml:"ext"`   // Source extension including the dot (e.g. ".vtf").
}

// NewAsset splits path into its stem, directory and extension.
func NewAsset(path string) Asset {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return Asset{
		Path: path,
		Stem: strings.TrimSuffix(base, ext),
		Dir:  filepath.Dir(path),
		Ext:  ext,
	}
}

// Sibling returns the path of a file next to the asset with the given stem
// and extension.
func (a Asset) Sibling(stem, ext string) string {
	return filepath.Join(a.Dir, stem+ext)
}

// faceBase splits a face-named stem such as "sky_up" into ("sky_", "up").
// ok is false when the stem does not end in a face code.
func (a Asset) faceBase() (base, face string, ok bool) {
	if len(a.Stem) <= 2 {
		return "", "", false
	}
	base, face = a.Stem[:len(a.Stem)-2], a.Stem[len(a.Stem)-2:]
	if !isFace(face) {
		return "", "", false
	}
	return base, face, true
}

// Produced is one confirmed output file of a conversion. Path is the
// location in the output tree after relocation; Origin is where the backend
// wrote it. Ext is the output variant (.tga LDR, .pfm HDR).
type Produced struct {
	Path    string `json:"path" yaml:"path"`
	Origin  string `json:"origin" yaml:"origin"`
	Kind    Kind   `json:"kind" yaml:"kind"`
	Ext     string `json:"ext" yaml:"ext"`
	Backend string `json:"backend" yaml:"backend"`
	Size    int64  `json:"size" yaml:"size"`
}
