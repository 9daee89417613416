package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned by [MirrorPath] when path does not live under
// the input root.
var ErrOutsideRoot = errors.New("path is outside the input root")

// MirrorPath maps path from inputRoot into the parallel tree under
// outputRoot, preserving the relative directory structure:
//
//	<inputRoot>/materials/brick/wall.tga -> <outputRoot>/materials/brick/wall.tga
//
// Both roots and path are cleaned first. It does not touch the filesystem.
func MirrorPath(inputRoot, outputRoot, path string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(inputRoot), filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return filepath.Join(outputRoot, rel), nil
}
