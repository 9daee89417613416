package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabefollower/source1import/internal/artifact"
	"github.com/gabefollower/source1import/internal/backend"
	"github.com/gabefollower/source1import/internal/logging"
	"github.com/gabefollower/source1import/internal/metrics"
	"github.com/gabefollower/source1import/internal/naming"
	"github.com/gabefollower/source1import/internal/probe"
)

// Relocation errors.
var (
	ErrDestinationExists  = errors.New("destination already exists")
	ErrDestinationClaimed = errors.New("destination claimed by another asset")
)

// Attempt is one backend invocation for an asset.
type Attempt struct {
	Backend   string        `json:"backend" yaml:"backend"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Artifacts int           `json:"artifacts" yaml:"artifacts"`
	Rejected  int           `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Err       error         `json:"-" yaml:"-"`
}

// Outcome is the terminal result of converting one asset. Backend is the
// first backend that produced artifacts (nil when none did). Incomplete is
// set when the texture header promised more parts than were collected.
type Outcome struct {
	Asset      artifact.Asset      `json:"asset" yaml:"asset"`
	Backend    *backend.Backend    `json:"backend,omitempty" yaml:"backend,omitempty"`
	Artifacts  []artifact.Produced `json:"artifacts" yaml:"artifacts"`
	Succeeded  bool                `json:"succeeded" yaml:"succeeded"`
	Incomplete bool                `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
	Attempts   []Attempt           `json:"attempts" yaml:"attempts"`
}

// Worker converts single assets. One Worker is shared by all jobs of a run;
// per-asset state lives on the stack of Convert.
type Worker struct {
	Backends  []backend.Backend // Priority order.
	Runner    backend.Runner
	InputDir  string
	OutputDir string
	Exts      []string // Output extensions to look for.
	Overwrite bool     // Replace destinations that existed before the run.
	Claims    *naming.ClaimRegistry
	Log       *logging.Logger
	Verbose   bool
}

// Convert runs backends on asset in priority order until one produces
// artifacts. The backend whose Priority equals force runs even after an
// earlier success. A zero exit with no artifacts is logged and the next
// backend is tried, as is one whose outputs all failed to relocate.
// Invocation failures never escape: they are recorded in the outcome's
// attempts.
func (w *Worker) Convert(ctx context.Context, asset artifact.Asset, force int) Outcome {
	out := Outcome{Asset: asset}
	log := w.Log.With("asset", w.rel(asset.Path))
	byDest := make(map[string]int)

	hdr, err := probe.Probe(asset.Path)
	if err != nil {
		log.Debug(w.Verbose, "No texture header: %v", err)
	} else {
		log.Debug(w.Verbose, "VTF %s %s", hdr.VersionString(), hdr.Summary())
	}

	for _, b := range w.Backends {
		if out.Succeeded && b.Priority != force {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		err := w.Runner.Run(ctx, b, asset.Path)
		att := Attempt{Backend: b.Tag, Duration: time.Since(start)}
		metrics.RecordAttempt(b.Tag, err == nil, att.Duration)

		if err != nil {
			att.Err, att.Error = err, err.Error()
			out.Attempts = append(out.Attempts, att)
			log.Debug(w.Verbose, "[%s] %v", b.Tag, err)
			continue
		}

		produced, rejected := w.collect(asset, b, log, hdr, start)
		att.Artifacts, att.Rejected = len(produced), rejected
		out.Attempts = append(out.Attempts, att)
		switch {
		case len(produced) == 0 && rejected > 0:
			log.Warn("[%s] produced %d file(s) but none could be relocated: %s", b.Tag, rejected, w.rel(asset.Path))
			continue
		case len(produced) == 0:
			metrics.RecordNoArtifact(b.Tag)
			log.Warn("[%s] reported success but no output was found: %s", b.Tag, w.rel(asset.Path))
			continue
		}

		if out.Backend == nil {
			used := b
			out.Backend = &used
		}
		for _, p := range produced {
			if idx, ok := byDest[p.Path]; ok {
				out.Artifacts[idx] = p // forced backend re-emitted the same file
				continue
			}
			byDest[p.Path] = len(out.Artifacts)
			out.Artifacts = append(out.Artifacts, p)
		}
		out.Succeeded = true
	}

	if out.Succeeded && hdr != nil {
		out.Incomplete = checkParts(log, w.rel(asset.Path), hdr, out.Artifacts)
	}
	return out
}

// checkParts warns when fewer distinct parts were collected than the
// texture header promises (e.g. a cubemap with missing faces).
func checkParts(log *logging.Logger, rel string, hdr *probe.Header, produced []artifact.Produced) bool {
	want := hdr.ExpectedParts()
	if want <= 1 {
		return false
	}
	class := hdr.ExpectedClass()
	got := make(map[string]bool)
	for _, p := range produced {
		if p.Kind.Class == class {
			got[p.Kind.String()] = true
		}
	}
	if len(got) >= want {
		return false
	}
	log.Warn("%s: header declares %d %s parts, collected %d", rel, want, class, len(got))
	return true
}

// collect looks up the candidate paths of asset, expands every group found,
// and relocates each member into the output tree. It returns the relocated
// artifacts and the number of files that were found but left in place.
//
// A face-named stem ("dirt", "sky_up") is read as a cubemap face only when
// the header carries the envmap flag or another face of the same base exists
// as a source or as an output written since the attempt started.
func (w *Worker) collect(asset artifact.Asset, b backend.Backend, log *logging.Logger, hdr *probe.Header, start time.Time) ([]artifact.Produced, int) {
	exts := w.exts(hdr)
	fresh := func(path string) bool { return writtenSince(path, start) }
	faceSet := (hdr != nil && hdr.IsCubemap()) || artifact.FaceSet(asset, exts, artifact.Exists, fresh)
	classify := artifact.Classify
	if faceSet {
		classify = artifact.ClassifyFaceSet
	}

	seen := make(map[string]bool)
	var produced []artifact.Produced
	rejected := 0

	for cand := range artifact.EnumerateCandidatePaths(asset, exts) {
		if seen[cand] || !artifact.Exists(cand) {
			continue
		}
		kind, ok := classify(asset, cand)
		if !ok {
			continue
		}

		var group []artifact.Produced
		for _, m := range artifact.ExpandGroup(asset, cand, kind, artifact.Exists) {
			if seen[m.Path] {
				continue
			}
			seen[m.Path] = true

			dest, size, err := w.relocate(asset, m.Path)
			if err != nil {
				rejected++
				metrics.RecordRelocateFailure(b.Tag, relocateReason(err))
				log.Error("[%s] cannot relocate %s: %v", b.Tag, w.rel(m.Path), err)
				continue
			}
			p := artifact.Produced{
				Path:    dest,
				Origin:  m.Path,
				Kind:    m.Kind,
				Ext:     filepath.Ext(m.Path),
				Backend: b.Tag,
				Size:    size,
			}
			metrics.RecordArtifact(m.Kind.Class.String(), p.Ext, b.Tag)
			group = append(group, p)
		}
		if len(group) > 0 {
			logGroup(log, b.Tag, w.rel(cand), group)
			produced = append(produced, group...)
		}
	}
	return produced, rejected
}

// exts returns the output extensions to look up, with the one the header
// suggests moved to the front.
func (w *Worker) exts(hdr *probe.Header) []string {
	if hdr == nil {
		return w.Exts
	}
	first := hdr.OutputExt()
	out := make([]string, 0, len(w.Exts))
	for _, e := range w.Exts {
		if strings.EqualFold(e, first) {
			out = append([]string{e}, out...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// writtenSince reports whether path is a regular file modified no earlier
// than start, allowing for coarse filesystem timestamps.
func writtenSince(path string, start time.Time) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}
	return !fi.ModTime().Before(start.Add(-mtimeSlack))
}

const mtimeSlack = 2 * time.Second

func relocateReason(err error) string {
	switch {
	case errors.Is(err, ErrDestinationExists):
		return "exists"
	case errors.Is(err, ErrDestinationClaimed):
		return "claimed"
	default:
		return "io"
	}
}

// logGroup prints one success line per classified group.
func logGroup(log *logging.Logger, tag, head string, group []artifact.Produced) {
	switch group[0].Kind.Class {
	case artifact.ClassCubemapFace:
		faces := make([]string, len(group))
		for i, p := range group {
			faces[i] = p.Kind.Face
		}
		log.Success("[%s] Created %s [ %s ] cubemap faces", tag, head, strings.Join(faces, ", "))
	case artifact.ClassSequenceFrame:
		log.Success("[%s] Created %s (%d frames)", tag, head, len(group))
	case artifact.ClassDepthSlice:
		log.Success("[%s] Created %s (%d depth slices)", tag, head, len(group))
	default:
		log.Success("[%s] Created %s", tag, head)
	}
}

// relocate moves src into the mirrored output tree. A destination this asset
// already wrote during the run is replaced; one that existed before the run
// is replaced only with Overwrite.
func (w *Worker) relocate(asset artifact.Asset, src string) (string, int64, error) {
	dest, err := naming.MirrorPath(w.InputDir, w.OutputDir, src)
	if err != nil {
		return "", 0, err
	}

	prev, had := w.Claims.Owner(dest)
	if ok, owner := w.Claims.Claim(asset.Path, dest); !ok {
		return "", 0, fmt.Errorf("%w: %s (%s)", ErrDestinationClaimed, dest, w.rel(owner))
	}
	ownRun := had && prev == asset.Path

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", 0, err
	}
	if _, err := os.Lstat(dest); err == nil && !ownRun {
		if !w.Overwrite {
			return "", 0, fmt.Errorf("%w: %s", ErrDestinationExists, dest)
		}
		w.Log.Warn("Replacing existing %s", dest)
	}

	if err := moveFile(src, dest); err != nil {
		return "", 0, err
	}
	var size int64
	if fi, err := os.Stat(dest); err == nil {
		size = fi.Size()
	}
	return dest, size, nil
}

// moveFile renames src to dest, falling back to copy and delete when the two
// are on different filesystems.
func moveFile(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}
	if cerr := copyFile(src, dest); cerr != nil {
		return errors.Join(err, cerr)
	}
	return os.Remove(src)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dest + ".part"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// rel returns path relative to the input root for display.
func (w *Worker) rel(path string) string { return relTo(w.InputDir, path) }
