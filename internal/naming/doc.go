// Package naming maps source-tree paths into the mirrored output tree and
// tracks which asset owns each destination during a run.
//
//   - MirrorPath(inputRoot, outputRoot, path) → mirrored path
//     Pure function; rejects paths outside the input root.
//   - ClaimRegistry
//     In-run owner map keyed by destination path; the first asset to claim a
//     destination keeps it.
package naming
