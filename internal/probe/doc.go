// Package probe reads the fixed header of a Valve texture (VTF) file and
// exposes what a converter should emit for it: dimensions, pixel format,
// and whether the texture is a cubemap, an animated sequence, or a volume.
//
// The worker uses the header to sanity-check backend output (a cubemap
// that came back with fewer than six faces is flagged), and dry runs use
// it to describe each queued asset.
package probe
