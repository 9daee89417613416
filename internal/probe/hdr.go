package probe

// IsHDR reports whether f stores more than 8 bits per channel. Converters
// write these as .pfm instead of .tga.
func (f ImageFormat) IsHDR() bool {
	return f == FormatRGBA16161616F || f == FormatRGBA16161616
}

// IsHDR reports whether the texture's high-resolution image is HDR.
func (h *Header) IsHDR() bool { return h.Format.IsHDR() }

// OutputExt returns the extension a converter is expected to write.
func (h *Header) OutputExt() string {
	if h.IsHDR() {
		return ".pfm"
	}
	return ".tga"
}
