// Package vtex rewrites Source 1 vtex compile parameter files
// (https://developer.valvesoftware.com/wiki/Vtex_compile_parameters) into a
// "settings" block with Source 2 key names. Keys without an equivalent are
// kept as comments so nothing is silently lost.
package vtex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrAlreadyTranslated is returned when the input already starts with a
// "settings" block.
var ErrAlreadyTranslated = errors.New("already a settings block")

// keyTable maps Source 1 parameter names to their Source 2 equivalents.
var keyTable = map[string]string{
	"clamps":      "clampu",
	"clampt":      "clampv",
	"clampu":      "clampw",
	"nocompress":  "nocompress",
	"nolod":       "nolod",
	"maxwidth":    "maxres",
	"maxheight":   "maxres",
	"nomip":       "nomip",
	"invertgreen": "legacy_source1_inverted_normal",
}

// TranslateKey returns the Source 2 name for key (case-insensitive).
func TranslateKey(key string) (string, bool) {
	v, ok := keyTable[strings.ToLower(key)]
	return v, ok
}

// Translate reads "key value" lines from r and writes a settings block to w.
// Blank lines are dropped and "//" comment lines are carried over.
func Translate(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	bw := bufio.NewWriter(w)

	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first {
			first = false
			if strings.Contains(line, "settings") {
				return ErrAlreadyTranslated
			}
			bw.WriteString("\"settings\"\n{\n")
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "//") {
			fmt.Fprintf(bw, "\t%s\n", line)
			continue
		}
		key, value := splitKeyValue(line)
		if nk, ok := TranslateKey(key); ok {
			fmt.Fprintf(bw, "\t\"%s\"\t\t\"%s\"\n", nk, value)
		} else {
			fmt.Fprintf(bw, "\t// \"%s\"\t\t\"%s\"\n", key, value)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if first {
		bw.WriteString("\"settings\"\n{\n")
	}
	bw.WriteString("}\n")
	return bw.Flush()
}

// splitKeyValue splits on the first run of whitespace and strips quotes.
func splitKeyValue(line string) (string, string) {
	key, value := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		key, value = line[:i], line[i+1:]
	}
	return strings.Trim(key, `"`), strings.Trim(strings.TrimSpace(value), `"`)
}

// TranslateFile translates src into dst, creating dst's directory. A source
// that is already a settings block is copied unchanged and
// ErrAlreadyTranslated is returned so the caller can report it.
func TranslateFile(src, dst string) error {
	in, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	var sb strings.Builder
	terr := Translate(strings.NewReader(string(in)), &sb)
	switch {
	case errors.Is(terr, ErrAlreadyTranslated):
		if err := os.WriteFile(dst, in, 0o644); err != nil {
			return err
		}
		return terr
	case terr != nil:
		return fmt.Errorf("translate %s: %w", src, terr)
	}
	return os.WriteFile(dst, []byte(sb.String()), 0o644)
}
