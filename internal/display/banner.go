package display

import (
	"fmt"
	"io"
)

const (
	magenta = "\033[1;95m"
	reset   = "\033[0m"
)

const banner = `       _    __ _                            _
__   _| |_ / _(_)_ __ ___  _ __   ___  _ __| |_
\ \ / / __| |_| | '_ ` + "`" + ` _ \| '_ \ / _ \| '__| __|
 \ V /| |_|  _| | | | | | | |_) | (_) | |  | |_
  \_/  \__|_| |_|_| |_| |_| .__/ \___/|_|   \__|
                          |_|
`

// PrintBanner writes the ASCII art banner to w, in magenta when colored.
func PrintBanner(w io.Writer, colored bool) {
	if colored {
		fmt.Fprint(w, magenta)
	}
	fmt.Fprint(w, banner)
	if colored {
		fmt.Fprint(w, reset)
	}
	fmt.Fprintln(w)
}
