package ui

import (
	"os"

	"golang.org/x/term"
)

// Terminal describes the stream the HUD would draw on.
type Terminal struct {
	TTY   bool
	Width int // 0 when f is not a terminal or its size is unknown
}

// Probe inspects f.
func Probe(f *os.File) Terminal {
	fd := int(f.Fd()) //nolint:gosec // G115: descriptors fit in int
	if !term.IsTerminal(fd) {
		return Terminal{}
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		w = 0
	}
	return Terminal{TTY: true, Width: w}
}
