// Package clipboard connects the tools to the system clipboard and to piped
// standard input.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard not supported on this system")

// Package-level hooks so tests can run without a display server.
var (
	writeAll    = clipboard.WriteAll
	readAll     = clipboard.ReadAll
	unsupported = func() bool { return clipboard.Unsupported }
)

// Supported reports whether a clipboard utility is available.
func Supported() bool { return !unsupported() }

// System reads and writes the operating system clipboard.
type System struct{}

// Copy places text on the clipboard.
func (System) Copy(text string) error {
	if unsupported() {
		return ErrUnsupported
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Paste returns the clipboard contents.
func (System) Paste() (string, error) {
	if unsupported() {
		return "", ErrUnsupported
	}
	text, err := readAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

// Input resolves the text a one-shot command operates on: "-" or piped
// stdin reads stdin, an explicit argument is used as is, and no argument
// falls back to the clipboard.
func Input(arg string, stdin *os.File) (string, error) {
	if arg == "-" || (arg == "" && isPiped(stdin)) {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	if arg != "" {
		return arg, nil
	}
	return System{}.Paste()
}

func isPiped(f *os.File) bool {
	if f == nil {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}
