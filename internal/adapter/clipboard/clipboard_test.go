package clipboard

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClipboard swaps the package hooks for an in-memory clipboard.
func fakeClipboard(t *testing.T, supported bool) *string {
	t.Helper()
	var content string
	oldWrite, oldRead, oldUnsupported := writeAll, readAll, unsupported
	writeAll = func(s string) error { content = s; return nil }
	readAll = func() (string, error) { return content, nil }
	unsupported = func() bool { return !supported }
	t.Cleanup(func() { writeAll, readAll, unsupported = oldWrite, oldRead, oldUnsupported })
	return &content
}

func TestCopyPaste(t *testing.T) {
	content := fakeClipboard(t, true)

	require.NoError(t, System{}.Copy("The dog runs."))
	assert.Equal(t, "The dog runs.", *content)

	got, err := System{}.Paste()
	require.NoError(t, err)
	assert.Equal(t, "The dog runs.", got)
}

func TestUnsupported(t *testing.T) {
	fakeClipboard(t, false)

	assert.False(t, Supported())
	assert.ErrorIs(t, System{}.Copy("x"), ErrUnsupported)
	_, err := System{}.Paste()
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCopyError(t *testing.T) {
	fakeClipboard(t, true)
	writeAll = func(string) error { return errors.New("xclip: exit 1") }

	err := System{}.Copy("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write clipboard")
}

func writeStdin(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestInputExplicitArgument(t *testing.T) {
	got, err := Input("teh dog run", writeStdin(t, "ignored"))
	require.NoError(t, err)
	assert.Equal(t, "teh dog run", got)
}

func TestInputDashReadsStdin(t *testing.T) {
	got, err := Input("-", writeStdin(t, "Bonjour le monde\n"))
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde\n", got)
}

func TestInputRedirectedStdin(t *testing.T) {
	// A regular file is not a character device, so it counts as piped.
	got, err := Input("", writeStdin(t, "from pipe"))
	require.NoError(t, err)
	assert.Equal(t, "from pipe", got)
}

func TestInputFallsBackToClipboard(t *testing.T) {
	content := fakeClipboard(t, true)
	*content = "from clipboard"

	got, err := Input("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from clipboard", got)
}
