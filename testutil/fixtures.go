package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// WritePGM writes a 2x2 8-bit image and returns its path.
func WritePGM(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, append([]byte("P5\n2 2\n255\n"), 10, 20, 30, 40), 0o644))
	return path
}

// WritePPM writes a 1x2 24-bit image and returns its path.
func WritePPM(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, append([]byte("P6\n1 2\n255\n"), 1, 2, 3, 4, 5, 6), 0o644))
	return path
}

// WriteLines writes lines, each terminated by a newline, and returns the path.
func WriteLines(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// ReadLines returns the lines of path without trailing newline.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// FaceRecords writes n face images and returns one input line per record,
// each with a single image.
func FaceRecords(t testing.TB, dir string, n int) []string {
	t.Helper()
	lines := make([]string, n)
	for i := range lines {
		img := WritePGM(t, dir, "face"+strconv.Itoa(i)+".pgm")
		lines[i] = "s" + strconv.Itoa(i) + " " + img + " faceiso"
	}
	return lines
}
