package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTerminology writes a terminology CSV with a language header row.
func WriteTerminology(t testing.TB, path string, header []string, rows ...[]string) {
	t.Helper()

	var data []byte
	appendRow := func(cols []string) {
		for i, c := range cols {
			if i > 0 {
				data = append(data, ',')
			}
			data = append(data, c...)
		}
		data = append(data, '\n')
	}
	appendRow(header)
	for _, row := range rows {
		appendRow(row)
	}
	WriteFile(t, path, data)
}
