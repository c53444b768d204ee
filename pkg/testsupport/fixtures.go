package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
)

// LoadFixture reads a file relative to the test package directory and
// fails the test when it is missing.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("fixture %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON decodes a JSON fixture into dest.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("fixture %s is not valid JSON: %v", path, err)
	}
}

// WriteGolden writes test output to a golden file, creating its directory.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// MarshalGolden renders v the way golden JSON files are stored.
func MarshalGolden(t *testing.T, v any) []byte {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal golden JSON: %v", err)
	}
	return append(data, '\n')
}

// CompareWithGolden fails the test when actual differs from the golden
// file at path. A missing golden file is written from actual.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("writing missing golden file %s", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("%s differs from golden:\nwant:\n%s\ngot:\n%s", path, expected, actual)
	}
}

// CompareJSONWithGolden marshals actual with MarshalGolden and compares it.
func CompareJSONWithGolden(t *testing.T, path string, actual any) {
	t.Helper()
	CompareWithGolden(t, path, MarshalGolden(t, actual))
}

// FixturePath returns testdata/filename.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath returns testdata/golden/filename.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
