package flags

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExpandDirs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mkdirs(t, root, "inc", "third_party/a/include", "third_party/b/include", "third_party/c")
	if err := os.WriteFile(filepath.Join(root, "inc.h"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got := ExpandDirs([]string{
		"inc",
		"third_party/*/include",
		"missing",
		"inc*", // inc.h is a file and is dropped
	}, root)

	want := []string{
		filepath.Join(root, "inc"),
		filepath.Join(root, "third_party/a/include"),
		filepath.Join(root, "third_party/b/include"),
		filepath.Join(root, "inc"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("ExpandDirs() = %q, want %q", got, want)
	}
}

func TestExpandDirs_DoubleStar(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mkdirs(t, root, "a/include", "a/b/include")

	got := ExpandDirs([]string{"**/include"}, root)
	want := []string{
		filepath.Join(root, "a/b/include"),
		filepath.Join(root, "a/include"),
	}
	slices.Sort(got)
	if !slices.Equal(got, want) {
		t.Errorf("ExpandDirs(**) = %q, want %q", got, want)
	}
}

func TestExpandDirs_NoMatches(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	tests := [][]string{
		nil,
		{},
		{"nothing/here"},
		{"[unterminated"},
		{""},
	}
	for _, patterns := range tests {
		got := ExpandDirs(patterns, root)
		if got == nil || len(got) != 0 {
			t.Errorf("ExpandDirs(%q) = %#v, want empty slice", patterns, got)
		}
	}
}

func TestExpandDirs_AbsolutePatternIgnoresBase(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mkdirs(t, root, "abs")

	got := ExpandDirs([]string{filepath.Join(root, "abs")}, "/does/not/matter")
	if !slices.Equal(got, []string{filepath.Join(root, "abs")}) {
		t.Errorf("ExpandDirs() = %q", got)
	}
}

func TestExpandDirs_BaseWithGlobMeta(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	base := filepath.Join(root, "proj[1]")
	mkdirs(t, base, "inc")
	mkdirs(t, root, "proj1/inc")

	got := ExpandDirs([]string{".", "inc", "i*"}, base)
	want := []string{base, filepath.Join(base, "inc"), filepath.Join(base, "inc")}
	if !slices.Equal(got, want) {
		t.Errorf("ExpandDirs() = %q, want %q", got, want)
	}
}

func TestEscapeMeta(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"/plain/dir", "/plain/dir"},
		{"/p/proj[1]", `/p/proj\[1\]`},
		{"/p/{a,b}/*?", `/p/\{a,b\}/\*\?`},
	}
	for _, tt := range tests {
		if got := escapeMeta(tt.in); got != tt.want {
			t.Errorf("escapeMeta(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
