package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// isolate points the global config at an empty directory and clears
// CCFLAGS_* variables.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"CCFLAGS_FLAGS", "CCFLAGS_DATABASE", "CCFLAGS_LANGUAGE", "CCFLAGS_STANDARD",
		"CCFLAGS_INCLUDE_DIRS", "CCFLAGS_SYSTEM_INCLUDE_DIRS", "CCFLAGS_ENABLE_CACHE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if !slices.Equal(cfg.Flags, DefaultFlags) {
		t.Errorf("Flags = %q, want defaults", cfg.Flags)
	}
	if cfg.Language != "c++" {
		t.Errorf("Language = %q, want c++", cfg.Language)
	}
	if cfg.Standard != "" {
		t.Errorf("Standard = %q, want empty", cfg.Standard)
	}
	if !cfg.CacheEnabled() {
		t.Error("cache should be enabled by default")
	}
	if cfg.Database != "" {
		t.Error("database should be disabled by default")
	}
	if !slices.Equal(cfg.SystemIncludeDirs, []string{"/usr/include"}) {
		t.Errorf("SystemIncludeDirs = %q", cfg.SystemIncludeDirs)
	}

	cfg.Flags[0] = "-mutated"
	if DefaultFlags[0] == "-mutated" {
		t.Error("NewConfig shares DefaultFlags backing array")
	}
}

func TestMerge(t *testing.T) {
	base := NewConfig()
	falseVal := false
	other := &Config{
		ExtraFlags:  []string{"-DEXTRA"},
		Language:    "c",
		Standard:    "c99",
		IncludeDirs: []string{},
		EnableCache: &falseVal,
		Dir:         "/proj",
	}

	base.Merge(other)

	if !slices.Equal(base.Flags, DefaultFlags) {
		t.Error("nil Flags should not override")
	}
	if base.Language != "c" || base.Standard != "c99" {
		t.Errorf("language/standard = %q/%q", base.Language, base.Standard)
	}
	if base.IncludeDirs == nil || len(base.IncludeDirs) != 0 {
		t.Errorf("empty IncludeDirs should clear, got %q", base.IncludeDirs)
	}
	if !slices.Equal(base.SystemIncludeDirs, []string{"/usr/include"}) {
		t.Error("nil SystemIncludeDirs should not override")
	}
	if base.CacheEnabled() {
		t.Error("EnableCache should be overridden to false")
	}
	if base.Dir != "/proj" {
		t.Errorf("Dir = %q", base.Dir)
	}

	got := base.AllFlags()
	if got[len(got)-1] != "-DEXTRA" {
		t.Errorf("AllFlags() = %q, want trailing -DEXTRA", got)
	}

	base.Merge(nil)
}

func TestDatabasePath(t *testing.T) {
	tests := []struct {
		db, dir, want string
	}{
		{"", "/proj", ""},
		{"build", "/proj", "/proj/build"},
		{"/abs/build", "/proj", "/abs/build"},
		{"build", "", "build"},
	}
	for _, tt := range tests {
		cfg := &Config{Database: tt.db, Dir: tt.dir}
		if got := cfg.DatabasePath(); got != tt.want {
			t.Errorf("DatabasePath(%q, %q) = %q, want %q", tt.db, tt.dir, got, tt.want)
		}
	}
}

func TestClone(t *testing.T) {
	cfg := NewConfig()
	clone := cfg.Clone()
	clone.Flags[0] = "-changed"
	*clone.EnableCache = false
	if cfg.Flags[0] == "-changed" || !cfg.CacheEnabled() {
		t.Error("Clone shares state with original")
	}
}

func TestWriteTOMLRoundTrip(t *testing.T) {
	isolate(t)
	cfg := NewConfig()
	cfg.Standard = "c++11"

	var buf bytes.Buffer
	if err := cfg.WriteTOML(&buf); err != nil {
		t.Fatalf("WriteTOML() error = %v", err)
	}
	if !strings.Contains(buf.String(), `standard = "c++11"`) {
		t.Errorf("unexpected TOML:\n%s", buf.String())
	}

	path := filepath.Join(t.TempDir(), ".ccflags.toml")
	writeFile(t, path, buf.String())
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Standard != "c++11" || !slices.Equal(loaded.Flags, cfg.Flags) {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadConfigFile_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ccflags.toml")
	writeFile(t, path, `
flags = ["-Wall"]
database = "build"
language = "c"
standard = "c11"
include_dirs = ["include", "third_party/*/include"]
enable_cache = false
`)

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile() error = %v", err)
	}
	if !slices.Equal(cfg.Flags, []string{"-Wall"}) {
		t.Errorf("Flags = %q", cfg.Flags)
	}
	if cfg.Language != "c" || cfg.Standard != "c11" || cfg.Database != "build" {
		t.Errorf("unexpected scalar fields: %+v", cfg)
	}
	if len(cfg.IncludeDirs) != 2 {
		t.Errorf("IncludeDirs = %q", cfg.IncludeDirs)
	}
	if cfg.EnableCache == nil || *cfg.EnableCache {
		t.Error("enable_cache should be false")
	}
	if cfg.Dir != dir || cfg.Source != path {
		t.Errorf("Dir/Source = %q/%q", cfg.Dir, cfg.Source)
	}
	if cfg.SystemIncludeDirs != nil {
		t.Error("unset list should stay nil")
	}
}

func TestLoadConfigFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ccflags.yaml")
	writeFile(t, path, `
flags: ["-Wextra"]
language: objective-c
system_include_dirs:
  - /opt/sdk/include
enable_cache: true
`)

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile() error = %v", err)
	}
	if cfg.Language != "objective-c" {
		t.Errorf("Language = %q", cfg.Language)
	}
	if !slices.Equal(cfg.SystemIncludeDirs, []string{"/opt/sdk/include"}) {
		t.Errorf("SystemIncludeDirs = %q", cfg.SystemIncludeDirs)
	}
	if !cfg.CacheEnabled() {
		t.Error("enable_cache should be true")
	}
}

func TestLoadConfigFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		".ccflags.toml": "flags = [",
		".ccflags.yaml": "flags: [",
	} {
		path := filepath.Join(dir, name)
		writeFile(t, path, content)
		if _, err := loadConfigFile(path); err == nil {
			t.Errorf("loadConfigFile(%s) should fail", name)
		}
	}
}

func TestConfigDirLayout(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ConfigDirName, "config.toml")
	writeFile(t, path, `language = "c"`)

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != root {
		t.Errorf("Dir = %q, want project root %q", cfg.Dir, root)
	}
}

func TestProjectConfigSearch(t *testing.T) {
	isolate(t)
	tmpDir := t.TempDir()
	project := filepath.Join(tmpDir, "project")
	subdir := filepath.Join(project, "src", "deep")
	if err := os.MkdirAll(filepath.Join(project, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(project, ".ccflags.toml"), `standard = "c++11"`)
	source := filepath.Join(subdir, "main.cpp")
	writeFile(t, source, "")

	cfg := LoadFrom(source)
	if cfg.Standard != "c++11" {
		t.Errorf("Standard = %q, want c++11", cfg.Standard)
	}
	if cfg.Dir != project {
		t.Errorf("Dir = %q, want %q", cfg.Dir, project)
	}
	if cfg.Language != "c++" {
		t.Error("defaults should survive the project layer")
	}
}

func TestProjectConfigSearch_StopsAtRoot(t *testing.T) {
	isolate(t)
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".ccflags.toml"), `standard = "c++11"`)
	inner := filepath.Join(tmpDir, "repo")
	if err := os.MkdirAll(filepath.Join(inner, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := LoadFrom(inner)
	if cfg.Standard != "" {
		t.Errorf("config above the repository root should not apply, got %q", cfg.Standard)
	}
	if cfg.Dir != inner || cfg.Source != "" {
		t.Errorf("Dir/Source = %q/%q", cfg.Dir, cfg.Source)
	}
}

func TestGlobalConfigLayer(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, GlobalConfigDir, "config.toml"), `
language = "c"
standard = "c99"
`)
	project := t.TempDir()
	if err := os.Mkdir(filepath.Join(project, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(project, ".ccflags.toml"), `standard = "c11"`)

	cfg := LoadFrom(project)
	if cfg.Language != "c" {
		t.Errorf("global language not applied: %q", cfg.Language)
	}
	if cfg.Standard != "c11" {
		t.Errorf("project should override global, got %q", cfg.Standard)
	}
	if cfg.Dir != project {
		t.Errorf("Dir = %q", cfg.Dir)
	}
}

func TestEnvironmentLayer(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	if err := os.Mkdir(filepath.Join(project, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(project, ".env"), "CCFLAGS_STANDARD=c++98\nCCFLAGS_LANGUAGE=c\n")
	t.Setenv("CCFLAGS_LANGUAGE", "objective-c++")
	t.Setenv("CCFLAGS_FLAGS", `-Wall -DMSG="a b"`)
	t.Setenv("CCFLAGS_INCLUDE_DIRS", "inc"+string(os.PathListSeparator)+" lib/include ")
	t.Setenv("CCFLAGS_ENABLE_CACHE", "no")

	cfg := LoadFrom(project)
	if cfg.Language != "objective-c++" {
		t.Errorf("process env should beat .env, got %q", cfg.Language)
	}
	if cfg.Standard != "c++98" {
		t.Errorf(".env value not applied, got %q", cfg.Standard)
	}
	if !slices.Equal(cfg.Flags, []string{"-Wall", "-DMSG=a b"}) {
		t.Errorf("Flags = %q", cfg.Flags)
	}
	if !slices.Equal(cfg.IncludeDirs, []string{"inc", "lib/include"}) {
		t.Errorf("IncludeDirs = %q", cfg.IncludeDirs)
	}
	if cfg.CacheEnabled() {
		t.Error("CCFLAGS_ENABLE_CACHE=no should disable cache")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	isolate(t)
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadFile should fail for a missing file")
	}
}

func TestApplyBoolEnv(t *testing.T) {
	tests := []struct {
		in   string
		want *bool
	}{
		{"true", ptr(true)},
		{"YES", ptr(true)},
		{"1", ptr(true)},
		{"false", ptr(false)},
		{"0", ptr(false)},
		{"maybe", nil},
		{"", nil},
	}
	for _, tt := range tests {
		var got *bool
		applyBoolEnv(tt.in, &got)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("applyBoolEnv(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	sep := string(os.PathListSeparator)
	tests := []struct {
		input    string
		expected []string
	}{
		{"a" + sep + "b", []string{"a", "b"}},
		{" a " + sep + sep + " b ", []string{"a", "b"}},
		{"a", []string{"a"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		if got := splitList(tt.input); !slices.Equal(got, tt.expected) {
			t.Errorf("splitList(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestIsProjectRoot(t *testing.T) {
	for _, marker := range rootMarkers {
		dir := t.TempDir()
		if isProjectRoot(dir) {
			t.Fatalf("empty dir reported as root")
		}
		if err := os.Mkdir(filepath.Join(dir, marker), 0o755); err != nil {
			t.Fatal(err)
		}
		if !isProjectRoot(dir) {
			t.Errorf("directory with %s should be a project root", marker)
		}
	}
}

func ptr(b bool) *bool { return &b }
