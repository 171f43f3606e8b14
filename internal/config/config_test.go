package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadMissingDefaultFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	content := `short_name = "my-spec"
xref = true
workers = 4
normative_references = ["HTML", "DOM"]
informative_references = ["FETCH"]
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ShortName != "my-spec" || !cfg.XRef || cfg.Workers != 4 {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if !reflect.DeepEqual(cfg.NormativeReferences, []string{"HTML", "DOM"}) {
		t.Fatalf("unexpected normative references %v", cfg.NormativeReferences)
	}
	if cfg.Suggestions != 3 || cfg.LogLevel != "warn" {
		t.Fatalf("expected unset keys to keep defaults, got %#v", cfg)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	for _, content := range []string{
		"workers = 0",
		`log_level = "loud"`,
		"suggestions = -1",
		"short_name = ",
	} {
		if _, err := Parse([]byte(content)); err == nil {
			t.Fatalf("expected error for %q", content)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShortName = "fetch"
	cfg.NormativeReferences = []string{"INFRA"}

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "short_name") || !strings.Contains(string(data), "fetch") {
		t.Fatalf("expected short_name in output, got %s", data)
	}
	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.ShortName != "fetch" || parsed.Workers != cfg.Workers || parsed.OutputDir != cfg.OutputDir {
		t.Fatalf("expected %#v, got %#v", cfg, parsed)
	}
	if !reflect.DeepEqual(parsed.NormativeReferences, []string{"INFRA"}) {
		t.Fatalf("unexpected normative references %v", parsed.NormativeReferences)
	}
}
