package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hydrodeck/internal/formats"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hydrodeck.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadManifestMissingIsEmpty(t *testing.T) {
	m, err := loadManifest(t.TempDir())
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if m.Path != "" || m.Parse.Jobs != nil || len(m.Files) != 0 {
		t.Fatalf("manifest = %+v, want empty", m)
	}
	if got := m.formatOptions().WithDefaults(); got != formats.DefaultOptions() {
		t.Fatalf("options = %+v, want defaults", got)
	}
}

func TestLoadManifestFull(t *testing.T) {
	dir := writeManifest(t, `
[parse]
jobs = 3
strict = true
cache = false

[binary]
stride = 800
posto_min = 1
posto_max = 320

[files]
"vazoes*.txt" = "dadvaz"
`)
	m, err := loadManifest(dir)
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if m.Parse.Jobs == nil || *m.Parse.Jobs != 3 || m.Parse.Strict == nil || !*m.Parse.Strict {
		t.Fatalf("parse section = %+v", m.Parse)
	}
	if m.Parse.Cache == nil || *m.Parse.Cache {
		t.Fatalf("cache = %v", m.Parse.Cache)
	}
	want := formats.Options{Stride: 800, PostoMin: 1, PostoMax: 320}
	if got := m.formatOptions(); got != want {
		t.Fatalf("options = %+v, want %+v", got, want)
	}
	if m.Files["vazoes*.txt"] != "dadvaz" {
		t.Fatalf("files = %v", m.Files)
	}
	if salt := m.cacheSalt(); salt != "stride=800;posto=1-320;vazoes*.txt=dadvaz" {
		t.Fatalf("salt = %q", salt)
	}

	reg, err := formats.NewRegistry(m.formatOptions(), m.Files)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, ok := reg.Resolve("VAZOES_2026.TXT"); !ok {
		t.Fatalf("alias from manifest not registered")
	}
}

func TestLoadManifestRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[parse\n", "failed to parse TOML"},
		{"unknown key", "[parse]\nthreads = 2\n", "unknown keys: parse.threads"},
		{"negative jobs", "[parse]\njobs = -1\n", "jobs must not be negative"},
		{"inverted posto", "[binary]\nposto_min = 10\nposto_max = 5\n", "posto_min 10 exceeds posto_max 5"},
		{"negative stride", "[binary]\nstride = -1\n", "stride must not be negative"},
		{"short stride", "[binary]\nstride = 100\n", "stride 100 is shorter than the 164 bytes"},
		{"min above default max", "[binary]\nposto_min = 1200\n", "posto_min 1200 exceeds posto_max 999"},
		{"empty alias", "[files]\n\"x.dat\" = \"\"\n", "need a pattern and a format name"},
	}
	for _, tc := range cases {
		_, err := loadManifest(writeManifest(t, tc.content))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want %q", tc.name, err, tc.want)
		}
	}
}

func TestManifestSingleBoundKeepsDefaultOther(t *testing.T) {
	m, err := loadManifest(writeManifest(t, "[binary]\nposto_min = 5\n"))
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if salt := m.cacheSalt(); salt != "stride=792;posto=5-999" {
		t.Fatalf("salt = %q", salt)
	}
	if _, err := formats.NewRegistry(m.formatOptions(), m.Files); err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
}

func TestCacheSaltDependsOnBinaryOptions(t *testing.T) {
	a := &deckManifest{}
	b := &deckManifest{Binary: binaryConfig{Stride: 800}}
	if a.cacheSalt() == b.cacheSalt() {
		t.Fatalf("different strides share a cache salt %q", a.cacheSalt())
	}
	if a.cacheSalt() != "stride=792;posto=1-999" {
		t.Fatalf("default salt = %q", a.cacheSalt())
	}
}
