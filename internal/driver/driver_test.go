package driver

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/formats"
	"hydrodeck/internal/registry"
	"hydrodeck/internal/store"
	"hydrodeck/internal/trace"
)

type at struct {
	start, end int
	text       string
}

func fixed(disc string, fields ...at) string {
	b := []byte(strings.Repeat(" ", 80))
	copy(b, disc)
	for _, f := range fields {
		copy(b[f.end-len(f.text):], f.text)
	}
	return strings.TrimRight(string(b), " ")
}

func hidrRecord(name string, posto, downstream int32) []byte {
	b := make([]byte, formats.HidrStride)
	copy(b, []byte(name+strings.Repeat(" ", 12))[:12])
	binary.LittleEndian.PutUint32(b[12:], uint32(posto))
	binary.LittleEndian.PutUint32(b[32:], uint32(downstream))
	return b
}

var deckFiles = map[string]string{
	"entdados.dat": strings.Join([]string{
		fixed("TM", at{3, 6, "1"}, at{7, 13, "010125"}),
		fixed("SIST", at{5, 7, "1"}, at{8, 10, "SE"}),
		fixed("UH", at{4, 7, "1"}, at{9, 21, "FURNAS"}, at{24, 26, "1"}, at{27, 30, "2"}),
		fixed("UH", at{4, 7, "2"}, at{9, 21, "M. MORAES"}, at{24, 26, "1"}),
		fixed("DP", at{4, 6, "1"}, at{7, 10, "1"}, at{11, 21, "35000.0"}),
		"FIM",
	}, "\n") + "\n",
	"operuh.dat": strings.Join([]string{
		fixed("REST", at{5, 8, "001"}),
		fixed("ELEM", at{5, 8, "001"}, at{9, 12, "002"}, at{13, 23, "1.00"}),
		"LIM 001 10.0 20.0",
		"FIM",
	}, "\n") + "\n",
	"dadvaz.dat": strings.Join([]string{
		fixed("", at{0, 3, "001"}, at{4, 6, "01"}, at{10, 20, "500.0"}),
		fixed("", at{0, 3, "099"}, at{4, 6, "01"}, at{10, 20, "1.0"}),
	}, "\n") + "\n",
	"hidr.dat":       string(append(hidrRecord("FURNAS", 1, 2), hidrRecord("M. MORAES", 2, 0)...)),
	"notes.txt":      "free text\n",
	"hydrodeck.toml": "[parse]\njobs = 2\n",
	".hidden.dat":    "x",
}

func writeDeck(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range deckFiles {
		if o, ok := overrides[name]; ok {
			content = o
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func newOptions(t *testing.T) Options {
	t.Helper()
	reg, err := formats.NewRegistry(formats.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return Options{Jobs: 4, Registry: reg}
}

func byCode(bag *diag.Bag, code diag.Code) []diag.Diagnostic {
	return bag.Filter(func(d diag.Diagnostic) bool { return d.Code == code })
}

func TestDiscover(t *testing.T) {
	dir := writeDeck(t, nil)
	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	want := "dadvaz.dat entdados.dat hidr.dat notes.txt operuh.dat"
	if got := strings.Join(names, " "); got != want {
		t.Fatalf("Discover = %q, want %q", got, want)
	}
}

func TestParseDirFullDeck(t *testing.T) {
	dir := writeDeck(t, nil)
	res, err := ParseDir(context.Background(), dir, newOptions(t))
	if err != nil {
		t.Fatalf("ParseDir: %v", err)
	}
	d := res.Deck()
	if len(d.Collections) != 4 || len(d.Skipped) != 1 || len(d.Failed) != 0 {
		t.Fatalf("collections=%d skipped=%v failed=%v", len(d.Collections), d.Skipped, d.Failed)
	}
	if d.Count(deck.KindHydroPlant) != 2 || d.Count(deck.KindHydroRegistry) != 2 || d.Count(deck.KindRestriction) != 1 {
		t.Fatalf("entity counts: plants=%d registry=%d restrictions=%d",
			d.Count(deck.KindHydroPlant), d.Count(deck.KindHydroRegistry), d.Count(deck.KindRestriction))
	}
	hidr, ok := d.Collection("hidr.dat")
	if !ok || hidr.Format != formats.NameHidr {
		t.Fatalf("hidr.dat not read as binary: %+v", hidr)
	}

	skipped := byCode(res.Bag, diag.RegNoParser)
	if len(skipped) != 1 || skipped[0].Severity != diag.SevInfo {
		t.Fatalf("no-parser diagnostics = %+v", skipped)
	}
	refs := byCode(res.Bag, diag.XrfReferentialIntegrity)
	if len(refs) != 1 || !strings.Contains(refs[0].Message, "plant 99") {
		t.Fatalf("referential diagnostics = %+v", refs)
	}
	if res.Bag.Len() != 2 {
		t.Fatalf("diagnostics = %+v", res.Bag.Items())
	}
	if !res.Failed() {
		t.Fatalf("an error diagnostic must fail the run")
	}
}

func TestParseDirStrict(t *testing.T) {
	dir := writeDeck(t, nil)
	opts := newOptions(t)
	opts.Strict = true
	res, err := ParseDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("ParseDir: %v", err)
	}
	d := res.Deck()
	if len(d.Failed) != 1 || !errors.Is(d.Failed[0].Err, registry.ErrNoParser) {
		t.Fatalf("failed = %+v", d.Failed)
	}
	if got := byCode(res.Bag, diag.RegNoParser); len(got) != 1 || got[0].Severity != diag.SevError {
		t.Fatalf("no-parser diagnostics = %+v", got)
	}
}

func TestFatalFileDoesNotStopSiblings(t *testing.T) {
	dir := writeDeck(t, map[string]string{"operuh.dat": "REST 001\nLIM 001 10.0 20.0\n"})
	res, err := ParseDir(context.Background(), dir, newOptions(t))
	if err != nil {
		t.Fatalf("ParseDir: %v", err)
	}
	d := res.Deck()
	if len(d.Failed) != 1 || filepath.Base(d.Failed[0].Path) != "operuh.dat" {
		t.Fatalf("failed = %+v", d.Failed)
	}
	if len(d.Collections) != 3 {
		t.Fatalf("collections = %d, want 3", len(d.Collections))
	}
	if len(byCode(res.Bag, diag.BlkUnterminatedBlock)) != 1 {
		t.Fatalf("diagnostics = %+v", res.Bag.Items())
	}
}

func TestNoValidate(t *testing.T) {
	dir := writeDeck(t, nil)
	opts := newOptions(t)
	opts.NoValidate = true
	res, err := ParseDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("ParseDir: %v", err)
	}
	if len(byCode(res.Bag, diag.XrfReferentialIntegrity)) != 0 {
		t.Fatalf("validation ran")
	}
}

func TestResultsKeepDiscoveryOrder(t *testing.T) {
	dir := writeDeck(t, nil)
	for _, jobs := range []int{1, 8} {
		opts := newOptions(t)
		opts.Jobs = jobs
		res, err := ParseDir(context.Background(), dir, opts)
		if err != nil {
			t.Fatalf("jobs=%d: %v", jobs, err)
		}
		var names []string
		for _, f := range res.Files {
			names = append(names, filepath.Base(f.Path))
		}
		if got := strings.Join(names, " "); got != "dadvaz.dat entdados.dat hidr.dat notes.txt operuh.dat" {
			t.Fatalf("jobs=%d: order %q", jobs, got)
		}
	}
}

func TestCacheServesSecondRun(t *testing.T) {
	dir := writeDeck(t, map[string]string{"dadvaz.dat": "001 01    500.0\nXYZ\n"})
	cache, err := store.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	opts := newOptions(t)
	opts.Cache = cache

	first, err := ParseDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := ParseDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range second.Files {
		f := &second.Files[i]
		if f.Skipped {
			continue
		}
		if !f.Cached {
			t.Errorf("%s not served from cache", f.Path)
		}
		if f.Collection.Len() != first.Files[i].Collection.Len() {
			t.Errorf("%s: %d entities, first run had %d", f.Path, f.Collection.Len(), first.Files[i].Collection.Len())
		}
	}
	if first.Bag.Len() != second.Bag.Len() {
		t.Fatalf("diagnostics differ: %d vs %d", first.Bag.Len(), second.Bag.Len())
	}
}

func TestProgressEvents(t *testing.T) {
	dir := writeDeck(t, nil)
	opts := newOptions(t)
	ch := make(chan Event, 64)
	opts.Progress = ch
	if _, err := ParseDir(context.Background(), dir, opts); err != nil {
		t.Fatalf("ParseDir: %v", err)
	}
	close(ch)
	counts := map[Stage]int{}
	for ev := range ch {
		counts[ev.Stage]++
	}
	if counts[StageQueued] != 5 || counts[StageParse] != 5 || counts[StageDone] != 5 || counts[StageValidate] != 1 {
		t.Fatalf("event counts = %v", counts)
	}
}

func TestCancelledContext(t *testing.T) {
	dir := writeDeck(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ParseDir(ctx, dir, newOptions(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestParseFileAndTrace(t *testing.T) {
	dir := writeDeck(t, nil)
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDetail, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)

	res, err := ParseFile(ctx, filepath.Join(dir, "entdados.dat"), newOptions(t))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	_ = tr.Flush()
	if len(res.Files) != 1 || res.Files[0].Collection.Len() != 5 {
		t.Fatalf("files = %+v", res.Files)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("diagnostics = %+v", res.Bag.Items())
	}
	out := buf.String()
	for _, want := range []string{"→ run", "→ file:entdados.dat", "← file:entdados.dat", "→ validate"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace lacks %q:\n%s", want, out)
		}
	}
}

func TestMissingRegistry(t *testing.T) {
	if _, err := ParseFile(context.Background(), "x.dat", Options{}); err == nil {
		t.Fatalf("ParseFile without registry succeeded")
	}
}

func TestUnreadableFile(t *testing.T) {
	dir := writeDeck(t, nil)
	opts := newOptions(t)
	res, err := ParseFile(context.Background(), filepath.Join(dir, "missing.dat"), opts)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if res.Files[0].Err == nil || len(byCode(res.Bag, diag.IOLoadFileError)) != 1 {
		t.Fatalf("load failure not recorded: %+v", res.Files[0])
	}
}
