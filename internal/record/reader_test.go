package record

import (
	"strings"
	"testing"

	"hydrodeck/internal/column"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

const (
	kindTM Kind = iota + 1
	kindSIST
	kindRI
	kindRIVAR
	kindVE
	kindVERTJU
	kindFlow
)

var testGrammar = &Grammar{
	Name: "entdados",
	Layouts: []*Layout{
		NewLayout(kindTM, "TM",
			column.Int("period", 3, 6),
			column.DateDMY("date", 7),
			column.Int("hour", 14, 16),
			column.Int("minute", 16, 18),
			column.Decimal("duration", 19, 24, 1),
			column.Int("network", 25, 26),
		),
		NewLayout(kindSIST, "SIST",
			column.Int("number", 5, 7),
			column.String("mnemonic", 8, 10),
			column.String("name", 11, 21),
		),
		NewLayout(kindRI, "RI", column.Int("period", 4, 7)),
		NewLayout(kindRIVAR, "RIVAR", column.Int("plant", 6, 9)),
		NewLayout(kindVE, "VE", column.Int("plant", 4, 7)),
		NewLayout(kindVERTJU, "VERTJU", column.Int("plant", 7, 10)),
	},
	EndMarker:     "FIM",
	CommentPrefix: "&",
}

func read(t *testing.T, g *Grammar, text string) (*Result, *diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("entdados.dat", []byte(text))
	bag := diag.NewBag()
	res := NewReader(g).Read(fs.Get(id), diag.BagReporter{Bag: bag})
	return res, bag, fs
}

func TestTimePeriodThenSubsystem(t *testing.T) {
	res, bag, fs := read(t, testGrammar, "TM 001 010125 0000\nSIST 1  SE\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	if len(res.Order) != 2 || res.Order[0].Kind != kindTM || res.Order[1].Kind != kindSIST {
		t.Fatalf("unexpected order %+v", res.Order)
	}
	tm := res.Order[0]
	if tm.Int("period").Or(0) != 1 {
		t.Errorf("period = %v", tm.Get("period"))
	}
	if tm.Get("duration").Present() || tm.Get("network").Present() {
		t.Errorf("fields beyond the line end must be absent")
	}
	sist := res.Order[1]
	if sist.Int("number").Or(0) != 1 || sist.Get("mnemonic").Str().Or("") != "SE" {
		t.Errorf("unexpected subsystem %v %v", sist.Get("number"), sist.Get("mnemonic"))
	}
	if sist.Line != 2 {
		t.Errorf("line = %d", sist.Line)
	}
}

func TestLongestDiscriminatorWins(t *testing.T) {
	res, bag, _ := read(t, testGrammar, strings.Join([]string{
		"RI  001",
		"RIVAR 010",
		"VE  020",
		"VERTJU 030",
	}, "\n"))
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []Kind{kindRI, kindRIVAR, kindVE, kindVERTJU}
	for i, k := range want {
		if res.Order[i].Kind != k {
			t.Errorf("line %d decoded as kind %d, want %d", i+1, res.Order[i].Kind, k)
		}
	}
	if got := res.Of(kindRIVAR)[0].Int("plant").Or(0); got != 10 {
		t.Errorf("RIVAR plant = %d", got)
	}
	if got := res.Of(kindVERTJU)[0].Int("plant").Or(0); got != 30 {
		t.Errorf("VERTJU plant = %d", got)
	}
}

func TestMatcherOrder(t *testing.T) {
	m := NewMatcher(testGrammar.Layouts...)
	for line, want := range map[string]string{
		"RIVAR":          "RIVAR",
		"RIVAR 010":      "RIVAR",
		"RI":             "RI",
		"RI  001":        "RI",
		"VE\t001":        "VE",
		"VERTJU 030 031": "VERTJU",
	} {
		l, ok := m.Match([]byte(line))
		if !ok || l.Disc != want {
			t.Errorf("Match(%q) = %v,%v; want %s", line, l, ok, want)
		}
	}
	for _, line := range []string{"R", "RIVA 001", "VERTJ", "TMX 001", "SISTEMA 1"} {
		if l, ok := m.Match([]byte(line)); ok {
			t.Errorf("Match(%q) = %s, want no match", line, l.Disc)
		}
	}
}

func TestGluedDiscriminatorIsUnknown(t *testing.T) {
	res, bag, fs := read(t, testGrammar, "TMX 001\nSIST 2  S \n")
	if len(res.Unparsed) != 1 || res.Unparsed[0].Text != "TMX 001" {
		t.Fatalf("unparsed = %+v", res.Unparsed)
	}
	if len(res.Of(kindTM)) != 0 || len(res.Of(kindSIST)) != 1 {
		t.Fatalf("TMX must not decode as TM")
	}
	want := `warning REC2001 entdados.dat:1:1 unknown entdados record type "TMX"`
	if got := diag.FormatShortDiagnostics(bag.Items(), fs, false); got != want {
		t.Errorf("diagnostics:\n%s\nwant:\n%s", got, want)
	}
}

func TestUnknownRecordIsKeptAndReadingContinues(t *testing.T) {
	res, bag, fs := read(t, testGrammar, "& comment\n\nXYZ 1 2 3\nSIST 2  S \n")
	if len(res.Unparsed) != 1 || res.Unparsed[0].Text != "XYZ 1 2 3" || res.Unparsed[0].Line != 3 {
		t.Fatalf("unparsed = %+v", res.Unparsed)
	}
	if len(res.Of(kindSIST)) != 1 {
		t.Fatalf("reading stopped after unknown record")
	}
	want := `warning REC2001 entdados.dat:3:1 unknown entdados record type "XYZ"`
	if got := diag.FormatShortDiagnostics(bag.Items(), fs, false); got != want {
		t.Fatalf("diagnostics:\n%s\nwant:\n%s", got, want)
	}
}

func TestCoercionFailureKeepsOtherFields(t *testing.T) {
	res, bag, fs := read(t, testGrammar, "SIST 1X SE SUDESTE\n")
	rec := res.Of(kindSIST)[0]
	if rec.Get("number").Present() {
		t.Errorf("bad number must be absent")
	}
	if rec.Get("mnemonic").Str().Or("") != "SE" || rec.Get("name").Str().Or("") != "SUDESTE" {
		t.Errorf("other fields not decoded: %v %v", rec.Get("mnemonic"), rec.Get("name"))
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ColCoercion || items[0].Severity != diag.SevWarning {
		t.Fatalf("unexpected diagnostics %v", items)
	}
	if items[0].Excerpt != "1X" || items[0].Expected == "" {
		t.Errorf("coercion details missing: %+v", items[0])
	}
	start, end := fs.Resolve(items[0].Primary)
	if start.Col != 6 || end.Col != 8 {
		t.Errorf("range = %d-%d, want columns 6-8", start.Col, end.Col)
	}
}

func TestEndMarkerStopsReading(t *testing.T) {
	res, bag, _ := read(t, testGrammar, "SIST 1  SE\nFIM\nSIST 2  NE\n")
	if len(res.Order) != 1 {
		t.Fatalf("records after FIM must be ignored, got %d", len(res.Order))
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.RecTrailingContent || items[0].Severity != diag.SevInfo {
		t.Fatalf("unexpected diagnostics %v", items)
	}
}

func TestDefaultKind(t *testing.T) {
	g := &Grammar{
		Name:          "dadvaz",
		Default:       Positional(kindFlow, "inflow", column.Int("plant", 0, 3), column.Decimal("flow", 10, 20, 1)),
		CommentPrefix: "&",
		EndMarker:     "FIM",
	}
	res, bag, _ := read(t, g, "&UH DI HR VAZAO\n  6 01 00     1200.5\n 18 01 00      300.0\nFIM\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", bag.Items())
	}
	flows := res.Of(kindFlow)
	if len(flows) != 2 || flows[1].Int("plant").Or(0) != 18 {
		t.Fatalf("unexpected records %+v", flows)
	}
}

func TestEmptyFileIsReported(t *testing.T) {
	_, bag, _ := read(t, testGrammar, "& only comments\n")
	if items := bag.Items(); len(items) != 1 || items[0].Code != diag.RecEmptyFile {
		t.Fatalf("unexpected diagnostics %v", items)
	}
}

func TestRecordEncodeRoundTrip(t *testing.T) {
	res, _, _ := read(t, testGrammar, "SIST  1 SE SUDESTE\n")
	line, err := res.Order[0].Encode()
	if err != nil {
		t.Fatal(err)
	}
	if line != "SIST  1 SE SUDESTE" {
		t.Fatalf("Encode = %q", line)
	}
}
