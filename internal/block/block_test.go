package block

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"hydrodeck/internal/column"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/record"
	"hydrodeck/internal/source"
)

const (
	kindRest record.Kind = iota + 1
	kindElem
	kindLim
	kindGroup
	kindMember
)

var (
	restLayout = record.NewLayout(kindRest, "REST",
		column.Int("key", 5, 8), column.String("type", 9, 10), column.String("label", 11, 31))
	elemLayout = record.NewLayout(kindElem, "ELEM",
		column.Int("key", 5, 8), column.Int("plant", 9, 12), column.Decimal("coef", 13, 23, 2))
	limLayout = record.NewLayout(kindLim, "LIM",
		column.Int("key", 4, 7), column.Decimal("min", 8, 12, 1), column.Decimal("max", 13, 17, 1))
	groupLayout  = record.NewLayout(kindGroup, "GRP", column.Int("key", 4, 7))
	memberLayout = record.NewLayout(kindMember, "MBR", column.Int("key", 4, 7))

	testGrammar = &Grammar{
		Name: "operuh",
		Blocks: []*Spec{
			{Leading: restLayout, Dependents: []*record.Layout{elemLayout, limLayout}},
			{Leading: groupLayout, Dependents: []*record.Layout{memberLayout}},
		},
		Terminator:    "FIM",
		KeyField:      "key",
		CommentPrefix: "&",
	}
)

func readBlocks(t *testing.T, text string) (*Result, *diag.Bag, *source.FileSet, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("operuh.dat", []byte(text))
	bag := diag.NewBag()
	res, err := NewReader(testGrammar).Read(fs.Get(id), diag.BagReporter{Bag: bag})
	return res, bag, fs, err
}

func TestSingleRestrictionWithLimit(t *testing.T) {
	res, bag, _, err := readBlocks(t, "REST 001\nLIM 001 10.0 20.0\nFIM")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", bag.Items())
	}
	if len(res.Composites) != 1 {
		t.Fatalf("got %d composites", len(res.Composites))
	}
	c := res.Composites[0]
	if c.Key.Or(0) != 1 {
		t.Errorf("key = %v", c.Key)
	}
	lims := c.Of(kindLim)
	if len(lims) != 1 {
		t.Fatalf("got %d limits", len(lims))
	}
	lo := lims[0].Get("min").Decimal().Or(decimal.Zero)
	hi := lims[0].Get("max").Decimal().Or(decimal.Zero)
	if !lo.Equal(decimal.NewFromInt(10)) || !hi.Equal(decimal.NewFromInt(20)) {
		t.Errorf("limit = (%s, %s)", lo, hi)
	}
}

func TestStepTransitions(t *testing.T) {
	m := NewMachine(testGrammar)
	rest := State{Block: testGrammar.Blocks[0]}
	cases := []struct {
		name  string
		state State
		line  string
		want  ActionKind
		idle  bool
	}{
		{"blank idle", State{}, "   ", ActSkip, true},
		{"comment in block", rest, "& note", ActSkip, false},
		{"open", State{}, "REST 001", ActOpen, false},
		{"dependent while idle", State{}, "LIM 001 1.0 2.0", ActPending, true},
		{"outside", State{}, "ZZZ 001", ActOutside, true},
		{"stray terminator", State{}, "FIM", ActOutside, true},
		{"lead again", rest, "REST 002", ActLead, false},
		{"attach", rest, "ELEM 001 006       1.00", ActAttach, false},
		{"dependent of other block", rest, "MBR 001", ActUnknownSub, false},
		{"unknown marker", rest, "ZZZ 001", ActUnknownSub, false},
		{"close", rest, "FIM  ", ActClose, true},
		{"other keyword", rest, "GRP 001", ActUnterminated, false},
	}
	for _, tc := range cases {
		next, act := m.Step(tc.state, []byte(tc.line))
		if act.Kind != tc.want {
			t.Errorf("%s: action %s, want %s", tc.name, act.Kind, tc.want)
		}
		if next.Idle() != tc.idle {
			t.Errorf("%s: idle after step = %v, want %v", tc.name, next.Idle(), tc.idle)
		}
	}
}

func TestSeveralCompositesPerBlock(t *testing.T) {
	text := strings.Join([]string{
		"REST 001 L FLOW LIMIT",
		"REST 002 V",
		"ELEM 001 006       1.00",
		"ELEM 002 018       0.50",
		"LIM 001 10.0 20.0",
		"FIM",
		"REST 003",
		"LIM 003  1.0  2.0",
		"FIM",
	}, "\n")
	res, bag, _, err := readBlocks(t, text)
	if err != nil || bag.Len() != 0 {
		t.Fatalf("err = %v, diagnostics = %v", err, bag.Items())
	}
	if len(res.Composites) != 3 {
		t.Fatalf("got %d composites", len(res.Composites))
	}
	first, second := res.Composites[0], res.Composites[1]
	if len(first.Subs) != 2 || first.Subs[0].Kind != kindElem || first.Subs[1].Kind != kindLim {
		t.Errorf("composite 1 subs = %+v", first.Subs)
	}
	if len(second.Subs) != 1 || second.Subs[0].Int("plant").Or(0) != 18 {
		t.Errorf("composite 2 subs = %+v", second.Subs)
	}
	if got := first.Lead.Get("label").Str().Or(""); got != "FLOW LIMIT" {
		t.Errorf("label = %q", got)
	}
	if res.Composites[2].Key.Or(0) != 3 {
		t.Errorf("blocks out of order")
	}
}

func TestTerminatorBeforeDependent(t *testing.T) {
	// LIM after FIM joins the next REST block with its key.
	res, bag, _, err := readBlocks(t, "REST 001\nFIM\nLIM 001 10.0 20.0\nREST 002\nFIM\nREST 001\nFIM\n")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if bag.Len() != 0 || len(res.Unparsed) != 0 {
		t.Fatalf("diagnostics = %v, unparsed = %+v", bag.Items(), res.Unparsed)
	}
	if len(res.Composites) != 3 {
		t.Fatalf("got %d composites", len(res.Composites))
	}
	if len(res.Composites[0].Subs) != 0 || len(res.Composites[1].Subs) != 0 {
		t.Errorf("LIM must not join a closed block or another key: %+v", res.Composites)
	}
	if subs := res.Composites[2].Of(kindLim); len(subs) != 1 || subs[0].Line != 3 {
		t.Errorf("LIM must join the later REST 001: %+v", res.Composites[2].Subs)
	}

	// Dependent reaching a later block joins the composite with its key.
	res, _, _, err = readBlocks(t, "REST 001\nFIM\nREST 001\nLIM 001 10.0 20.0\nFIM\n")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(res.Composites) != 2 || len(res.Composites[1].Subs) != 1 {
		t.Errorf("LIM must join the second block: %+v", res.Composites)
	}
}

func TestDependentAfterLastTerminatorIsUnterminated(t *testing.T) {
	res, _, _, err := readBlocks(t, "REST 001\nLIM 001 10.0 20.0\nFIM\nLIM 001 30.0 40.0\n")
	var ue *UnterminatedBlockError
	if !errors.As(err, &ue) || res != nil {
		t.Fatalf("err = %v, want UnterminatedBlockError", err)
	}
	if ue.Sub != "LIM" || ue.Keyword != "REST" || ue.Line != 4 || !ue.EOF {
		t.Fatalf("error = %+v", ue)
	}
	if want := "LIM at line 4 follows FIM and no later REST block takes it"; ue.Error() != want {
		t.Fatalf("message = %q, want %q", ue.Error(), want)
	}
}

func TestOrphanSubRecord(t *testing.T) {
	res, bag, _, err := readBlocks(t, "REST 001\nLIM 002 10.0 20.0\nFIM\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Orphans) != 1 || res.Orphans[0].Int("key").Or(0) != 2 {
		t.Fatalf("orphans = %+v", res.Orphans)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.BlkOrphanSubRecord || items[0].Severity != diag.SevWarning {
		t.Fatalf("unexpected diagnostics %v", items)
	}
}

func TestUnknownSubRecordIsRetained(t *testing.T) {
	res, bag, _, err := readBlocks(t, "REST 001\nXPTO 001\nFIM\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Unparsed) != 1 || res.Unparsed[0].Text != "XPTO 001" {
		t.Fatalf("unparsed = %+v", res.Unparsed)
	}
	if items := bag.Items(); len(items) != 1 || items[0].Code != diag.BlkUnknownSubRecord {
		t.Fatalf("unexpected diagnostics %v", items)
	}
}

func TestUnterminatedAtEOF(t *testing.T) {
	res, _, fs, err := readBlocks(t, "REST 001\nLIM 001 10.0 20.0\nFIM\nREST 002\nLIM 002 1.0 2.0\n")
	if res != nil {
		t.Fatalf("partial result must be discarded")
	}
	var ue *UnterminatedBlockError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UnterminatedBlockError", err)
	}
	if !ue.EOF || ue.Keyword != "REST" || ue.Line != 4 {
		t.Errorf("unexpected error %+v", ue)
	}
	start, _ := fs.Resolve(ue.Opened)
	if start.Line != 4 {
		t.Errorf("opened at line %d", start.Line)
	}
}

func TestKeywordOfAnotherBlockIsUnterminated(t *testing.T) {
	_, _, _, err := readBlocks(t, "REST 001\nGRP 001\nFIM\n")
	var ue *UnterminatedBlockError
	if !errors.As(err, &ue) || ue.EOF {
		t.Fatalf("err = %v, want UnterminatedBlockError before the next block", err)
	}
}
