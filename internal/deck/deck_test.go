package deck

import (
	"testing"

	"hydrodeck/internal/column"
	"hydrodeck/internal/source"
)

func testFile() *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("entdados.dat", []byte("x")))
}

func TestBuilderKeepsFileOrder(t *testing.T) {
	b := NewBuilder(testFile(), "entdados")
	b.Add(TimePeriod{Period: 1})
	b.Add(Subsystem{Number: 1})
	b.Add(TimePeriod{Period: 2})
	b.Add(HydroPlant{Number: 6})
	c := b.Freeze()

	if c.Len() != 4 || c.Count(KindTimePeriod) != 2 {
		t.Fatalf("len %d, periods %d", c.Len(), c.Count(KindTimePeriod))
	}
	wantKinds := []Kind{KindTimePeriod, KindSubsystem, KindTimePeriod, KindHydroPlant}
	for i, e := range c.Entities() {
		if e.Kind() != wantKinds[i] {
			t.Errorf("entity %d is %s, want %s", i, e.Kind(), wantKinds[i])
		}
	}
	periods := All[TimePeriod](c)
	if len(periods) != 2 || periods[0].Period != 1 || periods[1].Period != 2 {
		t.Errorf("periods = %+v", periods)
	}
	if got := c.Kinds(); len(got) != 3 || got[0] != KindTimePeriod || got[2] != KindHydroPlant {
		t.Errorf("Kinds = %v", got)
	}
}

func TestFrozenCollectionIsNotShared(t *testing.T) {
	b := NewBuilder(testFile(), "entdados")
	b.Add(Subsystem{Number: 1})
	c := b.Freeze()
	ents := c.Entities()
	ents[0] = Subsystem{Number: 99}
	if All[Subsystem](c)[0].Number != 1 {
		t.Fatalf("collection modified through Entities()")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("Add after Freeze must panic")
		}
	}()
	b.Add(Subsystem{Number: 2})
}

func TestCollectAcrossCollections(t *testing.T) {
	f := testFile()
	a := NewBuilder(f, "entdados")
	a.Add(HydroPlant{Number: 1})
	b := NewBuilder(f, "entdados")
	b.Add(HydroPlant{Number: 2})
	b.Add(ThermalPlant{Number: 3})
	plants := Collect[HydroPlant]([]*Collection{a.Freeze(), b.Freeze()})
	if len(plants) != 2 || plants[1].Number != 2 {
		t.Fatalf("plants = %+v", plants)
	}
}

func TestKeys(t *testing.T) {
	cases := []struct {
		e    Entity
		want string
	}{
		{HydroPlant{Number: 6}, "6"},
		{Demand{Subsystem: 1, Period: 48}, "(1, 48)"},
		{DiscountRate{}, "-"},
		{Inflow{Plant: 6, Day: 3}, "(6, 3)"},
	}
	for _, tc := range cases {
		if got := tc.e.Key().String(); got != tc.want {
			t.Errorf("%s key = %s, want %s", tc.e.Kind(), got, tc.want)
		}
	}
	if KindRestriction.String() != "Restriction" || Kind(200).String() != "Kind(200)" {
		t.Errorf("kind names wrong")
	}
}

func TestCascadeArena(t *testing.T) {
	c := NewCascade([]CascadeNode{
		{Key: 6, Downstream: column.Some[int32](7)},
		{Key: 7, Downstream: column.Some[int32](8)},
		{Key: 8},
		{Key: 9, Downstream: column.Some[int32](99)},
		{Key: 6, Downstream: column.Some[int32](9)}, // duplicate key: ignored
	})
	if c.Len() != 4 {
		t.Fatalf("Len = %d", c.Len())
	}
	i, ok := c.Index(6)
	if !ok || i != 0 {
		t.Fatalf("Index(6) = %d,%v", i, ok)
	}
	if d := c.Downstream(i); d != 1 || c.Key(d) != 7 {
		t.Errorf("downstream of 6 = %d", d)
	}
	if got := c.Path(0); len(got) != 3 || got[2] != 8 {
		t.Errorf("Path = %v", got)
	}
	dangling := c.Dangling()
	if len(dangling) != 1 || c.Key(dangling[0].Node) != 9 || dangling[0].Target != 99 {
		t.Errorf("dangling = %+v", dangling)
	}
	if c.Downstream(3) != NoNode {
		t.Errorf("dangling link must not resolve")
	}
}

func TestCascadePathStopsAtCycle(t *testing.T) {
	c := NewCascade([]CascadeNode{
		{Key: 1, Downstream: column.Some[int32](2)},
		{Key: 2, Downstream: column.Some[int32](1)},
	})
	if got := c.Path(0); len(got) != 2 {
		t.Fatalf("Path = %v", got)
	}
}

func TestDeckOf(t *testing.T) {
	f := testFile()
	a := NewBuilder(f, "entdados")
	a.Add(HydroPlant{Number: 1})
	a.Add(Subsystem{Number: 1})
	d := &Deck{Collections: []*Collection{a.Freeze()}}
	if len(d.Of(KindSubsystem)) != 1 || d.Count(KindHydroPlant) != 1 || d.Count(KindInflow) != 0 {
		t.Fatalf("unexpected deck contents")
	}
	if _, ok := d.Collection("entdados.dat"); !ok {
		t.Fatalf("collection lookup by name failed")
	}
}

func TestRawLinesSortedByLine(t *testing.T) {
	b := NewBuilder(testFile(), "operuh")
	b.Keep(RawLine{Line: 7, Text: "ZZZ 001"})
	b.Keep(RawLine{Line: 2, Text: "LIM 009"})
	b.Add(Restriction{Number: 1})
	c := b.Freeze()
	raw := c.Raw()
	if len(raw) != 2 || raw[0].Line != 2 || raw[1].Line != 7 || c.Len() != 1 {
		t.Fatalf("raw = %+v", raw)
	}
	raw[0].Text = "changed"
	if c.Raw()[0].Text != "LIM 009" {
		t.Fatalf("Raw exposes internal slice")
	}
	if r := Restore(c.File, c.Path, c.Format, c.Entities(), c.Raw()...); len(r.Raw()) != 2 {
		t.Fatalf("Restore dropped raw lines")
	}
}
