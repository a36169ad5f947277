package xref

import (
	"fmt"
	"strings"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
)

func (v *validator) cascades() {
	var plants, registry []deck.CascadeNode
	for _, e := range deck.Collect[deck.HydroPlant](v.cols) {
		plants = append(plants, deck.CascadeNode{Key: e.Number, Downstream: e.Downstream, Origin: e.Origin()})
	}
	for _, e := range deck.Collect[deck.HydroRegistry](v.cols) {
		if e.Unused {
			continue
		}
		registry = append(registry, deck.CascadeNode{Key: e.Number, Downstream: e.Downstream, Origin: e.Origin()})
	}
	if len(plants) > 0 {
		v.cascade(deck.KindHydroPlant, deck.NewCascade(plants))
	}
	if len(registry) > 0 {
		v.cascade(deck.KindHydroRegistry, deck.NewCascade(registry))
	}
}

func (v *validator) cascade(kind deck.Kind, c *deck.Cascade) {
	for _, d := range c.Dangling() {
		v.report(diag.XrfReferentialIntegrity, c.Origin(d.Node),
			fmt.Sprintf("%s %d: downstream %d does not name any %s", kind, c.Key(d.Node), d.Target, kind)).
			Emit()
	}
	for _, cycle := range Cycles(c) {
		keys := make([]string, 0, len(cycle)+1)
		for _, i := range cycle {
			keys = append(keys, fmt.Sprint(c.Key(i)))
		}
		keys = append(keys, keys[0])
		b := v.report(diag.XrfCycleDetected, c.Origin(cycle[0]),
			fmt.Sprintf("%s cascade has a cycle: %s", kind, strings.Join(keys, " -> ")))
		for _, i := range cycle[1:] {
			b.WithNote(c.Origin(i), fmt.Sprintf("%s %d is part of the cycle", kind, c.Key(i)))
		}
		b.Emit()
	}
}

const (
	white uint8 = iota // not visited
	grey               // on the current path
	black              // finished
)

// Cycles returns every cycle of the cascade once, as arena indices in
// downstream order, starting at the first node reached by the walk.
// Every node has at most one downstream link, so following it from each
// unvisited node with tri-colour marking finds each cycle exactly once.
func Cycles(c *deck.Cascade) [][]int32 {
	n := c.Len()
	color := make([]uint8, n)
	var (
		out  [][]int32
		path []int32
	)
	for s := range n {
		if color[s] != white {
			continue
		}
		path = path[:0]
		i := int32(s)
		for i != deck.NoNode && color[i] == white {
			color[i] = grey
			path = append(path, i)
			i = c.Downstream(i)
		}
		if i != deck.NoNode && color[i] == grey {
			for k, p := range path {
				if p == i {
					out = append(out, append([]int32(nil), path[k:]...))
					break
				}
			}
		}
		for _, p := range path {
			color[p] = black
		}
	}
	return out
}
