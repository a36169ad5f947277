package deck

import (
	"fortio.org/safecast"

	"hydrodeck/internal/column"
	"hydrodeck/internal/source"
)

// NoNode marks a missing arena index.
const NoNode int32 = -1

// CascadeNode is the input of a cascade: a plant and its optional downstream plant.
type CascadeNode struct {
	Key        int32
	Downstream column.Opt[int32]
	Origin     source.Span
}

// Dangling is a downstream reference that names no node of the cascade.
type Dangling struct {
	Node   int32 // arena index of the referring node
	Target int32 // missing key
}

// Cascade stores a self-referencing plant relation as an arena: every key
// gets a stable int32 index and the downstream link is an arena index.
// Duplicate keys keep the first node.
type Cascade struct {
	keys     []int32
	origins  []source.Span
	down     []int32
	index    map[int32]int32
	dangling []Dangling
}

func NewCascade(nodes []CascadeNode) *Cascade {
	c := &Cascade{index: make(map[int32]int32, len(nodes))}
	kept := make([]CascadeNode, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := c.index[n.Key]; dup {
			continue
		}
		c.index[n.Key] = safecast.MustConv[int32](len(c.keys))
		c.keys = append(c.keys, n.Key)
		c.origins = append(c.origins, n.Origin)
		kept = append(kept, n)
	}
	c.down = make([]int32, len(kept))
	for i, n := range kept {
		c.down[i] = NoNode
		target, ok := n.Downstream.Get()
		if !ok {
			continue
		}
		if j, found := c.index[target]; found {
			c.down[i] = j
		} else {
			c.dangling = append(c.dangling, Dangling{Node: safecast.MustConv[int32](i), Target: target})
		}
	}
	return c
}

func (c *Cascade) Len() int { return len(c.keys) }

func (c *Cascade) Key(i int32) int32 { return c.keys[i] }

func (c *Cascade) Origin(i int32) source.Span { return c.origins[i] }

// Index returns the arena index of key.
func (c *Cascade) Index(key int32) (int32, bool) {
	i, ok := c.index[key]
	return i, ok
}

// Downstream returns the arena index of the downstream node, or NoNode.
func (c *Cascade) Downstream(i int32) int32 { return c.down[i] }

// Dangling returns the unresolved downstream references in node order.
func (c *Cascade) Dangling() []Dangling { return c.dangling }

// Path returns the keys from node i to the end of its cascade. Cycles are
// cut at the first repeated node.
func (c *Cascade) Path(i int32) []int32 {
	seen := make(map[int32]bool)
	var out []int32
	for i != NoNode && !seen[i] {
		seen[i] = true
		out = append(out, c.keys[i])
		i = c.down[i]
	}
	return out
}
