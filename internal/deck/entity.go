package deck

import (
	"fmt"

	"hydrodeck/internal/source"
)

// Kind identifies an entity type.
type Kind uint8

const (
	KindTimePeriod Kind = iota + 1
	KindSubsystem
	KindHydroPlant
	KindThermalPlant
	KindDemand
	KindDiscountRate
	KindTravelTime
	KindItaipuLimit
	KindRestrictionVariable
	KindFloodVolume
	KindSpillageLink
	KindInflow
	KindHydroRegistry
	KindRestriction
)

var kindNames = [...]string{
	KindTimePeriod:          "TimePeriod",
	KindSubsystem:           "Subsystem",
	KindHydroPlant:          "HydroPlant",
	KindThermalPlant:        "ThermalPlant",
	KindDemand:              "Demand",
	KindDiscountRate:        "DiscountRate",
	KindTravelTime:          "TravelTime",
	KindItaipuLimit:         "ItaipuLimit",
	KindRestrictionVariable: "RestrictionVariable",
	KindFloodVolume:         "FloodVolume",
	KindSpillageLink:        "SpillageLink",
	KindInflow:              "Inflow",
	KindHydroRegistry:       "HydroRegistry",
	KindRestriction:         "Restriction",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Kinds lists every entity kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := KindTimePeriod; k <= KindRestriction; k++ {
		out = append(out, k)
	}
	return out
}

// Key is a primary key (Arity 1) or a two-part composite key (Arity 2).
// Arity 0 means the entity has no key.
type Key struct {
	A, B  int32
	Arity uint8
}

func Key1(a int32) Key { return Key{A: a, Arity: 1} }
func Key2(a, b int32) Key { return Key{A: a, B: b, Arity: 2} }

func (k Key) String() string {
	switch k.Arity {
	case 0:
		return "-"
	case 1:
		return fmt.Sprint(k.A)
	default:
		return fmt.Sprintf("(%d, %d)", k.A, k.B)
	}
}

// Meta is the provenance every entity carries.
type Meta struct {
	Span source.Span // record (or composite) the entity was built from
	Line uint32      // 1-based; 0 for binary records
}

func (m Meta) Origin() source.Span { return m.Span }

func (Meta) isEntity() {}

// Entity is implemented by the entity types of this package only.
type Entity interface {
	Kind() Kind
	Key() Key
	Origin() source.Span
	isEntity()
}
