package deck

import (
	"time"

	"github.com/shopspring/decimal"

	"hydrodeck/internal/column"
)

type (
	Dec  = column.Opt[decimal.Decimal]
	Int  = column.Opt[int32]
	Text = column.Opt[string]
)

type TimePeriod struct {
	Meta
	Period   int32
	Start    column.Opt[time.Time]
	Hour     Int
	Minute   Int
	Duration Dec // hours
	Network  Int
}

func (TimePeriod) Kind() Kind { return KindTimePeriod }
func (e TimePeriod) Key() Key { return Key1(e.Period) }

type Subsystem struct {
	Meta
	Number   int32
	Mnemonic Text
	Name     Text
}

func (Subsystem) Kind() Kind { return KindSubsystem }
func (e Subsystem) Key() Key { return Key1(e.Number) }

type HydroPlant struct {
	Meta
	Number     int32
	Name       Text
	Subsystem  Int
	Downstream Int // absent when the plant has no downstream plant
	VInit      Dec
	VMin       Dec
	VMax       Dec
}

func (HydroPlant) Kind() Kind { return KindHydroPlant }
func (e HydroPlant) Key() Key { return Key1(e.Number) }

type ThermalPlant struct {
	Meta
	Number    int32
	Name      Text
	Subsystem Int
	GMin      Dec
	GMax      Dec
}

func (ThermalPlant) Kind() Kind { return KindThermalPlant }
func (e ThermalPlant) Key() Key { return Key1(e.Number) }

type Demand struct {
	Meta
	Subsystem int32
	Period    int32
	Load      Dec
}

func (Demand) Kind() Kind { return KindDemand }
func (e Demand) Key() Key { return Key2(e.Subsystem, e.Period) }

type DiscountRate struct {
	Meta
	Rate Dec // percent per period
}

func (DiscountRate) Kind() Kind { return KindDiscountRate }
func (DiscountRate) Key() Key { return Key{} }

type TravelTime struct {
	Meta
	Upstream   int32
	Downstream int32
	Hours      Dec
}

func (TravelTime) Kind() Kind { return KindTravelTime }
func (e TravelTime) Key() Key { return Key2(e.Upstream, e.Downstream) }

type ItaipuLimit struct {
	Meta
	Period int32
	GMin   Dec
	GMax   Dec
}

func (ItaipuLimit) Kind() Kind { return KindItaipuLimit }
func (e ItaipuLimit) Key() Key { return Key1(e.Period) }

type RestrictionVariable struct {
	Meta
	Plant   int32
	Code    int32
	Penalty Dec
}

func (RestrictionVariable) Kind() Kind { return KindRestrictionVariable }
func (e RestrictionVariable) Key() Key { return Key2(e.Plant, e.Code) }

type FloodVolume struct {
	Meta
	Plant  int32
	Period int32
	Volume Dec
}

func (FloodVolume) Kind() Kind { return KindFloodVolume }
func (e FloodVolume) Key() Key { return Key2(e.Plant, e.Period) }

type SpillageLink struct {
	Meta
	Plant  int32
	Target int32
	Flag   Int
}

func (SpillageLink) Kind() Kind { return KindSpillageLink }
func (e SpillageLink) Key() Key { return Key2(e.Plant, e.Target) }

type Inflow struct {
	Meta
	Plant int32
	Day   int32
	Hour  Int
	Flow  Dec // m3/s
}

func (Inflow) Kind() Kind { return KindInflow }
func (e Inflow) Key() Key { return Key2(e.Plant, e.Day) }

// HydroRegistry is a plant entry of the hydro registry file. Binary entries
// carry the full record; the text variant fills only the common fields.
type HydroRegistry struct {
	Meta
	Number       int32 // 1-based record index
	Name         Text
	Posto        Int
	BDH          Text
	Subsystem    Int
	Company      Int
	Downstream   Int
	Diversion    Int
	VMin         Dec
	VMax         Dec
	VSpill       Dec
	VDiv         Dec
	HMin         Dec
	HMax         Dec
	VolumeHead   []Dec
	AreaHead     []Dec
	Evaporation  []Int
	MachineSets  Int
	Productivity Dec
	Opaque       []byte // undecoded tail of a binary record
	Unused       bool
	Binary       bool
}

func (HydroRegistry) Kind() Kind { return KindHydroRegistry }
func (e HydroRegistry) Key() Key { return Key1(e.Number) }

// Restriction is a composite built from a block: the leading REST line and
// the element, limit and variation lines attached to it.
type Restriction struct {
	Meta
	Number     int32
	Type       Text
	Label      Text
	Elements   []RestrictionElement
	Limits     []RestrictionLimit
	Variations []RestrictionVariation
}

type RestrictionElement struct {
	Meta
	Plant       Int
	Coefficient Dec
}

type RestrictionLimit struct {
	Meta
	Min Dec
	Max Dec
}

type RestrictionVariation struct {
	Meta
	Down Dec
	Up   Dec
}

func (Restriction) Kind() Kind { return KindRestriction }
func (e Restriction) Key() Key { return Key1(e.Number) }
