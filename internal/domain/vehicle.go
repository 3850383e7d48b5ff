package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// VehicleType is the catalog classification of a vehicle (fighter, bomber, ...).
// Values are stored as ingested; unknown types are kept verbatim.
type VehicleType string

const (
	VehicleTypeFighter       VehicleType = "fighter"
	VehicleTypeBomber        VehicleType = "bomber"
	VehicleTypeAssault       VehicleType = "assault"
	VehicleTypeHelicopter    VehicleType = "helicopter"
	VehicleTypeLightTank     VehicleType = "light_tank"
	VehicleTypeMediumTank    VehicleType = "medium_tank"
	VehicleTypeHeavyTank     VehicleType = "heavy_tank"
	VehicleTypeTankDestroyer VehicleType = "tank_destroyer"
	VehicleTypeSPAA          VehicleType = "spaa"
	VehicleTypeShip          VehicleType = "ship"
	VehicleTypeBoat          VehicleType = "boat"
)

// String returns the string representation of VehicleType.
func (t VehicleType) String() string {
	return string(t)
}

// Amount is an economic field (silver, research points, premium currency) as ingested.
// The raw text is retained so a malformed value never blocks loading or aggregation.
type Amount string

// AmountOf formats an integer amount.
func AmountOf(n int64) Amount {
	return Amount(strconv.FormatInt(n, 10))
}

// Int64 returns the numeric value. Missing or malformed values yield 0.
// Fractional values are truncated toward zero.
func (a Amount) Int64() int64 {
	n, _ := a.parse()
	return n
}

// Valid reports whether the amount parses as a number.
func (a Amount) Valid() bool {
	_, ok := a.parse()
	return ok
}

func (a Amount) parse() (int64, bool) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// VehicleSnapshot is the full record of one vehicle's attributes as of one version.
// (Identifier, Version) is unique; Identifier alone is not.
type VehicleSnapshot struct {
	Identifier    string      `json:"identifier"`
	Version       string      `json:"version"`
	Country       string      `json:"country"`
	VehicleType   VehicleType `json:"vehicle_type"`
	Value         Amount      `json:"value"`    // silver lions
	ReqExp        Amount      `json:"req_exp"`  // research points
	GECost        Amount      `json:"ge_cost"`  // golden eagles
	IsPremium     bool        `json:"is_premium"`
	IsPack        bool        `json:"is_pack"`
	OnMarketplace bool        `json:"on_marketplace"`
}

// Catalog maps identifier to the snapshot visible for that identifier.
type Catalog map[string]*VehicleSnapshot

// Identifiers returns catalog keys in ascending order.
func (c Catalog) Identifiers() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// VehicleDetail is a single vehicle lookup result.
type VehicleDetail struct {
	Snapshot *VehicleSnapshot `json:"snapshot"` // nil when the vehicle has no live row
	IsLive   bool             `json:"is_live"`
	Versions []string         `json:"versions"` // every version the identifier has existed at, ascending
}
