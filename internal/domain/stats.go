package domain

// TypeStats holds per-vehicle-type counters inside a country.
type TypeStats struct {
	TotalVehicles int   `json:"total_vehicles"`
	TotalValue    int64 `json:"total_value"`
	TotalReqExp   int64 `json:"total_req_exp"`
	TotalGECost   int64 `json:"total_ge_cost"`
}

// CountryStats holds per-country counters and a per-type breakdown.
type CountryStats struct {
	TotalVehicles int                   `json:"total_vehicles"`
	TotalValue    int64                 `json:"total_value"`
	TotalReqExp   int64                 `json:"total_req_exp"`
	TotalGECost   int64                 `json:"total_ge_cost"`
	Types         map[string]*TypeStats `json:"types"`
}

// NewCountryStats creates an empty CountryStats.
func NewCountryStats() *CountryStats {
	return &CountryStats{Types: make(map[string]*TypeStats)}
}

// Type returns the breakdown for a vehicle type, creating it on first use.
func (c *CountryStats) Type(vehicleType string) *TypeStats {
	ts, ok := c.Types[vehicleType]
	if !ok {
		ts = &TypeStats{}
		c.Types[vehicleType] = ts
	}
	return ts
}

// Stats is the economic/classification summary of a reconstructed catalog.
type Stats struct {
	TotalTechTreeVehicles int                      `json:"total_techtree_vehicles"`
	TotalPremiumVehicles  int                      `json:"total_premium_vehicles"`
	TotalSLRequired       int64                    `json:"total_sl_required"`
	TotalRPRequired       int64                    `json:"total_rp_required"`
	TotalGERequired       int64                    `json:"total_ge_required"`
	Categories            map[string]int           `json:"categories"`
	Countries             map[string]*CountryStats `json:"countries"`
}

// NewStats creates zeroed Stats with non-nil maps.
func NewStats() *Stats {
	return &Stats{
		Categories: make(map[string]int),
		Countries:  make(map[string]*CountryStats),
	}
}

// Country returns the country accumulator, creating it on first use.
func (s *Stats) Country(country string) *CountryStats {
	cs, ok := s.Countries[country]
	if !ok {
		cs = NewCountryStats()
		s.Countries[country] = cs
	}
	return cs
}

// Merge adds other into s. Used to combine per-bucket partial results.
func (s *Stats) Merge(other *Stats) {
	if other == nil {
		return
	}
	s.TotalTechTreeVehicles += other.TotalTechTreeVehicles
	s.TotalPremiumVehicles += other.TotalPremiumVehicles
	s.TotalSLRequired += other.TotalSLRequired
	s.TotalRPRequired += other.TotalRPRequired
	s.TotalGERequired += other.TotalGERequired

	for category, n := range other.Categories {
		s.Categories[category] += n
	}

	for country, ocs := range other.Countries {
		cs := s.Country(country)
		cs.TotalVehicles += ocs.TotalVehicles
		cs.TotalValue += ocs.TotalValue
		cs.TotalReqExp += ocs.TotalReqExp
		cs.TotalGECost += ocs.TotalGECost
		for vt, ots := range ocs.Types {
			ts := cs.Type(vt)
			ts.TotalVehicles += ots.TotalVehicles
			ts.TotalValue += ots.TotalValue
			ts.TotalReqExp += ots.TotalReqExp
			ts.TotalGECost += ots.TotalGECost
		}
	}
}

// StatsResult is the response of a stats query.
type StatsResult struct {
	RequestedVersion string   `json:"requested_version,omitempty"` // empty for the current catalog
	LiveVersion      string   `json:"live_version"`
	Versions         []string `json:"versions"` // all known versions, ascending
	VehicleCount     int      `json:"vehicle_count"`
	Stats            *Stats   `json:"stats"`
}
