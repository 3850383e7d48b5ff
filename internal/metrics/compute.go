package metrics

import "vehicle-catalog-lab/internal/domain"

// IsTechTree reports whether a vehicle is obtainable through normal progression.
func IsTechTree(v *domain.VehicleSnapshot) bool {
	return !v.IsPremium && !v.OnMarketplace && !v.IsPack
}

// IsPremium reports whether a vehicle counts toward the premium total,
// regardless of pack or marketplace status.
func IsPremium(v *domain.VehicleSnapshot) bool {
	return v.IsPremium
}

// ContributesGE reports whether a vehicle's GE cost counts toward GE totals.
func ContributesGE(v *domain.VehicleSnapshot) bool {
	return v.IsPremium && !v.IsPack && !v.OnMarketplace
}

// accumulate folds one vehicle into stats.
// The three classification rules are independent; counts are catalog-wide.
func accumulate(stats *domain.Stats, v *domain.VehicleSnapshot) {
	vehicleType := v.VehicleType.String()

	country := stats.Country(v.Country)
	typ := country.Type(vehicleType)

	stats.Categories[vehicleType]++
	country.TotalVehicles++
	typ.TotalVehicles++

	if IsTechTree(v) {
		value := v.Value.Int64()
		reqExp := v.ReqExp.Int64()

		stats.TotalTechTreeVehicles++
		stats.TotalSLRequired += value
		stats.TotalRPRequired += reqExp
		country.TotalValue += value
		country.TotalReqExp += reqExp
		typ.TotalValue += value
		typ.TotalReqExp += reqExp
	}

	if IsPremium(v) {
		stats.TotalPremiumVehicles++
	}

	if ContributesGE(v) {
		ge := v.GECost.Int64()
		stats.TotalGERequired += ge
		country.TotalGECost += ge
		typ.TotalGECost += ge
	}
}
