package reporting

import (
	"fmt"
	"strings"

	"vehicle-catalog-lab/internal/domain"
)

// RenderStatsMarkdown renders a stats result as Markdown string.
func RenderStatsMarkdown(r *domain.StatsResult) string {
	var sb strings.Builder

	requested := r.RequestedVersion
	if requested == "" {
		requested = "current"
	}

	sb.WriteString("# Catalog Stats\n\n")
	sb.WriteString(fmt.Sprintf("Version: %s | Live version: %s | Vehicles: %d\n\n",
		requested, orDash(r.LiveVersion), r.VehicleCount))

	s := r.Stats
	if s == nil {
		s = domain.NewStats()
	}

	sb.WriteString("## Totals\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Tech-tree vehicles | %d |\n", s.TotalTechTreeVehicles))
	sb.WriteString(fmt.Sprintf("| Premium vehicles | %d |\n", s.TotalPremiumVehicles))
	sb.WriteString(fmt.Sprintf("| SL required | %d |\n", s.TotalSLRequired))
	sb.WriteString(fmt.Sprintf("| RP required | %d |\n", s.TotalRPRequired))
	sb.WriteString(fmt.Sprintf("| GE required | %d |\n", s.TotalGERequired))
	sb.WriteString("\n")

	if len(s.Categories) > 0 {
		sb.WriteString("## Categories\n\n")
		sb.WriteString("| Type | Vehicles |\n")
		sb.WriteString("|------|----------|\n")
		for _, vt := range sortedKeys(s.Categories) {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", vt, s.Categories[vt]))
		}
		sb.WriteString("\n")
	}

	if len(s.Countries) > 0 {
		sb.WriteString("## Countries\n\n")
		sb.WriteString("| Country | Vehicles | SL | RP | GE |\n")
		sb.WriteString("|---------|----------|----|----|----|\n")
		for _, c := range sortedKeys(s.Countries) {
			cs := s.Countries[c]
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
				c, cs.TotalVehicles, cs.TotalValue, cs.TotalReqExp, cs.TotalGECost))
		}
		sb.WriteString("\n")
	}

	if len(r.Versions) > 0 {
		sb.WriteString("## Known Versions\n\n")
		sb.WriteString(strings.Join(r.Versions, ", "))
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderVehicleMarkdown renders a vehicle detail as Markdown string.
func RenderVehicleMarkdown(d *domain.VehicleDetail) string {
	var sb strings.Builder

	if d.Snapshot == nil {
		sb.WriteString("# Vehicle\n\n")
		sb.WriteString("No live snapshot; the vehicle only exists in history.\n\n")
	} else {
		v := d.Snapshot
		state := "historical"
		if d.IsLive {
			state = "live"
		}

		sb.WriteString(fmt.Sprintf("# %s\n\n", v.Identifier))
		sb.WriteString(fmt.Sprintf("Version: %s (%s)\n\n", v.Version, state))
		sb.WriteString("| Field | Value |\n")
		sb.WriteString("|-------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Country | %s |\n", orDash(v.Country)))
		sb.WriteString(fmt.Sprintf("| Type | %s |\n", orDash(v.VehicleType.String())))
		sb.WriteString(fmt.Sprintf("| Value (SL) | %d |\n", v.Value.Int64()))
		sb.WriteString(fmt.Sprintf("| Research (RP) | %d |\n", v.ReqExp.Int64()))
		sb.WriteString(fmt.Sprintf("| GE cost | %d |\n", v.GECost.Int64()))
		sb.WriteString(fmt.Sprintf("| Premium | %s |\n", yesNo(v.IsPremium)))
		sb.WriteString(fmt.Sprintf("| Pack | %s |\n", yesNo(v.IsPack)))
		sb.WriteString(fmt.Sprintf("| Marketplace | %s |\n", yesNo(v.OnMarketplace)))
		sb.WriteString("\n")
	}

	sb.WriteString("## Versions\n\n")
	for _, ver := range d.Versions {
		sb.WriteString(fmt.Sprintf("- %s\n", ver))
	}

	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
