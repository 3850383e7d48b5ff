// Package reporting renders catalog stats and vehicle details for CLI output.
package reporting

import (
	"fmt"
	"sort"
	"strings"

	"vehicle-catalog-lab/internal/domain"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, csv or markdown)", s)
	}
}

// CountryTypeRow is one flattened (country, vehicle type) breakdown line.
type CountryTypeRow struct {
	Country       string
	VehicleType   string
	TotalVehicles int
	TotalValue    int64
	TotalReqExp   int64
	TotalGECost   int64
}

// Rows flattens the per-country breakdown, sorted by country then type.
func Rows(stats *domain.Stats) []CountryTypeRow {
	if stats == nil {
		return nil
	}

	var rows []CountryTypeRow
	for _, country := range sortedKeys(stats.Countries) {
		cs := stats.Countries[country]
		for _, vt := range sortedKeys(cs.Types) {
			ts := cs.Types[vt]
			rows = append(rows, CountryTypeRow{
				Country:       country,
				VehicleType:   vt,
				TotalVehicles: ts.TotalVehicles,
				TotalValue:    ts.TotalValue,
				TotalReqExp:   ts.TotalReqExp,
				TotalGECost:   ts.TotalGECost,
			})
		}
	}
	return rows
}

// RenderStats renders a stats result in the given format.
func RenderStats(r *domain.StatsResult, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(r)
	case FormatCSV:
		return RenderCSV(Rows(r.Stats))
	case FormatMarkdown:
		return RenderStatsMarkdown(r), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// RenderVehicle renders a vehicle detail in the given format. CSV is not supported.
func RenderVehicle(d *domain.VehicleDetail, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(d)
	case FormatMarkdown:
		return RenderVehicleMarkdown(d), nil
	default:
		return "", fmt.Errorf("format %q not supported for vehicles", format)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
