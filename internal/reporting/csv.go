package reporting

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

var csvHeader = []string{"country", "vehicle_type", "total_vehicles", "total_value", "total_req_exp", "total_ge_cost"}

// RenderCSV renders country/type breakdown rows as CSV string.
// Country and type come from ingested data and are quoted when needed.
func RenderCSV(rows []CountryTypeRow) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Country,
			r.VehicleType,
			strconv.Itoa(r.TotalVehicles),
			strconv.FormatInt(r.TotalValue, 10),
			strconv.FormatInt(r.TotalReqExp, 10),
			strconv.FormatInt(r.TotalGECost, 10),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return sb.String(), nil
}
