// Package fixtures provides a deterministic demo catalog spanning several versions.
package fixtures

import (
	"context"
	"fmt"

	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/storage"
)

// Versions covered by the demo catalog, ascending.
var Versions = []string{"2.29.0.12", "2.31.0.7", "2.33.0.15", "2.35.1.3"}

// ExcludedIDs are the administratively excluded event vehicles in the demo catalog.
var ExcludedIDs = []string{"event_t95e1"}

type row struct {
	id, country string
	vt          domain.VehicleType
	value       string
	reqExp      string
	geCost      string
	premium     bool
	pack        bool
	market      bool
}

// revisions lists every snapshot as (version index, row).
var revisions = []struct {
	at int
	r  row
}{
	{0, row{"us_m4a1", "usa", domain.VehicleTypeMediumTank, "30000", "11000", "", false, false, false}},
	{2, row{"us_m4a1", "usa", domain.VehicleTypeMediumTank, "33000", "12500", "", false, false, false}},
	{0, row{"p_51d_5", "usa", domain.VehicleTypeFighter, "12000", "6000", "", false, false, false}},
	{1, row{"f_86f_25", "usa", domain.VehicleTypeFighter, "0", "0", "4200", true, false, false}},
	{3, row{"f_86f_25", "usa", domain.VehicleTypeFighter, "0", "0", "3900", true, false, false}},
	{1, row{"us_m26_t99", "usa", domain.VehicleTypeHeavyTank, "0", "0", "", true, true, false}},

	{0, row{"germ_pzkpfw_iv_ausf_h", "germany", domain.VehicleTypeMediumTank, "25000", "9000", "", false, false, false}},
	{1, row{"germ_pzkpfw_iv_ausf_h", "germany", domain.VehicleTypeMediumTank, "27000", "9800", "", false, false, false}},
	{3, row{"germ_pzkpfw_iv_ausf_h", "germany", domain.VehicleTypeMediumTank, "N/A", "9800", "", false, false, false}},
	{0, row{"bf_109f_4", "germany", domain.VehicleTypeFighter, "9000", "4000", "", false, false, false}},
	{2, row{"germ_tiger_h1_west", "germany", domain.VehicleTypeHeavyTank, "0", "0", "5600", true, false, true}},

	{0, row{"ussr_t_34_1941", "ussr", domain.VehicleTypeMediumTank, "8000", "3500", "", false, false, false}},
	{2, row{"ussr_is_2_1944", "ussr", domain.VehicleTypeHeavyTank, "150000", "61000", "", false, false, false}},
	{3, row{"ussr_is_2_1944", "ussr", domain.VehicleTypeHeavyTank, "160000", "64000", "", false, false, false}},
	{1, row{"mi_24p", "ussr", domain.VehicleTypeHelicopter, "0", "0", "6100", true, false, false}},

	{0, row{"jp_a6m2", "japan", domain.VehicleTypeFighter, "1100", "900", "", false, false, false}},
	{3, row{"jp_type_87_rct", "japan", domain.VehicleTypeSPAA, "420000", "250000", "", false, false, false}},

	{2, row{"event_t95e1", "usa", domain.VehicleTypeTankDestroyer, "0", "0", "", false, false, false}},
	{1, row{"f_4e_killstreak", "usa", domain.VehicleTypeFighter, "0", "0", "", false, false, false}},
}

// Snapshots returns the full demo snapshot log in append order.
func Snapshots() []*domain.VehicleSnapshot {
	out := make([]*domain.VehicleSnapshot, 0, len(revisions))
	for _, rev := range revisions {
		r := rev.r
		out = append(out, &domain.VehicleSnapshot{
			Identifier:    r.id,
			Version:       Versions[rev.at],
			Country:       r.country,
			VehicleType:   r.vt,
			Value:         domain.Amount(r.value),
			ReqExp:        domain.Amount(r.reqExp),
			GECost:        domain.Amount(r.geCost),
			IsPremium:     r.premium,
			IsPack:        r.pack,
			OnMarketplace: r.market,
		})
	}
	return out
}

// Load appends the demo catalog to w in a single batch.
func Load(ctx context.Context, w storage.SnapshotWriter) error {
	if err := w.AppendBulk(ctx, Snapshots()); err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	return nil
}
