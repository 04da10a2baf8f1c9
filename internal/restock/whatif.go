package restock

import "github.com/andresuchdata/demandcast/internal/domain"

// WhatIfOverrides replaces selected inputs of the advanced variant. Nil fields
// keep the current data.
type WhatIfOverrides struct {
	DailyDemand  *float64 `json:"daily_demand,omitempty"`
	OnHand       *int     `json:"on_hand_units,omitempty"`
	Inbound      *int     `json:"inbound_units,omitempty"`
	Reserved     *int     `json:"reserved_units,omitempty"`
	LeadTimeDays *float64 `json:"lead_time_days,omitempty"`
	ServiceLevel *float64 `json:"service_level,omitempty"`
}

// WhatIf recomputes the advanced recommendation with overrides applied,
// alongside the recommendation from current data. Nothing is persisted.
func WhatIf(in AdvancedInput, o WhatIfOverrides, params Params) domain.WhatIfResult {
	baseline := Advanced(in, params)

	scenario := in
	applied := []string{}

	if o.DailyDemand != nil {
		d := *o.DailyDemand
		scenario.DailyDemand = &d
		applied = append(applied, "daily_demand")
	}

	if o.OnHand != nil || o.Inbound != nil || o.Reserved != nil {
		inv := domain.InventoryLevel{SKU: in.SKU, Marketplace: in.Marketplace}
		if in.Inventory != nil {
			inv = *in.Inventory
		}
		if o.OnHand != nil {
			inv.OnHandUnits = *o.OnHand
			applied = append(applied, "on_hand_units")
		}
		if o.Inbound != nil {
			inbound := *o.Inbound
			inv.InboundUnits = &inbound
			applied = append(applied, "inbound_units")
		}
		if o.Reserved != nil {
			inv.ReservedUnits = *o.Reserved
			applied = append(applied, "reserved_units")
		}
		scenario.Inventory = &inv
	}

	if o.LeadTimeDays != nil || o.ServiceLevel != nil {
		supplier, _ := ResolveSupplier(in.Supplier, in.SKU, params)
		if o.LeadTimeDays != nil {
			supplier.LeadTimeDaysMean = *o.LeadTimeDays
			applied = append(applied, "lead_time_days")
		}
		if o.ServiceLevel != nil {
			supplier.ServiceLevel = *o.ServiceLevel
			applied = append(applied, "service_level")
		}
		scenario.Supplier = &supplier
	}

	result := Advanced(scenario, params)
	if in.Supplier == nil && scenario.Supplier != nil {
		result.ReasonFlags = append(result.ReasonFlags, domain.FlagMissingSupplierSettings)
	}

	return domain.WhatIfResult{Baseline: baseline, Scenario: result, Applied: applied}
}
