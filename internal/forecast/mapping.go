package forecast

import "github.com/andresuchdata/demandcast/internal/domain"

// ClassifyMapping maps a stored mapping status to its class. A missing record
// (found == false) or a pending/unknown status is unmapped_or_pending.
func ClassifyMapping(status string, found bool) domain.MappingClass {
	if !found {
		return domain.MappingUnmappedOrPending
	}
	switch domain.NormalizeMappingStatus(status) {
	case domain.MappingStatusConfirmed:
		return domain.MappingConfirmed
	case domain.MappingStatusIgnored:
		return domain.MappingIgnored
	case domain.MappingStatusDiscontinued:
		return domain.MappingDiscontinued
	default:
		return domain.MappingUnmappedOrPending
	}
}

// Includable reports whether units of the given class enter the series in a
// mapped mode. Ignored and discontinued units never do.
func Includable(class domain.MappingClass, mode domain.DemandMode) bool {
	switch class {
	case domain.MappingConfirmed:
		return true
	case domain.MappingUnmappedOrPending:
		return mode == domain.DemandModeMappedIncludeUnmapped
	default:
		return false
	}
}

// MappingTable indexes mapping records by (SKU, marketplace).
type MappingTable map[domain.MappingKey]string

// NewMappingTable builds a lookup table from mapping records.
func NewMappingTable(mappings []domain.SKUMapping) MappingTable {
	table := make(MappingTable, len(mappings))
	for _, m := range mappings {
		table[domain.MappingKey{SKU: m.SKU, Marketplace: m.Marketplace}] = m.Status
	}
	return table
}

// Classify looks up and classifies a (SKU, marketplace) pair.
func (t MappingTable) Classify(sku, marketplace string) domain.MappingClass {
	status, ok := t[domain.MappingKey{SKU: sku, Marketplace: marketplace}]
	return ClassifyMapping(status, ok)
}
