package domain

import "strings"

// Mapping status strings as stored by the mapping collaborator.
const (
	MappingStatusConfirmed    = "confirmed"
	MappingStatusIgnored      = "ignored"
	MappingStatusDiscontinued = "discontinued"
	MappingStatusPending      = "pending"
)

// MappingClass is the classifier outcome for a (SKU, marketplace) pair.
type MappingClass string

const (
	MappingConfirmed         MappingClass = "mapped_confirmed"
	MappingIgnored           MappingClass = "mapped_ignored"
	MappingDiscontinued      MappingClass = "mapped_discontinued"
	MappingUnmappedOrPending MappingClass = "unmapped_or_pending"
)

// MappingKey identifies a SKU on one marketplace.
type MappingKey struct {
	SKU         string
	Marketplace string
}

// SKUMapping is a persisted mapping record.
type SKUMapping struct {
	SKU         string `json:"sku" db:"sku"`
	Marketplace string `json:"marketplace" db:"marketplace"`
	Status      string `json:"status" db:"status"`
}

// NormalizeMappingStatus lowercases and trims a raw status string.
func NormalizeMappingStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
