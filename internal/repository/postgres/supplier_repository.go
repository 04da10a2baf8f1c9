package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/repository"
	"github.com/jmoiron/sqlx"
)

type supplierRepository struct {
	db *DB
}

func NewSupplierRepository(db *DB) repository.SupplierSettingReader {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) GetSupplierSetting(ctx context.Context, sku, marketplace string) (*domain.SupplierSetting, error) {
	// Marketplace-specific settings win over the global (NULL marketplace) row.
	query := `
        SELECT
            ss.sku, ss.marketplace, ss.supplier,
            ss.lead_time_days_mean, ss.lead_time_days_std,
            ss.moq_units, ss.pack_size_units, ss.service_level,
            ss.min_days_of_cover, ss.max_days_of_cover, ss.unit_cost
        FROM supplier_settings ss
        WHERE ss.sku = $1
          AND (ss.marketplace = $2 OR ss.marketplace IS NULL)
        ORDER BY ss.marketplace NULLS LAST
        LIMIT 1
    `

	var setting domain.SupplierSetting
	err := r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &setting, query, sku, marketplace)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting supplier setting for %s/%s: %w", sku, marketplace, err)
	}

	return &setting, nil
}
