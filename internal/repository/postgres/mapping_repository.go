package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/repository"
	"github.com/jmoiron/sqlx"
)

type mappingRepository struct {
	db *DB
}

func NewMappingRepository(db *DB) repository.MappingReader {
	return &mappingRepository{db: db}
}

func (r *mappingRepository) GetMappings(ctx context.Context, scope domain.DemandScope) ([]domain.SKUMapping, error) {
	query := `
        SELECT sm.sku, sm.marketplace, sm.status
        FROM sku_mappings sm
        WHERE 1=1
    `

	conditions, args, _ := scopeConditions(scope, "sm.", 1)
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	mappings := []domain.SKUMapping{}
	err := r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &mappings, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("error getting sku mappings: %w", err)
	}

	return mappings, nil
}
