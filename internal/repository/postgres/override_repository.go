package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/repository"
	"github.com/jmoiron/sqlx"
)

type overrideRepository struct {
	db *DB
}

func NewOverrideRepository(db *DB) repository.OverrideReader {
	return &overrideRepository{db: db}
}

func (r *overrideRepository) GetOverrides(ctx context.Context, scope domain.DemandScope, start, end time.Time) ([]domain.Override, error) {
	query := `
        SELECT fo.id, fo.sku, fo.marketplace, fo.start_date, fo.end_date, fo.type, fo.value
        FROM forecast_overrides fo
        WHERE fo.start_date <= $2::date
          AND fo.end_date >= $1::date
    `

	args := []interface{}{start.Format("2006-01-02"), end.Format("2006-01-02")}
	argCounter := 3

	if scope.SKU != "" {
		query += fmt.Sprintf(" AND (fo.sku IS NULL OR fo.sku = $%d)", argCounter)
		args = append(args, scope.SKU)
		argCounter++
	} else {
		query += " AND fo.sku IS NULL"
	}

	if !scope.AllMarketplaces() {
		query += fmt.Sprintf(" AND (fo.marketplace IS NULL OR fo.marketplace = $%d)", argCounter)
		args = append(args, scope.Marketplace)
	} else {
		query += " AND fo.marketplace IS NULL"
	}

	// Application order is creation order; later rows win on overlap.
	query += " ORDER BY fo.created_at, fo.id"

	overrides := []domain.Override{}
	err := r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &overrides, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("error getting forecast overrides: %w", err)
	}

	return overrides, nil
}
