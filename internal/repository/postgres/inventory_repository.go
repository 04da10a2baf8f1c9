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

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) repository.InventoryReader {
	return &inventoryRepository{db: db}
}

const inventoryColumns = `
            il.sku, il.marketplace, il.on_hand_units, il.reserved_units, il.inbound_units
`

func (r *inventoryRepository) GetInventory(ctx context.Context, sku, marketplace string) (*domain.InventoryLevel, error) {
	query := `SELECT` + inventoryColumns + `
        FROM inventory_levels il
        WHERE il.sku = $1 AND il.marketplace = $2
    `

	var level domain.InventoryLevel
	err := r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &level, query, sku, marketplace)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting inventory for %s/%s: %w", sku, marketplace, err)
	}

	return &level, nil
}

func (r *inventoryRepository) ListInventory(ctx context.Context, marketplace string) ([]domain.InventoryLevel, error) {
	query := `SELECT` + inventoryColumns + `
        FROM inventory_levels il
        WHERE 1=1
    `

	var args []interface{}
	if marketplace != "" && marketplace != domain.AllMarketplaces {
		query += " AND il.marketplace = $1"
		args = append(args, marketplace)
	}
	query += " ORDER BY il.sku, il.marketplace"

	levels := []domain.InventoryLevel{}
	err := r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &levels, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("error listing inventory: %w", err)
	}

	return levels, nil
}
