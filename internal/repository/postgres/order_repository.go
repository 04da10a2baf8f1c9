package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/repository"
	"github.com/jmoiron/sqlx"
)

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) repository.OrderHistoryReader {
	return &orderRepository{db: db}
}

func (r *orderRepository) GetSalesRows(ctx context.Context, scope domain.DemandScope, start, end time.Time) ([]domain.SalesRow, error) {
	query := `
        SELECT
            ol.order_date::date AS order_date,
            ol.sku,
            ol.marketplace,
            SUM(ol.quantity)::int AS units
        FROM order_lines ol
        WHERE ol.order_date >= $1::date
          AND ol.order_date <= $2::date
    `

	args := []interface{}{start.Format("2006-01-02"), end.Format("2006-01-02")}
	conditions, scopeArgs, _ := scopeConditions(scope, "ol.", 3)
	args = append(args, scopeArgs...)
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += `
        GROUP BY ol.order_date::date, ol.sku, ol.marketplace
        ORDER BY order_date, ol.sku, ol.marketplace
    `

	rows := []domain.SalesRow{}
	err := r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("error getting sales rows: %w", err)
	}

	return rows, nil
}

func (r *orderRepository) GetLatestSaleDate(ctx context.Context, scope domain.DemandScope) (*time.Time, error) {
	query := `
        SELECT MAX(ol.order_date)::date
        FROM order_lines ol
        WHERE 1=1
    `

	conditions, args, _ := scopeConditions(scope, "ol.", 1)
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	var latest *time.Time
	err := r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &latest, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("error getting latest sale date: %w", err)
	}

	return latest, nil
}
