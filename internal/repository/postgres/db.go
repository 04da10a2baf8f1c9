package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const defaultMaxConcurrentReads = 10

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB creates a new database connection pool
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

		var db *sqlx.DB
		db, err = sqlx.Connect("postgres", connStr)
		if err != nil {
			return
		}

		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		dbInstance = Wrap(db, cfg.MaxConcurrentReads)
	})

	return dbInstance, err
}

// Wrap adapts an existing sqlx handle (for example one opened with the pgx
// stdlib driver) and limits concurrent reads to maxConcurrent.
func Wrap(db *sqlx.DB, maxConcurrent int) *DB {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentReads
	}
	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// WithReadTx runs fn inside a read-only transaction so multi-statement reads
// see one snapshot.
func (db *DB) WithReadTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// scopeConditions builds the SKU / marketplace filter shared by the readers.
func scopeConditions(scope domain.DemandScope, alias string, argCounter int) ([]string, []interface{}, int) {
	var (
		conditions []string
		args       []interface{}
	)

	if scope.SKU != "" {
		conditions = append(conditions, fmt.Sprintf("%ssku = $%d", alias, argCounter))
		args = append(args, scope.SKU)
		argCounter++
	}

	if !scope.AllMarketplaces() {
		conditions = append(conditions, fmt.Sprintf("%smarketplace = $%d", alias, argCounter))
		args = append(args, scope.Marketplace)
		argCounter++
	}

	return conditions, args, argCounter
}
